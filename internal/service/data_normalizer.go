package service

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/teams"
)

// DataNormalizer rewrites records from any provider to canonical team codes
// and calendar dates
type DataNormalizer struct {
	canon  *teams.Canonicalizer
	logger logrus.FieldLogger
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(canon *teams.Canonicalizer, logger logrus.FieldLogger) *DataNormalizer {
	if canon == nil {
		canon = teams.New(nil)
	}
	return &DataNormalizer{canon: canon, logger: logger}
}

// Canonicalizer returns the team code table in use.
func (n *DataNormalizer) Canonicalizer() *teams.Canonicalizer {
	return n.canon
}

// NormalizeGameEvent canonicalizes team codes, trims the entity name and
// truncates the game date to its calendar day.
func (n *DataNormalizer) NormalizeGameEvent(e models.GameEvent) models.GameEvent {
	e.Team = n.canon.Canonical(e.Team)
	e.Opponent = n.canon.Canonical(e.Opponent)
	e.EntityName = sanitizeName(e.EntityName)
	e.GameDate = calendarDay(e.GameDate)
	return e
}

// NormalizeLine canonicalizes team codes and derives the underdog. Records
// whose favorite is not playing keep an empty underdog.
func (n *DataNormalizer) NormalizeLine(l models.LineOutcomeRecord) models.LineOutcomeRecord {
	l.HomeTeam = n.canon.Canonical(l.HomeTeam)
	l.AwayTeam = n.canon.Canonical(l.AwayTeam)
	l.Favorite = n.canon.Canonical(l.Favorite)
	l.GameDate = calendarDay(l.GameDate)
	if dog, ok := l.DeriveUnderdog(); ok {
		l.Underdog = dog
	} else {
		l.Underdog = ""
		n.logger.WithFields(logrus.Fields{
			"game":     l.Key().String(),
			"favorite": l.Favorite,
		}).Debug("Favorite is neither team")
	}
	return l
}

// NormalizeUpcoming canonicalizes the team codes of a slate game.
func (n *DataNormalizer) NormalizeUpcoming(g models.UpcomingGame) models.UpcomingGame {
	g.HomeTeam = n.canon.Canonical(g.HomeTeam)
	g.AwayTeam = n.canon.Canonical(g.AwayTeam)
	if g.Favorite != "" {
		g.Favorite = n.canon.Canonical(g.Favorite)
	}
	g.GameDate = calendarDay(g.GameDate)
	return g
}

// NormalizeGameEvents applies NormalizeGameEvent to every event.
func (n *DataNormalizer) NormalizeGameEvents(events []models.GameEvent) []models.GameEvent {
	out := make([]models.GameEvent, len(events))
	for i := range events {
		out[i] = n.NormalizeGameEvent(events[i])
	}
	return out
}

// NormalizeLines applies NormalizeLine to every record.
func (n *DataNormalizer) NormalizeLines(lines []models.LineOutcomeRecord) []models.LineOutcomeRecord {
	out := make([]models.LineOutcomeRecord, len(lines))
	for i := range lines {
		out[i] = n.NormalizeLine(lines[i])
	}
	return out
}

// NormalizeSlate applies NormalizeUpcoming to every game.
func (n *DataNormalizer) NormalizeSlate(games []models.UpcomingGame) []models.UpcomingGame {
	out := make([]models.UpcomingGame, len(games))
	for i := range games {
		out[i] = n.NormalizeUpcoming(games[i])
	}
	return out
}

// sanitizeName collapses runs of whitespace.
func sanitizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}

func calendarDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
