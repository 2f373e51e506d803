package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/models"
)

// earliestGame bounds plausible game dates.
var earliestGame = time.Date(1946, time.November, 1, 0, 0, 0, 0, time.UTC)

// DataValidator validates fetched records before they are stored
type DataValidator struct {
	validate *validator.Validate
	logger   logrus.FieldLogger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger logrus.FieldLogger) *DataValidator {
	return &DataValidator{
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateGameEvent checks an entity game row for required fields and
// constraints. It returns one message per problem.
func (v *DataValidator) ValidateGameEvent(e *models.GameEvent) []string {
	problems := v.structErrors(e)
	if !e.GameDate.IsZero() && e.GameDate.Before(earliestGame) {
		problems = append(problems, fmt.Sprintf("game_date %s predates the league", e.GameDate.Format(models.DateLayout)))
	}
	if e.Season > 0 && !e.GameDate.IsZero() {
		if y := e.GameDate.Year(); y != e.Season && y != e.Season+1 {
			problems = append(problems, fmt.Sprintf("game_date %s outside season %d", e.GameDate.Format(models.DateLayout), e.Season))
		}
	}
	if e.HeightInches != nil && (*e.HeightInches < 60 || *e.HeightInches > 96) {
		problems = append(problems, fmt.Sprintf("height %.1f inches out of range", *e.HeightInches))
	}
	return problems
}

// ValidateLine checks a settled line record.
func (v *DataValidator) ValidateLine(l *models.LineOutcomeRecord) []string {
	problems := v.structErrors(l)
	if l.TotalPoints != l.HomeScore+l.AwayScore {
		problems = append(problems, fmt.Sprintf("total_points %d does not equal %d+%d", l.TotalPoints, l.HomeScore, l.AwayScore))
	}
	if l.OverUnder.IsNegative() {
		problems = append(problems, "over_under cannot be negative")
	}
	return problems
}

// ValidateUpcoming checks a game of the upcoming slate.
func (v *DataValidator) ValidateUpcoming(g *models.UpcomingGame) []string {
	problems := v.structErrors(g)
	if g.GameDate.IsZero() {
		problems = append(problems, "game_date is required")
	}
	if g.Favorite != "" && g.Favorite != g.HomeTeam && g.Favorite != g.AwayTeam {
		problems = append(problems, fmt.Sprintf("favorite %s is not playing", g.Favorite))
	}
	return problems
}

// FilterGameEvents drops invalid events and logs each rejection.
func (v *DataValidator) FilterGameEvents(events []models.GameEvent) ([]models.GameEvent, int) {
	out := events[:0:0]
	rejected := 0
	for i := range events {
		if problems := v.ValidateGameEvent(&events[i]); len(problems) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"entity_id": events[i].EntityID,
				"game_id":   events[i].GameID,
				"problems":  problems,
			}).Warn("Rejected game event")
			continue
		}
		out = append(out, events[i])
	}
	return out, rejected
}

// FilterLines drops invalid line records and logs each rejection.
func (v *DataValidator) FilterLines(lines []models.LineOutcomeRecord) ([]models.LineOutcomeRecord, int) {
	out := lines[:0:0]
	rejected := 0
	for i := range lines {
		if problems := v.ValidateLine(&lines[i]); len(problems) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"game":     lines[i].Key().String(),
				"problems": problems,
			}).Warn("Rejected line record")
			continue
		}
		out = append(out, lines[i])
	}
	return out, rejected
}

// FilterUpcoming drops invalid slate games and logs each rejection.
func (v *DataValidator) FilterUpcoming(games []models.UpcomingGame) ([]models.UpcomingGame, int) {
	out := games[:0:0]
	rejected := 0
	for i := range games {
		if problems := v.ValidateUpcoming(&games[i]); len(problems) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"home_team": games[i].HomeTeam,
				"away_team": games[i].AwayTeam,
				"problems":  problems,
			}).Warn("Rejected upcoming game")
			continue
		}
		out = append(out, games[i])
	}
	return out, rejected
}

func (v *DataValidator) structErrors(s any) []string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			problems = append(problems, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return problems
}
