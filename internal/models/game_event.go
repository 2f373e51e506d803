package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for join keys and exports.
const DateLayout = "2006-01-02"

// GameEvent is one entity's box-score line for one game.
type GameEvent struct {
	EntityID     int64     `db:"entity_id" json:"entity_id" validate:"required"`
	EntityName   string    `db:"entity_name" json:"entity_name"`
	Team         string    `db:"team" json:"team" validate:"required,nefield=Opponent"`
	Opponent     string    `db:"opponent" json:"opponent" validate:"required"`
	Season       int       `db:"season" json:"season" validate:"required,gt=0"`
	GameID       string    `db:"game_id" json:"game_id" validate:"required"`
	GameDate     time.Time `db:"game_date" json:"game_date" validate:"required"`
	IsHome       bool      `db:"is_home" json:"is_home"`
	Points       int       `db:"points" json:"points" validate:"gte=0"`
	Win          bool      `db:"win" json:"win"`
	HeightInches *float64  `db:"height_inches" json:"height_inches,omitempty"`
	// Seq is the insertion order used to break same-date ties.
	Seq int64 `db:"seq" json:"-"`
}

// GameEventColumns lists the stored columns of a game event, in order.
var GameEventColumns = []string{
	"entity_id", "entity_name", "team", "opponent", "season", "game_id",
	"game_date", "is_home", "points", "win", "height_inches",
}

// HomeTeam returns the home side of the event's game.
func (e *GameEvent) HomeTeam() string {
	if e.IsHome {
		return e.Team
	}
	return e.Opponent
}

// AwayTeam returns the away side of the event's game.
func (e *GameEvent) AwayTeam() string {
	if e.IsHome {
		return e.Opponent
	}
	return e.Team
}

// Side returns which side of the game the entity played on.
func (e *GameEvent) Side() Side {
	if e.IsHome {
		return SideHome
	}
	return SideAway
}

// Key returns the (date, home, away) key of the event's game.
func (e *GameEvent) Key() GameKey {
	return NewGameKey(e.GameDate, e.HomeTeam(), e.AwayTeam())
}

// Record returns the stored column values in GameEventColumns order.
func (e *GameEvent) Record() []any {
	return []any{
		e.EntityID, e.EntityName, e.Team, e.Opponent, e.Season, e.GameID,
		e.GameDate, e.IsHome, e.Points, e.Win, e.HeightInches,
	}
}

// GameKey identifies a game by calendar date and the two team codes.
type GameKey struct {
	Date     string
	HomeTeam string
	AwayTeam string
}

// NewGameKey builds a key from a timestamp, keeping only its calendar date.
func NewGameKey(date time.Time, home, away string) GameKey {
	return GameKey{Date: date.Format(DateLayout), HomeTeam: home, AwayTeam: away}
}

func (k GameKey) String() string {
	return fmt.Sprintf("%s %s vs %s", k.Date, k.HomeTeam, k.AwayTeam)
}

// ParseHeightInches converts a feet-inches string such as "6-7" to inches.
// Empty input yields nil.
func ParseHeightInches(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	feet, inches, ok := strings.Cut(s, "-")
	if !ok {
		return nil, fmt.Errorf("invalid height %q", s)
	}
	f, err := strconv.Atoi(feet)
	if err != nil {
		return nil, fmt.Errorf("invalid height %q: %w", s, err)
	}
	i, err := strconv.Atoi(inches)
	if err != nil {
		return nil, fmt.Errorf("invalid height %q: %w", s, err)
	}
	if f < 0 || i < 0 || i > 11 {
		return nil, fmt.Errorf("invalid height %q", s)
	}
	total := float64(f*12 + i)
	return &total, nil
}

// Float64Ptr returns a pointer to v.
func Float64Ptr(v float64) *float64 {
	return &v
}
