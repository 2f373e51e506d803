package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/teams"
)

func TestValidateGameEvent(t *testing.T) {
	v := NewDataValidator(quietLogger())
	valid := event(1, "BOS", "NYK", true, day(11, 1), "G1", 20, true)

	tests := []struct {
		name       string
		mutate     func(e *models.GameEvent)
		shouldHave string
	}{
		{"valid", func(*models.GameEvent) {}, ""},
		{"missing entity", func(e *models.GameEvent) { e.EntityID = 0 }, "EntityID failed required"},
		{"same teams", func(e *models.GameEvent) { e.Opponent = "BOS" }, "Team failed nefield=Opponent"},
		{"negative points", func(e *models.GameEvent) { e.Points = -2 }, "Points failed gte=0"},
		{"missing date", func(e *models.GameEvent) { e.GameDate = time.Time{} }, "GameDate failed required"},
		{"date outside season", func(e *models.GameEvent) { e.GameDate = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC) }, "outside season 2023"},
		{"implausible height", func(e *models.GameEvent) { e.HeightInches = models.Float64Ptr(12) }, "height 12.0 inches out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			problems := v.ValidateGameEvent(&e)
			if tt.shouldHave == "" {
				assert.Empty(t, problems)
				return
			}
			assert.Contains(t, problems, tt.shouldHave, "problems: %v", problems)
		})
	}
}

func TestValidateLine(t *testing.T) {
	v := NewDataValidator(quietLogger())

	l := line(day(11, 1), "BOS", "NYK", "BOS", 110, 100)
	assert.Empty(t, v.ValidateLine(&l))

	l.TotalPoints = 5
	l.OverUnder = decimal.NewFromInt(-1)
	problems := v.ValidateLine(&l)
	assert.Contains(t, problems, "total_points 5 does not equal 110+100")
	assert.Contains(t, problems, "over_under cannot be negative")

	missing := models.LineOutcomeRecord{HomeTeam: "BOS", AwayTeam: "NYK"}
	assert.Contains(t, v.ValidateLine(&missing), "Favorite failed required")
}

func TestValidateUpcoming(t *testing.T) {
	v := NewDataValidator(quietLogger())

	g := models.UpcomingGame{GameDate: day(11, 5), HomeTeam: "BOS", AwayTeam: "NYK", Favorite: "MIA"}
	assert.Contains(t, v.ValidateUpcoming(&g), "favorite MIA is not playing")

	g.Favorite = ""
	assert.Empty(t, v.ValidateUpcoming(&g))

	g.GameDate = time.Time{}
	assert.Contains(t, v.ValidateUpcoming(&g), "game_date is required")
}

func TestFilterGameEvents(t *testing.T) {
	v := NewDataValidator(quietLogger())
	events := []models.GameEvent{
		event(1, "BOS", "NYK", true, day(11, 1), "G1", 20, true),
		event(0, "BOS", "NYK", true, day(11, 1), "G1", 20, true),
		event(2, "BOS", "NYK", true, day(11, 1), "G1", 12, true),
	}

	valid, rejected := v.FilterGameEvents(events)
	assert.Equal(t, 1, rejected)
	assert.Len(t, valid, 2)
	assert.Equal(t, int64(2), valid[1].EntityID)
	assert.Equal(t, int64(0), events[1].EntityID, "input left untouched")
}

func TestDataNormalizer(t *testing.T) {
	n := NewDataNormalizer(teams.New(map[string]string{"BOSTON": "BOS"}), quietLogger())

	e := n.NormalizeGameEvent(models.GameEvent{
		Team:       "brk",
		Opponent:   "Boston",
		EntityName: "  Jayson   Tatum ",
		GameDate:   time.Date(2023, 11, 1, 23, 30, 0, 0, time.UTC),
	})
	assert.Equal(t, "BKN", e.Team)
	assert.Equal(t, "BOS", e.Opponent)
	assert.Equal(t, "Jayson Tatum", e.EntityName)
	assert.Equal(t, day(11, 1), e.GameDate)

	l := n.NormalizeLine(models.LineOutcomeRecord{HomeTeam: "NO", AwayTeam: "SA", Favorite: "SA", Underdog: "stale"})
	assert.Equal(t, "NOP", l.HomeTeam)
	assert.Equal(t, "SAS", l.Favorite)
	assert.Equal(t, "NOP", l.Underdog)

	orphan := n.NormalizeLine(models.LineOutcomeRecord{HomeTeam: "BOS", AwayTeam: "NYK", Favorite: "MIA", Underdog: "NYK"})
	assert.Empty(t, orphan.Underdog)

	g := n.NormalizeUpcoming(models.UpcomingGame{HomeTeam: "UTAH", AwayTeam: "WSH", Favorite: "utah"})
	assert.Equal(t, "UTA", g.HomeTeam)
	assert.Equal(t, "WAS", g.AwayTeam)
	assert.Equal(t, "UTA", g.Favorite)
	assert.True(t, g.GameDate.IsZero())
}

func TestIngestionStats(t *testing.T) {
	s := NewIngestionStats()
	s.RecordFetched(10)
	s.RecordRejected(2)
	s.RecordStored(8)
	s.RecordFailure()
	s.Finish()

	assert.Contains(t, s.String(), "Fetched=10, Accepted=80.0%, Stored=8, Rejected=2, Failed=1")
}
