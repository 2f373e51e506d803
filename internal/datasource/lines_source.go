package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/models"
)

// RotowireLinesClient implements LineSource for the betting tables feed.
type RotowireLinesClient struct {
	name       string
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     logrus.FieldLogger
}

// RotowireLine is one settled game from the archive table.
type RotowireLine struct {
	GameDate        string      `json:"game_date"`
	HomeTeam        string      `json:"home_team_abbrev"`
	AwayTeam        string      `json:"visit_team_abbrev"`
	Favorite        string      `json:"favorite"`
	Line            flexDecimal `json:"line"`
	OverUnder       flexDecimal `json:"game_over_under"`
	HomeScore       flexDecimal `json:"home_team_score"`
	AwayScore       flexDecimal `json:"visit_team_score"`
	FavoriteCovered flexBool    `json:"favorite_covered"`
	UnderdogCovered flexBool    `json:"underdog_covered"`
	OverHit         flexBool    `json:"over_hit"`
	UnderHit        flexBool    `json:"under_hit"`
}

// RotowireGameLine is one team's row of the current slate. Each game has a
// home and an away row sharing a game id.
type RotowireGameLine struct {
	GameID     string      `json:"gameID"`
	GameDate   string      `json:"gameDate"`
	Team       string      `json:"abbr"`
	Opponent   string      `json:"oppAbbr"`
	HomeAway   string      `json:"homeAway"`
	BestSpread flexDecimal `json:"best_spread"`
	BestOU     flexDecimal `json:"best_ou"`
}

// NewRotowireLinesClient creates a lines client rooted at baseURL.
func NewRotowireLinesClient(name string, httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger logrus.FieldLogger) *RotowireLinesClient {
	return &RotowireLinesClient{
		name:       name,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		enabled:    enabled,
		logger:     logger.WithField("source", name),
	}
}

// Name returns the name of the data source
func (c *RotowireLinesClient) Name() string { return c.name }

// IsEnabled returns whether this data source is currently enabled
func (c *RotowireLinesClient) IsEnabled() bool { return c.enabled }

func jsonHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	return h
}

// FetchLines retrieves the settled line archive.
func (c *RotowireLinesClient) FetchLines(ctx context.Context) ([]models.LineOutcomeRecord, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.name, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	body, err := c.httpClient.GetBody(ctx, c.name, c.baseURL+"/games-archive.php", jsonHeaders())
	if err != nil {
		return nil, err
	}

	var raw []RotowireLine
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeInvalidData, "failed to parse response", err)
	}

	records := make([]models.LineOutcomeRecord, 0, len(raw))
	skipped := 0
	for i := range raw {
		rec, err := raw[i].toRecord()
		if err != nil {
			skipped++
			c.logger.WithError(err).WithField("row", i).Warn("Skipping malformed line row")
			continue
		}
		records = append(records, rec)
	}
	c.logger.WithFields(logrus.Fields{"records": len(records), "skipped": skipped}).Info("Fetched line archive")
	return records, nil
}

// FetchUpcoming retrieves today's slate with the best available lines.
func (c *RotowireLinesClient) FetchUpcoming(ctx context.Context) ([]models.UpcomingGame, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.name, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	body, err := c.httpClient.GetBody(ctx, c.name, c.baseURL+"/nba-games.php", jsonHeaders())
	if err != nil {
		return nil, err
	}

	var raw []RotowireGameLine
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeInvalidData, "failed to parse response", err)
	}
	games, err := pairGameLines(raw)
	if err != nil {
		return nil, NewDataSourceError(c.name, ErrCodeInvalidData, "inconsistent slate", err)
	}
	return games, nil
}

// toRecord converts an archive row. Cover and total flags missing from the
// row are settled from the scores.
func (r *RotowireLine) toRecord() (models.LineOutcomeRecord, error) {
	var rec models.LineOutcomeRecord
	date, err := ParseGameDate(r.GameDate)
	if err != nil {
		return rec, err
	}
	if !r.HomeScore.Valid || !r.AwayScore.Valid {
		return rec, fmt.Errorf("game %s %s@%s has no final score", r.GameDate, r.AwayTeam, r.HomeTeam)
	}
	rec = models.LineOutcomeRecord{
		GameDate:  date,
		HomeTeam:  strings.TrimSpace(r.HomeTeam),
		AwayTeam:  strings.TrimSpace(r.AwayTeam),
		Favorite:  strings.TrimSpace(r.Favorite),
		Line:      r.Line.Decimal,
		OverUnder: r.OverUnder.Decimal,
		HomeScore: int(r.HomeScore.IntPart()),
		AwayScore: int(r.AwayScore.IntPart()),
	}
	if rec.HomeTeam == "" || rec.AwayTeam == "" {
		return rec, fmt.Errorf("row on %s is missing a team", r.GameDate)
	}

	if r.FavoriteCovered.Set && r.UnderdogCovered.Set && r.OverHit.Set && r.UnderHit.Set {
		rec.TotalPoints = rec.HomeScore + rec.AwayScore
		rec.FavoriteCovered = r.FavoriteCovered.Value
		rec.UnderdogCovered = r.UnderdogCovered.Value
		rec.OverHit = r.OverHit.Value
		rec.UnderHit = r.UnderHit.Value
	} else {
		rec.Settle()
	}
	return rec, nil
}

// pairGameLines folds the per-team slate rows into one game each. The
// favorite is the side with the negative spread; a pick'em has none.
func pairGameLines(rows []RotowireGameLine) ([]models.UpcomingGame, error) {
	type pair struct {
		home, away *RotowireGameLine
	}
	var order []string
	byGame := make(map[string]*pair)
	for i := range rows {
		r := &rows[i]
		p, ok := byGame[r.GameID]
		if !ok {
			p = &pair{}
			byGame[r.GameID] = p
			order = append(order, r.GameID)
		}
		switch strings.ToLower(r.HomeAway) {
		case "home":
			p.home = r
		case "away":
			p.away = r
		default:
			return nil, fmt.Errorf("game %s: unknown venue %q for %s", r.GameID, r.HomeAway, r.Team)
		}
	}

	games := make([]models.UpcomingGame, 0, len(order))
	for _, id := range order {
		p := byGame[id]
		if p.home == nil {
			return nil, fmt.Errorf("game %s has no home row", id)
		}
		date, err := ParseGameDate(p.home.GameDate)
		if err != nil {
			return nil, err
		}
		g := models.UpcomingGame{
			GameDate:  date,
			HomeTeam:  p.home.Team,
			AwayTeam:  p.home.Opponent,
			Line:      p.home.BestSpread.Decimal,
			OverUnder: p.home.BestOU.Decimal,
		}
		switch {
		case p.home.BestSpread.IsNegative():
			g.Favorite = g.HomeTeam
		case p.home.BestSpread.IsPositive():
			g.Favorite = g.AwayTeam
			g.Line = g.Line.Neg()
		}
		games = append(games, g)
	}
	return games, nil
}

// flexDecimal accepts a JSON number, a quoted number, an empty string or null.
type flexDecimal struct {
	decimal.Decimal
	Valid bool
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = flexDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", b, err)
	}
	*f = flexDecimal{Decimal: d, Valid: true}
	return nil
}

// flexBool accepts booleans, 0/1 and their quoted forms. Set is false when
// the value was null or empty.
type flexBool struct {
	Value bool
	Set   bool
}

func (f *flexBool) UnmarshalJSON(b []byte) error {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(string(b)), `"`))
	switch s {
	case "", "null":
		*f = flexBool{}
	case "1", "true", "t", "y", "yes":
		*f = flexBool{Value: true, Set: true}
	case "0", "false", "f", "n", "no":
		*f = flexBool{Value: false, Set: true}
	default:
		return fmt.Errorf("invalid boolean %s", b)
	}
	return nil
}
