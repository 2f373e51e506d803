package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/models"
)

// StatsGameLogClient implements GameLogSource against the league stats API.
type StatsGameLogClient struct {
	name       string
	httpClient *RateLimitedHTTPClient
	baseURL    string
	enabled    bool
	logger     logrus.FieldLogger
}

// NewStatsGameLogClient creates a game log client rooted at baseURL.
func NewStatsGameLogClient(name string, httpClient *RateLimitedHTTPClient, baseURL string, enabled bool, logger logrus.FieldLogger) *StatsGameLogClient {
	return &StatsGameLogClient{
		name:       name,
		httpClient: httpClient,
		baseURL:    baseURL,
		enabled:    enabled,
		logger:     logger.WithField("source", name),
	}
}

// Name returns the name of the data source
func (c *StatsGameLogClient) Name() string { return c.name }

// IsEnabled returns whether this data source is currently enabled
func (c *StatsGameLogClient) IsEnabled() bool { return c.enabled }

// SeasonParam formats a season start year as the API expects, e.g. 2023 as
// "2023-24".
func SeasonParam(season int) string {
	return fmt.Sprintf("%d-%02d", season, (season+1)%100)
}

func statsHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "application/json")
	h.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) hoopslines")
	h.Set("Referer", "https://www.nba.com/")
	h.Set("Origin", "https://www.nba.com")
	return h
}

// FetchGameLogs retrieves every player game row of the season. Heights come
// from the player index; if it cannot be fetched heights are left null.
// Rows that fail to parse are skipped and logged.
func (c *StatsGameLogClient) FetchGameLogs(ctx context.Context, season int) ([]models.GameEvent, error) {
	if !c.enabled {
		return nil, NewDataSourceError(c.name, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}

	q := url.Values{}
	q.Set("Season", SeasonParam(season))
	q.Set("SeasonType", "Regular Season")
	q.Set("PlayerOrTeam", "P")
	q.Set("LeagueID", "00")
	q.Set("Direction", "ASC")
	q.Set("Sorter", "DATE")

	body, err := c.httpClient.GetBody(ctx, c.name, c.baseURL+"/leaguegamelog?"+q.Encode(), statsHeaders())
	if err != nil {
		return nil, err
	}
	t, err := decodeResultSet(body, gameLogColumns)
	if err != nil {
		return nil, wrapDecodeError(c.name, err)
	}

	heights, err := c.fetchHeights(ctx, season)
	if err != nil {
		c.logger.WithError(err).Warn("Player heights unavailable, continuing without them")
	}

	events, skipped := parseGameLog(t, heights, c.logger)
	c.logger.WithFields(logrus.Fields{
		"season":  season,
		"rows":    len(t.rows),
		"events":  len(events),
		"skipped": skipped,
	}).Info("Fetched game logs")
	return events, nil
}

func (c *StatsGameLogClient) fetchHeights(ctx context.Context, season int) (map[int64]*float64, error) {
	q := url.Values{}
	q.Set("Season", SeasonParam(season))
	q.Set("LeagueID", "00")

	body, err := c.httpClient.GetBody(ctx, c.name, c.baseURL+"/playerindex?"+q.Encode(), statsHeaders())
	if err != nil {
		return nil, err
	}
	t, err := decodeResultSet(body, playerIndexColumns)
	if err != nil {
		return nil, wrapDecodeError(c.name, err)
	}

	heights := make(map[int64]*float64, len(t.rows))
	for _, row := range t.rows {
		id, err := strconv.ParseInt(t.get(row, colPersonID), 10, 64)
		if err != nil {
			continue
		}
		h, err := models.ParseHeightInches(t.get(row, colHeight))
		if err != nil {
			continue
		}
		heights[id] = h
	}
	return heights, nil
}

// parseGameLog converts table rows, skipping rows that fail to parse.
func parseGameLog(t *table, heights map[int64]*float64, logger logrus.FieldLogger) ([]models.GameEvent, int) {
	events := make([]models.GameEvent, 0, len(t.rows))
	skipped := 0
	for i, row := range t.rows {
		ev, err := parseGameLogRow(t, row, heights)
		if err != nil {
			skipped++
			logger.WithError(err).WithField("row", i).Warn("Skipping malformed game log row")
			continue
		}
		ev.Seq = int64(i)
		events = append(events, ev)
	}
	return events, skipped
}

func wrapDecodeError(source string, err error) error {
	var drift *models.SchemaDriftError
	if errors.As(err, &drift) {
		return err
	}
	return NewDataSourceError(source, ErrCodeInvalidData, "failed to parse response", err)
}

const dataSourceDisabledMsg = "data source is disabled"
