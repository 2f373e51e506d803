package datasource

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/hoopslines/internal/models"
)

// resultSetPayload is the tabular envelope used by the stats endpoints.
type resultSetPayload struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string              `json:"name"`
	Headers []string            `json:"headers"`
	RowSet  [][]json.RawMessage `json:"rowSet"`
}

// table is a header-indexed view over raw rows.
type table struct {
	name  string
	index map[string]int
	rows  [][]string
}

// decodeResultSet returns the first result set of body as a table and checks
// it carries the required columns.
func decodeResultSet(body []byte, required []string) (*table, error) {
	var p resultSetPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if len(p.ResultSets) == 0 {
		return nil, fmt.Errorf("payload has no result sets")
	}
	rs := p.ResultSets[0]
	rows := make([][]string, len(rs.RowSet))
	for i, raw := range rs.RowSet {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = cellString(cell)
		}
		rows[i] = row
	}
	return newTable(rs.Name, rs.Headers, rows, required)
}

func newTable(name string, headers []string, rows [][]string, required []string) (*table, error) {
	if err := models.CheckColumns(name, headers, required); err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return &table{name: name, index: idx, rows: rows}, nil
}

// cellString renders a JSON scalar as text. Null becomes "".
func cellString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	if strings.HasPrefix(s, `"`) {
		var out string
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
	}
	return s
}

func (t *table) get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Columns of the stats player game log.
const (
	colSeasonID   = "SEASON_ID"
	colPlayerID   = "PLAYER_ID"
	colPlayerName = "PLAYER_NAME"
	colGameID     = "GAME_ID"
	colGameDate   = "GAME_DATE"
	colMatchup    = "MATCHUP"
	colWL         = "WL"
	colPoints     = "PTS"
	colPersonID   = "PERSON_ID"
	colHeight     = "HEIGHT"
)

var gameLogColumns = []string{colSeasonID, colPlayerID, colGameID, colGameDate, colMatchup, colWL, colPoints}

var playerIndexColumns = []string{colPersonID, colHeight}

// gameDateLayouts are the date formats seen in game logs.
var gameDateLayouts = []string{models.DateLayout, "Jan 02, 2006", "2006-01-02T15:04:05"}

// ParseGameDate accepts ISO dates and the "OCT 25, 2023" form.
func ParseGameDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range gameDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid game date %q", s)
}

// ParseMatchup splits "BOS vs. NYK" or "BOS @ NYK" into team, opponent and
// whether team was at home.
func ParseMatchup(s string) (team, opponent string, home bool, err error) {
	parts := strings.Fields(s)
	if len(parts) != 3 {
		return "", "", false, fmt.Errorf("invalid matchup %q", s)
	}
	switch strings.ToLower(parts[1]) {
	case "@":
		home = false
	case "vs.", "vs":
		home = true
	default:
		return "", "", false, fmt.Errorf("invalid matchup %q", s)
	}
	return parts[0], parts[2], home, nil
}

// ParseSeasonID converts a season id such as "22023" to its start year.
// Plain four digit years are accepted as is.
func ParseSeasonID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) == 5 {
		s = s[1:]
	}
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid season id %q", s)
	}
	return strconv.Atoi(s)
}

// parseGameLogRow converts one game log row. heights maps entity id to
// height in inches and may be nil.
func parseGameLogRow(t *table, row []string, heights map[int64]*float64) (models.GameEvent, error) {
	var ev models.GameEvent
	var err error

	if ev.Season, err = ParseSeasonID(t.get(row, colSeasonID)); err != nil {
		return ev, err
	}
	if ev.EntityID, err = strconv.ParseInt(t.get(row, colPlayerID), 10, 64); err != nil {
		return ev, fmt.Errorf("invalid %s: %w", colPlayerID, err)
	}
	ev.EntityName = t.get(row, colPlayerName)
	ev.GameID = t.get(row, colGameID)
	if ev.GameDate, err = ParseGameDate(t.get(row, colGameDate)); err != nil {
		return ev, err
	}
	if ev.Team, ev.Opponent, ev.IsHome, err = ParseMatchup(t.get(row, colMatchup)); err != nil {
		return ev, err
	}
	ev.Win = strings.EqualFold(t.get(row, colWL), "W")

	pts := t.get(row, colPoints)
	if pts != "" {
		f, err := strconv.ParseFloat(pts, 64)
		if err != nil {
			return ev, fmt.Errorf("invalid %s %q: %w", colPoints, pts, err)
		}
		ev.Points = int(f)
	}

	if h, ok := heights[ev.EntityID]; ok {
		ev.HeightInches = h
	} else if _, ok := t.index[colHeight]; ok {
		if ev.HeightInches, err = models.ParseHeightInches(t.get(row, colHeight)); err != nil {
			return ev, err
		}
	}
	return ev, nil
}
