package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/models"
)

// CSVGameLogSource reads game logs exported to a delimited file with the
// same column names as the stats API.
type CSVGameLogSource struct {
	name    string
	path    string
	enabled bool
	logger  logrus.FieldLogger
}

// NewCSVGameLogSource creates a source reading path.
func NewCSVGameLogSource(name, path string, enabled bool, logger logrus.FieldLogger) *CSVGameLogSource {
	return &CSVGameLogSource{name: name, path: path, enabled: enabled, logger: logger.WithField("source", name)}
}

// Name returns the name of the data source
func (s *CSVGameLogSource) Name() string { return s.name }

// IsEnabled returns whether this data source is currently enabled
func (s *CSVGameLogSource) IsEnabled() bool { return s.enabled }

// FetchGameLogs returns the rows of the file that belong to season.
func (s *CSVGameLogSource) FetchGameLogs(ctx context.Context, season int) ([]models.GameEvent, error) {
	if !s.enabled {
		return nil, NewDataSourceError(s.name, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeNotFound, "failed to open file", err)
	}
	defer f.Close()

	events, err := ReadGameLogCSV(ctx, s.name, f, s.logger)
	if err != nil {
		return nil, err
	}
	out := events[:0]
	for _, ev := range events {
		if ev.Season == season {
			out = append(out, ev)
		}
	}
	return out, nil
}

// ReadGameLogCSV parses a delimited game log. The first record is the header.
func ReadGameLogCSV(ctx context.Context, name string, r io.Reader, logger logrus.FieldLogger) ([]models.GameEvent, error) {
	t, err := readCSVTable(ctx, name, r, gameLogColumns)
	if err != nil {
		return nil, err
	}
	events, skipped := parseGameLog(t, nil, logger)
	logger.WithFields(logrus.Fields{"events": len(events), "skipped": skipped}).Info("Read game log file")
	return events, nil
}

// Columns of a settled lines file. They match the stored line table; the
// underdog and the cover and total flags are optional.
const (
	colLineGameDate  = "GAME_DATE"
	colLineHome      = "HOME_TEAM"
	colLineAway      = "AWAY_TEAM"
	colLineFavorite  = "FAVORITE"
	colLineUnderdog  = "UNDERDOG"
	colLineSpread    = "LINE"
	colLineOverUnder = "OVER_UNDER"
	colLineHomeScore = "HOME_SCORE"
	colLineAwayScore = "AWAY_SCORE"
	colLineFavCover  = "FAVORITE_COVERED"
	colLineDogCover  = "UNDERDOG_COVERED"
	colLineOverHit   = "OVER_HIT"
	colLineUnderHit  = "UNDER_HIT"
)

var lineFileColumns = []string{
	colLineGameDate, colLineHome, colLineAway, colLineFavorite,
	colLineSpread, colLineOverUnder, colLineHomeScore, colLineAwayScore,
}

// CSVLineSource reads settled lines exported to a delimited file. It has no
// upcoming slate.
type CSVLineSource struct {
	name    string
	path    string
	enabled bool
	logger  logrus.FieldLogger
}

// NewCSVLineSource creates a source reading path.
func NewCSVLineSource(name, path string, enabled bool, logger logrus.FieldLogger) *CSVLineSource {
	return &CSVLineSource{name: name, path: path, enabled: enabled, logger: logger.WithField("source", name)}
}

// Name returns the name of the data source
func (s *CSVLineSource) Name() string { return s.name }

// IsEnabled returns whether this data source is currently enabled
func (s *CSVLineSource) IsEnabled() bool { return s.enabled }

// FetchLines returns every settled line in the file.
func (s *CSVLineSource) FetchLines(ctx context.Context) ([]models.LineOutcomeRecord, error) {
	if !s.enabled {
		return nil, NewDataSourceError(s.name, ErrCodeDisabled, dataSourceDisabledMsg, nil)
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewDataSourceError(s.name, ErrCodeNotFound, "failed to open file", err)
	}
	defer f.Close()
	return ReadLinesCSV(ctx, s.name, f, s.logger)
}

// FetchUpcoming always fails with a permanent error so callers move on to a
// live source.
func (s *CSVLineSource) FetchUpcoming(ctx context.Context) ([]models.UpcomingGame, error) {
	return nil, NewDataSourceError(s.name, ErrCodeNotFound, "file source has no upcoming slate", nil)
}

// ReadLinesCSV parses a delimited file of settled lines. Rows missing a team,
// a date or a final score are skipped and logged. Cover and total flags are
// settled from the scores unless all four are present.
func ReadLinesCSV(ctx context.Context, name string, r io.Reader, logger logrus.FieldLogger) ([]models.LineOutcomeRecord, error) {
	t, err := readCSVTable(ctx, name, r, lineFileColumns)
	if err != nil {
		return nil, err
	}

	out := make([]models.LineOutcomeRecord, 0, len(t.rows))
	skipped := 0
	for i, row := range t.rows {
		line, err := lineFromRow(t, row)
		if err == nil {
			var rec models.LineOutcomeRecord
			if rec, err = line.toRecord(); err == nil {
				rec.Underdog = t.get(row, colLineUnderdog)
				out = append(out, rec)
				continue
			}
		}
		skipped++
		logger.WithError(err).WithField("row", i+2).Warn("Skipping line row")
	}
	logger.WithFields(logrus.Fields{"lines": len(out), "skipped": skipped}).Info("Read lines file")
	return out, nil
}

func lineFromRow(t *table, row []string) (RotowireLine, error) {
	line := RotowireLine{
		GameDate: t.get(row, colLineGameDate),
		HomeTeam: t.get(row, colLineHome),
		AwayTeam: t.get(row, colLineAway),
		Favorite: t.get(row, colLineFavorite),
	}
	decimals := []struct {
		col string
		dst *flexDecimal
	}{
		{colLineSpread, &line.Line},
		{colLineOverUnder, &line.OverUnder},
		{colLineHomeScore, &line.HomeScore},
		{colLineAwayScore, &line.AwayScore},
	}
	for _, d := range decimals {
		if err := d.dst.UnmarshalJSON([]byte(t.get(row, d.col))); err != nil {
			return line, fmt.Errorf("column %s: %w", d.col, err)
		}
	}
	flags := []struct {
		col string
		dst *flexBool
	}{
		{colLineFavCover, &line.FavoriteCovered},
		{colLineDogCover, &line.UnderdogCovered},
		{colLineOverHit, &line.OverHit},
		{colLineUnderHit, &line.UnderHit},
	}
	for _, f := range flags {
		if err := f.dst.UnmarshalJSON([]byte(t.get(row, f.col))); err != nil {
			return line, fmt.Errorf("column %s: %w", f.col, err)
		}
	}
	return line, nil
}

// readCSVTable reads a delimited file whose first record is the header and
// checks the required columns are present.
func readCSVTable(ctx context.Context, name string, r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, NewDataSourceError(name, ErrCodeInvalidData, "failed to read header", err)
	}
	for i := range header {
		header[i] = strings.TrimPrefix(header[i], "\ufeff")
	}

	var rows [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, NewDataSourceError(name, ErrCodeInvalidData, "failed to read row", err)
		}
		rows = append(rows, rec)
	}
	return newTable(name, header, rows, required)
}
