package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/hoopslines/internal/config"
)

// SourceType represents the type of data source
type SourceType string

const (
	// GameLogSourceType is the stats API game log
	GameLogSourceType SourceType = "gamelog"
	// LinesSourceType is the betting lines feed
	LinesSourceType SourceType = "lines"
	// CSVSourceType is a game log file
	CSVSourceType SourceType = "csv"
	// LinesCSVSourceType is a file of settled lines
	LinesCSVSourceType SourceType = "lines_csv"
)

// Sources holds the enabled sources by kind.
type Sources struct {
	GameLogs []GameLogSource
	Lines    []LineSource
	clients  []*RateLimitedHTTPClient
}

// Close releases the HTTP clients of every source.
func (s *Sources) Close() error {
	for _, c := range s.clients {
		c.Close()
	}
	return nil
}

// Factory creates data sources based on configuration
type Factory struct {
	logger logrus.FieldLogger
}

// NewFactory creates a new data source factory
func NewFactory(logger logrus.FieldLogger) *Factory {
	return &Factory{logger: logger}
}

// NewSources creates all enabled data sources from configuration. Each HTTP
// source gets its own client so rate limits apply per provider.
func (f *Factory) NewSources(dataCfg config.DataIngestionConfig) (*Sources, error) {
	out := &Sources{}
	for _, srcCfg := range dataCfg.Sources {
		if !srcCfg.Enabled {
			f.logger.WithField("source", srcCfg.Name).Info("Skipping disabled data source")
			continue
		}

		switch SourceType(srcCfg.Type) {
		case GameLogSourceType:
			client := NewRateLimitedHTTPClient(HTTPClientConfigFor(srcCfg), f.logger.WithField("source", srcCfg.Name))
			out.clients = append(out.clients, client)
			out.GameLogs = append(out.GameLogs, NewStatsGameLogClient(srcCfg.Name, client, srcCfg.URL, true, f.logger))
		case LinesSourceType:
			client := NewRateLimitedHTTPClient(HTTPClientConfigFor(srcCfg), f.logger.WithField("source", srcCfg.Name))
			out.clients = append(out.clients, client)
			out.Lines = append(out.Lines, NewRotowireLinesClient(srcCfg.Name, client, srcCfg.URL, true, f.logger))
		case CSVSourceType:
			out.GameLogs = append(out.GameLogs, NewCSVGameLogSource(srcCfg.Name, srcCfg.Path, true, f.logger))
		case LinesCSVSourceType:
			out.Lines = append(out.Lines, NewCSVLineSource(srcCfg.Name, srcCfg.Path, true, f.logger))
		default:
			return nil, fmt.Errorf("unknown data source type %q for %s", srcCfg.Type, srcCfg.Name)
		}
		f.logger.WithFields(logrus.Fields{"source": srcCfg.Name, "type": srcCfg.Type}).Info("Created data source")
	}

	if len(out.GameLogs) == 0 && len(out.Lines) == 0 {
		return nil, ErrNoSources
	}
	return out, nil
}
