package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/hoopslines/internal/models"
	"github.com/yourusername/hoopslines/internal/predictor"
	"github.com/yourusername/hoopslines/internal/service"
)

func refreshCmd() *cobra.Command {
	var season int
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch a season of game logs and the betting lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			if season == 0 {
				season = svc.Config.DataIngestion.Season
			}
			run, err := svc.Ingestion.Refresh(cmd.Context(), season)
			if run != nil {
				fmt.Fprintln(cmd.OutOrStdout(), run.String())
			}
			return err
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season start year (default from config)")
	return cmd
}

func featuresCmd() *cobra.Command {
	var (
		window  int
		mode    string
		workers int
		publish bool
	)
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Rebuild the rolling, game and training feature tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := service.FeatureOptionsFromConfig(svc.Config.Features)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("window") {
				opts.Window = window
			}
			if cmd.Flags().Changed("mode") {
				if opts.Mode, err = models.ParseWindowMode(mode); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("workers") {
				opts.Workers = workers
			}

			run, err := svc.Features.Run(cmd.Context(), opts)
			if run != nil {
				fmt.Fprintln(cmd.OutOrStdout(), run.String())
			}
			if err != nil {
				return err
			}
			if publish {
				run, err = svc.Analytics.Publish(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), run.String())
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&window, "window", 0, "Rolling window size (default from config)")
	cmd.Flags().StringVar(&mode, "mode", "", "historical or as_of (default from config)")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel partitions (default from config)")
	cmd.Flags().BoolVar(&publish, "publish", false, "Also republish the analytics tables")
	return cmd
}

func predictCmd() *cobra.Command {
	var (
		season     int
		rosterFile string
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the total and margin of today's slate",
		RunE: func(cmd *cobra.Command, args []string) error {
			if svc.Predictor == nil {
				return predictor.ErrPredictorDisabled
			}
			if season == 0 {
				season = svc.Config.DataIngestion.Season
			}
			roster, err := loadRoster(rosterFile)
			if err != nil {
				return err
			}

			slate, err := svc.Ingestion.FetchSlate(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch slate: %w", err)
			}
			preds, run, err := svc.Prediction.Predict(cmd.Context(), season, slate, roster)
			if err != nil {
				return err
			}

			if err := writePredictions(cmd.OutOrStdout(), slate, preds); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), run.String())
			return nil
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "Season whose games feed the features (default from config)")
	cmd.Flags().StringVar(&rosterFile, "roster", "", `JSON file of active entity ids per team, e.g. {"BOS":[1628369]}`)
	return cmd
}

// loadRoster reads an active roster file. An empty path means every entity
// counts as active.
func loadRoster(path string) (service.ActiveRoster, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}
	var roster service.ActiveRoster
	if err := json.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}
	return roster, nil
}

type predictionRow struct {
	pred models.GamePrediction
	edge predictor.Edge
}

// matchEdges pairs each prediction with the edge against its slate game.
func matchEdges(slate []models.UpcomingGame, preds []models.GamePrediction) []predictionRow {
	games := make(map[models.GameKey]*models.UpcomingGame, len(slate))
	for i := range slate {
		games[slate[i].Key()] = &slate[i]
	}
	rows := make([]predictionRow, 0, len(preds))
	for _, p := range preds {
		row := predictionRow{pred: p}
		if g, ok := games[models.NewGameKey(p.GameDate, p.HomeTeam, p.AwayTeam)]; ok {
			row.edge = predictor.EdgeOf(g, predictor.Prediction{PointTotal: p.PointTotal, Margin: p.Margin})
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].edge.Total.Abs().GreaterThan(rows[j].edge.Total.Abs())
	})
	return rows
}

func writePredictions(w io.Writer, slate []models.UpcomingGame, preds []models.GamePrediction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tHOME\tAWAY\tLINE\tO/U\tPRED_TOTAL\tPRED_MARGIN\tSPREAD_EDGE\tTOTAL_EDGE\tPICK")
	for _, r := range matchEdges(slate, preds) {
		pick := "UNDER"
		if r.pred.PicksOver() {
			pick = "OVER"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.1f\t%.1f\t%s\t%s\t%s\n",
			r.pred.GameDate.Format(models.DateLayout),
			r.pred.HomeTeam, r.pred.AwayTeam,
			r.pred.Line.String(), r.pred.OverUnder.String(),
			r.pred.PointTotal, r.pred.Margin,
			r.edge.Spread.String(), r.edge.Total.String(),
			pick,
		)
	}
	return tw.Flush()
}
