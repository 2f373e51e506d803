package features

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/hoopslines/internal/models"
)

// RollingOptions configures ComputeRolling.
type RollingOptions struct {
	Window int
	Mode   models.WindowMode
	// Workers bounds the number of partitions processed concurrently.
	// Values below two run sequentially.
	Workers int
}

type partitionKey struct {
	season   int
	entityID int64
}

// ComputeRolling annotates every event with rolling point statistics over its
// (season, entity) partition. Partitions are ordered by game date; events on
// the same date keep their input order. The result is in input order.
func ComputeRolling(ctx context.Context, events []models.GameEvent, opts RollingOptions) ([]models.RollingFeatureRow, error) {
	if _, err := Window(nil, opts.Window, opts.Mode); err != nil {
		return nil, err
	}

	partitions := Partition(events)
	out := make([]models.RollingFeatureRow, len(events))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 1 {
		g.SetLimit(opts.Workers)
	} else {
		g.SetLimit(1)
	}

	for _, idx := range partitions {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return rollPartition(events, idx, opts, out)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Partition groups event indices by (season, entity) and orders each group
// by game date, keeping input order for ties. Groups are returned in order of
// first appearance.
func Partition(events []models.GameEvent) [][]int {
	byKey := make(map[partitionKey]int)
	var groups [][]int
	for i := range events {
		key := partitionKey{season: events[i].Season, entityID: events[i].EntityID}
		g, ok := byKey[key]
		if !ok {
			g = len(groups)
			byKey[key] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return events[idx[a]].GameDate.Before(events[idx[b]].GameDate)
		})
	}
	return groups
}

// rollPartition writes only the output slots named by idx.
func rollPartition(events []models.GameEvent, idx []int, opts RollingOptions, out []models.RollingFeatureRow) error {
	points := make([]float64, len(idx))
	for i, ev := range idx {
		points[i] = float64(events[ev].Points)
	}
	windows, err := Window(points, opts.Window, opts.Mode)
	if err != nil {
		return err
	}
	for i, ev := range idx {
		out[ev] = models.RollingFeatureRow{
			GameEvent:  events[ev],
			PointStats: windows[i],
			Window:     opts.Window,
			Mode:       opts.Mode,
		}
	}
	return nil
}

// LatestByEntity returns, for each entity, its most recent row of the given
// season. Rows are expected in the partition order produced by ComputeRolling
// or any order where later games come later.
func LatestByEntity(rows []models.RollingFeatureRow, season int) map[int64]models.RollingFeatureRow {
	latest := make(map[int64]models.RollingFeatureRow)
	for _, r := range rows {
		if r.Season != season {
			continue
		}
		cur, ok := latest[r.EntityID]
		if !ok || !r.GameDate.Before(cur.GameDate) {
			latest[r.EntityID] = r
		}
	}
	return latest
}
