package analytics

import (
	"github.com/yourusername/hoopslines/internal/models"
)

// FavoriteSplit returns each team's cover record as favorite, home versus away.
func (a *Analyzer) FavoriteSplit(spec SortSpec) ([]models.RoleSplit, error) {
	return a.roleSplit(models.RoleFavorite, ReportFavoriteSplit, spec)
}

// UnderdogSplit returns each team's cover record as underdog, home versus away.
func (a *Analyzer) UnderdogSplit(spec SortSpec) ([]models.RoleSplit, error) {
	return a.roleSplit(models.RoleUnderdog, ReportUnderdogSplit, spec)
}

func (a *Analyzer) roleSplit(role models.Role, report Report, spec SortSpec) ([]models.RoleSplit, error) {
	byTeam := make(map[string]*models.RoleSplit)
	for i := range a.records {
		r := &a.records[i]
		team, covered := r.Favorite, r.FavoriteCovered
		if role == models.RoleUnderdog {
			team, covered = r.Underdog, r.UnderdogCovered
		}

		s, ok := byTeam[team]
		if !ok {
			s = &models.RoleSplit{Team: team, Role: role}
			byTeam[team] = s
		}
		venue := &s.Away
		if team == r.HomeTeam {
			venue = &s.Home
		}
		venue.Total++
		if covered {
			venue.Covered++
		}
	}

	out := make([]models.RoleSplit, 0, len(byTeam))
	for _, s := range byTeam {
		s.Away.HitPercentage = pct(s.Away.Covered, s.Away.Total)
		s.Home.HitPercentage = pct(s.Home.Covered, s.Home.Total)
		out = append(out, *s)
	}

	err := sortRows(out, spec, report, models.RoleSplitColumns(role),
		func(s *models.RoleSplit) string { return s.Team },
		(*models.RoleSplit).Record)
	if err != nil {
		return nil, err
	}
	return out, nil
}
