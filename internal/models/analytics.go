package models

// CoverageSummary is one team's record against the spread by role.
type CoverageSummary struct {
	Team                 string   `json:"team"`
	CoveredAsFavorite    int      `json:"covered_as_favorite"`
	TotalTimesFavorite   int      `json:"total_times_favorite"`
	FavHitPercentage     *float64 `json:"fav_hit_percentage"`
	CoveredAsDog         int      `json:"covered_as_dog"`
	TotalTimesUnderdog   int      `json:"total_times_underdog"`
	DogHitPercentage     *float64 `json:"dog_hit_percentage"`
	OverallHitPercentage *float64 `json:"overall_hit_percentage"`
}

// CoverageSummaryColumns lists the coverage summary table columns.
var CoverageSummaryColumns = []string{
	"team", "covered_as_favorite", "total_times_favorite", "fav_hit_percentage",
	"covered_as_dog", "total_times_underdog", "dog_hit_percentage", "overall_hit_percentage",
}

// Record returns the values in CoverageSummaryColumns order.
func (c *CoverageSummary) Record() []any {
	return []any{
		c.Team, c.CoveredAsFavorite, c.TotalTimesFavorite, c.FavHitPercentage,
		c.CoveredAsDog, c.TotalTimesUnderdog, c.DogHitPercentage, c.OverallHitPercentage,
	}
}

// Role is the side of the spread a team was on.
type Role string

const (
	RoleFavorite Role = "favorite"
	RoleUnderdog Role = "underdog"
)

// VenueSplit is a covered/total/percentage triple for one venue.
type VenueSplit struct {
	Covered       int      `json:"covered"`
	Total         int      `json:"total"`
	HitPercentage *float64 `json:"hit_percentage"`
}

// RoleSplit is one team's cover record in one role, split by venue.
type RoleSplit struct {
	Team string     `json:"team"`
	Role Role       `json:"role"`
	Away VenueSplit `json:"away"`
	Home VenueSplit `json:"home"`
}

// RoleSplitColumns lists the split table columns for a role.
func RoleSplitColumns(role Role) []string {
	r := string(role)
	return []string{
		"team",
		"covered_as_" + r + "_away", "total_times_" + r + "_away", "hit_percentage_as_" + r + "_away",
		"covered_as_" + r + "_home", "total_times_" + r + "_home", "hit_percentage_as_" + r + "_home",
	}
}

// Record returns the values in RoleSplitColumns order.
func (s *RoleSplit) Record() []any {
	return []any{
		s.Team,
		s.Away.Covered, s.Away.Total, s.Away.HitPercentage,
		s.Home.Covered, s.Home.Total, s.Home.HitPercentage,
	}
}

// VenueScoring is a team's scoring and over/under record at one venue.
type VenueScoring struct {
	Games              int      `json:"games"`
	PPG                *float64 `json:"ppg"`
	OppPPG             *float64 `json:"opp_ppg"`
	CombinedPPG        *float64 `json:"combined_ppg"`
	AverageOverUnder   *float64 `json:"average_over_under"`
	OverHit            int      `json:"over_hit"`
	OverHitPercentage  *float64 `json:"over_hit_percentage"`
	UnderHit           int      `json:"under_hit"`
	UnderHitPercentage *float64 `json:"under_hit_percentage"`
}

// OverUnderSplit is one team's scoring and totals record, home versus away.
type OverUnderSplit struct {
	Team string       `json:"team"`
	Home VenueScoring `json:"home"`
	Away VenueScoring `json:"away"`
}

// OverUnderSplitColumns lists the over/under split table columns.
var OverUnderSplitColumns = []string{
	"team",
	"ppg_home", "opp_ppg_home", "combined_ppg_home",
	"ppg_away", "opp_ppg_away", "combined_ppg_away",
	"over_hit_home", "over_hit_home_percentage",
	"over_hit_away", "over_hit_away_percentage",
	"average_ou_home", "average_ou_away",
	"under_hit_home", "under_hit_home_percentage",
	"under_hit_away", "under_hit_away_percentage",
}

// Record returns the values in OverUnderSplitColumns order.
func (o *OverUnderSplit) Record() []any {
	return []any{
		o.Team,
		o.Home.PPG, o.Home.OppPPG, o.Home.CombinedPPG,
		o.Away.PPG, o.Away.OppPPG, o.Away.CombinedPPG,
		o.Home.OverHit, o.Home.OverHitPercentage,
		o.Away.OverHit, o.Away.OverHitPercentage,
		o.Home.AverageOverUnder, o.Away.AverageOverUnder,
		o.Home.UnderHit, o.Home.UnderHitPercentage,
		o.Away.UnderHit, o.Away.UnderHitPercentage,
	}
}
