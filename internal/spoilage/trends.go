package spoilage

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"smartkitchen/internal/models"
)

const (
	// TrendHorizonDays caps how far freshness is projected
	TrendHorizonDays = 7
	// TrendMaxItems is the number of at-risk items charted
	TrendMaxItems = 4
)

// TrendSeries is the projected freshness of one item
type TrendSeries struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Points []int  `json:"points"`
}

// TrendChart is a day-by-day freshness projection for the most at-risk items
type TrendChart struct {
	Days   []string      `json:"days"`
	Series []TrendSeries `json:"series"`
}

// ProjectTrends projects linear freshness decay for the least fresh items
// estimated to expire within the horizon.
func ProjectTrends(items []models.InventoryItem) TrendChart {
	candidates := make([]Assessment, 0)
	for _, item := range items {
		if EstimatedDaysLeft(item) <= TrendHorizonDays {
			candidates = append(candidates, Assess(item))
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Freshness < candidates[j].Freshness
	})
	if len(candidates) > TrendMaxItems {
		candidates = candidates[:TrendMaxItems]
	}

	chart := TrendChart{Days: []string{}, Series: []TrendSeries{}}
	if len(candidates) == 0 {
		return chart
	}

	maxDays := 0
	for _, c := range candidates {
		if c.EstimatedDaysLeft > maxDays {
			maxDays = c.EstimatedDaysLeft
		}
	}
	if maxDays > TrendHorizonDays {
		maxDays = TrendHorizonDays
	}

	for day := 0; day < maxDays; day++ {
		chart.Days = append(chart.Days, "Day "+strconv.Itoa(day+1))
	}

	for _, c := range candidates {
		series := TrendSeries{
			Key:    seriesKey(c.Item.Ingredient),
			Label:  c.Item.Ingredient,
			Points: make([]int, 0, maxDays),
		}
		for day := 0; day < maxDays; day++ {
			series.Points = append(series.Points, projectFreshness(c, day))
		}
		chart.Series = append(chart.Series, series)
	}
	return chart
}

func projectFreshness(a Assessment, day int) int {
	if a.EstimatedDaysLeft <= 0 {
		return 0
	}
	decay := float64(a.Freshness) / float64(a.EstimatedDaysLeft)
	projected := math.Round(float64(a.Freshness) - float64(day)*decay)
	if projected < 0 {
		return 0
	}
	return int(projected)
}

func seriesKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}
