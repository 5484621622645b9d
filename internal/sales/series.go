package sales

import (
	"fmt"
	"strings"
	"time"

	"smartkitchen/internal/models"
)

// Period selects how records are bucketed on the time axis
type Period string

const (
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	Daily   Period = "daily"
)

// dateLayouts are the formats the sales backend has been seen to emit
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
}

// DishValue is one dish entry inside a period
type DishValue struct {
	DishName string  `json:"dish_name"`
	Value    float64 `json:"value"`
}

// Series is the list of dish values recorded under one period label
type Series struct {
	Label  string      `json:"label"`
	Dishes []DishValue `json:"dishes"`
}

// ParsePeriod converts a path segment into a Period. "prediction" selects the
// daily view.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(s) {
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "daily", "day", "prediction", "predictions":
		return Daily, nil
	}
	return "", fmt.Errorf("unknown period: %q", s)
}

// ParseDate parses a backend date in UTC
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Label returns the period label of t
func (p Period) Label(t time.Time) string {
	switch p {
	case Monthly:
		return t.Format("Jan")
	case Daily:
		return t.Format("Jan 2")
	default:
		return t.Format("Mon")
	}
}

// Group buckets records by period label. Periods appear in the order they are
// first encountered and dish values inside a period are kept as separate
// entries. Records with unparseable dates are skipped and counted.
func Group[T models.DatedValue](records []T, period Period) ([]Series, int) {
	index := make(map[string]int)
	series := make([]Series, 0)
	skipped := 0

	for _, r := range records {
		t, err := ParseDate(r.RecordDate())
		if err != nil {
			skipped++
			continue
		}
		label := period.Label(t)
		i, ok := index[label]
		if !ok {
			i = len(series)
			index[label] = i
			series = append(series, Series{Label: label})
		}
		series[i].Dishes = append(series[i].Dishes, DishValue{DishName: r.Dish(), Value: r.Value()})
	}
	return series, skipped
}

// Dishes returns the distinct dish names across all series, first-seen order
func Dishes(series []Series) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, s := range series {
		for _, d := range s.Dishes {
			if !seen[d.DishName] {
				seen[d.DishName] = true
				out = append(out, d.DishName)
			}
		}
	}
	return out
}
