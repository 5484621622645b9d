package spoilage

import (
	"fmt"
	"math"
	"sort"

	"smartkitchen/internal/models"
)

const (
	// UrgencyThresholdDays is the remaining life below which an item is urgent
	UrgencyThresholdDays = 5.0
	// MaxDiscountPercent is the markdown applied to an item with no life left
	MaxDiscountPercent = 30
	// NearExpiryDays is the window shown in the upcoming expirations panel
	NearExpiryDays = 7.0
)

// UrgencyLevel is the coarse expiry-proximity severity used for display
type UrgencyLevel string

const (
	UrgencyHigh   UrgencyLevel = "high"
	UrgencyMedium UrgencyLevel = "medium"
	UrgencyLow    UrgencyLevel = "low"
)

// FreshnessBand groups freshness percentages for indicators
type FreshnessBand string

const (
	FreshnessCritical FreshnessBand = "critical"
	FreshnessWarning  FreshnessBand = "warning"
	FreshnessGood     FreshnessBand = "good"
)

// LifePercentage returns remaining_life / max_life as a fraction.
// The value is not clamped. Items with max_life <= 0 report 0.
func LifePercentage(item models.InventoryItem) float64 {
	if item.MaxLife <= 0 {
		return 0
	}
	return item.RemainingLife / item.MaxLife
}

// IsUrgent reports whether the item should be used or marked down soon
func IsUrgent(item models.InventoryItem) bool {
	return item.RemainingLife < UrgencyThresholdDays
}

// DiscountPercent returns the markdown for an item, 0 when it is not urgent
func DiscountPercent(item models.InventoryItem) int {
	if !IsUrgent(item) {
		return 0
	}
	discount := int(math.Round((1 - LifePercentage(item)) * MaxDiscountPercent))
	if discount < 0 {
		return 0
	}
	if discount > MaxDiscountPercent {
		return MaxDiscountPercent
	}
	return discount
}

// LevelFor buckets remaining life into a display severity
func LevelFor(remainingLife float64) UrgencyLevel {
	switch {
	case remainingLife <= 2:
		return UrgencyHigh
	case remainingLife <= 4:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// ExpirationLabel renders remaining life for the expirations panel
func ExpirationLabel(remainingLife float64) string {
	switch {
	case remainingLife <= 0:
		return "Today"
	case remainingLife == 1:
		return "Tomorrow"
	default:
		return fmt.Sprintf("In %s days", formatDays(remainingLife))
	}
}

func formatDays(days float64) string {
	if days == math.Trunc(days) {
		return fmt.Sprintf("%d", int(days))
	}
	return fmt.Sprintf("%g", days)
}

// FreshnessPercent returns the life percentage as a rounded 0-100 style value
func FreshnessPercent(item models.InventoryItem) int {
	return int(math.Round(LifePercentage(item) * 100))
}

// BandFor classifies a freshness percentage
func BandFor(freshness int) FreshnessBand {
	switch {
	case freshness < 40:
		return FreshnessCritical
	case freshness < 70:
		return FreshnessWarning
	default:
		return FreshnessGood
	}
}

// EstimatedDaysLeft rounds remaining life up to whole days
func EstimatedDaysLeft(item models.InventoryItem) int {
	return int(math.Ceil(item.RemainingLife))
}

// Assessment bundles every derived value for a single item
type Assessment struct {
	Item              models.InventoryItem `json:"item"`
	LifePercentage    float64              `json:"life_percentage"`
	Freshness         int                  `json:"freshness"`
	Band              FreshnessBand        `json:"band"`
	Urgent            bool                 `json:"urgent"`
	Discount          int                  `json:"discount"`
	Level             UrgencyLevel         `json:"urgency_level"`
	Expires           string               `json:"expires"`
	EstimatedDaysLeft int                  `json:"estimated_days_left"`
}

// Assess computes the full set of urgency metrics for an item
func Assess(item models.InventoryItem) Assessment {
	freshness := FreshnessPercent(item)
	return Assessment{
		Item:              item,
		LifePercentage:    LifePercentage(item),
		Freshness:         freshness,
		Band:              BandFor(freshness),
		Urgent:            IsUrgent(item),
		Discount:          DiscountPercent(item),
		Level:             LevelFor(item.RemainingLife),
		Expires:           ExpirationLabel(item.RemainingLife),
		EstimatedDaysLeft: EstimatedDaysLeft(item),
	}
}

// ExpiringWithin returns assessments for items with at most the given days left, soonest first
func ExpiringWithin(items []models.InventoryItem, days float64) []Assessment {
	expiring := make([]Assessment, 0)
	for _, item := range items {
		if item.RemainingLife <= days {
			expiring = append(expiring, Assess(item))
		}
	}
	sort.SliceStable(expiring, func(i, j int) bool {
		return expiring[i].Item.RemainingLife < expiring[j].Item.RemainingLife
	})
	return expiring
}

// CountExpiringSoon counts items estimated to expire within two days
func CountExpiringSoon(items []models.InventoryItem) int {
	count := 0
	for _, item := range items {
		if EstimatedDaysLeft(item) <= 2 {
			count++
		}
	}
	return count
}
