package spoilage

import (
	"testing"

	"smartkitchen/internal/models"

	"github.com/stretchr/testify/assert"
)

func item(name string, remaining, max float64) models.InventoryItem {
	return models.InventoryItem{Ingredient: name, RemainingLife: remaining, MaxLife: max, Quantity: 12}
}

func TestDiscountPercent_NotUrgent(t *testing.T) {
	for _, remaining := range []float64{5, 5.5, 7, 30} {
		assert.Equal(t, 0, DiscountPercent(item("onion", remaining, 10)), "remaining=%v", remaining)
		assert.False(t, IsUrgent(item("onion", remaining, 10)))
	}
}

func TestDiscountPercent_DecreasesWithRemainingLife(t *testing.T) {
	previous := MaxDiscountPercent + 1
	for _, remaining := range []float64{0, 1, 2, 3, 4, 4.9} {
		discount := DiscountPercent(item("spinach", remaining, 10))
		assert.GreaterOrEqual(t, discount, 0)
		assert.LessOrEqual(t, discount, MaxDiscountPercent)
		assert.Less(t, discount, previous, "remaining=%v", remaining)
		previous = discount
	}
}

func TestDiscountPercent_SpinachScenario(t *testing.T) {
	spinach := item("spinach", 3, 10)
	assert.InDelta(t, 0.3, LifePercentage(spinach), 1e-9)
	assert.True(t, IsUrgent(spinach))
	assert.Equal(t, 21, DiscountPercent(spinach))
}

func TestDiscountPercent_AnomalousInput(t *testing.T) {
	// Already spoiled items report the maximal markdown
	assert.Equal(t, MaxDiscountPercent, DiscountPercent(item("kale", 0, 10)))
	assert.Equal(t, MaxDiscountPercent, DiscountPercent(item("kale", -2, 10)))

	// Remaining life beyond max life never produces a negative markdown
	assert.Equal(t, 0, DiscountPercent(item("kale", 4, 2)))

	// Invalid max life does not panic and is treated as no life left
	assert.Equal(t, 0.0, LifePercentage(item("kale", 3, 0)))
	assert.Equal(t, MaxDiscountPercent, DiscountPercent(item("kale", 3, 0)))
}

func TestLevelFor(t *testing.T) {
	cases := map[float64]UrgencyLevel{
		-1:  UrgencyHigh,
		0:   UrgencyHigh,
		2:   UrgencyHigh,
		2.5: UrgencyMedium,
		4:   UrgencyMedium,
		4.1: UrgencyLow,
		9:   UrgencyLow,
	}
	for remaining, want := range cases {
		assert.Equal(t, want, LevelFor(remaining), "remaining=%v", remaining)
	}
}

func TestExpirationLabel(t *testing.T) {
	assert.Equal(t, "Today", ExpirationLabel(0))
	assert.Equal(t, "Today", ExpirationLabel(-3))
	assert.Equal(t, "Tomorrow", ExpirationLabel(1))
	assert.Equal(t, "In 3 days", ExpirationLabel(3))
	assert.Equal(t, "In 1.5 days", ExpirationLabel(1.5))
}

func TestFreshness(t *testing.T) {
	assert.Equal(t, 25, FreshnessPercent(item("tomato", 2.5, 10)))
	assert.Equal(t, FreshnessCritical, BandFor(39))
	assert.Equal(t, FreshnessWarning, BandFor(40))
	assert.Equal(t, FreshnessGood, BandFor(70))
	assert.Equal(t, 3, EstimatedDaysLeft(item("tomato", 2.1, 10)))
}

func TestExpiringWithin(t *testing.T) {
	items := []models.InventoryItem{
		item("potato", 20, 30),
		item("lettuce", 3, 6),
		item("tomato", 1, 7),
		item("carrot", 7, 14),
	}

	expiring := ExpiringWithin(items, NearExpiryDays)

	if assert.Len(t, expiring, 3) {
		assert.Equal(t, "tomato", expiring[0].Item.Ingredient)
		assert.Equal(t, "lettuce", expiring[1].Item.Ingredient)
		assert.Equal(t, "carrot", expiring[2].Item.Ingredient)
		assert.Equal(t, "Tomorrow", expiring[0].Expires)
		assert.Equal(t, UrgencyHigh, expiring[0].Level)
	}
	assert.Equal(t, 1, CountExpiringSoon(items))
}
