package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryItemValidate(t *testing.T) {
	item := InventoryItem{Ingredient: "Basil", Quantity: 3, MaxLife: 10, RemainingLife: 2}
	assert.NoError(t, item.Validate())

	item.MaxLife = 0
	assert.ErrorIs(t, item.Validate(), ErrInvalidMaxLife)

	item.MaxLife = 10
	item.Quantity = -1
	assert.ErrorIs(t, item.Validate(), ErrNegativeQuantity)

	item.Ingredient = "  "
	assert.ErrorIs(t, item.Validate(), ErrMissingIngredient)
}

func TestFindItemCaseInsensitive(t *testing.T) {
	items := []InventoryItem{{Ingredient: "Tomatoes"}, {Ingredient: "Basil"}}

	got, ok := FindItem(items, " basil ")
	require.True(t, ok)
	assert.Equal(t, "Basil", got.Ingredient)

	_, ok = FindItem(items, "kale")
	assert.False(t, ok)
}

func TestMenuDishCategoryAndIngredients(t *testing.T) {
	dish := MenuDish{DishName: "Soup", Ingredients: StringSlice{"Carrots", "Onions"}}

	assert.Equal(t, UncategorizedLabel, dish.DisplayCategory())
	assert.True(t, dish.HasIngredient("onions"))
	assert.False(t, dish.HasIngredient("kale"))

	dish.Price = -1
	assert.Error(t, ValidateMenuDish(&dish))
}

func TestStringSliceValueAndScan(t *testing.T) {
	v, err := StringSlice{"a", "b"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["a","b"]`, v)

	empty, err := StringSlice(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	var s StringSlice
	require.NoError(t, s.Scan([]byte(`["x","y"]`)))
	assert.Equal(t, StringSlice{"x", "y"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)

	assert.Error(t, s.Scan(42))
}

func TestOrderValidate(t *testing.T) {
	assert.NoError(t, (&Order{DishName: "Pasta", Quantity: 1}).Validate())
	assert.Error(t, (&Order{DishName: "Pasta"}).Validate())
	assert.Error(t, (&Order{Quantity: 2}).Validate())
}

func TestOrderConfirmationUnmarshal(t *testing.T) {
	var c OrderConfirmation
	require.NoError(t, json.Unmarshal([]byte(`"Order placed"`), &c))
	assert.Equal(t, "Order placed", c.Message)

	require.NoError(t, json.Unmarshal([]byte(`{"message":"ok"}`), &c))
	assert.Equal(t, "ok", c.Message)

	require.NoError(t, json.Unmarshal([]byte(`{"detail":"queued"}`), &c))
	assert.Equal(t, "queued", c.Message)

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &c))
}

func TestDetectionResult(t *testing.T) {
	d := DetectionResult{Counts: map[string]int{"tomato": 3, "carrot": 2}}

	assert.Equal(t, 5, d.Total())
	assert.Equal(t, []string{"carrot", "tomato"}, d.Vegetables())
}
