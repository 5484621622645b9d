package models

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidMaxLife is returned for items whose max_life cannot be used as a divisor
	ErrInvalidMaxLife = errors.New("max_life must be greater than 0")
	// ErrNegativeQuantity is returned for items with a quantity below zero
	ErrNegativeQuantity = errors.New("quantity must not be negative")
	// ErrMissingIngredient is returned for items without an ingredient name
	ErrMissingIngredient = errors.New("ingredient name is required")
)

// InventoryItem represents a perishable stock item as reported by the backend
type InventoryItem struct {
	Ingredient          string  `json:"ingredient"`
	Category            string  `json:"category"`
	Quality             Quality `json:"quality"`
	Quantity            int     `json:"quantity"`
	RemainingLife       float64 `json:"remaining_life"`
	MaxLife             float64 `json:"max_life"`
	Price               float64 `json:"price"`
	TimeSinceLastUpdate string  `json:"time_since_last_update"`
	ImgLink             string  `json:"img_link,omitempty"`
	Date                string  `json:"date,omitempty"`
}

// Quality represents the inspected quality grade of an inventory item
type Quality string

const (
	// Quality grades seen in the inventory feed
	QualityFresh     Quality = "Fresh"
	QualityExcellent Quality = "Excellent"
	QualityGood      Quality = "Good"
	QualityFair      Quality = "Fair"
	QualityPoor      Quality = "Poor"
	QualityBad       Quality = "Bad"
	QualityRotten    Quality = "Rotten"
)

// Validate checks the fields the urgency computations depend on
func (i *InventoryItem) Validate() error {
	if strings.TrimSpace(i.Ingredient) == "" {
		return ErrMissingIngredient
	}
	if i.MaxLife <= 0 {
		return ErrInvalidMaxLife
	}
	if i.Quantity < 0 {
		return ErrNegativeQuantity
	}
	return nil
}

// Key returns the case-insensitive identity of the item
func (i *InventoryItem) Key() string {
	return IngredientKey(i.Ingredient)
}

// Is reports whether the item tracks the named ingredient
func (i *InventoryItem) Is(ingredient string) bool {
	return i.Key() == IngredientKey(ingredient)
}

// IngredientKey normalizes a free-form ingredient name for matching
func IngredientKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindItem returns the first inventory item tracking the ingredient
func FindItem(items []InventoryItem, ingredient string) (*InventoryItem, bool) {
	key := IngredientKey(ingredient)
	for idx := range items {
		if items[idx].Key() == key {
			return &items[idx], true
		}
	}
	return nil, false
}
