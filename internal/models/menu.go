package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// UncategorizedLabel is shown for dishes the backend returns without a category
const UncategorizedLabel = "Uncategorized"

// MenuDish represents a dish on the menu
type MenuDish struct {
	DishName    string      `json:"dish_name"`
	Category    string      `json:"category"`
	Price       float64     `json:"price"`
	Vegetarian  bool        `json:"vegetarian"`
	Ingredients StringSlice `json:"ingredients"`
	ImgLink     string      `json:"img_link,omitempty"`
}

// ValidateMenuDish validates a menu dish
func ValidateMenuDish(dish *MenuDish) error {
	if dish.DishName == "" {
		return fmt.Errorf("dish name is required")
	}
	if dish.Price < 0 {
		return fmt.Errorf("dish price must not be negative")
	}
	return nil
}

// DisplayCategory returns the category used for grouping
func (d *MenuDish) DisplayCategory() string {
	if d.Category == "" {
		return UncategorizedLabel
	}
	return d.Category
}

// HasIngredient checks case-insensitively if the dish uses an ingredient
func (d *MenuDish) HasIngredient(ingredient string) bool {
	key := IngredientKey(ingredient)
	for _, ing := range d.Ingredients {
		if IngredientKey(ing) == key {
			return true
		}
	}
	return false
}

// StringSlice represents a slice of strings that can be stored in the database
type StringSlice []string

// Value converts the slice to a JSON string for storage
func (s StringSlice) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan converts the database value back to a slice
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, (*[]string)(s))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(s))
	default:
		return errors.New("unsupported type for StringSlice")
	}
}
