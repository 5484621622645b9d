package recommend

import (
	"strings"

	"smartkitchen/internal/models"
)

// AllCategories disables the category filter of the menu browser
const AllCategories = "All"

// FilterMenu keeps dishes whose name or any ingredient contains the search
// text and whose display category matches.
func FilterMenu(menu []models.MenuDish, search, category string) []models.MenuDish {
	needle := strings.ToLower(search)
	out := make([]models.MenuDish, 0, len(menu))
	for _, dish := range menu {
		if category != "" && category != AllCategories && dish.DisplayCategory() != category {
			continue
		}
		if needle != "" && !matchesDish(dish, needle) {
			continue
		}
		out = append(out, dish)
	}
	return out
}

func matchesDish(dish models.MenuDish, needle string) bool {
	if strings.Contains(strings.ToLower(dish.DishName), needle) {
		return true
	}
	for _, ing := range dish.Ingredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}

// CategoryGroup is a run of dishes sharing a category
type CategoryGroup struct {
	Category string            `json:"category"`
	Dishes   []models.MenuDish `json:"dishes"`
}

// GroupByCategory groups dishes by display category in first-seen order
func GroupByCategory(menu []models.MenuDish) []CategoryGroup {
	index := make(map[string]int)
	groups := make([]CategoryGroup, 0)
	for _, dish := range menu {
		cat := dish.DisplayCategory()
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Dishes = append(groups[i].Dishes, dish)
	}
	return groups
}

// MenuCategories returns the category chips, "All" first
func MenuCategories(menu []models.MenuDish) []string {
	cats := []string{AllCategories}
	for _, g := range GroupByCategory(menu) {
		cats = append(cats, g.Category)
	}
	return cats
}
