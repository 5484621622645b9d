package recommend

import (
	"math"
	"sort"

	"smartkitchen/internal/models"
	"smartkitchen/internal/spoilage"

	"github.com/shopspring/decimal"
)

const (
	// MatchWeight is the score contributed by each selected ingredient a dish uses
	MatchWeight = 2
	// UrgencyWeight is the score contributed by each urgent ingredient a dish uses
	UrgencyWeight = 3
	// DiscountStep is the granularity dish discounts are rounded to
	DiscountStep = 5
)

// Recommendation is a scored dish with its waste-reduction markdown
type Recommendation struct {
	Dish              models.MenuDish `json:"dish"`
	Score             int             `json:"score"`
	Matched           []string        `json:"matched"`
	UrgentIngredients []string        `json:"urgent_ingredients"`
	Discount          int             `json:"discount"`
	DiscountedPrice   float64         `json:"discounted_price"`
}

// Selection is a case-insensitive set of ingredients picked by the user
type Selection map[string]bool

// NewSelection builds a selection from free-form ingredient names
func NewSelection(ingredients ...string) Selection {
	s := make(Selection, len(ingredients))
	for _, ing := range ingredients {
		key := models.IngredientKey(ing)
		if key != "" {
			s[key] = true
		}
	}
	return s
}

// Contains reports whether the ingredient is selected
func (s Selection) Contains(ingredient string) bool {
	return s[models.IngredientKey(ingredient)]
}

// Scorer ranks menu dishes against an inventory snapshot
type Scorer struct {
	inventory []models.InventoryItem
}

// NewScorer creates a scorer over the inventory snapshot
func NewScorer(inventory []models.InventoryItem) *Scorer {
	return &Scorer{inventory: inventory}
}

// Recommend scores every dish and returns those with a positive score, best
// first. An empty selection yields no recommendations.
func (s *Scorer) Recommend(menu []models.MenuDish, selected Selection) []Recommendation {
	recs := make([]Recommendation, 0)
	if len(selected) == 0 {
		return recs
	}

	for _, dish := range menu {
		rec := s.Score(dish, selected)
		if rec.Score > 0 {
			recs = append(recs, rec)
		}
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	return recs
}

// Score computes the recommendation for a single dish
func (s *Scorer) Score(dish models.MenuDish, selected Selection) Recommendation {
	matched := make([]string, 0)
	urgent := make([]string, 0)
	for _, ing := range dish.Ingredients {
		if selected.Contains(ing) {
			matched = append(matched, ing)
		}
		if s.isUrgent(ing) {
			urgent = append(urgent, ing)
		}
	}

	discount := s.dishDiscount(urgent)
	return Recommendation{
		Dish:              dish,
		Score:             MatchWeight*len(matched) + UrgencyWeight*len(urgent),
		Matched:           matched,
		UrgentIngredients: urgent,
		Discount:          discount,
		DiscountedPrice:   DiscountedPrice(dish.Price, discount),
	}
}

// DishDiscount returns the averaged markdown for a dish, rounded to the nearest 5%
func (s *Scorer) DishDiscount(dish models.MenuDish) int {
	urgent := make([]string, 0)
	for _, ing := range dish.Ingredients {
		if s.isUrgent(ing) {
			urgent = append(urgent, ing)
		}
	}
	return s.dishDiscount(urgent)
}

func (s *Scorer) dishDiscount(urgent []string) int {
	if len(urgent) == 0 {
		return 0
	}
	total := 0
	for _, ing := range urgent {
		if item, ok := models.FindItem(s.inventory, ing); ok {
			total += spoilage.DiscountPercent(*item)
		}
	}
	avg := float64(total) / float64(len(urgent))
	return int(math.Round(avg/DiscountStep)) * DiscountStep
}

func (s *Scorer) isUrgent(ingredient string) bool {
	item, ok := models.FindItem(s.inventory, ingredient)
	return ok && spoilage.IsUrgent(*item)
}

// DiscountedPrice applies a percentage markdown, rounded to cents
func DiscountedPrice(price float64, discount int) float64 {
	if discount <= 0 {
		return price
	}
	p := decimal.NewFromFloat(price)
	factor := decimal.NewFromInt(100 - int64(discount)).Div(decimal.NewFromInt(100))
	return p.Mul(factor).Round(2).InexactFloat64()
}

// UseSoon is an urgent inventory item surfaced for the "use soon" notice
type UseSoon struct {
	Ingredient    string  `json:"ingredient"`
	RemainingLife float64 `json:"remaining_life"`
	Discount      int     `json:"discount"`
}

// UrgentIngredients lists urgent inventory items in inventory order
func UrgentIngredients(inventory []models.InventoryItem) []UseSoon {
	out := make([]UseSoon, 0)
	for _, item := range inventory {
		if spoilage.IsUrgent(item) {
			out = append(out, UseSoon{
				Ingredient:    item.Ingredient,
				RemainingLife: item.RemainingLife,
				Discount:      spoilage.DiscountPercent(item),
			})
		}
	}
	return out
}
