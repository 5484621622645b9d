package inventory

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"smartkitchen/internal/alerts"
	"smartkitchen/internal/models"
)

// SortKey selects the column the inventory view is ordered by
type SortKey string

const (
	SortByName     SortKey = "name"
	SortByQuantity SortKey = "quantity"
	SortByQuality  SortKey = "quality"
	SortByDate     SortKey = "date"
	SortByCategory SortKey = "category"
)

// Direction is the sort direction
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// StockBucket restricts results to a quantity band
type StockBucket string

const (
	StockAny  StockBucket = ""
	StockLow  StockBucket = "low"
	StockHigh StockBucket = "high"
)

// DefaultPageSize is used when no page size is chosen
const DefaultPageSize = 10

// PageSizes lists the page sizes the browser accepts
var PageSizes = []int{5, 10, 15, 20, 25}

// Filter holds the recognized filter options. Empty sets mean no restriction.
type Filter struct {
	Search     string      `json:"search"`
	DateStart  string      `json:"date_start"`
	DateEnd    string      `json:"date_end"`
	Categories []string    `json:"categories"`
	Qualities  []string    `json:"qualities"`
	Stock      StockBucket `json:"stock"`
}

// Sort describes the ordering of the filtered list
type Sort struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// Query is a complete request against an inventory collection
type Query struct {
	Filter    Filter `json:"filter"`
	Sort      Sort   `json:"sort"`
	PageIndex int    `json:"page_index"`
	PageSize  int    `json:"page_size"`
}

// Result is the filtered and sorted collection plus the requested page
type Result struct {
	Filtered  []models.InventoryItem `json:"filtered"`
	Page      []models.InventoryItem `json:"page"`
	Total     int                    `json:"total"`
	PageIndex int                    `json:"page_index"`
	PageSize  int                    `json:"page_size"`
	PageCount int                    `json:"page_count"`
}

// DefaultSort orders by name ascending
func DefaultSort() Sort {
	return Sort{Key: SortByName, Direction: Ascending}
}

// ValidPageSize reports whether size is one of the accepted page sizes
func ValidPageSize(size int) bool {
	for _, s := range PageSizes {
		if s == size {
			return true
		}
	}
	return false
}

// ParseSortKey validates a sort key from user input
func ParseSortKey(raw string) (SortKey, error) {
	switch key := SortKey(strings.ToLower(raw)); key {
	case SortByName, SortByQuantity, SortByQuality, SortByDate, SortByCategory:
		return key, nil
	case "":
		return SortByName, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", raw)
	}
}

// ParseDirection validates a sort direction from user input
func ParseDirection(raw string) (Direction, error) {
	switch dir := Direction(strings.ToLower(raw)); dir {
	case Ascending, Descending:
		return dir, nil
	case "":
		return Ascending, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", raw)
	}
}

// ParseStockBucket validates a stock bucket from user input
func ParseStockBucket(raw string) (StockBucket, error) {
	switch bucket := StockBucket(strings.ToLower(raw)); bucket {
	case StockAny, StockLow, StockHigh:
		return bucket, nil
	case "none", "all":
		return StockAny, nil
	default:
		return "", fmt.Errorf("unknown stock bucket %q", raw)
	}
}

// Apply filters, sorts and paginates the items. The input is not modified.
func Apply(items []models.InventoryItem, q Query, th alerts.Thresholds) Result {
	filtered := FilterItems(items, q.Filter, th)
	SortItems(filtered, q.Sort)

	size := q.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	index := q.PageIndex
	if index < 0 {
		index = 0
	}

	return Result{
		Filtered:  filtered,
		Page:      pageOf(filtered, index, size),
		Total:     len(filtered),
		PageIndex: index,
		PageSize:  size,
		PageCount: PageCount(len(filtered), size),
	}
}

// FilterItems applies the filters conjunctively: text, date lower bound,
// date upper bound, category, quality, stock bucket.
func FilterItems(items []models.InventoryItem, f Filter, th alerts.Thresholds) []models.InventoryItem {
	search := strings.ToLower(f.Search)
	categories := toSet(f.Categories)
	qualities := toSet(f.Qualities)

	result := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if search != "" && !strings.Contains(strings.ToLower(item.Ingredient), search) {
			continue
		}
		if f.DateStart != "" && (item.Date == "" || item.Date < f.DateStart) {
			continue
		}
		if f.DateEnd != "" && (item.Date == "" || item.Date > f.DateEnd) {
			continue
		}
		if len(categories) > 0 && !categories[item.Category] {
			continue
		}
		if len(qualities) > 0 && !qualities[string(item.Quality)] {
			continue
		}
		switch f.Stock {
		case StockLow:
			if !alerts.IsCriticallyLow(item.Quantity, th.BandLow) {
				continue
			}
		case StockHigh:
			if !alerts.IsHighStock(item.Quantity, th.BandHigh) {
				continue
			}
		}
		result = append(result, item)
	}
	return result
}

// SortItems sorts in place, keeping the original order of equal items
func SortItems(items []models.InventoryItem, s Sort) {
	key := s.Key
	if key == "" {
		key = SortByName
	}
	desc := s.Direction == Descending

	sort.SliceStable(items, func(i, j int) bool {
		c := compare(items[i], items[j], key)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b models.InventoryItem, key SortKey) int {
	switch key {
	case SortByQuantity:
		switch {
		case a.Quantity < b.Quantity:
			return -1
		case a.Quantity > b.Quantity:
			return 1
		default:
			return 0
		}
	case SortByQuality:
		return strings.Compare(string(a.Quality), string(b.Quality))
	case SortByDate:
		return strings.Compare(a.Date, b.Date)
	case SortByCategory:
		return strings.Compare(a.Category, b.Category)
	default:
		return strings.Compare(a.Ingredient, b.Ingredient)
	}
}

// PageCount returns ceil(total/size)
func PageCount(total, size int) int {
	if size <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(size)))
}

func pageOf(items []models.InventoryItem, index, size int) []models.InventoryItem {
	start := index * size
	if start >= len(items) {
		return []models.InventoryItem{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Remove drops every item tracking the ingredient. It only affects the
// returned slice and is never synced to the backend.
func Remove(items []models.InventoryItem, ingredient string) []models.InventoryItem {
	kept := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if !item.Is(ingredient) {
			kept = append(kept, item)
		}
	}
	return kept
}

// Categories returns the distinct categories in first-seen order
func Categories(items []models.InventoryItem) []string {
	return distinct(items, func(i models.InventoryItem) string { return i.Category })
}

// Qualities returns the distinct quality grades in first-seen order
func Qualities(items []models.InventoryItem) []string {
	return distinct(items, func(i models.InventoryItem) string { return string(i.Quality) })
}

func distinct(items []models.InventoryItem, field func(models.InventoryItem) string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, item := range items {
		v := field(item)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}
	return values
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
