package inventory

import (
	"fmt"

	"smartkitchen/internal/alerts"
	"smartkitchen/internal/models"
)

// Browser keeps the query state of an inventory table. Any change to the
// filters, sort or page size moves back to the first page.
type Browser struct {
	query      Query
	thresholds alerts.Thresholds
}

// NewBrowser creates a browser sorted by name with the default page size
func NewBrowser(th alerts.Thresholds) *Browser {
	return &Browser{
		query: Query{
			Sort:     DefaultSort(),
			PageSize: DefaultPageSize,
		},
		thresholds: th,
	}
}

// Query returns a copy of the current query
func (b *Browser) Query() Query {
	return b.query
}

// SetFilter replaces the filter
func (b *Browser) SetFilter(f Filter) {
	b.query.Filter = f
	b.query.PageIndex = 0
}

// SetSearch updates the text filter
func (b *Browser) SetSearch(search string) {
	b.query.Filter.Search = search
	b.query.PageIndex = 0
}

// SetDateRange updates the inclusive date bounds
func (b *Browser) SetDateRange(start, end string) {
	b.query.Filter.DateStart = start
	b.query.Filter.DateEnd = end
	b.query.PageIndex = 0
}

// ToggleCategory adds or removes a category from the selection
func (b *Browser) ToggleCategory(category string) {
	b.query.Filter.Categories = toggle(b.query.Filter.Categories, category)
	b.query.PageIndex = 0
}

// ToggleQuality adds or removes a quality grade from the selection
func (b *Browser) ToggleQuality(quality string) {
	b.query.Filter.Qualities = toggle(b.query.Filter.Qualities, quality)
	b.query.PageIndex = 0
}

// ToggleStock selects a stock bucket, or clears it when already selected
func (b *Browser) ToggleStock(bucket StockBucket) {
	if b.query.Filter.Stock == bucket {
		b.query.Filter.Stock = StockAny
	} else {
		b.query.Filter.Stock = bucket
	}
	b.query.PageIndex = 0
}

// ClearFilters removes every filter
func (b *Browser) ClearFilters() {
	b.SetFilter(Filter{})
}

// RequestSort sorts by key, flipping direction when the key is already ascending
func (b *Browser) RequestSort(key SortKey) {
	dir := Ascending
	if b.query.Sort.Key == key && b.query.Sort.Direction == Ascending {
		dir = Descending
	}
	b.query.Sort = Sort{Key: key, Direction: dir}
	b.query.PageIndex = 0
}

// SetPageSize changes the page size
func (b *Browser) SetPageSize(size int) error {
	if !ValidPageSize(size) {
		return fmt.Errorf("page size %d is not one of %v", size, PageSizes)
	}
	b.query.PageSize = size
	b.query.PageIndex = 0
	return nil
}

// SetPage moves to a page, clamped to the pages available for items
func (b *Browser) SetPage(index int, items []models.InventoryItem) {
	total := len(FilterItems(items, b.query.Filter, b.thresholds))
	last := PageCount(total, b.query.PageSize) - 1
	if index > last {
		index = last
	}
	if index < 0 {
		index = 0
	}
	b.query.PageIndex = index
}

// View runs the current query against items
func (b *Browser) View(items []models.InventoryItem) Result {
	return Apply(items, b.query, b.thresholds)
}

func toggle(values []string, v string) []string {
	for i, existing := range values {
		if existing == v {
			out := make([]string, 0, len(values)-1)
			out = append(out, values[:i]...)
			return append(out, values[i+1:]...)
		}
	}
	return append(append([]string{}, values...), v)
}
