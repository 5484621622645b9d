package dashboard

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"smartkitchen/internal/alerts"
	"smartkitchen/internal/inventory"
	"smartkitchen/internal/models"
	"smartkitchen/internal/recommend"
	"smartkitchen/internal/sales"
	"smartkitchen/internal/spoilage"
)

// Summary is pushed to live subscribers after every refresh
type Summary struct {
	Type         string    `json:"type"`
	RefreshedAt  time.Time `json:"refreshed_at"`
	Stale        bool      `json:"stale"`
	Items        int       `json:"items"`
	LowStock     int       `json:"low_stock"`
	Bad          int       `json:"bad"`
	Rotten       int       `json:"rotten"`
	AlertCount   int       `json:"alert_count"`
	Urgent       int       `json:"urgent"`
	ExpiringSoon int       `json:"expiring_soon"`
}

// Status describes the freshness of the served data
type Status struct {
	Summary
	LastError string                 `json:"last_error,omitempty"`
	Monitor   map[string]interface{} `json:"monitor"`
}

// SalesView is a chart-ready sales series
type SalesView struct {
	Period  sales.Period   `json:"period"`
	Series  []sales.Series `json:"series"`
	Dishes  []string       `json:"dishes"`
	Axis    sales.Axis     `json:"axis"`
	Ticks   []float64      `json:"ticks"`
	Skipped int            `json:"skipped"`
}

// Summary computes the headline counts of the current snapshot
func (s *Service) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report := alerts.Evaluate(s.snap.Inventory, s.thresholds)
	return Summary{
		Type:         "snapshot",
		RefreshedAt:  s.snap.RefreshedAt,
		Stale:        s.snap.Stale,
		Items:        len(s.snap.Inventory),
		LowStock:     len(report.LowStock),
		Bad:          len(report.Bad),
		Rotten:       len(report.Rotten),
		AlertCount:   report.AlertCount,
		Urgent:       len(recommend.UrgentIngredients(s.snap.Inventory)),
		ExpiringSoon: spoilage.CountExpiringSoon(s.snap.Inventory),
	}
}

// Status returns the summary with refresh diagnostics
func (s *Service) Status() Status {
	summary := s.Summary()
	s.mu.RLock()
	lastErr := s.snap.LastError
	s.mu.RUnlock()
	return Status{Summary: summary, LastError: lastErr, Monitor: s.monitor.GetMetrics()}
}

// Browse runs an inventory table query
func (s *Service) Browse(q inventory.Query) inventory.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inventory.Apply(s.snap.Inventory, q, s.thresholds)
}

// Filters returns the category and quality chips for the inventory table
func (s *Service) Filters() (categories, qualities []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return inventory.Categories(s.snap.Inventory), inventory.Qualities(s.snap.Inventory)
}

// Expiring lists items expiring within days, soonest first
func (s *Service) Expiring(days float64) []spoilage.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return spoilage.ExpiringWithin(s.snap.Inventory, days)
}

// Trends projects freshness for the items closest to expiry
func (s *Service) Trends() spoilage.TrendChart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return spoilage.ProjectTrends(s.snap.Inventory)
}

// Alerts evaluates the low-stock and quality alerts
func (s *Service) Alerts() alerts.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return alerts.Evaluate(s.snap.Inventory, s.thresholds)
}

// Recommendations ranks the menu against the selected ingredients
func (s *Service) Recommendations(selected recommend.Selection) []recommend.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recommend.NewScorer(s.snap.Inventory).Recommend(s.snap.Menu, selected)
}

// UseSoon lists urgent ingredients
func (s *Service) UseSoon() []recommend.UseSoon {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recommend.UrgentIngredients(s.snap.Inventory)
}

// Menu filters the menu and returns the available categories
func (s *Service) Menu(search, category string) ([]models.MenuDish, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return recommend.FilterMenu(s.snap.Menu, search, category), recommend.MenuCategories(s.snap.Menu)
}

// Sales builds the chart for a period
func (s *Service) Sales(period sales.Period) SalesView {
	s.mu.RLock()
	var series []sales.Series
	var skipped int
	switch period {
	case sales.Weekly:
		series, skipped = sales.Group(s.snap.Weekly, sales.Weekly)
	case sales.Monthly:
		series, skipped = sales.Group(s.snap.Monthly, sales.Monthly)
	default:
		series, skipped = sales.Group(s.snap.Predictions, sales.Daily)
	}
	s.mu.RUnlock()

	if skipped > 0 {
		log.Printf("Skipped %d %s records with unparseable dates", skipped, period)
	}
	axis := sales.Bounds(series)
	return SalesView{
		Period:  period,
		Series:  series,
		Dishes:  sales.Dishes(series),
		Axis:    axis,
		Ticks:   sales.Ticks(axis, sales.DefaultTickCount),
		Skipped: skipped,
	}
}

// SalesCSV exports the last months of sales as CSV
func (s *Service) SalesCSV(ctx context.Context, months int) (string, error) {
	raw, err := s.backend.GetSalesLastNMonths(ctx, months)
	if err != nil {
		return "", err
	}
	return sales.ToCSV(raw)
}

// RestockPlan fetches the ingredient plan for tomorrow
func (s *Service) RestockPlan(ctx context.Context) (*models.RestockPlan, error) {
	return s.backend.GetRestockPlan(ctx)
}

// PlaceOrder sends an order to the backend and logs the outcome
func (s *Service) PlaceOrder(ctx context.Context, order models.Order) (*models.OrderConfirmation, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	conf, err := s.backend.AddOrder(ctx, order)
	status, message := models.OrderStatusPlaced, ""
	if err != nil {
		status, message = models.OrderStatusFailed, err.Error()
	} else {
		message = conf.Message
	}

	if s.cache != nil {
		if _, logErr := s.cache.RecordOrder(order, status, message); logErr != nil {
			log.Printf("Failed to log order: %v", logErr)
		}
	}
	if s.collector != nil {
		s.collector.RecordOrder(string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to place order for %s: %w", order.DishName, err)
	}
	return conf, nil
}

// Scan uploads an image for vegetable detection
func (s *Service) Scan(ctx context.Context, filename string, image io.Reader) (*models.DetectionResult, error) {
	return s.backend.UploadImage(ctx, filename, image)
}

// ScanImage downloads the annotated image of the last scan
func (s *Service) ScanImage(ctx context.Context) ([]byte, string, error) {
	return s.backend.GetDetectionImage(ctx)
}
