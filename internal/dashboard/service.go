package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"smartkitchen/internal/alerts"
	"smartkitchen/internal/client"
	"smartkitchen/internal/database"
	"smartkitchen/internal/metrics"
	"smartkitchen/internal/models"
	"smartkitchen/internal/monitoring"
	"smartkitchen/internal/spoilage"
)

// Backend is the subset of the restaurant backend the dashboard consumes
type Backend interface {
	GetInventory(ctx context.Context) ([]models.InventoryItem, error)
	GetMenu(ctx context.Context) ([]models.MenuDish, error)
	AddOrder(ctx context.Context, order models.Order) (*models.OrderConfirmation, error)
	GetWeeklySales(ctx context.Context) ([]models.SalesRecord, error)
	GetMonthlySales(ctx context.Context) ([]models.SalesRecord, error)
	GetPredictions(ctx context.Context) ([]models.PredictionRecord, error)
	GetSalesLastNMonths(ctx context.Context, months int) ([]byte, error)
	GetRestockPlan(ctx context.Context) (*models.RestockPlan, error)
	UploadImage(ctx context.Context, filename string, image io.Reader) (*models.DetectionResult, error)
	GetDetectionImage(ctx context.Context) ([]byte, string, error)
}

// Cache persists the last good inventory and menu plus the order log
type Cache interface {
	SaveInventory(items []models.InventoryItem) error
	LoadInventory() ([]models.InventoryItem, time.Time, error)
	SaveMenu(menu []models.MenuDish) error
	LoadMenu() ([]models.MenuDish, error)
	RecordOrder(order models.Order, status models.OrderStatus, message string) (*database.OrderLog, error)
}

// Snapshot is the data currently served by the dashboard
type Snapshot struct {
	Inventory   []models.InventoryItem
	Menu        []models.MenuDish
	Weekly      []models.SalesRecord
	Monthly     []models.SalesRecord
	Predictions []models.PredictionRecord
	RefreshedAt time.Time
	Stale       bool
	LastError   string
}

// Service holds the current snapshot and refreshes it from the backend
type Service struct {
	backend    Backend
	cache      Cache
	seq        *client.Sequencer
	monitor    *monitoring.Monitor
	collector  *metrics.MetricsCollector
	thresholds alerts.Thresholds

	mu   sync.RWMutex
	snap Snapshot

	listenersMu sync.Mutex
	listeners   []func(Summary)
}

// Option configures a Service
type Option func(*Service)

// WithCache enables the snapshot cache and order log
func WithCache(c Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithMetrics publishes snapshot metrics to a collector
func WithMetrics(mc *metrics.MetricsCollector) Option {
	return func(s *Service) {
		s.collector = mc
	}
}

// WithMonitor records refresh outcomes on a monitor
func WithMonitor(m *monitoring.Monitor) Option {
	return func(s *Service) {
		s.monitor = m
	}
}

// NewService creates a dashboard service
func NewService(backend Backend, th alerts.Thresholds, opts ...Option) *Service {
	s := &Service{
		backend:    backend,
		seq:        client.NewSequencer(),
		monitor:    monitoring.NewMonitor(),
		thresholds: th,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Monitor returns the service's status monitor
func (s *Service) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Thresholds returns the alert thresholds in use
func (s *Service) Thresholds() alerts.Thresholds {
	return s.thresholds
}

// Subscribe registers fn to receive a summary after every applied refresh
func (s *Service) Subscribe(fn func(Summary)) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Warm loads the cached snapshot. The result is marked stale until the first
// successful refresh.
func (s *Service) Warm() error {
	if s.cache == nil {
		return nil
	}
	items, saved, err := s.cache.LoadInventory()
	if err != nil {
		return err
	}
	menu, err := s.cache.LoadMenu()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snap.Inventory = items
	s.snap.Menu = menu
	s.snap.RefreshedAt = saved
	s.snap.Stale = true
	s.mu.Unlock()

	log.Printf("Loaded %d cached inventory items and %d dishes", len(items), len(menu))
	s.publish()
	return nil
}

// Refresh reloads inventory and menu. A failure keeps the previous data and
// marks the snapshot stale.
func (s *Service) Refresh(ctx context.Context) error {
	errInv := s.RefreshInventory(ctx)
	errMenu := s.RefreshMenu(ctx)
	err := errors.Join(errInv, errMenu)

	s.mu.Lock()
	if err != nil {
		s.snap.Stale = true
		s.snap.LastError = err.Error()
	} else {
		s.snap.Stale = false
		s.snap.LastError = ""
		s.snap.RefreshedAt = time.Now()
	}
	stale := s.snap.Stale
	s.mu.Unlock()

	if s.collector != nil {
		s.collector.RecordStale(stale)
	}
	s.publish()
	return err
}

// RefreshInventory reloads the inventory
func (s *Service) RefreshInventory(ctx context.Context) error {
	return fetch(ctx, s, client.SourceInventory, s.backend.GetInventory, func(items []models.InventoryItem) {
		items = usableItems(items)
		s.mu.Lock()
		s.snap.Inventory = items
		s.mu.Unlock()

		if s.cache != nil {
			if err := s.cache.SaveInventory(items); err != nil {
				log.Printf("Failed to cache inventory: %v", err)
			}
		}
		s.recordAlerts(items)
	})
}

// RefreshMenu reloads the menu
func (s *Service) RefreshMenu(ctx context.Context) error {
	return fetch(ctx, s, client.SourceMenu, s.backend.GetMenu, func(menu []models.MenuDish) {
		s.mu.Lock()
		s.snap.Menu = menu
		s.mu.Unlock()

		if s.cache != nil {
			if err := s.cache.SaveMenu(menu); err != nil {
				log.Printf("Failed to cache menu: %v", err)
			}
		}
	})
}

// RefreshSales reloads weekly and monthly sales and the forecast
func (s *Service) RefreshSales(ctx context.Context) error {
	errWeekly := fetch(ctx, s, client.SourceWeeklySales, s.backend.GetWeeklySales, func(r []models.SalesRecord) {
		s.mu.Lock()
		s.snap.Weekly = r
		s.mu.Unlock()
	})
	errMonthly := fetch(ctx, s, client.SourceMonthlySales, s.backend.GetMonthlySales, func(r []models.SalesRecord) {
		s.mu.Lock()
		s.snap.Monthly = r
		s.mu.Unlock()
	})
	errPrediction := fetch(ctx, s, client.SourcePrediction, s.backend.GetPredictions, func(r []models.PredictionRecord) {
		s.mu.Lock()
		s.snap.Predictions = r
		s.mu.Unlock()
	})
	return errors.Join(errWeekly, errMonthly, errPrediction)
}

// fetch tags a request with a sequence id and applies its result only if no
// newer request for the same source has been issued meanwhile.
func fetch[T any](ctx context.Context, s *Service, src client.Source, get func(context.Context) (T, error), apply func(T)) error {
	id := s.seq.Next(src)
	data, err := get(ctx)

	s.monitor.RecordRefresh(string(src), err)
	if s.collector != nil {
		s.collector.RecordRefresh(string(src), err)
	}
	if err != nil {
		return fmt.Errorf("failed to refresh %s: %w", src, err)
	}

	if !s.seq.IsLatest(src, id) {
		log.Printf("Discarding stale %s response %d", src, id)
		return nil
	}
	apply(data)
	return nil
}

// usableItems drops items whose urgency cannot be computed
func usableItems(items []models.InventoryItem) []models.InventoryItem {
	out := make([]models.InventoryItem, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Printf("Skipping inventory item %q: %v", item.Ingredient, err)
			continue
		}
		out = append(out, item)
	}
	return out
}

func (s *Service) recordAlerts(items []models.InventoryItem) {
	if s.collector == nil {
		return
	}
	urgent := 0
	for _, item := range items {
		if spoilage.IsUrgent(item) {
			urgent++
		}
	}
	s.collector.RecordAlerts(alerts.Evaluate(items, s.thresholds), urgent, len(items))
}

func (s *Service) publish() {
	summary := s.Summary()

	s.listenersMu.Lock()
	listeners := append([]func(Summary){}, s.listeners...)
	s.listenersMu.Unlock()

	for _, fn := range listeners {
		fn(summary)
	}
}

// Snapshot returns a copy of the current snapshot
func (s *Service) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Inventory = append([]models.InventoryItem(nil), s.snap.Inventory...)
	snap.Menu = append([]models.MenuDish(nil), s.snap.Menu...)
	snap.Weekly = append([]models.SalesRecord(nil), s.snap.Weekly...)
	snap.Monthly = append([]models.SalesRecord(nil), s.snap.Monthly...)
	snap.Predictions = append([]models.PredictionRecord(nil), s.snap.Predictions...)
	return snap
}
