package dashboard

import (
	"context"
	"errors"
	"io"
	"testing"

	"smartkitchen/internal/alerts"
	"smartkitchen/internal/client"
	"smartkitchen/internal/database"
	"smartkitchen/internal/inventory"
	"smartkitchen/internal/models"
	"smartkitchen/internal/recommend"
	"smartkitchen/internal/sales"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	inventory    []models.InventoryItem
	menu         []models.MenuDish
	weekly       []models.SalesRecord
	predictions  []models.PredictionRecord
	export       []byte
	err          error
	orderErr     error
	onInventory  func()
	uploadedName string
}

func (f *fakeBackend) GetInventory(ctx context.Context) ([]models.InventoryItem, error) {
	if f.onInventory != nil {
		f.onInventory()
	}
	return f.inventory, f.err
}

func (f *fakeBackend) GetMenu(ctx context.Context) ([]models.MenuDish, error) {
	return f.menu, f.err
}

func (f *fakeBackend) AddOrder(ctx context.Context, order models.Order) (*models.OrderConfirmation, error) {
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &models.OrderConfirmation{Message: "Order added"}, nil
}

func (f *fakeBackend) GetWeeklySales(ctx context.Context) ([]models.SalesRecord, error) {
	return f.weekly, f.err
}

func (f *fakeBackend) GetMonthlySales(ctx context.Context) ([]models.SalesRecord, error) {
	return f.weekly, f.err
}

func (f *fakeBackend) GetPredictions(ctx context.Context) ([]models.PredictionRecord, error) {
	return f.predictions, f.err
}

func (f *fakeBackend) GetSalesLastNMonths(ctx context.Context, months int) ([]byte, error) {
	return f.export, f.err
}

func (f *fakeBackend) GetRestockPlan(ctx context.Context) (*models.RestockPlan, error) {
	return &models.RestockPlan{ToBuy: map[string]float64{"spinach": 2}}, f.err
}

func (f *fakeBackend) UploadImage(ctx context.Context, filename string, image io.Reader) (*models.DetectionResult, error) {
	f.uploadedName = filename
	return &models.DetectionResult{Filename: filename, Counts: map[string]int{"tomato": 2}}, f.err
}

func (f *fakeBackend) GetDetectionImage(ctx context.Context) ([]byte, string, error) {
	return []byte("img"), "image/jpeg", f.err
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		inventory: []models.InventoryItem{
			{Ingredient: "Spinach", Category: "Leafy Greens", Quality: models.QualityPoor, Quantity: 6, RemainingLife: 3, MaxLife: 10},
			{Ingredient: "Onion", Category: "Bulbs", Quality: models.QualityGood, Quantity: 40, RemainingLife: 20, MaxLife: 30},
			{Ingredient: "Tomato", Category: "Fruit Vegetables", Quality: models.QualityRotten, Quantity: 12, RemainingLife: 1, MaxLife: 8},
		},
		menu: []models.MenuDish{
			{DishName: "Veg Curry", Category: "Mains", Price: 12.5, Ingredients: models.StringSlice{"spinach", "onion", "tomato"}},
			{DishName: "Onion Soup", Category: "Starters", Price: 6, Ingredients: models.StringSlice{"onion"}},
		},
		weekly: []models.SalesRecord{
			{Date: "2025-03-03", DishName: "Veg Curry", Sales: 10},
			{Date: "2025-03-10", DishName: "Veg Curry", Sales: 20},
		},
	}
}

func TestRefresh_PopulatesSnapshot(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend, alerts.DefaultThresholds())

	var got []Summary
	svc.Subscribe(func(s Summary) { got = append(got, s) })

	require.NoError(t, svc.Refresh(context.Background()))

	summary := svc.Summary()
	assert.Equal(t, 3, summary.Items)
	assert.Equal(t, 1, summary.LowStock)
	assert.Equal(t, 1, summary.Rotten)
	assert.Equal(t, 2, summary.AlertCount)
	assert.Equal(t, 2, summary.Urgent)
	assert.False(t, summary.Stale)
	require.Len(t, got, 1)
	assert.Equal(t, summary.Items, got[0].Items)
}

func TestRefresh_FailureKeepsLastGoodSnapshot(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend, alerts.DefaultThresholds())
	require.NoError(t, svc.Refresh(context.Background()))

	backend.err = client.ErrNetwork
	backend.inventory = nil
	err := svc.Refresh(context.Background())

	assert.ErrorIs(t, err, client.ErrNetwork)
	status := svc.Status()
	assert.True(t, status.Stale)
	assert.Equal(t, 3, status.Items)
	assert.NotEmpty(t, status.LastError)
	assert.Equal(t, true, status.Monitor["inventory_stale"])
}

func TestRefresh_ExcludesUnusableItems(t *testing.T) {
	backend := newFakeBackend()
	backend.inventory = append(backend.inventory, models.InventoryItem{Ingredient: "Ghost", Quantity: 1, MaxLife: 0})
	svc := NewService(backend, alerts.DefaultThresholds())

	require.NoError(t, svc.RefreshInventory(context.Background()))

	assert.Len(t, svc.Snapshot().Inventory, 3)
}

func TestRefresh_DiscardsSupersededResponse(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend, alerts.DefaultThresholds())
	backend.onInventory = func() {
		// a newer request for the same source is issued while this one is in flight
		svc.seq.Next(client.SourceInventory)
	}

	require.NoError(t, svc.RefreshInventory(context.Background()))

	assert.Empty(t, svc.Snapshot().Inventory)
}

func TestWarm_LoadsCacheAsStale(t *testing.T) {
	store, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer store.Close()

	backend := newFakeBackend()
	first := NewService(backend, alerts.DefaultThresholds(), WithCache(store))
	require.NoError(t, first.Refresh(context.Background()))

	second := NewService(&fakeBackend{err: client.ErrNetwork}, alerts.DefaultThresholds(), WithCache(store))
	require.NoError(t, second.Warm())

	snap := second.Snapshot()
	assert.True(t, snap.Stale)
	assert.Len(t, snap.Inventory, 3)
	assert.Len(t, snap.Menu, 2)
	assert.False(t, snap.RefreshedAt.IsZero())
}

func TestPlaceOrder_LogsOutcome(t *testing.T) {
	store, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer store.Close()

	backend := newFakeBackend()
	svc := NewService(backend, alerts.DefaultThresholds(), WithCache(store))

	conf, err := svc.PlaceOrder(context.Background(), models.Order{DishName: "Veg Curry", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, "Order added", conf.Message)

	backend.orderErr = errors.New("kitchen closed")
	_, err = svc.PlaceOrder(context.Background(), models.Order{DishName: "Veg Curry", Quantity: 1})
	assert.Error(t, err)

	_, err = svc.PlaceOrder(context.Background(), models.Order{DishName: "", Quantity: 1})
	assert.Error(t, err)

	orders, err := store.RecentOrders(0)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, models.OrderStatusFailed, orders[0].Status)
	assert.Equal(t, models.OrderStatusPlaced, orders[1].Status)
}

func TestViews(t *testing.T) {
	backend := newFakeBackend()
	svc := NewService(backend, alerts.DefaultThresholds())
	require.NoError(t, svc.Refresh(context.Background()))
	require.NoError(t, svc.RefreshSales(context.Background()))

	recs := svc.Recommendations(recommend.NewSelection("onion"))
	require.Len(t, recs, 2)
	assert.Equal(t, "Veg Curry", recs[0].Dish.DishName)

	result := svc.Browse(inventory.Query{Filter: inventory.Filter{Stock: inventory.StockLow}})
	assert.Equal(t, 1, result.Total)

	expiring := svc.Expiring(7)
	require.Len(t, expiring, 2)
	assert.Equal(t, "Tomato", expiring[0].Item.Ingredient)

	menu, cats := svc.Menu("soup", "")
	assert.Len(t, menu, 1)
	assert.Equal(t, []string{recommend.AllCategories, "Mains", "Starters"}, cats)

	view := svc.Sales(sales.Weekly)
	require.Len(t, view.Series, 1)
	assert.Equal(t, "Mon", view.Series[0].Label)
	assert.Len(t, view.Series[0].Dishes, 2)
	assert.InDelta(t, 22.0, view.Axis.Max, 1e-9)
}

func TestSalesCSV(t *testing.T) {
	backend := newFakeBackend()
	backend.export = []byte(`[{"a":1,"b":"x"}]`)
	svc := NewService(backend, alerts.DefaultThresholds())

	out, err := svc.SalesCSV(context.Background(), 3)

	require.NoError(t, err)
	assert.Equal(t, "a,b\n\"1\",\"x\"", out)
}
