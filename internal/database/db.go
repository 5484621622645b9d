package database

import (
	"fmt"
	"time"

	"smartkitchen/internal/models"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"              // SQLite driver
)

// InventoryRow is a cached inventory item from the last good refresh
type InventoryRow struct {
	gorm.Model
	Ingredient          string `gorm:"index"`
	Category            string
	Quality             string
	Quantity            int
	RemainingLife       float64
	MaxLife             float64
	Price               float64
	TimeSinceLastUpdate string
	ImgLink             string
	Date                string
}

// MenuRow is a cached menu dish from the last good refresh
type MenuRow struct {
	gorm.Model
	DishName    string `gorm:"index"`
	Category    string
	Price       float64
	Vegetarian  bool
	Ingredients models.StringSlice `gorm:"type:text"`
	ImgLink     string
}

// OrderLog records every order placed through the dashboard
type OrderLog struct {
	gorm.Model
	RequestID string `gorm:"unique_index"`
	DishName  string
	Quantity  int
	Status    models.OrderStatus
	Message   string
}

// Store persists the dashboard's snapshot cache and order log
type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema
func Open(driver, url string) (*Store, error) {
	db, err := gorm.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == "sqlite3" {
		// in-memory sqlite databases are per connection
		db.DB().SetMaxOpenConns(1)
	}
	return NewStore(db)
}

// NewStore wraps an open connection and migrates the schema
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&InventoryRow{}, &MenuRow{}, &OrderLog{}).Error; err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveInventory replaces the cached inventory
func (s *Store) SaveInventory(items []models.InventoryItem) error {
	tx := s.db.Begin()
	if err := tx.Unscoped().Delete(&InventoryRow{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear inventory cache: %w", err)
	}
	for _, item := range items {
		row := inventoryRow(item)
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to cache %s: %w", item.Ingredient, err)
		}
	}
	return tx.Commit().Error
}

// LoadInventory returns the cached inventory and when it was saved
func (s *Store) LoadInventory() ([]models.InventoryItem, time.Time, error) {
	var rows []InventoryRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load inventory cache: %w", err)
	}

	items := make([]models.InventoryItem, 0, len(rows))
	var saved time.Time
	for _, row := range rows {
		items = append(items, row.item())
		if row.CreatedAt.After(saved) {
			saved = row.CreatedAt
		}
	}
	return items, saved, nil
}

// SaveMenu replaces the cached menu
func (s *Store) SaveMenu(menu []models.MenuDish) error {
	tx := s.db.Begin()
	if err := tx.Unscoped().Delete(&MenuRow{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to clear menu cache: %w", err)
	}
	for _, dish := range menu {
		row := menuRow(dish)
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to cache %s: %w", dish.DishName, err)
		}
	}
	return tx.Commit().Error
}

// LoadMenu returns the cached menu
func (s *Store) LoadMenu() ([]models.MenuDish, error) {
	var rows []MenuRow
	if err := s.db.Order("id asc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load menu cache: %w", err)
	}

	menu := make([]models.MenuDish, 0, len(rows))
	for _, row := range rows {
		menu = append(menu, models.MenuDish{
			DishName:    row.DishName,
			Category:    row.Category,
			Price:       row.Price,
			Vegetarian:  row.Vegetarian,
			Ingredients: row.Ingredients,
			ImgLink:     row.ImgLink,
		})
	}
	return menu, nil
}

// RecordOrder appends an order outcome to the log
func (s *Store) RecordOrder(order models.Order, status models.OrderStatus, message string) (*OrderLog, error) {
	entry := &OrderLog{
		RequestID: uuid.NewString(),
		DishName:  order.DishName,
		Quantity:  order.Quantity,
		Status:    status,
		Message:   message,
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}
	return entry, nil
}

// RecentOrders returns the latest orders, newest first
func (s *Store) RecentOrders(limit int) ([]OrderLog, error) {
	var orders []OrderLog
	q := s.db.Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

func inventoryRow(item models.InventoryItem) InventoryRow {
	return InventoryRow{
		Ingredient:          item.Ingredient,
		Category:            item.Category,
		Quality:             string(item.Quality),
		Quantity:            item.Quantity,
		RemainingLife:       item.RemainingLife,
		MaxLife:             item.MaxLife,
		Price:               item.Price,
		TimeSinceLastUpdate: item.TimeSinceLastUpdate,
		ImgLink:             item.ImgLink,
		Date:                item.Date,
	}
}

func (r InventoryRow) item() models.InventoryItem {
	return models.InventoryItem{
		Ingredient:          r.Ingredient,
		Category:            r.Category,
		Quality:             models.Quality(r.Quality),
		Quantity:            r.Quantity,
		RemainingLife:       r.RemainingLife,
		MaxLife:             r.MaxLife,
		Price:               r.Price,
		TimeSinceLastUpdate: r.TimeSinceLastUpdate,
		ImgLink:             r.ImgLink,
		Date:                r.Date,
	}
}

func menuRow(dish models.MenuDish) MenuRow {
	return MenuRow{
		DishName:    dish.DishName,
		Category:    dish.Category,
		Price:       dish.Price,
		Vegetarian:  dish.Vegetarian,
		Ingredients: dish.Ingredients,
		ImgLink:     dish.ImgLink,
	}
}
