package alerts

import "smartkitchen/internal/models"

const (
	// DefaultLowStockThreshold is the exclusive bound used by the alert popup
	DefaultLowStockThreshold = 10
	// DefaultStockBandLow is the inclusive low bound used by the inventory browser
	DefaultStockBandLow = 10
	// DefaultStockBandHigh is the inclusive high bound used by the inventory browser
	DefaultStockBandHigh = 30
)

// Thresholds configures the two stock rules. They are kept separate on purpose:
// the alert popup uses quantity < LowStock while the browser bands use <= BandLow.
type Thresholds struct {
	LowStock int `yaml:"low_stock" json:"low_stock"`
	BandLow  int `yaml:"band_low" json:"band_low"`
	BandHigh int `yaml:"band_high" json:"band_high"`
}

// DefaultThresholds returns the thresholds the dashboard ships with
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowStock: DefaultLowStockThreshold,
		BandLow:  DefaultStockBandLow,
		BandHigh: DefaultStockBandHigh,
	}
}

// IsLowStock is the alerting rule: strictly below the threshold
func IsLowStock(quantity, threshold int) bool {
	return quantity < threshold
}

// IsCriticallyLow is the browser band rule: at or below the band bound
func IsCriticallyLow(quantity, bandLow int) bool {
	return quantity <= bandLow
}

// IsHighStock reports whether quantity sits in the high band
func IsHighStock(quantity, bandHigh int) bool {
	return quantity >= bandHigh
}

// Report partitions inventory into the notification views
type Report struct {
	LowStock   []models.InventoryItem `json:"low_stock"`
	Bad        []models.InventoryItem `json:"bad"`
	Rotten     []models.InventoryItem `json:"rotten"`
	AlertCount int                    `json:"alert_count"`
}

// Evaluate builds the alert report. An item can appear in more than one view
// and AlertCount is the plain sum of the view sizes.
func Evaluate(items []models.InventoryItem, th Thresholds) Report {
	report := Report{
		LowStock: []models.InventoryItem{},
		Bad:      []models.InventoryItem{},
		Rotten:   []models.InventoryItem{},
	}

	for _, item := range items {
		if IsLowStock(item.Quantity, th.LowStock) {
			report.LowStock = append(report.LowStock, item)
		}
		switch item.Quality {
		case models.QualityBad:
			report.Bad = append(report.Bad, item)
		case models.QualityRotten:
			report.Rotten = append(report.Rotten, item)
		}
	}

	report.AlertCount = len(report.LowStock) + len(report.Bad) + len(report.Rotten)
	return report
}

// HasQualityIssues reports whether any bad or rotten stock was found
func (r Report) HasQualityIssues() bool {
	return len(r.Bad) > 0 || len(r.Rotten) > 0
}

// StockLevel classifies a quantity into the browser's bands
func StockLevel(quantity int, th Thresholds) string {
	switch {
	case IsCriticallyLow(quantity, th.BandLow):
		return "low"
	case IsHighStock(quantity, th.BandHigh):
		return "high"
	default:
		return "normal"
	}
}
