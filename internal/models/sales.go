package models

// SalesRecord represents the recorded sales of a dish on a date
type SalesRecord struct {
	Date     string  `json:"date"`
	DishName string  `json:"dish_name"`
	Sales    float64 `json:"sales"`
}

// PredictionRecord represents the forecast sales of a dish on a date
type PredictionRecord struct {
	Date           string  `json:"date"`
	DishName       string  `json:"dish_name"`
	PredictedSales float64 `json:"predicted_sales"`
}

// DatedValue is implemented by records that can be charted over time
type DatedValue interface {
	RecordDate() string
	Dish() string
	Value() float64
}

func (r SalesRecord) RecordDate() string { return r.Date }
func (r SalesRecord) Dish() string       { return r.DishName }
func (r SalesRecord) Value() float64     { return r.Sales }

func (r PredictionRecord) RecordDate() string { return r.Date }
func (r PredictionRecord) Dish() string       { return r.DishName }
func (r PredictionRecord) Value() float64     { return r.PredictedSales }

// RestockPlan is the backend's ingredient plan for tomorrow's predicted sales
type RestockPlan struct {
	PredictedSales []DishForecast            `json:"predicted_sales"`
	ToBuy          map[string]float64        `json:"to_buy"`
	Insufficient   map[string]StockShortfall `json:"insufficient"`
	Sufficient     map[string]float64        `json:"sufficient"`
}

// DishForecast is a single dish entry of a restock plan
type DishForecast struct {
	Dish           string `json:"dish"`
	PredictedSales int    `json:"predicted_sales"`
}

// StockShortfall describes an ingredient with partial stock
type StockShortfall struct {
	Available float64 `json:"available"`
	Required  float64 `json:"required"`
}
