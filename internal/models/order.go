package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Order represents a food order placed against the backend
type Order struct {
	DishName string `json:"dish_name"`
	Quantity int    `json:"quantity"`
}

// OrderConfirmation is the backend's acknowledgement of a placed order
type OrderConfirmation struct {
	Message string `json:"message"`
}

// OrderStatus represents the outcome of an order recorded locally
type OrderStatus string

const (
	OrderStatusPlaced OrderStatus = "placed"
	OrderStatusFailed OrderStatus = "failed"
)

// Validate checks that the order can be sent to the backend
func (o *Order) Validate() error {
	if strings.TrimSpace(o.DishName) == "" {
		return fmt.Errorf("dish name is required")
	}
	if o.Quantity < 1 {
		return fmt.Errorf("order quantity must be at least 1")
	}
	return nil
}

// UnmarshalJSON accepts both a bare JSON string and an object with a message field
func (c *OrderConfirmation) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		c.Message = text
		return nil
	}

	var obj struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.Message = obj.Message
	if c.Message == "" {
		c.Message = obj.Detail
	}
	return nil
}
