package models

import "time"

// Product event types published after successful mutations.
const (
	EventProductCreated          = "product.created"
	EventProductUpdated          = "product.updated"
	EventProductDeleted          = "product.deleted"
	EventProductQuantityAdjusted = "product.quantity_adjusted"
	EventProductsReset           = "products.reset"
)

// ProductEvent describes a change to the product collection.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  int64     `json:"product_id,omitempty"`
	SKU        string    `json:"sku,omitempty"`
	Quantity   int       `json:"quantity"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
