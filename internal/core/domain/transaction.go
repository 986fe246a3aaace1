package domain

import "time"

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	TransactionIn  TransactionType = "in"
	TransactionOut TransactionType = "out"
)

func (t TransactionType) Valid() bool {
	return t == TransactionIn || t == TransactionOut
}

// Transaction records a single stock movement against a product.
type Transaction struct {
	ID        string          `json:"id"`
	ProductID string          `json:"productId"`
	Type      TransactionType `json:"type"`
	Quantity  int64           `json:"quantity"`
	Date      time.Time       `json:"date"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// StockDelta is the signed change this transaction applies to its
// product's stock: +quantity for "in", -quantity for "out".
func (t *Transaction) StockDelta() int64 {
	if t.Type == TransactionOut {
		return -t.Quantity
	}
	return t.Quantity
}
