// Package stockledger provides atomic product stock movements.
// Stock is mutated exclusively here, always inside the caller's
// transaction, so a failed attendance or invoice edit rolls back
// every stock change it caused.
package stockledger

import (
	"time"

	"vetdesk/internal/core/id"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// RefType names the document kind that caused a movement.
type RefType string

const (
	RefAttendance  RefType = "attendance"
	RefInvoiceItem RefType = "invoice_item"
	RefManual      RefType = "manual"
)

// Movement is one historical stock change.
type Movement struct {
	ID        id.ID     `db:"id" json:"id"`
	ProductID id.ID     `db:"product_id" json:"productId"`
	Direction Direction `db:"direction" json:"direction"`
	Quantity  int       `db:"quantity" json:"quantity"`
	RefType   RefType   `db:"ref_type" json:"refType"`
	RefID     *id.ID    `db:"ref_id" json:"refId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

// Ref identifies the document that caused a movement.
type Ref struct {
	Type RefType
	ID   *id.ID
}

// Usage is a product quantity pair, used when diffing an
// attendance's product list.
type Usage struct {
	ProductID id.ID
	Quantity  int
}
