package dto

import (
	"time"

	"vetdesk/internal/domain/stockledger"
)

// --- Response DTOs ---

// MovementResponse is one stock ledger history row.
type MovementResponse struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Direction string    `json:"direction"`
	Quantity  int       `json:"quantity"`
	RefType   string    `json:"refType"`
	RefID     *string   `json:"refId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

// FromMovement creates response DTO from domain movement.
func FromMovement(m *stockledger.Movement) *MovementResponse {
	resp := &MovementResponse{
		ID:        m.ID.String(),
		ProductID: m.ProductID.String(),
		Direction: string(m.Direction),
		Quantity:  m.Quantity,
		RefType:   string(m.RefType),
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
	if m.RefID != nil {
		s := m.RefID.String()
		resp.RefID = &s
	}
	return resp
}

// FromMovements maps a list of movements.
func FromMovements(movements []stockledger.Movement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i := range movements {
		result[i] = FromMovement(&movements[i])
	}
	return result
}
