package model

import (
	"time"

	"github.com/google/uuid"
)

type PlacementEventKind string

const (
	PlacementEventRejected PlacementEventKind = "REJECTED"
	PlacementEventPlaced   PlacementEventKind = "PLACED"
	PlacementEventFailed   PlacementEventKind = "FAILED"
)

// PlacementEvent records how one PlaceSuperOrder call ended.
type PlacementEvent struct {
	EventID       string             `json:"event_id" gorm:"primaryKey"`
	RequestID     string             `json:"request_id" gorm:"index"`
	CorrelationID string             `json:"correlation_id" gorm:"index"`
	Symbol        string             `json:"symbol"`
	Exchange      Exchange           `json:"exchange"`
	Kind          PlacementEventKind `json:"kind"`
	Stage         string             `json:"stage,omitempty"`
	ErrorKind     ErrorKind          `json:"error_kind,omitempty"`
	OrderID       string             `json:"order_id,omitempty"`
	OrderStatus   string             `json:"order_status,omitempty"`
	Message       string             `json:"message,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (PlacementEvent) TableName() string {
	return "placement_events"
}

func NewPlacementEvent(requestID string, req *OrderRequest, kind PlacementEventKind, ts time.Time) *PlacementEvent {
	return &PlacementEvent{
		EventID:       uuid.NewString(),
		RequestID:     requestID,
		CorrelationID: req.Tag,
		Symbol:        req.Symbol,
		Exchange:      req.Exchange,
		Kind:          kind,
		CreatedAt:     ts,
	}
}
