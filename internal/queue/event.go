// Package queue defines listing events and publishes them to the message broker.
package queue

import (
	"time"

	"github.com/automarket/marketplace-api/internal/model"
)

// Routing keys on the listings exchange.
const (
	ListingCreated       = "listing.created"
	ListingStatusChanged = "listing.status_changed"
	ListingSold          = "listing.sold"
	ListingDeleted       = "listing.deleted"
)

// ListingEvent is published after a listing mutation has been stored.  It
// carries enough for downstream consumers (search indexers, notification
// senders) to act without reading the primary store.
type ListingEvent struct {
	Type       string          `json:"type"`
	CarID      string          `json:"car_id"`
	SellerID   string          `json:"seller_id"`
	Brand      string          `json:"brand,omitempty"`
	Model      string          `json:"model,omitempty"`
	Price      float64         `json:"price,omitempty"`
	Status     model.CarStatus `json:"status,omitempty"`
	PrevStatus model.CarStatus `json:"prev_status,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewListingEvent fills an event from a stored listing.
func NewListingEvent(typ string, car *model.Car, at time.Time) ListingEvent {
	return ListingEvent{
		Type:       typ,
		CarID:      car.ID,
		SellerID:   car.SellerID,
		Brand:      car.Brand,
		Model:      car.Model,
		Price:      car.Price,
		Status:     car.Status,
		OccurredAt: at.UTC(),
	}
}
