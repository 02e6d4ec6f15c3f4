package events

import (
	"time"

	"github.com/circleats/donation-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDonationCreated   EventType = "donation_created"
	EventDonationRequested EventType = "donation_requested"
	EventDeliveryAccepted  EventType = "delivery_accepted"
	EventDonationCompleted EventType = "donation_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	DonationID string      `json:"donation_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// DonationCreatedPayload payload.
type DonationCreatedPayload struct {
	DonorID  string `json:"donor_id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// DonationRequestedPayload payload.
type DonationRequestedPayload struct {
	ShelterEmail string `json:"shelter_email"`
	Location     string `json:"location"`
	SelfPickup   bool   `json:"self_pickup"`
}

// DeliveryAcceptedPayload payload.
type DeliveryAcceptedPayload struct {
	VolunteerEmail string `json:"volunteer_email"`
	ShelterEmail   string `json:"shelter_email,omitempty"`
}

// DonationCompletedPayload payload.
type DonationCompletedPayload struct {
	ShelterEmail string                `json:"shelter_email"`
	OldStatus    domain.DonationStatus `json:"old_status"`
}
