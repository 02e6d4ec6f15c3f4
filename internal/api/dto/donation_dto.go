package dto

import (
	"time"

	"github.com/circleats/donation-service/internal/domain"
)

// CreateDonationRequest payload.
type CreateDonationRequest struct {
	UserID   string `json:"user_id"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
}

// ShelterRequestBody payload for PUT /api/shelter_request/{id}. Location may
// be a display address or a raw "lat,lon" pair.
type ShelterRequestBody struct {
	Shelter    string `json:"shelter"`
	Location   string `json:"location"`
	SelfPickup bool   `json:"self_pickup"`
}

// VolunteerBody payload for volunteer transitions.
type VolunteerBody struct {
	Volunteer string `json:"volunteer"`
}

// ShelterBody payload for shelter transitions.
type ShelterBody struct {
	Shelter  string `json:"shelter"`
	Location string `json:"location"`
}

// ShelterRequestResponse mirrors the embedded shelter-request sub-record.
type ShelterRequestResponse struct {
	Email      string `json:"email"`
	Location   string `json:"location"`
	SelfPickup bool   `json:"self_pickup"`
}

// NotificationResponse is one entry of a donation's notification log.
type NotificationResponse struct {
	DonationID string    `json:"donation_id"`
	Recipient  string    `json:"recipient"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

// DonationResponse is the full donation record with identifiers in their
// canonical string form.
type DonationResponse struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	Item            string                  `json:"item"`
	Quantity        int                     `json:"quantity"`
	Location        string                  `json:"location"`
	Status          domain.DonationStatus   `json:"status"`
	RequestedBy     *string                 `json:"requested_by"`
	AcceptedBy      *string                 `json:"accepted_by"`
	CollectedBy     *string                 `json:"collected_by"`
	DonatedTo       *string                 `json:"donated_to"`
	ShelterLocation *string                 `json:"shelter_location,omitempty"`
	ShelterRequest  *ShelterRequestResponse `json:"shelter_request"`
	Notifications   []NotificationResponse  `json:"notifications"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// NewDonationResponse maps a domain donation onto the wire shape.
func NewDonationResponse(d *domain.Donation) DonationResponse {
	resp := DonationResponse{
		ID:              d.ID,
		UserID:          d.DonorID,
		Item:            d.Item,
		Quantity:        d.Quantity,
		Location:        d.Location,
		Status:          d.Status,
		RequestedBy:     d.RequestedBy,
		AcceptedBy:      d.AcceptedBy,
		CollectedBy:     d.CollectedBy,
		DonatedTo:       d.DonatedTo,
		ShelterLocation: d.ShelterLocation,
		Notifications:   make([]NotificationResponse, 0, len(d.Notifications)),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	if d.ShelterRequest != nil {
		resp.ShelterRequest = &ShelterRequestResponse{
			Email:      d.ShelterRequest.Email,
			Location:   d.ShelterRequest.Location,
			SelfPickup: d.ShelterRequest.SelfPickup,
		}
	}
	for _, n := range d.Notifications {
		resp.Notifications = append(resp.Notifications, NewNotificationResponse(n))
	}
	return resp
}

// NewNotificationResponse maps a notification entry onto the wire shape.
func NewNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		DonationID: n.DonationID,
		Recipient:  n.Recipient,
		Message:    n.Message,
		CreatedAt:  n.CreatedAt,
	}
}

// NewDonationListResponse maps a slice of donations.
func NewDonationListResponse(donations []domain.Donation) []DonationResponse {
	items := make([]DonationResponse, 0, len(donations))
	for i := range donations {
		items = append(items, NewDonationResponse(&donations[i]))
	}
	return items
}

// NewNotificationListResponse maps a slice of notification entries.
func NewNotificationListResponse(notifications []domain.Notification) []NotificationResponse {
	items := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, NewNotificationResponse(n))
	}
	return items
}
