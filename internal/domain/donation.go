package domain

import "time"

// DonationStatus enumerates lifecycle states for donation offers.
// "In Transit" keeps the spelling used by existing stored records.
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "Pending"
	DonationStatusRequested DonationStatus = "Requested"
	DonationStatusInTransit DonationStatus = "In Transit"
	DonationStatusDonated   DonationStatus = "Donated"
)

// ShelterRequest is the sub-record written when a shelter requests delivery.
type ShelterRequest struct {
	Email      string `json:"email"`
	Location   string `json:"location"`
	SelfPickup bool   `json:"self_pickup"`
}

// Notification is one entry of a donation's append-only notification log,
// addressed to a specific recipient email.
type Notification struct {
	ID         int64
	DonationID string
	Recipient  string
	Message    string
	CreatedAt  time.Time
}

// Donation is the aggregate tracking one offer from creation through
// delivery. Role-assignment fields are set at most once as the status
// advances and are never cleared.
type Donation struct {
	ID              string
	DonorID         string
	Item            string
	Quantity        int
	Location        string
	Status          DonationStatus
	RequestedBy     *string
	AcceptedBy      *string
	CollectedBy     *string
	DonatedTo       *string
	ShelterLocation *string
	ShelterRequest  *ShelterRequest
	Notifications   []Notification
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
