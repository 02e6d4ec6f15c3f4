package domain

import "time"

// User is the domain model for any CirclEats account. Donor, shelter and
// volunteer are behavioral roles over the same account type, matching the
// single shared signup flow.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
