package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/circleats/donation-service/internal/domain"
	"github.com/circleats/donation-service/internal/events"
	"github.com/circleats/donation-service/internal/geocode"
	"github.com/circleats/donation-service/internal/repository"
	apperrors "github.com/circleats/donation-service/pkg/util/errorutil"
)

// DonationService coordinates the donation lifecycle:
// Pending -> Requested -> In Transit -> Donated, plus the direct
// shelter-accept path that skips the volunteer leg.
type DonationService struct {
	donations     repository.DonationRepository
	notifications repository.NotificationRepository
	users         repository.UserRepository
	geocoder      geocode.Geocoder
	dispatcher    events.Dispatcher
}

// DonationDependencies bundles collaborators for the donation service.
type DonationDependencies struct {
	DonationRepo     repository.DonationRepository
	NotificationRepo repository.NotificationRepository
	UserRepo         repository.UserRepository
	Geocoder         geocode.Geocoder
	Dispatcher       events.Dispatcher
}

// NewDonationService constructs the service.
func NewDonationService(deps DonationDependencies) *DonationService {
	return &DonationService{
		donations:     deps.DonationRepo,
		notifications: deps.NotificationRepo,
		users:         deps.UserRepo,
		geocoder:      deps.Geocoder,
		dispatcher:    deps.Dispatcher,
	}
}

// CreateDonation records a new offer with status Pending and all role
// assignment fields unset.
func (s *DonationService) CreateDonation(ctx context.Context, donorID, item string, quantity int, location string) (*domain.Donation, error) {
	donation := &domain.Donation{
		DonorID:  donorID,
		Item:     strings.TrimSpace(item),
		Quantity: quantity,
		Location: strings.TrimSpace(location),
		Status:   domain.DonationStatusPending,
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventDonationCreated,
		DonationID: donation.ID,
		Payload: events.DonationCreatedPayload{
			DonorID:  donation.DonorID,
			Item:     donation.Item,
			Quantity: donation.Quantity,
		},
	})
	return donation, nil
}

// RequestDonation moves a Pending donation to Requested on behalf of a
// shelter. A "lat,lon" location is resolved to a display address before any
// write; if resolution fails the donation is left untouched.
func (s *DonationService) RequestDonation(ctx context.Context, donationID, shelterEmail, location string, selfPickup bool) (*domain.Donation, error) {
	if err := validateDonationID(donationID); err != nil {
		return nil, err
	}

	resolved := strings.TrimSpace(location)
	if lat, lon, ok := parseCoordinates(resolved); ok {
		address, err := s.geocoder.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			return nil, apperrors.NewGeocodingFailed(err)
		}
		resolved = address
	}

	req := domain.ShelterRequest{
		Email:      shelterEmail,
		Location:   resolved,
		SelfPickup: selfPickup,
	}
	if err := s.donations.MarkRequested(ctx, donationID, req); err != nil {
		return nil, s.transitionError(ctx, donationID, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDonationRequested,
		DonationID: donationID,
		Payload: events.DonationRequestedPayload{
			ShelterEmail: shelterEmail,
			Location:     resolved,
			SelfPickup:   selfPickup,
		},
	})
	return s.getWithNotifications(ctx, donationID)
}

// AcceptDelivery moves a Requested donation to In Transit and records the
// accepting volunteer. Exactly one notification is appended for the shelter
// that requested the delivery.
func (s *DonationService) AcceptDelivery(ctx context.Context, donationID, volunteerEmail string) (*domain.Donation, error) {
	if err := validateDonationID(donationID); err != nil {
		return nil, err
	}

	if err := s.donations.MarkInTransit(ctx, donationID, volunteerEmail); err != nil {
		return nil, s.transitionError(ctx, donationID, err)
	}

	donation, err := s.getWithNotifications(ctx, donationID)
	if err != nil {
		return nil, err
	}

	shelterEmail := ""
	if donation.ShelterRequest != nil {
		shelterEmail = donation.ShelterRequest.Email
	}
	if shelterEmail != "" {
		message := fmt.Sprintf("Volunteer %s accepted your delivery request for %s", volunteerEmail, donation.Item)
		if err := s.appendNotification(ctx, donation, shelterEmail, message); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDeliveryAccepted,
		DonationID: donationID,
		Payload: events.DeliveryAcceptedPayload{
			VolunteerEmail: volunteerEmail,
			ShelterEmail:   shelterEmail,
		},
	})
	return donation, nil
}

// ShelterAccept completes a donation directly between shelter and donor,
// bypassing the volunteer leg. Allowed while the donation is still Pending
// or Requested.
func (s *DonationService) ShelterAccept(ctx context.Context, donationID, shelterEmail, location string) (*domain.Donation, error) {
	if strings.TrimSpace(shelterEmail) == "" || strings.TrimSpace(location) == "" {
		return nil, apperrors.NewInvalidInput("shelter and location required")
	}
	if err := validateDonationID(donationID); err != nil {
		return nil, err
	}

	if err := s.donations.MarkDonatedDirect(ctx, donationID, shelterEmail, location); err != nil {
		return nil, s.transitionError(ctx, donationID, err)
	}
	return s.completeDonation(ctx, donationID, shelterEmail)
}

// DonateToShelter finishes a volunteer-mediated delivery, moving an
// In Transit donation to Donated.
func (s *DonationService) DonateToShelter(ctx context.Context, donationID, shelterEmail string) (*domain.Donation, error) {
	if err := validateDonationID(donationID); err != nil {
		return nil, err
	}

	if err := s.donations.MarkDelivered(ctx, donationID, shelterEmail); err != nil {
		return nil, s.transitionError(ctx, donationID, err)
	}
	return s.completeDonation(ctx, donationID, shelterEmail)
}

func (s *DonationService) completeDonation(ctx context.Context, donationID, shelterEmail string) (*domain.Donation, error) {
	donation, err := s.getWithNotifications(ctx, donationID)
	if err != nil {
		return nil, err
	}

	// The donor is notified by email; skip silently when the owning account
	// no longer resolves.
	if donor, err := s.users.GetByID(ctx, donation.DonorID); err == nil {
		message := fmt.Sprintf("Your donation %s was received by %s", donation.Item, shelterEmail)
		if err := s.appendNotification(ctx, donation, donor.Email, message); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventDonationCompleted,
		DonationID: donationID,
		Payload: events.DonationCompletedPayload{
			ShelterEmail: shelterEmail,
		},
	})
	return donation, nil
}

// ListAll returns every donation, insertion ordered.
func (s *DonationService) ListAll(ctx context.Context) ([]domain.Donation, error) {
	donations, err := s.donations.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.withNotifications(ctx, donations)
}

// ListByDonor returns donations created by the given donor.
func (s *DonationService) ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error) {
	donations, err := s.donations.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, err
	}
	return s.withNotifications(ctx, donations)
}

// ListByShelterRequester returns donations requested by the given shelter.
func (s *DonationService) ListByShelterRequester(ctx context.Context, email string) ([]domain.Donation, error) {
	donations, err := s.donations.ListByShelterRequester(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.withNotifications(ctx, donations)
}

// ListByVolunteer returns donations accepted by the given volunteer.
func (s *DonationService) ListByVolunteer(ctx context.Context, email string) ([]domain.Donation, error) {
	donations, err := s.donations.ListByVolunteer(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.withNotifications(ctx, donations)
}

// ListOpenRequests returns Requested donations that still need a volunteer.
func (s *DonationService) ListOpenRequests(ctx context.Context) ([]domain.Donation, error) {
	donations, err := s.donations.ListOpenRequests(ctx)
	if err != nil {
		return nil, err
	}
	return s.withNotifications(ctx, donations)
}

// NotificationsForDonor returns the notification logs across all donations
// owned by the given donor.
func (s *DonationService) NotificationsForDonor(ctx context.Context, donorID string) ([]domain.Notification, error) {
	return s.notifications.ListByDonor(ctx, donorID)
}

// NotificationsForRecipient returns notifications addressed to the email.
func (s *DonationService) NotificationsForRecipient(ctx context.Context, email string) ([]domain.Notification, error) {
	return s.notifications.ListByRecipient(ctx, email)
}

func (s *DonationService) appendNotification(ctx context.Context, donation *domain.Donation, recipient, message string) error {
	notification := &domain.Notification{
		DonationID: donation.ID,
		Recipient:  recipient,
		Message:    message,
	}
	if err := s.notifications.Append(ctx, notification); err != nil {
		return err
	}
	donation.Notifications = append(donation.Notifications, *notification)
	return nil
}

func (s *DonationService) getWithNotifications(ctx context.Context, donationID string) (*domain.Donation, error) {
	donation, err := s.donations.GetByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("donation")
		}
		return nil, err
	}
	notifications, err := s.notifications.ListByDonation(ctx, donationID)
	if err != nil {
		return nil, err
	}
	donation.Notifications = notifications
	return donation, nil
}

func (s *DonationService) withNotifications(ctx context.Context, donations []domain.Donation) ([]domain.Donation, error) {
	for i := range donations {
		notifications, err := s.notifications.ListByDonation(ctx, donations[i].ID)
		if err != nil {
			return nil, err
		}
		donations[i].Notifications = notifications
	}
	return donations, nil
}

// transitionError maps a zero-row guarded update onto its cause: the record
// is either missing entirely or in a status the transition does not allow.
func (s *DonationService) transitionError(ctx context.Context, donationID string, err error) error {
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	donation, getErr := s.donations.GetByID(ctx, donationID)
	if getErr != nil {
		if errors.Is(getErr, pgx.ErrNoRows) {
			return apperrors.NewNotFound("donation")
		}
		return getErr
	}
	return apperrors.NewConflict(fmt.Sprintf("donation is %s", donation.Status))
}

func validateDonationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("donation")
	}
	return nil
}

// parseCoordinates recognizes a raw "lat,lon" pair.
func parseCoordinates(location string) (float64, float64, bool) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, false
	}
	return lat, lon, true
}

func (s *DonationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
