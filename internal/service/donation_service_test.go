package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circleats/donation-service/internal/domain"
	"github.com/circleats/donation-service/internal/events"
)

// --- Mocks ---

type MockDonationRepo struct {
	CreateFunc                 func(ctx context.Context, donation *domain.Donation) error
	GetByIDFunc                func(ctx context.Context, id string) (*domain.Donation, error)
	ListAllFunc                func(ctx context.Context) ([]domain.Donation, error)
	ListByDonorFunc            func(ctx context.Context, donorID string) ([]domain.Donation, error)
	ListByShelterRequesterFunc func(ctx context.Context, email string) ([]domain.Donation, error)
	ListByVolunteerFunc        func(ctx context.Context, email string) ([]domain.Donation, error)
	ListOpenRequestsFunc       func(ctx context.Context) ([]domain.Donation, error)
	MarkRequestedFunc          func(ctx context.Context, id string, req domain.ShelterRequest) error
	MarkInTransitFunc          func(ctx context.Context, id, volunteerEmail string) error
	MarkDonatedDirectFunc      func(ctx context.Context, id, shelterEmail, shelterLocation string) error
	MarkDeliveredFunc          func(ctx context.Context, id, shelterEmail string) error
}

func (m *MockDonationRepo) Create(ctx context.Context, donation *domain.Donation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, donation)
	}
	donation.ID = uuid.NewString()
	return nil
}

func (m *MockDonationRepo) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, pgx.ErrNoRows
}

func (m *MockDonationRepo) ListAll(ctx context.Context) ([]domain.Donation, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

func (m *MockDonationRepo) ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error) {
	if m.ListByDonorFunc != nil {
		return m.ListByDonorFunc(ctx, donorID)
	}
	return nil, nil
}

func (m *MockDonationRepo) ListByShelterRequester(ctx context.Context, email string) ([]domain.Donation, error) {
	if m.ListByShelterRequesterFunc != nil {
		return m.ListByShelterRequesterFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockDonationRepo) ListByVolunteer(ctx context.Context, email string) ([]domain.Donation, error) {
	if m.ListByVolunteerFunc != nil {
		return m.ListByVolunteerFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockDonationRepo) ListOpenRequests(ctx context.Context) ([]domain.Donation, error) {
	if m.ListOpenRequestsFunc != nil {
		return m.ListOpenRequestsFunc(ctx)
	}
	return nil, nil
}

func (m *MockDonationRepo) MarkRequested(ctx context.Context, id string, req domain.ShelterRequest) error {
	if m.MarkRequestedFunc != nil {
		return m.MarkRequestedFunc(ctx, id, req)
	}
	return nil
}

func (m *MockDonationRepo) MarkInTransit(ctx context.Context, id, volunteerEmail string) error {
	if m.MarkInTransitFunc != nil {
		return m.MarkInTransitFunc(ctx, id, volunteerEmail)
	}
	return nil
}

func (m *MockDonationRepo) MarkDonatedDirect(ctx context.Context, id, shelterEmail, shelterLocation string) error {
	if m.MarkDonatedDirectFunc != nil {
		return m.MarkDonatedDirectFunc(ctx, id, shelterEmail, shelterLocation)
	}
	return nil
}

func (m *MockDonationRepo) MarkDelivered(ctx context.Context, id, shelterEmail string) error {
	if m.MarkDeliveredFunc != nil {
		return m.MarkDeliveredFunc(ctx, id, shelterEmail)
	}
	return nil
}

type MockNotificationRepo struct {
	Appended []domain.Notification

	AppendFunc          func(ctx context.Context, notification *domain.Notification) error
	ListByDonationFunc  func(ctx context.Context, donationID string) ([]domain.Notification, error)
	ListByRecipientFunc func(ctx context.Context, email string) ([]domain.Notification, error)
	ListByDonorFunc     func(ctx context.Context, donorID string) ([]domain.Notification, error)
}

func (m *MockNotificationRepo) Append(ctx context.Context, notification *domain.Notification) error {
	if m.AppendFunc != nil {
		return m.AppendFunc(ctx, notification)
	}
	notification.ID = int64(len(m.Appended) + 1)
	m.Appended = append(m.Appended, *notification)
	return nil
}

func (m *MockNotificationRepo) ListByDonation(ctx context.Context, donationID string) ([]domain.Notification, error) {
	if m.ListByDonationFunc != nil {
		return m.ListByDonationFunc(ctx, donationID)
	}
	return nil, nil
}

func (m *MockNotificationRepo) ListByRecipient(ctx context.Context, email string) ([]domain.Notification, error) {
	if m.ListByRecipientFunc != nil {
		return m.ListByRecipientFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockNotificationRepo) ListByDonor(ctx context.Context, donorID string) ([]domain.Notification, error) {
	if m.ListByDonorFunc != nil {
		return m.ListByDonorFunc(ctx, donorID)
	}
	return nil, nil
}

type MockGeocoder struct {
	ReverseGeocodeFunc func(ctx context.Context, lat, lon float64) (string, error)
	Calls              int
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	m.Calls++
	if m.ReverseGeocodeFunc != nil {
		return m.ReverseGeocodeFunc(ctx, lat, lon)
	}
	return "MG Road, Bengaluru", nil
}

type testDeps struct {
	donations     *MockDonationRepo
	notifications *MockNotificationRepo
	users         *MockUserRepo
	geocoder      *MockGeocoder
	dispatcher    events.Dispatcher
}

func newTestService(deps testDeps) *DonationService {
	if deps.donations == nil {
		deps.donations = &MockDonationRepo{}
	}
	if deps.notifications == nil {
		deps.notifications = &MockNotificationRepo{}
	}
	if deps.users == nil {
		deps.users = &MockUserRepo{}
	}
	if deps.geocoder == nil {
		deps.geocoder = &MockGeocoder{}
	}
	return NewDonationService(DonationDependencies{
		DonationRepo:     deps.donations,
		NotificationRepo: deps.notifications,
		UserRepo:         deps.users,
		Geocoder:         deps.geocoder,
		Dispatcher:       deps.dispatcher,
	})
}

// --- Tests ---

func TestCreateDonation(t *testing.T) {
	ctx := context.Background()

	t.Run("starts Pending with role fields unset", func(t *testing.T) {
		var created *domain.Donation
		repo := &MockDonationRepo{
			CreateFunc: func(ctx context.Context, donation *domain.Donation) error {
				donation.ID = uuid.NewString()
				created = donation
				return nil
			},
		}
		svc := newTestService(testDeps{donations: repo})

		donation, err := svc.CreateDonation(ctx, "donor-1", "rice", 5, "Indiranagar")

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, domain.DonationStatusPending, donation.Status)
		assert.Equal(t, "rice", donation.Item)
		assert.Equal(t, 5, donation.Quantity)
		assert.Nil(t, donation.RequestedBy)
		assert.Nil(t, donation.AcceptedBy)
		assert.Nil(t, donation.DonatedTo)
		assert.Empty(t, donation.Notifications)
	})

	t.Run("publishes a donation_created event", func(t *testing.T) {
		dispatcher := events.NewInMemoryDispatcher()
		var received []events.Event
		dispatcher.Subscribe(events.EventDonationCreated, func(ctx context.Context, event events.Event) error {
			received = append(received, event)
			return nil
		})
		svc := newTestService(testDeps{dispatcher: dispatcher})

		_, err := svc.CreateDonation(ctx, "donor-1", "rice", 5, "Indiranagar")

		require.NoError(t, err)
		require.Len(t, received, 1)
		assert.NotEmpty(t, received[0].ID)
		assert.NotEmpty(t, received[0].DonationID)
	})
}

func TestRequestDonation(t *testing.T) {
	ctx := context.Background()
	donationID := uuid.NewString()

	requestedDonation := func(req domain.ShelterRequest) *domain.Donation {
		return &domain.Donation{
			ID:             donationID,
			DonorID:        "donor-1",
			Item:           "rice",
			Status:         domain.DonationStatusRequested,
			RequestedBy:    &req.Email,
			ShelterRequest: &req,
		}
	}

	t.Run("resolves coordinates before writing", func(t *testing.T) {
		var marked *domain.ShelterRequest
		repo := &MockDonationRepo{
			MarkRequestedFunc: func(ctx context.Context, id string, req domain.ShelterRequest) error {
				marked = &req
				return nil
			},
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				return requestedDonation(*marked), nil
			},
		}
		geocoder := &MockGeocoder{
			ReverseGeocodeFunc: func(ctx context.Context, lat, lon float64) (string, error) {
				assert.InDelta(t, 12.9, lat, 0.001)
				assert.InDelta(t, 77.6, lon, 0.001)
				return "MG Road, Bengaluru", nil
			},
		}
		svc := newTestService(testDeps{donations: repo, geocoder: geocoder})

		donation, err := svc.RequestDonation(ctx, donationID, "s@x.com", "12.9,77.6", false)

		require.NoError(t, err)
		require.NotNil(t, marked)
		assert.Equal(t, "MG Road, Bengaluru", marked.Location)
		assert.Equal(t, "s@x.com", marked.Email)
		assert.Equal(t, 1, geocoder.Calls)
		assert.Equal(t, domain.DonationStatusRequested, donation.Status)
	})

	t.Run("passes a display address through untouched", func(t *testing.T) {
		var marked *domain.ShelterRequest
		repo := &MockDonationRepo{
			MarkRequestedFunc: func(ctx context.Context, id string, req domain.ShelterRequest) error {
				marked = &req
				return nil
			},
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				return requestedDonation(*marked), nil
			},
		}
		geocoder := &MockGeocoder{}
		svc := newTestService(testDeps{donations: repo, geocoder: geocoder})

		_, err := svc.RequestDonation(ctx, donationID, "s@x.com", "MG Road, Bengaluru", true)

		require.NoError(t, err)
		assert.Equal(t, 0, geocoder.Calls)
		require.NotNil(t, marked)
		assert.Equal(t, "MG Road, Bengaluru", marked.Location)
		assert.True(t, marked.SelfPickup)
	})

	t.Run("aborts without writing when geocoding fails", func(t *testing.T) {
		markCalls := 0
		repo := &MockDonationRepo{
			MarkRequestedFunc: func(ctx context.Context, id string, req domain.ShelterRequest) error {
				markCalls++
				return nil
			},
		}
		geocoder := &MockGeocoder{
			ReverseGeocodeFunc: func(ctx context.Context, lat, lon float64) (string, error) {
				return "", errors.New("upstream timeout")
			},
		}
		svc := newTestService(testDeps{donations: repo, geocoder: geocoder})

		_, err := svc.RequestDonation(ctx, donationID, "s@x.com", "12.9,77.6", false)

		require.Error(t, err)
		assert.Equal(t, "GEOCODING_FAILED", domainCode(t, err))
		assert.Equal(t, 0, markCalls)
	})

	t.Run("reports missing donations", func(t *testing.T) {
		repo := &MockDonationRepo{
			MarkRequestedFunc: func(ctx context.Context, id string, req domain.ShelterRequest) error {
				return pgx.ErrNoRows
			},
		}
		svc := newTestService(testDeps{donations: repo})

		_, err := svc.RequestDonation(ctx, donationID, "s@x.com", "MG Road", false)

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("rejects a malformed identifier without touching the store", func(t *testing.T) {
		repo := &MockDonationRepo{
			MarkRequestedFunc: func(ctx context.Context, id string, req domain.ShelterRequest) error {
				t.Fatal("store should not be touched")
				return nil
			},
		}
		svc := newTestService(testDeps{donations: repo})

		_, err := svc.RequestDonation(ctx, "not-a-uuid", "s@x.com", "MG Road", false)

		require.Error(t, err)
		assert.Equal(t, "NOT_FOUND", domainCode(t, err))
	})

	t.Run("conflicts when the donation already advanced", func(t *testing.T) {
		repo := &MockDonationRepo{
			MarkRequestedFunc: func(ctx context.Context, id string, req domain.ShelterRequest) error {
				return pgx.ErrNoRows
			},
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				return &domain.Donation{ID: id, Status: domain.DonationStatusInTransit}, nil
			},
		}
		svc := newTestService(testDeps{donations: repo})

		_, err := svc.RequestDonation(ctx, donationID, "s@x.com", "MG Road", false)

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", domainCode(t, err))
	})
}

func TestAcceptDelivery(t *testing.T) {
	ctx := context.Background()
	donationID := uuid.NewString()

	inTransit := &domain.Donation{
		ID:      donationID,
		DonorID: "donor-1",
		Item:    "rice",
		Status:  domain.DonationStatusInTransit,
		ShelterRequest: &domain.ShelterRequest{
			Email:    "s@x.com",
			Location: "MG Road, Bengaluru",
		},
	}

	t.Run("notifies the requesting shelter exactly once", func(t *testing.T) {
		repo := &MockDonationRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				d := *inTransit
				return &d, nil
			},
		}
		notifications := &MockNotificationRepo{}
		svc := newTestService(testDeps{donations: repo, notifications: notifications})

		donation, err := svc.AcceptDelivery(ctx, donationID, "v@x.com")

		require.NoError(t, err)
		require.Len(t, notifications.Appended, 1)
		assert.Equal(t, "s@x.com", notifications.Appended[0].Recipient)
		assert.Contains(t, notifications.Appended[0].Message, "v@x.com")
		require.Len(t, donation.Notifications, 1)
	})

	t.Run("second volunteer loses the race", func(t *testing.T) {
		repo := &MockDonationRepo{
			MarkInTransitFunc: func(ctx context.Context, id, volunteerEmail string) error {
				return pgx.ErrNoRows
			},
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				d := *inTransit
				return &d, nil
			},
		}
		notifications := &MockNotificationRepo{}
		svc := newTestService(testDeps{donations: repo, notifications: notifications})

		_, err := svc.AcceptDelivery(ctx, donationID, "other@x.com")

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", domainCode(t, err))
		assert.Empty(t, notifications.Appended)
	})
}

func TestShelterAccept(t *testing.T) {
	ctx := context.Background()
	donationID := uuid.NewString()

	t.Run("requires shelter and location", func(t *testing.T) {
		svc := newTestService(testDeps{})

		_, err := svc.ShelterAccept(ctx, donationID, "", "MG Road")
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", domainCode(t, err))

		_, err = svc.ShelterAccept(ctx, donationID, "s@x.com", "  ")
		require.Error(t, err)
		assert.Equal(t, "INVALID_INPUT", domainCode(t, err))
	})

	t.Run("completes the donation and notifies the donor", func(t *testing.T) {
		repo := &MockDonationRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				donatedTo := "s@x.com"
				return &domain.Donation{
					ID:        id,
					DonorID:   "donor-1",
					Item:      "rice",
					Status:    domain.DonationStatusDonated,
					DonatedTo: &donatedTo,
				}, nil
			},
		}
		users := &MockUserRepo{
			GetByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
				return &domain.User{ID: id, Email: "donor@x.com"}, nil
			},
		}
		notifications := &MockNotificationRepo{}
		svc := newTestService(testDeps{donations: repo, users: users, notifications: notifications})

		donation, err := svc.ShelterAccept(ctx, donationID, "s@x.com", "MG Road")

		require.NoError(t, err)
		assert.Equal(t, domain.DonationStatusDonated, donation.Status)
		require.Len(t, notifications.Appended, 1)
		assert.Equal(t, "donor@x.com", notifications.Appended[0].Recipient)
		assert.Contains(t, notifications.Appended[0].Message, "s@x.com")
	})
}

func TestDonateToShelter(t *testing.T) {
	ctx := context.Background()
	donationID := uuid.NewString()

	t.Run("only an In Transit donation can be delivered", func(t *testing.T) {
		repo := &MockDonationRepo{
			MarkDeliveredFunc: func(ctx context.Context, id, shelterEmail string) error {
				return pgx.ErrNoRows
			},
			GetByIDFunc: func(ctx context.Context, id string) (*domain.Donation, error) {
				return &domain.Donation{ID: id, Status: domain.DonationStatusPending}, nil
			},
		}
		svc := newTestService(testDeps{donations: repo})

		_, err := svc.DonateToShelter(ctx, donationID, "s@x.com")

		require.Error(t, err)
		assert.Equal(t, "CONFLICT", domainCode(t, err))
	})
}

func TestParseCoordinates(t *testing.T) {
	cases := []struct {
		in      string
		lat     float64
		lon     float64
		matches bool
	}{
		{"12.9,77.6", 12.9, 77.6, true},
		{" 12.9 , 77.6 ", 12.9, 77.6, true},
		{"-33.86,151.2", -33.86, 151.2, true},
		{"MG Road, Bengaluru", 0, 0, false},
		{"12.9", 0, 0, false},
		{"12.9,77.6,0", 0, 0, false},
		{"", 0, 0, false},
	}

	for _, tc := range cases {
		lat, lon, ok := parseCoordinates(tc.in)
		assert.Equal(t, tc.matches, ok, "input %q", tc.in)
		if tc.matches {
			assert.Equal(t, tc.lat, lat)
			assert.Equal(t, tc.lon, lon)
		}
	}
}
