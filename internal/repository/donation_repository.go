package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circleats/donation-service/internal/domain"
)

const donationColumns = `id, donor_id, item, quantity, location, status,
        requested_by, accepted_by, collected_by, donated_to, shelter_location,
        shelter_request_email, shelter_request_location, shelter_request_self_pickup,
        created_at, updated_at`

// DonationRepository encapsulates donation persistence. Every status
// transition is a single guarded UPDATE: the WHERE clause carries the
// expected current status, so two concurrent writers cannot both advance the
// same record. A zero-row update surfaces as pgx.ErrNoRows; callers
// disambiguate missing record vs failed guard.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	GetByID(ctx context.Context, id string) (*domain.Donation, error)
	ListAll(ctx context.Context) ([]domain.Donation, error)
	ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error)
	ListByShelterRequester(ctx context.Context, email string) ([]domain.Donation, error)
	ListByVolunteer(ctx context.Context, email string) ([]domain.Donation, error)
	ListOpenRequests(ctx context.Context) ([]domain.Donation, error)
	MarkRequested(ctx context.Context, id string, req domain.ShelterRequest) error
	MarkInTransit(ctx context.Context, id, volunteerEmail string) error
	MarkDonatedDirect(ctx context.Context, id, shelterEmail, shelterLocation string) error
	MarkDelivered(ctx context.Context, id, shelterEmail string) error
}

type donationRepository struct {
	pool *pgxpool.Pool
}

// NewDonationRepository instantiates repository.
func NewDonationRepository(pool *pgxpool.Pool) DonationRepository {
	return &donationRepository{pool: pool}
}

func (r *donationRepository) Create(ctx context.Context, donation *domain.Donation) error {
	const query = `
        INSERT INTO donations (donor_id, item, quantity, location, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		donation.DonorID,
		donation.Item,
		donation.Quantity,
		donation.Location,
		donation.Status,
	).Scan(&donation.ID, &donation.CreatedAt, &donation.UpdatedAt)
}

func (r *donationRepository) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id=$1`

	var d donationRow
	if err := r.pool.QueryRow(ctx, query, id).Scan(d.targets()...); err != nil {
		return nil, err
	}
	donation := d.toDomain()
	return &donation, nil
}

func (r *donationRepository) ListAll(ctx context.Context) ([]domain.Donation, error) {
	return r.list(ctx, ``)
}

func (r *donationRepository) ListByDonor(ctx context.Context, donorID string) ([]domain.Donation, error) {
	return r.list(ctx, `WHERE donor_id=$1`, donorID)
}

func (r *donationRepository) ListByShelterRequester(ctx context.Context, email string) ([]domain.Donation, error) {
	return r.list(ctx, `WHERE requested_by=$1`, email)
}

func (r *donationRepository) ListByVolunteer(ctx context.Context, email string) ([]domain.Donation, error) {
	return r.list(ctx, `WHERE accepted_by=$1`, email)
}

func (r *donationRepository) ListOpenRequests(ctx context.Context) ([]domain.Donation, error) {
	// Requests flagged self_pickup do not need a volunteer.
	return r.list(ctx, `WHERE status=$1 AND COALESCE(shelter_request_self_pickup, FALSE)=FALSE`,
		domain.DonationStatusRequested)
}

func (r *donationRepository) MarkRequested(ctx context.Context, id string, req domain.ShelterRequest) error {
	const query = `
        UPDATE donations
        SET status=$1, requested_by=$2,
            shelter_request_email=$2, shelter_request_location=$3, shelter_request_self_pickup=$4,
            updated_at=NOW()
        WHERE id=$5 AND status=$6`
	return r.guardedUpdate(ctx, query,
		domain.DonationStatusRequested,
		req.Email,
		req.Location,
		req.SelfPickup,
		id,
		domain.DonationStatusPending,
	)
}

func (r *donationRepository) MarkInTransit(ctx context.Context, id, volunteerEmail string) error {
	const query = `
        UPDATE donations
        SET status=$1, accepted_by=$2, collected_by=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	return r.guardedUpdate(ctx, query,
		domain.DonationStatusInTransit,
		volunteerEmail,
		id,
		domain.DonationStatusRequested,
	)
}

func (r *donationRepository) MarkDonatedDirect(ctx context.Context, id, shelterEmail, shelterLocation string) error {
	const query = `
        UPDATE donations
        SET status=$1, donated_to=$2, shelter_location=$3, updated_at=NOW()
        WHERE id=$4 AND status IN ($5, $6)`
	return r.guardedUpdate(ctx, query,
		domain.DonationStatusDonated,
		shelterEmail,
		shelterLocation,
		id,
		domain.DonationStatusPending,
		domain.DonationStatusRequested,
	)
}

func (r *donationRepository) MarkDelivered(ctx context.Context, id, shelterEmail string) error {
	const query = `
        UPDATE donations
        SET status=$1, donated_to=$2, updated_at=NOW()
        WHERE id=$3 AND status=$4`
	return r.guardedUpdate(ctx, query,
		domain.DonationStatusDonated,
		shelterEmail,
		id,
		domain.DonationStatusInTransit,
	)
}

func (r *donationRepository) guardedUpdate(ctx context.Context, query string, args ...any) error {
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *donationRepository) list(ctx context.Context, where string, args ...any) ([]domain.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations ` + where + ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Donation
	for rows.Next() {
		var d donationRow
		if err := rows.Scan(d.targets()...); err != nil {
			return nil, err
		}
		result = append(result, d.toDomain())
	}
	return result, rows.Err()
}

// donationRow mirrors the donations table; the flattened shelter_request
// columns are reassembled into the sub-record when the request email is set.
type donationRow struct {
	donation      domain.Donation
	reqEmail      *string
	reqLocation   *string
	reqSelfPickup *bool
}

func (d *donationRow) targets() []any {
	return []any{
		&d.donation.ID,
		&d.donation.DonorID,
		&d.donation.Item,
		&d.donation.Quantity,
		&d.donation.Location,
		&d.donation.Status,
		&d.donation.RequestedBy,
		&d.donation.AcceptedBy,
		&d.donation.CollectedBy,
		&d.donation.DonatedTo,
		&d.donation.ShelterLocation,
		&d.reqEmail,
		&d.reqLocation,
		&d.reqSelfPickup,
		&d.donation.CreatedAt,
		&d.donation.UpdatedAt,
	}
}

func (d *donationRow) toDomain() domain.Donation {
	donation := d.donation
	if d.reqEmail != nil {
		req := domain.ShelterRequest{Email: *d.reqEmail}
		if d.reqLocation != nil {
			req.Location = *d.reqLocation
		}
		if d.reqSelfPickup != nil {
			req.SelfPickup = *d.reqSelfPickup
		}
		donation.ShelterRequest = &req
	}
	return donation
}
