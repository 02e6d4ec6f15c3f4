package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/circleats/donation-service/internal/domain"
)

// NotificationRepository persists the append-only notification log embedded
// in donation records. Entries are never updated or deleted.
type NotificationRepository interface {
	Append(ctx context.Context, notification *domain.Notification) error
	ListByDonation(ctx context.Context, donationID string) ([]domain.Notification, error)
	ListByRecipient(ctx context.Context, email string) ([]domain.Notification, error)
	ListByDonor(ctx context.Context, donorID string) ([]domain.Notification, error)
}

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a Postgres-backed implementation.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) Append(ctx context.Context, notification *domain.Notification) error {
	const query = `
        INSERT INTO donation_notifications (donation_id, recipient, message)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		notification.DonationID,
		notification.Recipient,
		notification.Message,
	).Scan(&notification.ID, &notification.CreatedAt)
}

func (r *notificationRepository) ListByDonation(ctx context.Context, donationID string) ([]domain.Notification, error) {
	const query = `
        SELECT id, donation_id, recipient, message, created_at
        FROM donation_notifications WHERE donation_id=$1 ORDER BY id`
	return r.list(ctx, query, donationID)
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, email string) ([]domain.Notification, error) {
	const query = `
        SELECT id, donation_id, recipient, message, created_at
        FROM donation_notifications WHERE recipient=$1 ORDER BY id`
	return r.list(ctx, query, email)
}

func (r *notificationRepository) ListByDonor(ctx context.Context, donorID string) ([]domain.Notification, error) {
	const query = `
        SELECT n.id, n.donation_id, n.recipient, n.message, n.created_at
        FROM donation_notifications n
        JOIN donations d ON d.id = n.donation_id
        WHERE d.donor_id=$1 ORDER BY n.id`
	return r.list(ctx, query, donorID)
}

func (r *notificationRepository) list(ctx context.Context, query string, arg any) ([]domain.Notification, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func scanNotifications(rows pgx.Rows) ([]domain.Notification, error) {
	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.DonationID,
			&n.Recipient,
			&n.Message,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
