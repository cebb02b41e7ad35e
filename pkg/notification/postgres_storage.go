package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the pgx-backed implementation of the Storage interface.
// The schema is provisioned by the embedded migrations, see pkg/pg.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage creates a notification storage on top of a connected pool.
func NewPostgresStorage(pool *pgxpool.Pool) *PostgresStorage {
	return &PostgresStorage{pool: pool}
}

const notificationColumns = `id, recipient_id, type, level, verb,
	actor_content_type, actor_object_id,
	action_object_content_type, action_object_object_id,
	target_content_type, target_object_id,
	description, data, unread, timestamp`

func (s *PostgresStorage) Create(ctx context.Context, notif Notification) error {
	if notif.ID == uuid.Nil {
		return ErrMissingID
	}
	if notif.RecipientID == "" {
		return ErrMissingRecipient
	}
	if notif.Timestamp.IsZero() {
		notif.Timestamp = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		notif.ID, notif.RecipientID, notif.Type, notif.Level, notif.Verb,
		notif.Actor.ContentType, notif.Actor.ObjectID,
		notif.ActionObject.ContentType, notif.ActionObject.ObjectID,
		notif.Target.ContentType, notif.Target.ObjectID,
		notif.Description, notif.Data, notif.Unread, notif.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to store notification %s: %w", notif.ID, err)
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications WHERE id = $1`, id)

	notif, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return notif, nil
}

func (s *PostgresStorage) List(ctx context.Context, recipientID string, opts ListOptions) ([]Notification, error) {
	query := &strings.Builder{}
	query.WriteString(`SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1`)
	args := []any{recipientID}

	if opts.OnlyUnread {
		query.WriteString(` AND unread`)
	}
	if len(opts.Types) > 0 {
		args = append(args, opts.Types)
		fmt.Fprintf(query, ` AND type = ANY($%d)`, len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		fmt.Fprintf(query, ` AND timestamp >= $%d`, len(args))
	}
	query.WriteString(` ORDER BY timestamp DESC`)
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(query, ` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(query, ` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := []Notification{}
	for rows.Next() {
		notif, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, *notif)
	}
	return notifications, rows.Err()
}

func (s *PostgresStorage) MarkRead(ctx context.Context, recipientID string, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET unread = FALSE
		WHERE recipient_id = $1 AND id = ANY($2)`, recipientID, ids)
	return err
}

func (s *PostgresStorage) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE notifications SET unread = FALSE
		WHERE recipient_id = $1 AND unread`, recipientID)
	return err
}

func (s *PostgresStorage) Delete(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.pool.Exec(ctx, `DELETE FROM notifications WHERE id = ANY($1)`, ids)
	return err
}

func (s *PostgresStorage) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE recipient_id = $1 AND unread`, recipientID).Scan(&count)
	return count, err
}

func scanNotification(row pgx.Row) (*Notification, error) {
	var n Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.Type, &n.Level, &n.Verb,
		&n.Actor.ContentType, &n.Actor.ObjectID,
		&n.ActionObject.ContentType, &n.ActionObject.ObjectID,
		&n.Target.ContentType, &n.Target.ObjectID,
		&n.Description, &n.Data, &n.Unread, &n.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
