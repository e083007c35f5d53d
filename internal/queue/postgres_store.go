package queue

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/sivaSai9177/alert-agent/internal/models"
)

// PostgresStore keeps queued actions in a queued_actions table. Enqueue order
// is the seq column, assigned by the database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, action models.QueuedAction) error {
	const query = `
		INSERT INTO queued_actions (id, domain, kind, payload, hospital_id, user_id, status, attempts, enqueued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		action.ID,
		action.Domain,
		action.Kind,
		[]byte(action.Payload),
		action.Context.HospitalID,
		action.Context.UserID,
		string(models.ActionStatusPending),
		action.Attempts,
		action.EnqueuedAt,
	)
	return errors.Wrap(err, "append queued action")
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]models.QueuedAction, error) {
	const query = `
		SELECT id, seq, domain, kind, payload, hospital_id, user_id, status, attempts, last_error, enqueued_at
		FROM queued_actions
		WHERE status = 'pending'
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "list pending actions")
	}
	defer rows.Close()

	var actions []models.QueuedAction
	for rows.Next() {
		action, err := scanQueuedAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list pending actions")
	}
	return actions, nil
}

func (s *PostgresStore) MarkInFlight(ctx context.Context, id string) error {
	return s.execByID(ctx, id, `UPDATE queued_actions SET status = 'in_flight' WHERE id = $1`)
}

func (s *PostgresStore) MarkDelivered(ctx context.Context, id string) error {
	return s.execByID(ctx, id, `DELETE FROM queued_actions WHERE id = $1`)
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id string, lastError string) error {
	const query = `
		UPDATE queued_actions
		SET status = 'pending', attempts = attempts + 1, last_error = $2
		WHERE id = $1
	`

	res, err := s.db.ExecContext(ctx, query, id, lastError)
	if err != nil {
		return errors.Wrapf(err, "mark failed %s", id)
	}
	return checkAffected(res, id)
}

func (s *PostgresStore) RecoverInFlight(ctx context.Context) (int, error) {
	const query = `UPDATE queued_actions SET status = 'pending' WHERE status = 'in_flight'`

	res, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return 0, errors.Wrap(err, "recover in-flight actions")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "recover in-flight actions")
	}
	return int(affected), nil
}

func (s *PostgresStore) execByID(ctx context.Context, id, query string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return errors.Wrapf(err, "update queued action %s", id)
	}
	return checkAffected(res, id)
}

func checkAffected(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "rows affected for %s", id)
	}
	if affected == 0 {
		return errors.Wrap(ErrActionNotFound, id)
	}
	return nil
}

func scanQueuedAction(scanner interface {
	Scan(dest ...interface{}) error
}) (models.QueuedAction, error) {
	var (
		action     models.QueuedAction
		payload    []byte
		hospitalID sql.NullString
		userID     sql.NullString
		status     string
		lastError  sql.NullString
	)

	if err := scanner.Scan(
		&action.ID,
		&action.Seq,
		&action.Domain,
		&action.Kind,
		&payload,
		&hospitalID,
		&userID,
		&status,
		&action.Attempts,
		&lastError,
		&action.EnqueuedAt,
	); err != nil {
		return models.QueuedAction{}, errors.Wrap(err, "scan queued action")
	}

	action.Payload = payload
	action.Context.HospitalID = hospitalID.String
	action.Context.UserID = userID.String
	action.Status = models.ActionStatus(status)
	action.LastError = lastError.String
	return action, nil
}
