package progress

import (
	"context"
	"database/sql"
)

// SQLRemoteStore persists enrollment-scoped records. Save is a merge-write:
// percent takes the max of stored and incoming, completed and seen only
// ever flip to true, and completed_at keeps its first stamp. That makes
// concurrent or replayed writes for the same item self-correcting.
type SQLRemoteStore struct {
	db *sql.DB
}

func NewSQLRemoteStore(db *sql.DB) *SQLRemoteStore {
	return &SQLRemoteStore{db: db}
}

func (s *SQLRemoteStore) LoadAll(ctx context.Context, enrollmentID string) (map[string]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, percent, completed, seen, completed_at, updated_at
		 FROM progress WHERE enrollment_id=$1`, enrollmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]Record{}
	for rows.Next() {
		rec := Record{EnrollmentID: enrollmentID}
		var completedAt sql.NullInt64
		if err := rows.Scan(&rec.ItemID, &rec.Percent, &rec.Completed, &rec.Seen,
			&completedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			rec.CompletedAt = completedAt.Int64
		}
		out[rec.ItemID] = rec
	}
	return out, rows.Err()
}

func (s *SQLRemoteStore) Save(ctx context.Context, rec Record) error {
	var completedAt interface{}
	if rec.CompletedAt != 0 {
		completedAt = rec.CompletedAt
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress (enrollment_id,item_id,percent,completed,seen,completed_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (enrollment_id,item_id) DO UPDATE SET
		   percent=CASE WHEN progress.percent > EXCLUDED.percent THEN progress.percent ELSE EXCLUDED.percent END,
		   completed=(progress.completed OR EXCLUDED.completed),
		   seen=(progress.seen OR EXCLUDED.seen),
		   completed_at=COALESCE(progress.completed_at, EXCLUDED.completed_at),
		   updated_at=EXCLUDED.updated_at`,
		rec.EnrollmentID, rec.ItemID, rec.Percent, rec.Completed, rec.Seen,
		completedAt, rec.UpdatedAt)
	return err
}
