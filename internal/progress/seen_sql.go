package progress

import (
	"context"
	"database/sql"
	"time"
)

// SQLSeenStore is the student-scoped sticky-seen source. It lives outside
// the enrollment scope on purpose: seen survives re-enrollment in the same
// course.
type SQLSeenStore struct {
	db *sql.DB
}

func NewSQLSeenStore(db *sql.DB) *SQLSeenStore {
	return &SQLSeenStore{db: db}
}

func (s *SQLSeenStore) LoadAll(ctx context.Context, studentID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM seen_items WHERE student_id=$1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, err
		}
		out[itemID] = true
	}
	return out, rows.Err()
}

func (s *SQLSeenStore) MarkSeen(ctx context.Context, studentID, itemID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO seen_items (student_id,item_id,seen_at) VALUES ($1,$2,$3)
		 ON CONFLICT (student_id,item_id) DO NOTHING`,
		studentID, itemID, time.Now().Unix())
	return err
}
