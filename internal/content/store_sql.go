package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Sequence(ctx context.Context, courseID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, ordinal, type, lesson_label, has_assignment, assignment_ref, payload_json
		 FROM content_items WHERE course_id=$1 ORDER BY ordinal`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var pjson string
		if err := rows.Scan(&it.ID, &it.Ordinal, &it.Type, &it.LessonLabel,
			&it.HasAssignment, &it.AssignmentRef, &pjson); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(pjson), &it.Payload); err != nil {
			return nil, fmt.Errorf("content item %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrCourseNotFound
	}
	return items, nil
}

// PutItem upserts a single content item (teacher tooling path).
func (s *SQLStore) PutItem(ctx context.Context, courseID string, it Item) error {
	pjson, err := json.Marshal(it.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO content_items (course_id,id,ordinal,type,lesson_label,has_assignment,assignment_ref,payload_json)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (course_id,id) DO UPDATE SET
		   ordinal=EXCLUDED.ordinal, type=EXCLUDED.type, lesson_label=EXCLUDED.lesson_label,
		   has_assignment=EXCLUDED.has_assignment, assignment_ref=EXCLUDED.assignment_ref,
		   payload_json=EXCLUDED.payload_json`,
		courseID, it.ID, it.Ordinal, it.Type, it.LessonLabel, it.HasAssignment, it.AssignmentRef, string(pjson))
	return err
}
