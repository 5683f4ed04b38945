package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

type SQLQuestionStore struct {
	db *sql.DB
}

func NewSQLQuestionStore(db *sql.DB) *SQLQuestionStore {
	return &SQLQuestionStore{db: db}
}

func (s *SQLQuestionStore) Questions(ctx context.Context, itemID string) ([]Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT questions_json FROM quiz_questions WHERE item_id=$1`, itemID)
	var qjson string
	if err := row.Scan(&qjson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // quiz with no content is handled upstream as trivially complete
		}
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal([]byte(qjson), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *SQLQuestionStore) PutQuestions(ctx context.Context, itemID string, questions []Question) error {
	qjson, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quiz_questions (item_id,questions_json) VALUES ($1,$2)
		 ON CONFLICT (item_id) DO UPDATE SET questions_json=EXCLUDED.questions_json`,
		itemID, string(qjson))
	return err
}

type SQLSubmissionStore struct {
	db *sql.DB
}

func NewSQLSubmissionStore(db *sql.DB) *SQLSubmissionStore {
	return &SQLSubmissionStore{db: db}
}

func (s *SQLSubmissionStore) Find(ctx context.Context, groupID, itemID, studentID string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,group_id,item_id,student_id,answers_json,status,grade,graded_by,submitted_at,updated_at
		 FROM submissions WHERE group_id=$1 AND item_id=$2 AND student_id=$3`,
		groupID, itemID, studentID)
	return scanSubmission(row)
}

func (s *SQLSubmissionStore) Get(ctx context.Context, id string) (Submission, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,group_id,item_id,student_id,answers_json,status,grade,graded_by,submitted_at,updated_at
		 FROM submissions WHERE id=$1`, id)
	return scanSubmission(row)
}

// Upsert keeps exactly one record per (group, item, student): an existing
// submission is updated in place under its original id.
func (s *SQLSubmissionStore) Upsert(ctx context.Context, sub Submission) (Submission, error) {
	existing, err := s.Find(ctx, sub.GroupID, sub.ItemID, sub.StudentID)
	switch {
	case err == nil:
		sub.ID = existing.ID
		sub.SubmittedAt = existing.SubmittedAt
	case errors.Is(err, ErrSubmissionNotFound):
		sub.ID = newSubmissionID()
	default:
		return Submission{}, err
	}

	ajson, err := json.Marshal(sub.Answers)
	if err != nil {
		return Submission{}, err
	}
	var grade interface{}
	if sub.Grade != nil {
		grade = *sub.Grade
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO submissions (id,group_id,item_id,student_id,answers_json,status,grade,graded_by,submitted_at,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (group_id,item_id,student_id) DO UPDATE SET
		   answers_json=EXCLUDED.answers_json, status=EXCLUDED.status, grade=EXCLUDED.grade,
		   graded_by=EXCLUDED.graded_by, updated_at=EXCLUDED.updated_at`,
		sub.ID, sub.GroupID, sub.ItemID, sub.StudentID, string(ajson),
		sub.Status, grade, sub.GradedBy, sub.SubmittedAt, sub.UpdatedAt)
	if err != nil {
		return Submission{}, err
	}
	return sub, nil
}

func (s *SQLSubmissionStore) ListByItem(ctx context.Context, groupID, itemID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,group_id,item_id,student_id,answers_json,status,grade,graded_by,submitted_at,updated_at
		 FROM submissions WHERE group_id=$1 AND item_id=$2 ORDER BY submitted_at DESC`,
		groupID, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmissionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLSubmissionStore) SetGrade(ctx context.Context, id string, grade int, gradedBy string) (Submission, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET grade=$1, status=$2, graded_by=$3, updated_at=$4 WHERE id=$5`,
		grade, StatusGraded, gradedBy, time.Now().Unix(), id)
	if err != nil {
		return Submission{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Submission{}, ErrSubmissionNotFound
	}
	return s.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row *sql.Row) (Submission, error) {
	sub, err := scanFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, err
}

func scanSubmissionRows(rows *sql.Rows) (Submission, error) {
	return scanFrom(rows)
}

func scanFrom(sc rowScanner) (Submission, error) {
	var sub Submission
	var ajson string
	var grade sql.NullInt64
	if err := sc.Scan(&sub.ID, &sub.GroupID, &sub.ItemID, &sub.StudentID, &ajson,
		&sub.Status, &grade, &sub.GradedBy, &sub.SubmittedAt, &sub.UpdatedAt); err != nil {
		return Submission{}, err
	}
	if grade.Valid {
		g := int(grade.Int64)
		sub.Grade = &g
	}
	if err := json.Unmarshal([]byte(ajson), &sub.Answers); err != nil {
		return Submission{}, err
	}
	return sub, nil
}
