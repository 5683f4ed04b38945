package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"sync"
)

// ErrNoEnrollment is the terminal empty state: the student has no active
// enrollment and the feed cannot render.
var ErrNoEnrollment = errors.New("no active enrollment")

type Enrollment struct {
	ID          string `json:"id"`
	StudentID   string `json:"student_id"`
	GroupID     string `json:"group_id"`
	CourseID    string `json:"course_id"`
	StudentName string `json:"student_name,omitempty"`
}

// Resolver looks up the active enrollment for a student.
type Resolver interface {
	Resolve(ctx context.Context, studentID string) (Enrollment, error)
	Get(ctx context.Context, enrollmentID string) (Enrollment, error)
}

type memoryResolver struct {
	mu   sync.RWMutex
	byID map[string]Enrollment
}

func NewInMemoryResolver() *memoryResolver {
	return &memoryResolver{byID: map[string]Enrollment{}}
}

func (m *memoryResolver) Put(e Enrollment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[e.ID] = e
}

func (m *memoryResolver) Resolve(_ context.Context, studentID string) (Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, e := range m.byID {
		if e.StudentID == studentID {
			return e, nil
		}
	}
	return Enrollment{}, ErrNoEnrollment
}

func (m *memoryResolver) Get(_ context.Context, enrollmentID string) (Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.byID[enrollmentID]
	if !ok {
		return Enrollment{}, ErrNoEnrollment
	}
	return e, nil
}

type SQLResolver struct {
	db *sql.DB
}

func NewSQLResolver(db *sql.DB) *SQLResolver {
	return &SQLResolver{db: db}
}

func (s *SQLResolver) Resolve(ctx context.Context, studentID string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, group_id, course_id, student_name
		 FROM enrollments WHERE student_id=$1 AND active=TRUE
		 ORDER BY created_at DESC LIMIT 1`, studentID)
	return scanEnrollment(row)
}

func (s *SQLResolver) Get(ctx context.Context, enrollmentID string) (Enrollment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, group_id, course_id, student_name
		 FROM enrollments WHERE id=$1`, enrollmentID)
	return scanEnrollment(row)
}

func scanEnrollment(row *sql.Row) (Enrollment, error) {
	var e Enrollment
	if err := row.Scan(&e.ID, &e.StudentID, &e.GroupID, &e.CourseID, &e.StudentName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, ErrNoEnrollment
		}
		return Enrollment{}, err
	}
	return e, nil
}
