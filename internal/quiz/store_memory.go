package quiz

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryQuestionStore struct {
	mu    sync.RWMutex
	items map[string][]Question
}

func NewInMemoryQuestionStore() *memoryQuestionStore {
	return &memoryQuestionStore{items: map[string][]Question{}}
}

func (m *memoryQuestionStore) Put(itemID string, questions []Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[itemID] = questions
}

func (m *memoryQuestionStore) Questions(_ context.Context, itemID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[itemID], nil
}

type subKey struct {
	groupID, itemID, studentID string
}

type memorySubmissionStore struct {
	mu   sync.RWMutex
	subs map[subKey]Submission
}

func NewInMemorySubmissionStore() *memorySubmissionStore {
	return &memorySubmissionStore{subs: map[subKey]Submission{}}
}

func (m *memorySubmissionStore) Find(_ context.Context, groupID, itemID, studentID string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subs[subKey{groupID, itemID, studentID}]
	if !ok {
		return Submission{}, ErrSubmissionNotFound
	}
	return sub, nil
}

func (m *memorySubmissionStore) Get(_ context.Context, id string) (Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, sub := range m.subs {
		if sub.ID == id {
			return sub, nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}

func (m *memorySubmissionStore) Upsert(_ context.Context, sub Submission) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := subKey{sub.GroupID, sub.ItemID, sub.StudentID}
	if existing, ok := m.subs[key]; ok {
		sub.ID = existing.ID
		sub.SubmittedAt = existing.SubmittedAt
	} else {
		sub.ID = newSubmissionID()
	}
	m.subs[key] = sub
	return sub, nil
}

func (m *memorySubmissionStore) ListByItem(_ context.Context, groupID, itemID string) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Submission
	for key, sub := range m.subs {
		if key.groupID == groupID && key.itemID == itemID {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt > out[j].SubmittedAt })
	return out, nil
}

func (m *memorySubmissionStore) SetGrade(_ context.Context, id string, grade int, gradedBy string) (Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, sub := range m.subs {
		if sub.ID == id {
			sub.Grade = &grade
			sub.Status = StatusGraded
			sub.GradedBy = gradedBy
			sub.UpdatedAt = time.Now().Unix()
			m.subs[key] = sub
			return sub, nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}
