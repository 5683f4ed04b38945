package progress

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brightpath/brightpath-lms/internal/content"
)

// RemoteStore is the authoritative persistence for enrollment-scoped
// records. Save is a merge-write: the stored percent never decreases.
type RemoteStore interface {
	LoadAll(ctx context.Context, enrollmentID string) (map[string]Record, error)
	Save(ctx context.Context, rec Record) error
}

// SeenStore is the secondary, student-scoped sticky-seen source. Reads may
// be denied by permission policy; callers treat failures as "no data".
type SeenStore interface {
	LoadAll(ctx context.Context, studentID string) (map[string]bool, error)
	MarkSeen(ctx context.Context, studentID, itemID string) error
}

// KV is the best-effort local cache surface (see internal/cache).
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, val []byte)
}

const (
	// coalesceDelta drops noisy signals below this progress change.
	coalesceDelta = 0.5
	// bucketWidth groups percents into durable-write buckets.
	bucketWidth = 5.0
	// nearDoneCut always persists when first crossed so near-completion is
	// never lost to coalescing.
	nearDoneCut = 95.0
)

type itemKey struct {
	enrollmentID string
	itemID       string
}

// Store is the single source of truth for progress records in a session. It
// reconciles the local cache with the remote store on load, ratchets
// percents monotonically on report, and persists at coarse checkpoints.
type Store struct {
	remote     RemoteStore
	seen       SeenStore
	cache      KV
	thresholds Thresholds
	log        *zap.Logger
	now        func() time.Time

	mu      sync.Mutex
	records map[itemKey]Record
	dirty   map[itemKey]Record // remote writes that failed, retried by the flush job

	writes sync.WaitGroup
}

func NewStore(remote RemoteStore, seen SeenStore, cache KV, th Thresholds, log *zap.Logger) *Store {
	return &Store{
		remote:     remote,
		seen:       seen,
		cache:      cache,
		thresholds: th,
		log:        log.With(zap.String("component", "progress-store")),
		now:        time.Now,
		records:    map[itemKey]Record{},
		dirty:      map[itemKey]Record{},
	}
}

// SetNow overrides the clock, for tests.
func (s *Store) SetNow(now func() time.Time) { s.now = now }

// Thresholds exposes the configured required-percent table.
func (s *Store) Thresholds() Thresholds { return s.thresholds }

func cacheKey(studentID, itemID string) string {
	return "progress:" + studentID + ":" + itemID
}

// Load reads both sources for every item in the sequence, merges them, and
// repairs the local cache with the merged result. A remote read failure
// degrades to cache-only data; a seen-store failure is swallowed entirely.
// Load never blocks rendering on a secondary failure.
func (s *Store) Load(ctx context.Context, enrollmentID, studentID string, items []content.Item) ([]Record, error) {
	remote, err := s.remote.LoadAll(ctx, enrollmentID)
	if err != nil {
		s.log.Warn("remote progress read failed, degrading to cache",
			zap.String("enrollment", enrollmentID), zap.Error(err))
		remote = map[string]Record{}
	}
	seen, err := s.seen.LoadAll(ctx, studentID)
	if err != nil {
		s.log.Warn("seen read failed, ignoring",
			zap.String("student", studentID), zap.Error(err))
		seen = map[string]bool{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(items))
	for _, it := range items {
		local := s.readCache(ctx, studentID, it.ID)
		rec := merge(local, remote[it.ID], seen[it.ID], s.thresholds.Required(it.Type))
		rec.EnrollmentID = enrollmentID
		rec.ItemID = it.ID
		s.records[itemKey{enrollmentID, it.ID}] = rec
		s.writeCache(ctx, studentID, rec)
		out = append(out, rec)
	}
	return out, nil
}

// Get returns the resident record for an item, if any.
func (s *Store) Get(enrollmentID, itemID string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[itemKey{enrollmentID, itemID}]
	return rec, ok
}

// Report processes one raw progress signal. The committed percent is a
// monotonic ratchet over the session. Signals whose in-memory delta is
// below coalesceDelta are dropped. A durable write happens only when the
// ratcheted percent crosses a new multiple-of-5 bucket or first reaches 95.
// Returns the current record and whether a durable write was triggered.
func (s *Store) Report(ctx context.Context, enrollmentID, studentID, itemID string, t content.ItemType, rawPercent float64) (Record, bool) {
	raw := clampPct(rawPercent)

	s.mu.Lock()
	key := itemKey{enrollmentID, itemID}
	prev, existed := s.records[key]
	if !existed {
		// created lazily on first signal
		prev = Record{EnrollmentID: enrollmentID, ItemID: itemID}
	}

	maxProgress := prev.Percent
	if raw > maxProgress {
		maxProgress = raw
	}
	if maxProgress-prev.Percent < coalesceDelta {
		s.mu.Unlock()
		return prev, false
	}

	rec := prev
	rec.Percent = maxProgress
	rec.UpdatedAt = s.now().Unix()

	durable := bucket(maxProgress) > bucket(prev.Percent) ||
		(maxProgress >= nearDoneCut && prev.Percent < nearDoneCut)

	if durable {
		required := s.thresholds.Required(t)
		if maxProgress >= required && !rec.Completed {
			rec.Completed = true
			rec.Seen = true
			if rec.CompletedAt == 0 {
				rec.CompletedAt = s.now().Unix()
			}
		}
	}
	s.records[key] = rec
	s.mu.Unlock()

	if durable {
		s.persist(ctx, studentID, rec, prev)
	}
	return rec, durable
}

// ForceComplete pins an item to 100/completed/seen, bypassing the policy
// table. Quiz submission is authoritative and uses this path.
func (s *Store) ForceComplete(ctx context.Context, enrollmentID, studentID, itemID string) Record {
	s.mu.Lock()
	key := itemKey{enrollmentID, itemID}
	prev := s.records[key]
	rec := prev
	rec.EnrollmentID = enrollmentID
	rec.ItemID = itemID
	rec.Percent = 100
	rec.Seen = true
	rec.UpdatedAt = s.now().Unix()
	if !rec.Completed {
		rec.Completed = true
		if rec.CompletedAt == 0 {
			rec.CompletedAt = s.now().Unix()
		}
	}
	s.records[key] = rec
	s.mu.Unlock()

	s.persist(ctx, studentID, rec, prev)
	return rec
}

// Commit flushes the resident record for an item to durable storage, used
// when the navigation controller leaves an item.
func (s *Store) Commit(ctx context.Context, enrollmentID, studentID, itemID string) {
	s.mu.Lock()
	rec, ok := s.records[itemKey{enrollmentID, itemID}]
	s.mu.Unlock()
	if !ok {
		return
	}
	s.persist(ctx, studentID, rec, rec)
}

// persist mirrors the record into the local cache synchronously and writes
// remote asynchronously with a single attempt. A failed remote write parks
// the record in the dirty set for the periodic flush job.
func (s *Store) persist(ctx context.Context, studentID string, rec, prev Record) {
	s.mu.Lock()
	s.writeCache(ctx, studentID, rec)
	s.mu.Unlock()

	if rec.Seen && !prev.Seen {
		s.writes.Add(1)
		go func(studentID, itemID string) {
			defer s.writes.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.seen.MarkSeen(ctx, studentID, itemID); err != nil {
				s.log.Warn("mark seen failed", zap.String("item", itemID), zap.Error(err))
			}
		}(studentID, rec.ItemID)
	}

	s.writes.Add(1)
	go func(rec Record) {
		defer s.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.remote.Save(ctx, rec); err != nil {
			s.log.Warn("remote progress write failed",
				zap.String("item", rec.ItemID), zap.Error(err))
			s.mu.Lock()
			s.dirty[itemKey{rec.EnrollmentID, rec.ItemID}] = rec
			s.mu.Unlock()
			return
		}
		s.mu.Lock()
		delete(s.dirty, itemKey{rec.EnrollmentID, rec.ItemID})
		s.mu.Unlock()
	}(rec)
}

// Drain blocks until all in-flight asynchronous writes have settled. Used
// at shutdown so late checkpoints are not lost.
func (s *Store) Drain() { s.writes.Wait() }

// FlushDirty retries remote writes that failed earlier. Wired to the cron
// scheduler in the gateway; safe because Save merges with a monotonic max.
func (s *Store) FlushDirty(ctx context.Context) {
	s.mu.Lock()
	pending := make([]Record, 0, len(s.dirty))
	for _, rec := range s.dirty {
		pending = append(pending, rec)
	}
	s.mu.Unlock()

	for _, rec := range pending {
		if err := s.remote.Save(ctx, rec); err != nil {
			s.log.Warn("dirty flush failed", zap.String("item", rec.ItemID), zap.Error(err))
			continue
		}
		s.mu.Lock()
		delete(s.dirty, itemKey{rec.EnrollmentID, rec.ItemID})
		s.mu.Unlock()
	}
}

// Cache failures degrade silently; the KV never throws past us.

func (s *Store) readCache(ctx context.Context, studentID, itemID string) Record {
	raw, ok := s.cache.Get(ctx, cacheKey(studentID, itemID))
	if !ok {
		return Record{}
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Warn("corrupt cached record", zap.String("item", itemID), zap.Error(err))
		return Record{}
	}
	return rec
}

func (s *Store) writeCache(ctx context.Context, studentID string, rec Record) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	s.cache.Set(ctx, cacheKey(studentID, rec.ItemID), raw)
}

func bucket(p float64) int {
	return int(p / bucketWidth)
}
