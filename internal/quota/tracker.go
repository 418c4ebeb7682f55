// Package quota caps the number of analyses per calendar day. It is a soft
// client-convenience limit, not a security boundary: when the store is
// unavailable the tracker fails open.
package quota

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/walletstory/walletstory/internal/storage"
)

// DefaultMaxPerDay is the analysis ceiling used when the config leaves it unset.
const DefaultMaxPerDay = 15

const recordKey = "quota_daily"

// record is the persisted day-bucketed counter. Its count is only valid for
// its own date; a date mismatch on read means the count is zero for today.
type record struct {
	Date  string `json:"date"` // YYYY-MM-DD, process-local timezone
	Count int    `json:"count"`
}

// Status is a point-in-time view of today's quota.
type Status struct {
	Allowed   bool   `json:"allowed"`
	Remaining int    `json:"remaining"`
	ResetTime string `json:"reset_time"` // start of next day, e.g. "12:00 AM"
}

// Tracker enforces the per-day ceiling on top of a Store.
type Tracker struct {
	store  storage.Store
	max    int
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source, for deterministic day-rollover tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a Tracker persisting into store. max <= 0 falls back to
// DefaultMaxPerDay.
func NewTracker(store storage.Store, max int, logger *zap.Logger, opts ...Option) *Tracker {
	if max <= 0 {
		max = DefaultMaxPerDay
	}
	t := &Tracker{
		store:  store,
		max:    max,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Peek reports the current quota status without mutating the counter. Store
// errors and stale or malformed records all read as a zero count, so a broken
// store never blocks usage.
func (t *Tracker) Peek() Status {
	count := t.todayCount()
	remaining := t.max - count
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Allowed:   count < t.max,
		Remaining: remaining,
		ResetTime: t.resetTime(),
	}
}

// Consume increments today's counter by one. If the persisted record belongs
// to another day it is replaced with {today, 1}. Every call increments;
// callers invoke it at most once per completed analysis. Store failures make
// Consume a silent no-op.
func (t *Tracker) Consume() {
	today := t.today()
	rec := record{Date: today, Count: 1}
	if prev, ok := t.load(); ok && prev.Date == today {
		rec.Count = prev.Count + 1
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := t.store.Set(recordKey, payload); err != nil {
		t.logger.Warn("failed to persist quota record", zap.Error(err))
	}
}

func (t *Tracker) todayCount() int {
	rec, ok := t.load()
	if !ok || rec.Date != t.today() {
		return 0
	}
	return rec.Count
}

func (t *Tracker) load() (record, bool) {
	payload, ok, err := t.store.Get(recordKey)
	if err != nil {
		t.logger.Warn("quota store unavailable, failing open", zap.Error(err))
		return record{}, false
	}
	if !ok {
		return record{}, false
	}

	var rec record
	if err := json.Unmarshal(payload, &rec); err != nil {
		t.logger.Warn("discarding malformed quota record", zap.Error(err))
		return record{}, false
	}
	return rec, true
}

func (t *Tracker) today() string {
	return t.now().Format("2006-01-02")
}

func (t *Tracker) resetTime() string {
	now := t.now()
	year, month, day := now.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return midnight.Format("3:04 PM")
}
