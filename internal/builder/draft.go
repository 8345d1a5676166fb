package builder

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/logger"
	"github.com/tgienger/skyhawk/internal/models"
)

// draftRecord is the persisted shape of a draft
type draftRecord struct {
	Title  string                 `json:"title"`
	Date   string                 `json:"date"`
	Drills []models.DrillInstance `json:"drills"`
}

// DraftStore owns the in-progress plan. Every mutation is written to the
// medium before the call returns. Readers get snapshots, never the live draft.
//
// A DraftStore is not safe for concurrent use; the UI event loop is its
// only caller.
type DraftStore struct {
	medium Medium
	log    *logger.Logger
	now    func() time.Time

	draft  models.Draft
	loaded bool
}

// DraftOption customizes a DraftStore
type DraftOption func(*DraftStore)

// WithClock overrides the clock used for today's date
func WithClock(now func() time.Time) DraftOption {
	return func(s *DraftStore) { s.now = now }
}

// NewDraftStore returns a store backed by medium. Nothing is read until first use.
func NewDraftStore(medium Medium, log *logger.Logger, opts ...DraftOption) *DraftStore {
	if log == nil {
		log = logger.Nop()
	}
	s := &DraftStore{
		medium: medium,
		log:    log.With("component", "draft_store"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DraftStore) today() time.Time {
	return models.CalendarDate(s.now())
}

// Load reads the persisted draft. A missing, unreadable or malformed record
// yields the default draft. A record dated before today is discarded.
func (s *DraftStore) Load() models.Draft {
	s.draft = s.restore()
	s.loaded = true
	return s.draft.Clone()
}

func (s *DraftStore) restore() models.Draft {
	today := s.today()
	fresh := models.NewDraft(today)

	data, err := s.medium.Read()
	if err != nil {
		if !errors.Is(err, ErrNoRecord) {
			s.log.Warn("draft unreadable, starting empty", "error", err)
		}
		return fresh
	}

	var rec draftRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.Warn("draft malformed, starting empty", "error", err)
		return fresh
	}
	date, err := models.ParseDate(rec.Date)
	if err != nil {
		s.log.Warn("draft date malformed, starting empty", "date", rec.Date, "error", err)
		return fresh
	}
	if date.Before(today) {
		s.log.Info("discarding stale draft", "date", rec.Date, "drills", len(rec.Drills))
		if err := s.medium.Remove(); err != nil {
			s.log.Warn("remove stale draft", "error", err)
		}
		return fresh
	}

	d := models.Draft{Title: rec.Title, Date: date, Instances: rec.Drills}
	if strings.TrimSpace(d.Title) == "" {
		d.Title = models.DefaultDraftTitle
	}
	if d.Instances == nil {
		d.Instances = []models.DrillInstance{}
	}
	ObserveInstanceIDs(d.Instances)
	return d
}

func (s *DraftStore) ensureLoaded() {
	if !s.loaded {
		s.Load()
	}
}

// Snapshot returns a deep copy of the current draft
func (s *DraftStore) Snapshot() models.Draft {
	s.ensureLoaded()
	return s.draft.Clone()
}

// SetInstances replaces the ordered drill placements
func (s *DraftStore) SetInstances(seq []models.DrillInstance) error {
	s.ensureLoaded()
	next := models.Draft{Instances: seq}.Clone().Instances
	s.draft.Instances = next
	return s.persist()
}

// SetTitle updates the plan title
func (s *DraftStore) SetTitle(title string) error {
	s.ensureLoaded()
	s.draft.Title = title
	return s.persist()
}

// SetDate updates the practice date
func (s *DraftStore) SetDate(date time.Time) error {
	s.ensureLoaded()
	s.draft.Date = models.CalendarDate(date)
	return s.persist()
}

// Reset restores the default empty draft and erases the record
func (s *DraftStore) Reset() error {
	s.draft = models.NewDraft(s.now())
	s.loaded = true
	if err := s.medium.Remove(); err != nil {
		s.log.Warn("erase draft", "error", err)
		return apperr.TransientIO("draft.reset", err)
	}
	return nil
}

// Add appends a placement of drill
func (s *DraftStore) Add(drill models.Drill) error {
	s.ensureLoaded()
	return s.SetInstances(Append(s.draft.Instances, drill))
}

// Remove drops the placement instanceID
func (s *DraftStore) Remove(instanceID string) error {
	s.ensureLoaded()
	return s.SetInstances(RemoveByInstanceID(s.draft.Instances, instanceID))
}

// Move relocates fromID to toID's position
func (s *DraftStore) Move(fromID, toID string) error {
	s.ensureLoaded()
	return s.SetInstances(Move(s.draft.Instances, fromID, toID))
}

// MoveUp moves instanceID one position earlier
func (s *DraftStore) MoveUp(instanceID string) error {
	s.ensureLoaded()
	return s.SetInstances(MoveUp(s.draft.Instances, instanceID))
}

// MoveDown moves instanceID one position later
func (s *DraftStore) MoveDown(instanceID string) error {
	s.ensureLoaded()
	return s.SetInstances(MoveDown(s.draft.Instances, instanceID))
}

// persist writes the whole draft. The in-memory edit stands even when the
// write fails; the error is returned so the caller can warn.
func (s *DraftStore) persist() error {
	rec := draftRecord{
		Title:  s.draft.Title,
		Date:   models.FormatDate(s.draft.Date),
		Drills: s.draft.Instances,
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return apperr.TransientIO("draft.persist", fmt.Errorf("encode draft: %w", err))
	}
	if err := s.medium.Write(data); err != nil {
		s.log.Warn("persist draft", "error", err)
		return apperr.TransientIO("draft.persist", err)
	}
	return nil
}
