package builder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/skyhawk/internal/apperr"
	"github.com/tgienger/skyhawk/internal/logger"
	"github.com/tgienger/skyhawk/internal/models"
)

// Remote is the durable store a draft is committed to
type Remote interface {
	CreatePractice(ctx context.Context, title string, date time.Time, notes string) (*models.Practice, error)
	DeletePracticeItems(ctx context.Context, practiceID string) error
	InsertPracticeItems(ctx context.Context, items []models.PracticeItem) error
}

// Transactor is implemented by remotes that can group calls. Remote calls
// made with the ctx passed to fn belong to one transaction.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Advisory is a non-blocking note about a committed plan
type Advisory string

const AdvisoryLongSession Advisory = "long_session"

// CommitResult describes a successful commit
type CommitResult struct {
	Practice     *models.Practice
	Items        []models.PracticeItem
	TotalMinutes int
	Advisories   []Advisory
}

// Committer turns a draft into a practice plus its ordered items
type Committer struct {
	remote      Remote
	log         *logger.Logger
	longSession int
	timeout     time.Duration
	useTx       bool
}

// CommitOption customizes a Committer
type CommitOption func(*Committer)

// WithLongSessionMinutes sets the total above which AdvisoryLongSession is reported
func WithLongSessionMinutes(n int) CommitOption {
	return func(c *Committer) { c.longSession = n }
}

// WithTimeout bounds the whole commit
func WithTimeout(d time.Duration) CommitOption {
	return func(c *Committer) { c.timeout = d }
}

// WithoutTransaction forces the two-step protocol even when the remote is a Transactor
func WithoutTransaction() CommitOption {
	return func(c *Committer) { c.useTx = false }
}

func NewCommitter(remote Remote, log *logger.Logger, opts ...CommitOption) *Committer {
	if log == nil {
		log = logger.Nop()
	}
	c := &Committer{
		remote:      remote,
		log:         log.With("component", "committer"),
		longSession: 120,
		timeout:     10 * time.Second,
		useTx:       true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate rejects drafts that must not reach the remote
func Validate(d models.Draft) error {
	const op = "commit.validate"
	if strings.TrimSpace(d.Title) == "" {
		return apperr.Validation(op, fmt.Errorf("title is required"))
	}
	if d.Date.IsZero() {
		return apperr.Validation(op, fmt.Errorf("date is required"))
	}
	for i, in := range d.Instances {
		if in.ID == "" {
			return apperr.Validation(op, fmt.Errorf("item %d has no drill", i+1))
		}
		if in.DurationMinutes <= 0 {
			return apperr.Validation(op, fmt.Errorf("%q has a non-positive duration", in.Title))
		}
	}
	return nil
}

// Advise returns the advisories for a draft
func (c *Committer) Advise(d models.Draft) []Advisory {
	var out []Advisory
	if c.longSession > 0 && d.TotalMinutes() > c.longSession {
		out = append(out, AdvisoryLongSession)
	}
	return out
}

// Commit writes d as a new practice and its items. d is read once; the
// caller's draft is not touched. Without a transaction, a failure after the
// practice is created leaves that practice without items and returns the
// error; retrying commits a second practice.
func (c *Committer) Commit(ctx context.Context, d models.Draft) (*CommitResult, error) {
	d = d.Clone()
	if err := Validate(d); err != nil {
		return nil, err
	}

	// Once the practice is requested the item write is always attempted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	var res *CommitResult
	run := func(ctx context.Context) error {
		p, err := c.remote.CreatePractice(ctx, strings.TrimSpace(d.Title), d.Date, "")
		if err != nil {
			return err
		}
		items, err := ReplaceItems(ctx, c.remote, p.ID, d.Instances)
		if err != nil {
			c.log.Error("practice created without items", "practice_id", p.ID, "error", err)
			return err
		}
		res = &CommitResult{Practice: p, Items: items}
		return nil
	}

	var err error
	if tx, ok := c.remote.(Transactor); ok && c.useTx {
		err = tx.InTx(ctx, run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		c.log.Warn("commit failed", "title", d.Title, "drills", d.Len(), "error", err)
		return nil, err
	}

	res.TotalMinutes = d.TotalMinutes()
	res.Advisories = c.Advise(d)
	c.log.Info("practice committed", "practice_id", res.Practice.ID, "items", len(res.Items), "minutes", res.TotalMinutes)
	return res, nil
}

// CommitDraft commits the store's current draft and resets the store on
// success. On failure the draft is left exactly as it was.
func (c *Committer) CommitDraft(ctx context.Context, store *DraftStore) (*CommitResult, error) {
	res, err := c.Commit(ctx, store.Snapshot())
	if err != nil {
		return nil, err
	}
	if err := store.Reset(); err != nil {
		c.log.Warn("draft not cleared after commit", "practice_id", res.Practice.ID, "error", err)
	}
	return res, nil
}

// ReplaceItems deletes every item of practiceID and inserts seq with sort
// orders 0..n-1 in sequence order.
func ReplaceItems(ctx context.Context, r Remote, practiceID string, seq []models.DrillInstance) ([]models.PracticeItem, error) {
	if err := r.DeletePracticeItems(ctx, practiceID); err != nil {
		return nil, err
	}
	items := BuildItems(practiceID, seq)
	if err := r.InsertPracticeItems(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// BuildItems maps seq onto dense, 0-based practice items
func BuildItems(practiceID string, seq []models.DrillInstance) []models.PracticeItem {
	items := make([]models.PracticeItem, len(seq))
	for i, in := range seq {
		items[i] = models.PracticeItem{PracticeID: practiceID, DrillID: in.ID, SortOrder: i}
	}
	return items
}
