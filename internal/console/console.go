// Package console owns the record list: the in-memory snapshot, the loading
// state, and every mutation, each followed by a full re-fetch.
package console

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"partners-cli/internal/form"
	"partners-cli/internal/logging"
	"partners-cli/internal/model"
	"partners-cli/internal/notify"

	"golang.org/x/sync/singleflight"
)

// Store is the subset of the record store client the console needs.
type Store interface {
	List(ctx context.Context) ([]model.Record, error)
	Create(ctx context.Context, d model.Draft) (model.Record, error)
	Update(ctx context.Context, id string, d model.Draft) (model.Record, error)
	Delete(ctx context.Context, id string) error
}

// Notifier receives the transient success/error messages.
type Notifier interface {
	Publish(severity notify.Severity, message string) (notify.Notification, bool)
}

const (
	MsgCreated      = "User Created Successfully"
	MsgUpdated      = "User Updated Successfully"
	MsgDeleted      = "User Deleted Successfully"
	MsgSaveFailed   = "Error Saving/Updating user, Please try again later."
	MsgDeleteFailed = "Error Deleting user, Please try again later."
)

// ErrRecordNotFound is returned when an id is not in the current snapshot.
var ErrRecordNotFound = errors.New("user not found")

const refreshKey = "list"

type Console struct {
	store  Store
	notify Notifier
	log    logging.Logger

	group singleflight.Group

	mu       sync.Mutex
	records  []model.Record
	inflight int
	loaded   bool
	stale    bool
	started  uint64
	applied  uint64
}

func New(store Store, notifier Notifier, log logging.Logger) *Console {
	if log == nil {
		log = logging.Nop()
	}
	return &Console{
		store:   store,
		notify:  notifier,
		log:     log.With("component", "console"),
		records: []model.Record{},
	}
}

// Refresh replaces the snapshot with the store's collection. Overlapping calls
// share one fetch. On failure the error is logged and the previous snapshot is
// kept; no notification is emitted for this path.
func (c *Console) Refresh(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	_, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return nil, c.fetch(ctx)
	})
	return err
}

// refreshAfterWrite always starts a new fetch so the result reflects the write,
// even when an older refresh is still in flight.
func (c *Console) refreshAfterWrite(ctx context.Context) error {
	c.group.Forget(refreshKey)
	return c.Refresh(ctx)
}

func (c *Console) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.started++
	seq := c.started
	c.inflight++
	c.mu.Unlock()

	recs, err := c.store.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if err != nil {
		if seq > c.applied {
			c.stale = true
		}
		c.log.Error(ctx, "error fetching users", "err", err)
		return err
	}
	if seq < c.applied {
		// A fetch that started later already landed.
		return nil
	}
	c.applied = seq
	c.records = cloneRecords(recs)
	c.loaded = true
	c.stale = false
	return nil
}

// Loading reports whether a fetch is in flight.
func (c *Console) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

// Loaded reports whether at least one fetch succeeded.
func (c *Console) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Stale reports whether the latest refresh failed and the snapshot is older
// than the store.
func (c *Console) Stale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stale
}

// Snapshot returns a copy of the current records.
func (c *Console) Snapshot() []model.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneRecords(c.records)
}

func (c *Console) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records) == 0
}

// Lookup resolves id against the snapshot.
func (c *Console) Lookup(id string) (model.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.records {
		if r.ID == id {
			r.Countries = model.CloneCountries(r.Countries)
			return r, true
		}
	}
	return model.Record{}, false
}

// RequestAdd opens f as an empty add form.
func (c *Console) RequestAdd(f *form.Form) error {
	return f.Open(form.ModeAdd, nil)
}

// RequestView opens f read-only for record id.
func (c *Console) RequestView(f *form.Form, id string) error {
	return c.openFor(f, form.ModeView, id)
}

// RequestEdit opens f pre-filled for record id.
func (c *Console) RequestEdit(f *form.Form, id string) error {
	return c.openFor(f, form.ModeEdit, id)
}

func (c *Console) openFor(f *form.Form, mode form.Mode, id string) error {
	rec, ok := c.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return f.Open(mode, &rec)
}

// Follow carries out a pivot requested by a view form.
func (c *Console) Follow(f *form.Form, in form.Intent) error {
	switch in.Kind {
	case form.IntentOpenAdd:
		return c.RequestAdd(f)
	case form.IntentOpenEdit:
		return c.RequestEdit(f, in.RecordID)
	}
	return nil
}

// CommitSave persists a submission: create for form.Create, update for
// form.Update. Success notifies and refreshes; failure logs, notifies and
// leaves the snapshot as it was.
func (c *Console) CommitSave(ctx context.Context, sub form.Submission) (model.Record, error) {
	var (
		rec model.Record
		err error
		msg string
	)
	switch s := sub.(type) {
	case form.Create:
		rec, err = c.store.Create(ctx, s.Fields)
		msg = MsgCreated
	case form.Update:
		rec, err = c.store.Update(ctx, s.ID, s.Fields)
		msg = MsgUpdated
	default:
		err = fmt.Errorf("console: unsupported submission %T", sub)
	}
	if err != nil {
		c.log.Error(ctx, "error saving user", "err", err)
		c.publish(notify.SeverityError, MsgSaveFailed)
		return model.Record{}, err
	}

	c.publish(notify.SeveritySuccess, msg)
	_ = c.refreshAfterWrite(ctx)
	return rec, nil
}

// CommitDelete removes record id, then notifies and refreshes.
func (c *Console) CommitDelete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, id); err != nil {
		c.log.Error(ctx, "error deleting user", "id", id, "err", err)
		c.publish(notify.SeverityError, MsgDeleteFailed)
		return err
	}
	c.publish(notify.SeveritySuccess, MsgDeleted)
	_ = c.refreshAfterWrite(ctx)
	return nil
}

func (c *Console) publish(sev notify.Severity, msg string) {
	if c.notify == nil {
		return
	}
	c.notify.Publish(sev, msg)
}

func cloneRecords(in []model.Record) []model.Record {
	out := make([]model.Record, len(in))
	for i, r := range in {
		r.Countries = model.CloneCountries(r.Countries)
		out[i] = r
	}
	return out
}
