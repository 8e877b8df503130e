package review

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/metrics"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const saveTimeout = 15 * time.Second

type Backend interface {
	UpdateStatus(ctx context.Context, src api.TokenSource, id string, st application.Status, notes string) error
	UpdateComment(ctx context.Context, src api.TokenSource, id, comment string) error
}

// Updater writes status and comment changes to the backend and patches the
// session's cached collection once the backend accepted them.
type Updater struct {
	backend Backend
	cache   *application.Cache
	now     func() time.Time
}

func NewUpdater(backend Backend, cache *application.Cache) *Updater {
	return &Updater{backend: backend, cache: cache, now: time.Now}
}

func (u *Updater) UpdateStatus(ctx context.Context, src api.TokenSource, id string, st application.Status, notes string) error {
	token := src.Token()
	if err := u.backend.UpdateStatus(ctx, src, id, st, notes); err != nil {
		return err
	}
	return u.patch(token, id, func(a *application.Application) {
		a.Status = st
		if notes != "" {
			a.ReviewNotes = notes
		}
	})
}

func (u *Updater) UpdateComment(ctx context.Context, src api.TokenSource, id, comment string) error {
	token := src.Token()
	if err := u.backend.UpdateComment(ctx, src, id, comment); err != nil {
		return err
	}
	return u.patch(token, id, func(a *application.Application) {
		a.Comment = comment
	})
}

func (u *Updater) patch(token, id string, fn func(*application.Application)) error {
	if u.cache == nil || token == "" {
		return nil
	}
	now := u.now()
	_, err := u.cache.Patch(token, id, func(a *application.Application) {
		fn(a)
		a.UpdatedAt = now
	})
	return errors.Wrap(err, "unable to patch cached application")
}

// Comment is what the detail page shows for one application's comment box.
type Comment struct {
	Draft    string `json:"draft"`
	LastGood string `json:"lastGood"`
	Saving   bool   `json:"saving"`
	Error    string `json:"error,omitempty"`
}

type draft struct {
	value    string
	lastGood string
	inFlight bool
	err      string
	// seq is the newest client edit applied to value
	seq      uint64
	// next holds the write that fired while another was in flight
	next     *queuedWrite
}

type queuedWrite struct {
	value string
	src   api.TokenSource
}

// CommentDrafts debounces comment edits per session and application. At
// most one write per comment is in flight; a write that fires meanwhile is
// sent when the current one returns. A failed write puts the draft back to
// the last saved value.
type CommentDrafts struct {
	updater   *Updater
	debouncer *Debouncer
	sources   func(token string) api.TokenSource
	logger    zerolog.Logger

	mu     sync.Mutex
	drafts map[string]*draft
}

// NewCommentDrafts takes sources to build a token source that stays usable
// after the request that scheduled the write has finished.
func NewCommentDrafts(updater *Updater, delay time.Duration, sources func(token string) api.TokenSource, logger zerolog.Logger) *CommentDrafts {
	return &CommentDrafts{
		updater:   updater,
		debouncer: NewDebouncer(delay),
		sources:   sources,
		logger:    logger,
		drafts:    make(map[string]*draft),
	}
}

func sessionPrefix(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8]) + ":"
}

func draftKey(token, id string) string {
	return sessionPrefix(token) + id
}

// Edit records value as the visible draft and schedules its write. saved is
// the comment currently stored for the application. seq orders edits from
// one comment box; an edit older than one already applied is ignored. A zero
// seq is always applied.
func (c *CommentDrafts) Edit(token, id, saved, value string, seq uint64) Comment {
	key := draftKey(token, id)
	c.mu.Lock()
	d, ok := c.drafts[key]
	if !ok {
		d = &draft{lastGood: saved}
		c.drafts[key] = d
	}
	if seq != 0 && seq <= d.seq {
		c.mu.Unlock()
		return c.State(token, id)
	}
	if seq != 0 {
		d.seq = seq
	}
	d.value = value
	d.err = ""
	c.mu.Unlock()

	src := c.sources(token)
	c.debouncer.Schedule(key, func() {
		c.save(key, id, src, value)
	})
	return c.State(token, id)
}

func (c *CommentDrafts) save(key, id string, src api.TokenSource, value string) {
	c.mu.Lock()
	d, ok := c.drafts[key]
	if !ok {
		c.mu.Unlock()
		return
	}
	if d.inFlight {
		d.next = &queuedWrite{value: value, src: src}
		c.mu.Unlock()
		return
	}
	d.inFlight = true
	c.mu.Unlock()

	for {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := c.updater.UpdateComment(ctx, src, id, value)
		cancel()

		c.mu.Lock()
		d, ok := c.drafts[key]
		if !ok {
			// session was cleared while the write was in flight
			c.mu.Unlock()
			return
		}
		c.finish(d, id, value, err)
		if d.next == nil {
			d.inFlight = false
			c.mu.Unlock()
			return
		}
		value, src = d.next.value, d.next.src
		d.next = nil
		c.mu.Unlock()
	}
}

// finish records the outcome of one write. Called with c.mu held.
func (c *CommentDrafts) finish(d *draft, id, value string, err error) {
	if err != nil {
		metrics.CommentSaves.WithLabelValues("failed").Inc()
		c.logger.Error().Err(err).Str("application", id).Msg("unable to save comment")
		if d.next != nil {
			// a newer write follows and decides what the box shows
			return
		}
		if d.value == value {
			d.value = d.lastGood
		}
		d.err = "Failed to save comment: " + api.UserMessage(err)
		return
	}
	metrics.CommentSaves.WithLabelValues("saved").Inc()
	d.lastGood = value
}

// State reports the draft for the comment box. A save error is returned
// once and then forgotten.
func (c *CommentDrafts) State(token, id string) Comment {
	key := draftKey(token, id)
	pending := c.debouncer.Pending(key)
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.drafts[key]
	if !ok {
		return Comment{}
	}
	out := Comment{
		Draft:    d.value,
		LastGood: d.lastGood,
		Saving:   pending || d.inFlight || d.next != nil,
		Error:    d.err,
	}
	d.err = ""
	return out
}

// Has reports whether a draft exists for the application in this session.
func (c *CommentDrafts) Has(token, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.drafts[draftKey(token, id)]
	return ok
}

// CancelSession drops pending writes and drafts of a cleared session.
func (c *CommentDrafts) CancelSession(token string) {
	prefix := sessionPrefix(token)
	c.debouncer.CancelPrefix(prefix)
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.drafts {
		if strings.HasPrefix(key, prefix) {
			delete(c.drafts, key)
		}
	}
}
