package process

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"

	"github.com/allegro/bigcache/v3"
	"github.com/pkg/errors"
)

type Step struct {
	ID          string
	Title       string
	Description string
}

var Steps = []Step{
	{ID: "demand", Title: "Demand Letter Verification", Description: "Verify the demand letter from employer"},
	{ID: "documents", Title: "Document Verification", Description: "Verify all required documents"},
	{ID: "medical", Title: "Medical GAMCA", Description: "Complete medical examination"},
	{ID: "training", Title: "Training (If needed)", Description: "Complete required training programs"},
	{ID: "visa", Title: "Visa Process", Description: "Process visa application"},
	{ID: "payment", Title: "Fee Payment", Description: "Pay required fees"},
}

var ErrInvalidStep = errors.New("invalid process step")

// Tracker is the onboarding progress of one application.
type Tracker struct {
	ApplicationID string `json:"applicationId"`
	Current       int    `json:"current"`
	Completed     []int  `json:"completed"`
}

func NewTracker(applicationID string) Tracker {
	return Tracker{ApplicationID: applicationID, Completed: []int{}}
}

func (t Tracker) Step() Step {
	return Steps[t.Current]
}

func (t Tracker) IsCompleted(i int) bool {
	for _, c := range t.Completed {
		if c == i {
			return true
		}
	}
	return false
}

func (t Tracker) IsLast() bool {
	return t.Current == len(Steps)-1
}

// Done reports whether the final step has been completed.
func (t Tracker) Done() bool {
	return t.IsCompleted(len(Steps) - 1)
}

// Complete marks the current step done and moves to the next one. It
// reports true when the step completed was the last.
func (t *Tracker) Complete() bool {
	if !t.IsCompleted(t.Current) {
		t.Completed = append(t.Completed, t.Current)
		sort.Ints(t.Completed)
	}
	if t.IsLast() {
		return true
	}
	t.Current++
	return false
}

func (t *Tracker) Back() {
	if t.Current > 0 {
		t.Current--
	}
}

func (t *Tracker) GoTo(i int) error {
	if i < 0 || i >= len(Steps) {
		return ErrInvalidStep
	}
	t.Current = i
	return nil
}

type Store struct {
	cache *bigcache.BigCache
}

func NewStore(cache *bigcache.BigCache) *Store {
	return &Store{cache: cache}
}

func storeKey(applicationID string) string {
	return "process:" + applicationID
}

// Load returns the saved tracker, or a fresh one at the first step.
func (s *Store) Load(applicationID string) Tracker {
	raw, err := s.cache.Get(storeKey(applicationID))
	if err != nil {
		return NewTracker(applicationID)
	}
	var t Tracker
	if err := json.Unmarshal(raw, &t); err != nil || t.Current < 0 || t.Current >= len(Steps) {
		return NewTracker(applicationID)
	}
	return t
}

func (s *Store) Save(t Tracker) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return errors.Wrap(err, "unable to encode process tracker")
	}
	return s.cache.Set(storeKey(t.ApplicationID), raw)
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, src api.TokenSource, id string, st application.Status, notes string) error
}

// Service applies step actions and marks the application completed once the
// last step is done.
type Service struct {
	store   *Store
	updater StatusUpdater
}

func NewService(store *Store, updater StatusUpdater) *Service {
	return &Service{store: store, updater: updater}
}

func (s *Service) Get(applicationID string) Tracker {
	return s.store.Load(applicationID)
}

const (
	ActionComplete = "complete"
	ActionBack     = "back"
	ActionGoTo     = "goto"
)

// Apply runs one action. A failed status update leaves the tracker as it was.
func (s *Service) Apply(ctx context.Context, src api.TokenSource, applicationID, action string, step int) (Tracker, error) {
	t := s.store.Load(applicationID)
	switch action {
	case ActionComplete:
		if t.Complete() {
			if err := s.updater.UpdateStatus(ctx, src, applicationID, application.StatusCompleted, ""); err != nil {
				return s.store.Load(applicationID), err
			}
		}
	case ActionBack:
		t.Back()
	case ActionGoTo:
		if err := t.GoTo(step); err != nil {
			return t, err
		}
	default:
		return t, errors.Errorf("unknown process action %q", action)
	}
	return t, s.store.Save(t)
}
