package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

var ErrDraftNotFound = errors.New("registration draft not found or expired")

// DraftStore keeps in-progress registration forms between requests. Drafts
// expire after ttl of inactivity.
type DraftStore struct {
	cache *gocache.Cache
	ttl   time.Duration
}

func NewDraftStore(ttl time.Duration) *DraftStore {
	return &DraftStore{
		cache: gocache.New(ttl, ttl/2+time.Minute),
		ttl:   ttl,
	}
}

func (s *DraftStore) Create(lang string) *RegistrationForm {
	form := NewRegistrationForm(uuid.New().String(), lang)
	s.cache.Set(form.ID, form, gocache.DefaultExpiration)
	return form
}

func (s *DraftStore) Get(id string) (*RegistrationForm, error) {
	x, found := s.cache.Get(id)
	if !found {
		return nil, ErrDraftNotFound
	}
	form, ok := x.(*RegistrationForm)
	if !ok {
		return nil, ErrDraftNotFound
	}
	return form, nil
}

// Do runs fn with exclusive access to the draft and refreshes its expiry.
func (s *DraftStore) Do(id string, fn func(*RegistrationForm) error) error {
	form, err := s.Get(id)
	if err != nil {
		return err
	}
	form.mu.Lock()
	defer form.mu.Unlock()
	if form.removed {
		return ErrDraftNotFound
	}

	err = fn(form)
	if form.Step == StepSubmitted {
		form.removed = true
		s.cache.Delete(id)
	} else {
		s.cache.Set(id, form, gocache.DefaultExpiration)
	}
	return err
}

// Delete discards the draft. It waits for a request holding the draft to
// finish, and that request will not store it again.
func (s *DraftStore) Delete(id string) {
	form, err := s.Get(id)
	if err != nil {
		return
	}
	form.mu.Lock()
	defer form.mu.Unlock()
	form.removed = true
	s.cache.Delete(id)
}

func (s *DraftStore) Count() int {
	return s.cache.ItemCount()
}
