// Package session tracks the signed-in user of each client.  A session is
// identified by an opaque ID carried in the access token; the user record
// itself lives in a Store so that logging out takes effect immediately.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/cinetick/internal/model"
)

// ErrInvalidUser is returned when beginning a session without a user ID.
var ErrInvalidUser = errors.New("session user has no id")

// Session is the per-client view of authentication state.  The zero value
// and nil are both anonymous.
type Session struct {
	ID   string
	user *model.User
}

// Anonymous returns a session without a user.
func Anonymous() *Session { return &Session{} }

// User returns the signed-in user, if any.
func (s *Session) User() (model.User, bool) {
	if s == nil || s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether a user is signed in.
func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

// Provider creates, restores and ends sessions over a Store.
type Provider struct {
	store Store
	newID func() string
}

// NewProvider returns a provider issuing random UUID session IDs.
func NewProvider(store Store) *Provider {
	return &Provider{store: store, newID: uuid.NewString}
}

// Begin signs u in under a fresh session ID and persists the record.
func (p *Provider) Begin(ctx context.Context, u model.User) (*Session, error) {
	if u.ID == 0 {
		return nil, ErrInvalidUser
	}
	sid := p.newID()
	if err := p.store.Save(ctx, sid, u); err != nil {
		return nil, err
	}
	return &Session{ID: sid, user: &u}, nil
}

// Restore loads the session sid from storage.  Unknown or empty IDs yield
// an anonymous session; only storage failures are errors.
func (p *Provider) Restore(ctx context.Context, sid string) (*Session, error) {
	if sid == "" {
		return Anonymous(), nil
	}
	u, ok, err := p.store.Load(ctx, sid)
	if err != nil {
		return Anonymous(), err
	}
	if !ok {
		return Anonymous(), nil
	}
	return &Session{ID: sid, user: &u}, nil
}

// End signs the session out, clearing both storage and s.
func (p *Provider) End(ctx context.Context, s *Session) error {
	if s == nil || s.ID == "" {
		return nil
	}
	err := p.store.Delete(ctx, s.ID)
	s.user = nil
	return err
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session of ctx, or an anonymous one.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(ctxKey{}).(*Session); ok && s != nil {
		return s
	}
	return Anonymous()
}
