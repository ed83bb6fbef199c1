package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/iliyamo/cinetick/internal/model"
	"github.com/iliyamo/cinetick/internal/utils"
)

type credential struct {
	user model.User
	hash string
}

// UserRepo authenticates against bcrypt hashes of the two seeded accounts.
// Registered users are synthesized on the fly and never stored, so they
// cannot log in again later.
type UserRepo struct {
	lat Latency

	mu     sync.Mutex
	byMail map[string]credential
	nextID uint64
}

// NewUserRepo seeds the demo client and administrator accounts.
func NewUserRepo(lat Latency, bcryptCost int) (*UserRepo, error) {
	r := &UserRepo{lat: lat, byMail: map[string]credential{}, nextID: 3}
	seed := []struct {
		user     model.User
		password string
	}{
		{model.User{ID: 1, Name: "Usuario Demo", Email: "demo@cinetick.com", Role: model.RoleClient}, "demo123"},
		{model.User{ID: 2, Name: "Administrador", Email: "admin@cinetick.com", Role: model.RoleAdmin}, "admin123"},
	}
	for _, s := range seed {
		h, err := utils.HashPassword(s.password, bcryptCost)
		if err != nil {
			return nil, err
		}
		r.byMail[s.user.Email] = credential{user: s.user, hash: h}
	}
	return r, nil
}

// Login accepts only the seeded pairs.  The email must match exactly.
func (r *UserRepo) Login(ctx context.Context, email, password string) (model.User, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.User{}, err
	}
	cred, ok := r.byMail[email]
	if !ok || !utils.VerifyPassword(cred.hash, password) {
		return model.User{}, ErrInvalidCredentials
	}
	return cred.user, nil
}

// Register always succeeds and returns a new CLIENT user.  Nothing is
// persisted; the password is not checked or kept.
func (r *UserRepo) Register(ctx context.Context, name, email, _ string) (model.User, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return model.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u := model.User{ID: r.nextID, Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Role: model.RoleClient}
	r.nextID++
	return u, nil
}

// Role is an entry of the role catalog.
type Role struct {
	Value int    `json:"value"`
	Tag   string `json:"tag"`
	Name  string `json:"name"`
}

// Roles lists the roles a user can hold.
func (r *UserRepo) Roles(ctx context.Context) ([]Role, error) {
	if err := wait(ctx, r.lat.Load); err != nil {
		return nil, err
	}
	return []Role{
		{Value: 1, Tag: model.RoleClient, Name: "Cliente"},
		{Value: 2, Tag: model.RoleAdmin, Name: "Administrador"},
	}, nil
}
