package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/automarket/marketplace-api/internal/docstore"
	"github.com/automarket/marketplace-api/internal/model"
)

// UserRepo stores user profiles keyed by identity-provider subject id.
type UserRepo struct{ store docstore.Store }

func NewUserRepo(store docstore.Store) *UserRepo { return &UserRepo{store: store} }

// Save upserts the profile under its FirebaseUID.
func (r *UserRepo) Save(ctx context.Context, u *model.User) error {
	if u.FirebaseUID == "" {
		return errors.New("user without subject id")
	}
	id, err := r.store.Save(ctx, UsersCollection, u.FirebaseUID, u)
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

// GetByID fetches a profile by subject id; ErrUserNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, uid string) (*model.User, error) {
	if uid == "" {
		return nil, ErrUserNotFound
	}
	u, err := docstore.Get[model.User](ctx, r.store, UsersCollection, uid)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListActiveByRole filters the role query down to ACTIVE accounts.
func (r *UserRepo) ListActiveByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	users, err := docstore.QueryEqual[model.User](ctx, r.store, UsersCollection, "userType", role)
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.IsActive() {
			out = append(out, u)
		}
	}
	return out, nil
}

// ListSellersBySpecialization returns active sellers carrying a
// specialization tag that matches case-insensitively.
func (r *UserRepo) ListSellersBySpecialization(ctx context.Context, specialization string) ([]model.User, error) {
	sellers, err := r.ListActiveByRole(ctx, model.RoleSeller)
	if err != nil {
		return nil, err
	}
	specialization = strings.TrimSpace(specialization)
	out := make([]model.User, 0)
	for _, u := range sellers {
		for _, s := range u.Specializations {
			if strings.EqualFold(s, specialization) {
				out = append(out, u)
				break
			}
		}
	}
	return out, nil
}

// Exists reports whether a profile is stored for uid.
func (r *UserRepo) Exists(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, nil
	}
	return r.store.Exists(ctx, UsersCollection, uid)
}
