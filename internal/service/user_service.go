package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/model"
	"github.com/automarket/marketplace-api/internal/repository"
)

// ProfileInput carries the fields a user submits after signing in.
type ProfileInput struct {
	FirstName string
	LastName  string
	Role      model.Role
}

// ProfilePatch is a partial profile update; nil fields are left alone.
type ProfilePatch struct {
	FirstName       *string `json:"firstName" validate:"omitempty,max=50"`
	LastName        *string `json:"lastName" validate:"omitempty,max=50"`
	PhoneNumber     *string `json:"phoneNumber" validate:"omitempty,max=30"`
	ProfileImageURL *string `json:"profileImageUrl" validate:"omitempty,url"`
}

// SellerInfo replaces the seller-only fields of a profile.
type SellerInfo struct {
	CompanyName     string   `json:"companyName" validate:"max=100"`
	BusinessLicense string   `json:"businessLicense" validate:"max=100"`
	Address         string   `json:"address" validate:"max=200"`
	Specializations []string `json:"specializations" validate:"max=20,dive,min=1,max=50"`
}

type UserService struct {
	users *repository.UserRepo
	log   *zap.Logger
	now   func() time.Time
}

func NewUserService(users *repository.UserRepo, log *zap.Logger) *UserService {
	return &UserService{users: users, log: log, now: time.Now}
}

// CreateOrUpdate upserts the profile keyed by uid.  An existing profile gets
// its email, names and login time refreshed; its role is never changed.
func (s *UserService) CreateOrUpdate(ctx context.Context, uid, email string, in ProfileInput) (*model.User, error) {
	now := s.now().UTC()
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.users.GetByID(ctx, uid)
	switch {
	case err == nil:
		if in.Role != "" && in.Role != u.Role {
			s.log.Debug("ignoring role change on existing profile",
				zap.String("uid", uid), zap.String("stored", string(u.Role)), zap.String("requested", string(in.Role)))
		}
		u.Email = email
		u.FirstName = in.FirstName
		u.LastName = in.LastName
	case errors.Is(err, ErrUserNotFound):
		if !in.Role.Valid() {
			return nil, fmt.Errorf("%w %q", ErrInvalidRole, in.Role)
		}
		u = &model.User{
			FirebaseUID: uid,
			Email:       email,
			FirstName:   in.FirstName,
			LastName:    in.LastName,
			Role:        in.Role,
			Status:      model.AccountActive,
			CreatedAt:   now,
		}
	default:
		return nil, err
	}
	u.UpdatedAt = now
	u.LastLoginAt = &now
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

func (s *UserService) Get(ctx context.Context, uid string) (*model.User, error) {
	return s.users.GetByID(ctx, uid)
}

func (s *UserService) UpdateProfile(ctx context.Context, uid string, p ProfilePatch) (*model.User, error) {
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	setString(&u.FirstName, p.FirstName)
	setString(&u.LastName, p.LastName)
	setString(&u.PhoneNumber, p.PhoneNumber)
	setString(&u.ProfileImageURL, p.ProfileImageURL)
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// UpdateSellerInfo fails with ErrNotSeller, leaving the profile untouched,
// unless the account has the SELLER role.
func (s *UserService) UpdateSellerInfo(ctx context.Context, uid string, info SellerInfo) (*model.User, error) {
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !u.IsSeller() {
		return nil, ErrNotSeller
	}
	u.CompanyName = info.CompanyName
	u.BusinessLicense = info.BusinessLicense
	u.Address = info.Address
	u.Specializations = info.Specializations
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// Deactivate is a soft delete: the profile stays with status INACTIVE.
func (s *UserService) Deactivate(ctx context.Context, uid string) error {
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		return err
	}
	u.Status = model.AccountInactive
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Save(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (s *UserService) ListActiveSellers(ctx context.Context) ([]model.User, error) {
	return s.users.ListActiveByRole(ctx, model.RoleSeller)
}

func (s *UserService) SellersBySpecialization(ctx context.Context, specialization string) ([]model.User, error) {
	return s.users.ListSellersBySpecialization(ctx, specialization)
}
