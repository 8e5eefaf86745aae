// Package service holds the marketplace business rules: listing ownership,
// the listing status lifecycle and the user profile upsert.
package service

import (
	"errors"

	"github.com/automarket/marketplace-api/internal/repository"
)

var (
	// ErrCarNotFound and ErrUserNotFound are the repository sentinels,
	// re-exported so handlers depend on one package for error mapping.
	ErrCarNotFound  = repository.ErrCarNotFound
	ErrUserNotFound = repository.ErrUserNotFound

	// ErrNotOwner is returned when the caller is not the listing's seller.
	ErrNotOwner = errors.New("not the owner of this listing")
	// ErrNotSeller is returned for seller-only profile changes on other roles.
	ErrNotSeller = errors.New("user is not a seller")
	// ErrInvalidRole is returned when a new profile names no known role.
	ErrInvalidRole = errors.New("invalid role")
	// ErrInvalidTransition is returned for a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrSellerRequired is returned when a listing is created before the
	// caller has a profile.
	ErrSellerRequired = errors.New("seller profile not found")
)
