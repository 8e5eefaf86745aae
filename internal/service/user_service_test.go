package service

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/automarket/marketplace-api/internal/model"
)

func TestUpsertKeepsFirstRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.users.CreateOrUpdate(ctx, "u1", "Anna@Example.com", ProfileInput{FirstName: "Anna", LastName: "Berg", Role: model.RoleCustomer})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Role != model.RoleCustomer || first.Status != model.AccountActive || first.Email != "anna@example.com" {
		t.Fatalf("unexpected new profile %+v", first)
	}

	f.clock = f.clock.Add(time.Hour)
	second, err := f.users.CreateOrUpdate(ctx, "u1", "anna@new.example", ProfileInput{FirstName: "Anna-Lena", LastName: "Berg", Role: model.RoleSeller})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.Role != model.RoleCustomer {
		t.Fatalf("role changed to %s", second.Role)
	}
	if second.FirstName != "Anna-Lena" || second.Email != "anna@new.example" {
		t.Fatalf("profile not refreshed: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("createdAt changed on upsert")
	}
	if second.LastLoginAt == nil || !second.LastLoginAt.Equal(f.clock) {
		t.Fatalf("lastLoginAt = %v, want %v", second.LastLoginAt, f.clock)
	}
}

func TestCreateRejectsMissingRole(t *testing.T) {
	f := newFixture(t)
	if _, err := f.users.CreateOrUpdate(context.Background(), "u1", "a@b.c", ProfileInput{FirstName: "A"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole for missing role on new profile, got %v", err)
	}
}

func TestSellerInfoOnCustomerFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.users.CreateOrUpdate(ctx, "c1", "c1@example.com", ProfileInput{FirstName: "C", Role: model.RoleCustomer}); err != nil {
		t.Fatalf("create: %v", err)
	}
	before, err := f.users.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	_, err = f.users.UpdateSellerInfo(ctx, "c1", SellerInfo{CompanyName: "ACME", Specializations: []string{"SUV"}})
	if !errors.Is(err, ErrNotSeller) {
		t.Fatalf("expected ErrNotSeller, got %v", err)
	}
	after, err := f.users.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("profile changed:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestSellerInfoAndSearch(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	u, err := f.users.UpdateSellerInfo(ctx, "s1", SellerInfo{CompanyName: "Autohaus Nord", Specializations: []string{"BMW", "Oldtimer"}})
	if err != nil {
		t.Fatalf("seller info: %v", err)
	}
	if u.CompanyName != "Autohaus Nord" {
		t.Fatalf("company not stored: %+v", u)
	}
	found, err := f.users.SellersBySpecialization(ctx, "bmw")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].FirebaseUID != "s1" {
		t.Fatalf("unexpected sellers %+v", found)
	}
}

func TestUpdateProfileAndDeactivate(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	phone := "+49 30 123456"
	u, err := f.users.UpdateProfile(ctx, "s1", ProfilePatch{PhoneNumber: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.PhoneNumber != phone || u.FirstName != "S" {
		t.Fatalf("unexpected profile %+v", u)
	}
	if _, err := f.users.UpdateProfile(ctx, "nobody", ProfilePatch{}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if err := f.users.Deactivate(ctx, "s1"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := f.users.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("profile removed on deactivate: %v", err)
	}
	if got.Status != model.AccountInactive {
		t.Fatalf("status = %s, want INACTIVE", got.Status)
	}
	sellers, err := f.users.ListActiveSellers(ctx)
	if err != nil || len(sellers) != 0 {
		t.Fatalf("expected no active sellers, got %d err=%v", len(sellers), err)
	}
}
