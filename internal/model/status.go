package model

import (
	"fmt"
	"strings"
)

// Role is the marketplace role a user picks when the profile is first
// created.  It is a closed set; ParseRole rejects anything else.
type Role string

const (
	RoleSeller   Role = "SELLER"
	RoleCustomer Role = "CUSTOMER"
)

// ParseRole converts a case-insensitive role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleSeller || r == RoleCustomer
}

func (r *Role) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = ""
		return nil
	}
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// AccountStatus tracks the lifecycle of a user account.  Deactivation is a
// soft delete that moves the account to AccountInactive.
type AccountStatus string

const (
	AccountActive              AccountStatus = "ACTIVE"
	AccountInactive            AccountStatus = "INACTIVE"
	AccountSuspended           AccountStatus = "SUSPENDED"
	AccountPendingVerification AccountStatus = "PENDING_VERIFICATION"
)

func ParseAccountStatus(s string) (AccountStatus, error) {
	st := AccountStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case AccountActive, AccountInactive, AccountSuspended, AccountPendingVerification:
		return st, nil
	}
	return "", fmt.Errorf("unknown account status %q", s)
}

func (s *AccountStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ""
		return nil
	}
	v, err := ParseAccountStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CarStatus is the state of a listing.  New listings start in
// CarPendingApproval and only the owning seller moves them along.
type CarStatus string

const (
	CarActive          CarStatus = "ACTIVE"
	CarSold            CarStatus = "SOLD"
	CarInactive        CarStatus = "INACTIVE"
	CarPendingApproval CarStatus = "PENDING_APPROVAL"
	CarRejected        CarStatus = "REJECTED"
)

// carTransitions lists the statuses reachable from each status.  Staying in
// the same status is always permitted and only refreshes the update time.
var carTransitions = map[CarStatus][]CarStatus{
	CarPendingApproval: {CarActive, CarInactive, CarRejected},
	CarActive:          {CarSold, CarInactive, CarRejected},
	CarInactive:        {CarActive, CarSold},
	CarRejected:        {CarPendingApproval},
	CarSold:            {CarActive, CarInactive},
}

// ParseCarStatus converts a case-insensitive status name into a CarStatus.
func ParseCarStatus(s string) (CarStatus, error) {
	st := CarStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown car status %q", s)
	}
	return st, nil
}

func (s CarStatus) Valid() bool {
	_, ok := carTransitions[s]
	return ok
}

// CanTransitionTo reports whether a listing in status s may be moved to next.
func (s CarStatus) CanTransitionTo(next CarStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	for _, allowed := range carTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s *CarStatus) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*s = ""
		return nil
	}
	v, err := ParseCarStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
