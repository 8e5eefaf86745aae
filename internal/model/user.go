package model

import "time"

// User represents a marketplace account as stored in the `users`
// collection.  The document id is the identity provider's subject id,
// so FirebaseUID and ID always carry the same value.
//
// Fields:
//  FirebaseUID      – subject id issued by the identity provider (primary key).
//  Email            – email address taken from the verified token.
//  Role             – SELLER or CUSTOMER; set once when the profile is created.
//  Status           – account status; deactivation sets INACTIVE.
//  LastLoginAt      – refreshed every time the profile is upserted.
//  CompanyName ...  – seller-only fields, maintained through the seller-info endpoint.
type User struct {
	ID              string        `json:"id" firestore:"-" bson:"-"`
	FirebaseUID     string        `json:"firebaseUid" firestore:"firebaseUid" bson:"firebaseUid"`
	Email           string        `json:"email" firestore:"email" bson:"email"`
	FirstName       string        `json:"firstName" firestore:"firstName" bson:"firstName"`
	LastName        string        `json:"lastName" firestore:"lastName" bson:"lastName"`
	PhoneNumber     string        `json:"phoneNumber,omitempty" firestore:"phoneNumber" bson:"phoneNumber"`
	ProfileImageURL string        `json:"profileImageUrl,omitempty" firestore:"profileImageUrl" bson:"profileImageUrl"`
	Role            Role          `json:"userType" firestore:"userType" bson:"userType"`
	Status          AccountStatus `json:"status" firestore:"status" bson:"status"`
	CreatedAt       time.Time     `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
	LastLoginAt     *time.Time    `json:"lastLoginAt,omitempty" firestore:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`

	CompanyName     string   `json:"companyName,omitempty" firestore:"companyName" bson:"companyName"`
	BusinessLicense string   `json:"businessLicense,omitempty" firestore:"businessLicense" bson:"businessLicense"`
	Address         string   `json:"address,omitempty" firestore:"address" bson:"address"`
	Specializations []string `json:"specializations,omitempty" firestore:"specializations" bson:"specializations"`
}

// SetID records the document id the store assigned to the user.
func (u *User) SetID(id string) {
	u.ID = id
	if u.FirebaseUID == "" {
		u.FirebaseUID = id
	}
}

func (u *User) IsSeller() bool { return u.Role == RoleSeller }

func (u *User) IsActive() bool { return u.Status == AccountActive }
