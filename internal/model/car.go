package model

import "time"

// Car is a listing in the `cars` collection.  SellerID is the subject id
// of the owning user; it is assigned by the server on creation and never
// changes afterwards.
type Car struct {
	ID       string `json:"id" firestore:"-" bson:"-"`
	SellerID string `json:"sellerId" firestore:"sellerId" bson:"sellerId"`

	Brand        string  `json:"brand" firestore:"brand" bson:"brand"`
	Model        string  `json:"model" firestore:"model" bson:"model"`
	Year         int     `json:"year" firestore:"year" bson:"year"`
	Price        float64 `json:"price" firestore:"price" bson:"price"`
	Mileage      int     `json:"mileage" firestore:"mileage" bson:"mileage"`
	FuelType     string  `json:"fuelType" firestore:"fuelType" bson:"fuelType"`
	Transmission string  `json:"transmission" firestore:"transmission" bson:"transmission"`

	Color      string `json:"color,omitempty" firestore:"color" bson:"color"`
	Doors      *int   `json:"doors,omitempty" firestore:"doors,omitempty" bson:"doors,omitempty"`
	Seats      *int   `json:"seats,omitempty" firestore:"seats,omitempty" bson:"seats,omitempty"`
	BodyType   string `json:"bodyType,omitempty" firestore:"bodyType" bson:"bodyType"`
	EngineSize string `json:"engineSize,omitempty" firestore:"engineSize" bson:"engineSize"`
	Horsepower *int   `json:"horsepower,omitempty" firestore:"horsepower,omitempty" bson:"horsepower,omitempty"`
	Drivetrain string `json:"drivetrain,omitempty" firestore:"drivetrain" bson:"drivetrain"`

	Condition      string   `json:"condition" firestore:"condition" bson:"condition"`
	PreviousOwners *int     `json:"previousOwners,omitempty" firestore:"previousOwners,omitempty" bson:"previousOwners,omitempty"`
	AccidentFree   bool     `json:"accidentFree" firestore:"accidentFree" bson:"accidentFree"`
	ServiceHistory string   `json:"serviceHistory,omitempty" firestore:"serviceHistory" bson:"serviceHistory"`
	Features       []string `json:"features,omitempty" firestore:"features" bson:"features"`

	ImageURLs    []string `json:"imageUrls,omitempty" firestore:"imageUrls" bson:"imageUrls"`
	MainImageURL string   `json:"mainImageUrl,omitempty" firestore:"mainImageUrl" bson:"mainImageUrl"`
	Description  string   `json:"description" firestore:"description" bson:"description"`
	Location     string   `json:"location,omitempty" firestore:"location" bson:"location"`
	ZipCode      string   `json:"zipCode,omitempty" firestore:"zipCode" bson:"zipCode"`

	Status    CarStatus  `json:"status" firestore:"status" bson:"status"`
	CreatedAt time.Time  `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
	SoldAt    *time.Time `json:"soldAt,omitempty" firestore:"soldAt,omitempty" bson:"soldAt,omitempty"`
}

// SetID records the document id the store assigned to the listing.
func (c *Car) SetID(id string) { c.ID = id }

// OwnedBy reports whether subject is the listing's seller.
func (c *Car) OwnedBy(subject string) bool {
	return subject != "" && c.SellerID == subject
}
