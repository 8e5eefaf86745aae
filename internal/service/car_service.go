package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/model"
	"github.com/automarket/marketplace-api/internal/queue"
	"github.com/automarket/marketplace-api/internal/repository"
)

// CarPatch is a partial listing update.  Nil fields keep their stored value.
type CarPatch struct {
	Brand          *string   `json:"brand" validate:"omitempty,min=1,max=50"`
	Model          *string   `json:"model" validate:"omitempty,min=1,max=50"`
	Year           *int      `json:"year" validate:"omitempty,min=1900,max=2030"`
	Price          *float64  `json:"price" validate:"omitempty,gt=0"`
	Mileage        *int      `json:"mileage" validate:"omitempty,min=0"`
	FuelType       *string   `json:"fuelType" validate:"omitempty,min=1"`
	Transmission   *string   `json:"transmission" validate:"omitempty,min=1"`
	Color          *string   `json:"color"`
	Doors          *int      `json:"doors" validate:"omitempty,min=2,max=6"`
	Seats          *int      `json:"seats" validate:"omitempty,min=1,max=9"`
	BodyType       *string   `json:"bodyType"`
	EngineSize     *string   `json:"engineSize"`
	Horsepower     *int      `json:"horsepower" validate:"omitempty,min=1"`
	Drivetrain     *string   `json:"drivetrain"`
	Condition      *string   `json:"condition" validate:"omitempty,min=1"`
	PreviousOwners *int      `json:"previousOwners" validate:"omitempty,min=0"`
	AccidentFree   *bool     `json:"accidentFree"`
	ServiceHistory *string   `json:"serviceHistory"`
	Features       *[]string `json:"features"`
	ImageURLs      *[]string `json:"imageUrls"`
	MainImageURL   *string   `json:"mainImageUrl"`
	Description    *string   `json:"description" validate:"omitempty,min=50,max=2000"`
	Location       *string   `json:"location"`
	ZipCode        *string   `json:"zipCode"`
}

func (p CarPatch) apply(c *model.Car) {
	setString(&c.Brand, p.Brand)
	setString(&c.Model, p.Model)
	if p.Year != nil {
		c.Year = *p.Year
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Mileage != nil {
		c.Mileage = *p.Mileage
	}
	setString(&c.FuelType, p.FuelType)
	setString(&c.Transmission, p.Transmission)
	setString(&c.Color, p.Color)
	setIntPtr(&c.Doors, p.Doors)
	setIntPtr(&c.Seats, p.Seats)
	setString(&c.BodyType, p.BodyType)
	setString(&c.EngineSize, p.EngineSize)
	setIntPtr(&c.Horsepower, p.Horsepower)
	setString(&c.Drivetrain, p.Drivetrain)
	setString(&c.Condition, p.Condition)
	setIntPtr(&c.PreviousOwners, p.PreviousOwners)
	if p.AccidentFree != nil {
		c.AccidentFree = *p.AccidentFree
	}
	setString(&c.ServiceHistory, p.ServiceHistory)
	if p.Features != nil {
		c.Features = *p.Features
	}
	if p.ImageURLs != nil {
		c.ImageURLs = *p.ImageURLs
	}
	setString(&c.MainImageURL, p.MainImageURL)
	setString(&c.Description, p.Description)
	setString(&c.Location, p.Location)
	setString(&c.ZipCode, p.ZipCode)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setIntPtr(dst **int, v *int) {
	if v != nil {
		n := *v
		*dst = &n
	}
}

// CarStats summarises the listing collection.
type CarStats struct {
	Total  int `json:"total"`
	Active int `json:"active"`
	Sold   int `json:"sold"`
}

// CarService applies listing ownership and the status lifecycle.
type CarService struct {
	cars   *repository.CarRepo
	users  *repository.UserRepo
	events queue.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewCarService(cars *repository.CarRepo, users *repository.UserRepo, events queue.Publisher, log *zap.Logger) *CarService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &CarService{cars: cars, users: users, events: events, log: log, now: time.Now}
}

// Create stores a new listing owned by sellerID.  Any seller id or status
// on the input is overwritten: the caller always owns what they create and
// every listing starts in PENDING_APPROVAL.
func (s *CarService) Create(ctx context.Context, sellerID string, car *model.Car) (*model.Car, error) {
	ok, err := s.users.Exists(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("check seller profile: %w", err)
	}
	if !ok {
		return nil, ErrSellerRequired
	}
	now := s.now().UTC()
	car.ID = ""
	car.SellerID = sellerID
	car.Status = model.CarPendingApproval
	car.CreatedAt = now
	car.UpdatedAt = now
	car.SoldAt = nil
	if err := s.cars.Save(ctx, car); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}
	s.publish(ctx, queue.NewListingEvent(queue.ListingCreated, car, now))
	return car, nil
}

func (s *CarService) Get(ctx context.Context, id string) (*model.Car, error) {
	return s.cars.GetByID(ctx, id)
}

// owned re-fetches the listing and checks it belongs to sellerID.
func (s *CarService) owned(ctx context.Context, id, sellerID string) (*model.Car, error) {
	car, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !car.OwnedBy(sellerID) {
		return nil, ErrNotOwner
	}
	return car, nil
}

// Update applies a partial change to a listing the caller owns.  Owner,
// status and timestamps other than UpdatedAt are never touched here.
func (s *CarService) Update(ctx context.Context, id, sellerID string, patch CarPatch) (*model.Car, error) {
	car, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	patch.apply(car)
	car.UpdatedAt = s.now().UTC()
	if err := s.cars.Save(ctx, car); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}
	return car, nil
}

// UpdateStatus moves a listing along its lifecycle.  Entering SOLD stamps
// SoldAt; other transitions leave it as it was.
func (s *CarService) UpdateStatus(ctx context.Context, id, sellerID string, next model.CarStatus) (*model.Car, error) {
	car, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return nil, err
	}
	prev := car.Status
	if !prev.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}
	now := s.now().UTC()
	car.Status = next
	car.UpdatedAt = now
	if next == model.CarSold && prev != model.CarSold {
		car.SoldAt = &now
	}
	if err := s.cars.Save(ctx, car); err != nil {
		return nil, fmt.Errorf("save listing: %w", err)
	}

	if prev != next {
		typ := queue.ListingStatusChanged
		if next == model.CarSold {
			typ = queue.ListingSold
		}
		ev := queue.NewListingEvent(typ, car, now)
		ev.PrevStatus = prev
		s.publish(ctx, ev)
	}
	return car, nil
}

// Delete hard-deletes a listing the caller owns.
func (s *CarService) Delete(ctx context.Context, id, sellerID string) error {
	car, err := s.owned(ctx, id, sellerID)
	if err != nil {
		return err
	}
	if err := s.cars.Delete(ctx, car.ID); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	s.publish(ctx, queue.NewListingEvent(queue.ListingDeleted, car, s.now()))
	return nil
}

func (s *CarService) ListActive(ctx context.Context) ([]model.Car, error) {
	return s.cars.ListActive(ctx)
}

func (s *CarService) Search(ctx context.Context, q repository.CarSearchQuery) ([]model.Car, error) {
	return s.cars.Search(ctx, q)
}

func (s *CarService) ListByBrand(ctx context.Context, brand string) ([]model.Car, error) {
	return s.cars.ListActiveByBrand(ctx, brand)
}

// Similar looks up the reference listing and returns its neighbours.
func (s *CarService) Similar(ctx context.Context, id string) ([]model.Car, error) {
	ref, err := s.cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.cars.Similar(ctx, ref)
}

// ListMine returns every listing of the seller, whatever its status.
func (s *CarService) ListMine(ctx context.Context, sellerID string) ([]model.Car, error) {
	return s.cars.ListBySeller(ctx, sellerID)
}

func (s *CarService) ListMineByStatus(ctx context.Context, sellerID string, status model.CarStatus) ([]model.Car, error) {
	return s.cars.ListBySellerAndStatus(ctx, sellerID, status)
}

func (s *CarService) Stats(ctx context.Context) (CarStats, error) {
	var st CarStats
	var err error
	if st.Total, err = s.cars.Count(ctx); err != nil {
		return st, err
	}
	if st.Active, err = s.cars.CountByStatus(ctx, model.CarActive); err != nil {
		return st, err
	}
	if st.Sold, err = s.cars.CountByStatus(ctx, model.CarSold); err != nil {
		return st, err
	}
	return st, nil
}

// SellerActiveCount counts the seller's ACTIVE listings.
func (s *CarService) SellerActiveCount(ctx context.Context, sellerID string) (int, error) {
	cars, err := s.cars.ListBySellerAndStatus(ctx, sellerID, model.CarActive)
	return len(cars), err
}

func (s *CarService) publish(ctx context.Context, ev queue.ListingEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("listing event dropped", zap.String("type", ev.Type), zap.String("car_id", ev.CarID), zap.Error(err))
	}
}
