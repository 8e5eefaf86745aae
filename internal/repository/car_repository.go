package repository

import (
	"context"
	"errors"

	"github.com/automarket/marketplace-api/internal/docstore"
	"github.com/automarket/marketplace-api/internal/model"
)

// CarRepo reads and writes listings in the cars collection.
type CarRepo struct{ store docstore.Store }

func NewCarRepo(store docstore.Store) *CarRepo { return &CarRepo{store: store} }

// Save upserts the listing.  A listing without an id gets one from the
// store, and the assigned id is written back into car.
func (r *CarRepo) Save(ctx context.Context, car *model.Car) error {
	id, err := r.store.Save(ctx, CarsCollection, car.ID, car)
	if err != nil {
		return err
	}
	car.ID = id
	return nil
}

// GetByID fetches one listing; ErrCarNotFound when absent.
func (r *CarRepo) GetByID(ctx context.Context, id string) (*model.Car, error) {
	if id == "" {
		return nil, ErrCarNotFound
	}
	car, err := docstore.Get[model.Car](ctx, r.store, CarsCollection, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrCarNotFound
	}
	return car, err
}

func (r *CarRepo) ListAll(ctx context.Context) ([]model.Car, error) {
	return docstore.GetAll[model.Car](ctx, r.store, CarsCollection)
}

func (r *CarRepo) ListByStatus(ctx context.Context, status model.CarStatus) ([]model.Car, error) {
	return docstore.QueryEqual[model.Car](ctx, r.store, CarsCollection, "status", status)
}

// ListActive returns the publicly visible listings.
func (r *CarRepo) ListActive(ctx context.Context) ([]model.Car, error) {
	return r.ListByStatus(ctx, model.CarActive)
}

func (r *CarRepo) ListBySeller(ctx context.Context, sellerID string) ([]model.Car, error) {
	return docstore.QueryEqual[model.Car](ctx, r.store, CarsCollection, "sellerId", sellerID)
}

// ListBySellerAndStatus is a two-field AND, answered by filtering the
// seller's listings.
func (r *CarRepo) ListBySellerAndStatus(ctx context.Context, sellerID string, status model.CarStatus) ([]model.Car, error) {
	cars, err := r.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	return FilterCars(cars, StatusIs(status)), nil
}

// Search applies the query to the active set.  No filters returns the
// whole active set.
func (r *CarRepo) Search(ctx context.Context, q CarSearchQuery) ([]model.Car, error) {
	cars, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCars(cars, q.Predicates()...), nil
}

// ListActiveByBrand matches the brand case-insensitively.
func (r *CarRepo) ListActiveByBrand(ctx context.Context, brand string) ([]model.Car, error) {
	cars, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCars(cars, BrandEquals(brand)), nil
}

// Similar returns active listings of the same brand priced within
// [0.8x, 1.2x] of ref, excluding ref itself.
func (r *CarRepo) Similar(ctx context.Context, ref *model.Car) ([]model.Car, error) {
	cars, err := r.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return FilterCars(cars,
		BrandEquals(ref.Brand),
		PriceBetween(ref.Price*8/10, ref.Price*12/10),
		NotID(ref.ID),
	), nil
}

func (r *CarRepo) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CarsCollection, id)
}

func (r *CarRepo) Count(ctx context.Context) (int, error) {
	cars, err := r.ListAll(ctx)
	return len(cars), err
}

func (r *CarRepo) CountByStatus(ctx context.Context, status model.CarStatus) (int, error) {
	cars, err := r.ListByStatus(ctx, status)
	return len(cars), err
}
