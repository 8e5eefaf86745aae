package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/automarket/marketplace-api/internal/docstore"
	"github.com/automarket/marketplace-api/internal/model"
)

func seedCars(t *testing.T, repo *CarRepo, cars ...model.Car) {
	t.Helper()
	for i := range cars {
		if err := repo.Save(context.Background(), &cars[i]); err != nil {
			t.Fatalf("seed %s: %v", cars[i].ID, err)
		}
	}
}

func ids(cars []model.Car) map[string]bool {
	out := make(map[string]bool, len(cars))
	for _, c := range cars {
		out[c.ID] = true
	}
	return out
}

func fleet() []model.Car {
	return []model.Car{
		{ID: "a", SellerID: "s1", Brand: "BMW", Model: "320d", Year: 2020, Price: 25000, FuelType: "Diesel", Transmission: "Automatik", Status: model.CarActive},
		{ID: "b", SellerID: "s1", Brand: "bmw", Model: "X5", Year: 2018, Price: 20000, FuelType: "Benzin", Transmission: "Manuell", Status: model.CarActive},
		{ID: "c", SellerID: "s2", Brand: "BMW", Model: "M3", Year: 2022, Price: 30000, FuelType: "Benzin", Transmission: "Automatik", Status: model.CarActive},
		{ID: "d", SellerID: "s2", Brand: "BMW", Model: "i3", Year: 2021, Price: 30001, FuelType: "Elektro", Transmission: "Automatik", Status: model.CarActive},
		{ID: "e", SellerID: "s2", Brand: "Audi", Model: "A4", Year: 2019, Price: 24000, FuelType: "Diesel", Transmission: "Automatik", Status: model.CarActive},
		{ID: "f", SellerID: "s1", Brand: "BMW", Model: "330i", Year: 2020, Price: 26000, FuelType: "Benzin", Transmission: "Automatik", Status: model.CarPendingApproval},
		{ID: "g", SellerID: "s1", Brand: "BMW", Model: "118i", Year: 2016, Price: 12000, FuelType: "Benzin", Transmission: "Manuell", Status: model.CarSold},
	}
}

func TestSearchWithoutFiltersReturnsActiveSet(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	seedCars(t, repo, fleet()...)

	got, err := repo.Search(context.Background(), CarSearchQuery{})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := map[string]bool{"a": true, "b": true, "c": true, "d": true, "e": true}
	if len(got) != len(want) {
		t.Fatalf("expected %d active listings, got %d", len(want), len(got))
	}
	for id := range ids(got) {
		if !want[id] {
			t.Fatalf("unexpected listing %s in active set", id)
		}
	}
}

func TestSearchFiltersNarrowMonotonically(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	seedCars(t, repo, fleet()...)
	ctx := context.Background()

	minYear := 2019
	maxPrice := 30000.0
	steps := []CarSearchQuery{
		{},
		{Brand: "bmw"},
		{Brand: "bmw", Transmission: "automatik"},
		{Brand: "bmw", Transmission: "automatik", MinYear: &minYear},
		{Brand: "bmw", Transmission: "automatik", MinYear: &minYear, MaxPrice: &maxPrice},
		{Brand: "bmw", Transmission: "automatik", MinYear: &minYear, MaxPrice: &maxPrice, FuelType: "DIESEL"},
	}
	var prev map[string]bool
	for i, q := range steps {
		got, err := repo.Search(ctx, q)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		cur := ids(got)
		if prev != nil {
			for id := range cur {
				if !prev[id] {
					t.Fatalf("step %d added listing %s", i, id)
				}
			}
		}
		prev = cur
	}
	if len(prev) != 1 || !prev["a"] {
		t.Fatalf("expected only listing a at the end, got %v", prev)
	}
}

func TestSearchPriceBoundsAreInclusive(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	seedCars(t, repo, fleet()...)

	min, max := 20000.0, 30000.0
	got, err := repo.Search(context.Background(), CarSearchQuery{MinPrice: &min, MaxPrice: &max})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	found := ids(got)
	if !found["b"] || !found["c"] {
		t.Fatalf("expected listings priced exactly at the bounds, got %v", found)
	}
	if found["d"] {
		t.Fatalf("listing above max price returned")
	}
}

func TestSimilarUsesBrandAndPriceBand(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	seedCars(t, repo, fleet()...)
	ctx := context.Background()

	ref, err := repo.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("get reference: %v", err)
	}
	got, err := repo.Similar(ctx, ref)
	if err != nil {
		t.Fatalf("similar: %v", err)
	}
	found := ids(got)
	if len(found) != 2 || !found["b"] || !found["c"] {
		t.Fatalf("expected b and c, got %v", found)
	}
}

func TestListBySellerAndStatus(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	seedCars(t, repo, fleet()...)
	ctx := context.Background()

	mine, err := repo.ListBySeller(ctx, "s1")
	if err != nil {
		t.Fatalf("list by seller: %v", err)
	}
	if len(mine) != 4 {
		t.Fatalf("expected 4 listings for s1, got %d", len(mine))
	}
	sold, err := repo.ListBySellerAndStatus(ctx, "s1", model.CarSold)
	if err != nil {
		t.Fatalf("list by seller and status: %v", err)
	}
	if len(sold) != 1 || sold[0].ID != "g" {
		t.Fatalf("expected only g, got %+v", sold)
	}
}

func TestGetByIDMissing(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	if _, err := repo.GetByID(context.Background(), "nope"); !errors.Is(err, ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound, got %v", err)
	}
}

func TestSaveAssignsID(t *testing.T) {
	repo := NewCarRepo(docstore.NewMemory())
	car := model.Car{Brand: "VW", Status: model.CarActive}
	if err := repo.Save(context.Background(), &car); err != nil {
		t.Fatalf("save: %v", err)
	}
	if car.ID == "" {
		t.Fatalf("expected generated id")
	}
	n, err := repo.CountByStatus(context.Background(), model.CarActive)
	if err != nil || n != 1 {
		t.Fatalf("expected one active listing, n=%d err=%v", n, err)
	}
}
