package service

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/automarket/marketplace-api/internal/docstore"
	"github.com/automarket/marketplace-api/internal/model"
	"github.com/automarket/marketplace-api/internal/queue"
	"github.com/automarket/marketplace-api/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ListingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ListingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fixture struct {
	cars   *CarService
	users  *UserService
	events *recordingPublisher
	store  *docstore.Memory
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := docstore.NewMemory()
	carRepo := repository.NewCarRepo(store)
	userRepo := repository.NewUserRepo(store)
	events := &recordingPublisher{}
	f := &fixture{
		cars:   NewCarService(carRepo, userRepo, events, zap.NewNop()),
		users:  NewUserService(userRepo, zap.NewNop()),
		events: events,
		store:  store,
		clock:  time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.cars.now = now
	f.users.now = now
	return f
}

func (f *fixture) seller(t *testing.T, uid string) {
	t.Helper()
	if _, err := f.users.CreateOrUpdate(context.Background(), uid, uid+"@example.com", ProfileInput{FirstName: "S", LastName: uid, Role: model.RoleSeller}); err != nil {
		t.Fatalf("create seller %s: %v", uid, err)
	}
}

func sampleCar() *model.Car {
	return &model.Car{
		Brand:        "BMW",
		Model:        "3er",
		Year:         2020,
		Price:        25000,
		Mileage:      40000,
		FuelType:     "Diesel",
		Transmission: "Automatik",
		Condition:    "Gebraucht",
		AccidentFree: true,
		Description:  "Gepflegter BMW 3er mit vollem Scheckheft und neuen Reifen, Nichtraucherfahrzeug.",
	}
}

func TestCreateAssignsCallerAsOwner(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")

	in := sampleCar()
	in.SellerID = "someone-else"
	in.Status = model.CarActive
	car, err := f.cars.Create(context.Background(), "s1", in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if car.SellerID != "s1" {
		t.Fatalf("seller = %q, want s1", car.SellerID)
	}
	if car.Status != model.CarPendingApproval {
		t.Fatalf("status = %s, want PENDING_APPROVAL", car.Status)
	}
	stored, err := f.cars.Get(context.Background(), car.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.SellerID != "s1" {
		t.Fatalf("stored seller = %q, want s1", stored.SellerID)
	}
	if got := f.events.types(); len(got) != 1 || got[0] != queue.ListingCreated {
		t.Fatalf("unexpected events %v", got)
	}
}

func TestCreateRequiresProfile(t *testing.T) {
	f := newFixture(t)
	if _, err := f.cars.Create(context.Background(), "ghost", sampleCar()); !errors.Is(err, ErrSellerRequired) {
		t.Fatalf("expected ErrSellerRequired, got %v", err)
	}
}

func TestNonOwnerCannotMutate(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	f.seller(t, "s2")
	ctx := context.Background()

	car, err := f.cars.Create(ctx, "s1", sampleCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	price := 1.0
	if _, err := f.cars.Update(ctx, car.ID, "s2", CarPatch{Price: &price}); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("update: expected ErrNotOwner, got %v", err)
	}
	if _, err := f.cars.UpdateStatus(ctx, car.ID, "s2", model.CarActive); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("status: expected ErrNotOwner, got %v", err)
	}
	if err := f.cars.Delete(ctx, car.ID, "s2"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("delete: expected ErrNotOwner, got %v", err)
	}

	stored, err := f.cars.Get(ctx, car.ID)
	if err != nil {
		t.Fatalf("listing disappeared: %v", err)
	}
	if stored.Price != 25000 || stored.Status != model.CarPendingApproval || !stored.UpdatedAt.Equal(car.UpdatedAt) {
		t.Fatalf("listing changed by non-owner: %+v", stored)
	}
}

func TestSoldStampsTimestamp(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	car, err := f.cars.Create(ctx, "s1", sampleCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.clock = f.clock.Add(time.Hour)
	active, err := f.cars.UpdateStatus(ctx, car.ID, "s1", model.CarActive)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if active.SoldAt != nil {
		t.Fatalf("soldAt set on activation")
	}

	f.clock = f.clock.Add(time.Hour)
	sold, err := f.cars.UpdateStatus(ctx, car.ID, "s1", model.CarSold)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if sold.SoldAt == nil || !sold.SoldAt.Equal(f.clock) {
		t.Fatalf("soldAt = %v, want %v", sold.SoldAt, f.clock)
	}
	soldAt := *sold.SoldAt

	f.clock = f.clock.Add(time.Hour)
	back, err := f.cars.UpdateStatus(ctx, car.ID, "s1", model.CarInactive)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if back.SoldAt == nil || !back.SoldAt.Equal(soldAt) {
		t.Fatalf("soldAt changed on non-SOLD transition: %v", back.SoldAt)
	}

	want := []string{queue.ListingCreated, queue.ListingStatusChanged, queue.ListingSold, queue.ListingStatusChanged}
	got := f.events.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestInvalidTransitionRejected(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	car, err := f.cars.Create(ctx, "s1", sampleCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.cars.UpdateStatus(ctx, car.ID, "s1", model.CarSold); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateIsPartialAndKeepsOwner(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	car, err := f.cars.Create(ctx, "s1", sampleCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	price := 23500.0
	doors := 4
	updated, err := f.cars.Update(ctx, car.ID, "s1", CarPatch{Price: &price, Doors: &doors})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Price != price || updated.Doors == nil || *updated.Doors != 4 {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Brand != "BMW" || updated.SellerID != "s1" || updated.Status != model.CarPendingApproval {
		t.Fatalf("untouched fields changed: %+v", updated)
	}
}

func TestDeleteRemovesListing(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	car, err := f.cars.Create(ctx, "s1", sampleCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.cars.Delete(ctx, car.ID, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := f.cars.Get(ctx, car.ID); !errors.Is(err, ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound after delete, got %v", err)
	}
	if err := f.cars.Delete(ctx, car.ID, "s1"); !errors.Is(err, ErrCarNotFound) {
		t.Fatalf("expected ErrCarNotFound on second delete, got %v", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	f.events.err = errors.New("broker down")
	core, logs := observer.New(zap.DebugLevel)
	f.cars.log = zap.New(core)

	if _, err := f.cars.Create(context.Background(), "s1", sampleCar()); err != nil {
		t.Fatalf("create should succeed without the broker: %v", err)
	}
	dropped := logs.FilterMessage("listing event dropped").All()
	if len(dropped) != 1 || dropped[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warning for the dropped event, got %+v", logs.All())
	}
}

func TestUnresponsiveBrokerDoesNotDelayMutations(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		// accept and never speak AMQP
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			defer c.Close()
		}
	}()

	store := docstore.NewMemory()
	userRepo := repository.NewUserRepo(store)
	events := queue.NewAMQPPublisher("amqp://guest:guest@"+ln.Addr().String()+"/", "test.listings", zap.NewNop(),
		queue.WithDialTimeout(time.Second))
	defer events.Close()
	cars := NewCarService(repository.NewCarRepo(store), userRepo, events, zap.NewNop())
	users := NewUserService(userRepo, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := users.CreateOrUpdate(ctx, "s1", "s1@example.com", ProfileInput{Role: model.RoleSeller}); err != nil {
		t.Fatalf("create seller: %v", err)
	}

	start := time.Now()
	car, err := cars.Create(ctx, "s1", sampleCar())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cars.UpdateStatus(ctx, car.ID, "s1", model.CarActive); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if err := cars.Delete(ctx, car.ID, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if took := time.Since(start); took > 500*time.Millisecond {
		t.Fatalf("mutations waited %s on the broker", took)
	}
}

func TestStatsAndOwnListings(t *testing.T) {
	f := newFixture(t)
	f.seller(t, "s1")
	ctx := context.Background()

	a, _ := f.cars.Create(ctx, "s1", sampleCar())
	b, _ := f.cars.Create(ctx, "s1", sampleCar())
	if _, err := f.cars.Create(ctx, "s1", sampleCar()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.cars.UpdateStatus(ctx, a.ID, "s1", model.CarActive); err != nil {
		t.Fatalf("activate a: %v", err)
	}
	if _, err := f.cars.UpdateStatus(ctx, b.ID, "s1", model.CarActive); err != nil {
		t.Fatalf("activate b: %v", err)
	}
	if _, err := f.cars.UpdateStatus(ctx, b.ID, "s1", model.CarSold); err != nil {
		t.Fatalf("sell b: %v", err)
	}

	st, err := f.cars.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 3 || st.Active != 1 || st.Sold != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
	n, err := f.cars.SellerActiveCount(ctx, "s1")
	if err != nil || n != 1 {
		t.Fatalf("active count = %d err=%v", n, err)
	}
	mine, err := f.cars.ListMine(ctx, "s1")
	if err != nil || len(mine) != 3 {
		t.Fatalf("own listings = %d err=%v", len(mine), err)
	}
	pending, err := f.cars.ListMineByStatus(ctx, "s1", model.CarPendingApproval)
	if err != nil || len(pending) != 1 {
		t.Fatalf("pending listings = %d err=%v", len(pending), err)
	}
}
