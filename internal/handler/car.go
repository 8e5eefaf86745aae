package handler

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/automarket/marketplace-api/internal/model"
	"github.com/automarket/marketplace-api/internal/repository"
	"github.com/automarket/marketplace-api/internal/service"
)

// CarHandler serves the /cars endpoints.
type CarHandler struct {
	cars *service.CarService
	log  *zap.Logger
}

func NewCarHandler(cars *service.CarService, log *zap.Logger) *CarHandler {
	if cars == nil {
		panic("nil car service passed to NewCarHandler")
	}
	return &CarHandler{cars: cars, log: log}
}

// createCarRequest is the body of POST /cars.  It has no seller field: the
// owner is always the authenticated caller.
type createCarRequest struct {
	Brand          string   `json:"brand" validate:"required,max=50"`
	Model          string   `json:"model" validate:"required,max=50"`
	Year           int      `json:"year" validate:"required,min=1900,max=2030"`
	Price          float64  `json:"price" validate:"required,gt=0"`
	Mileage        *int     `json:"mileage" validate:"required,min=0"`
	FuelType       string   `json:"fuelType" validate:"required"`
	Transmission   string   `json:"transmission" validate:"required"`
	Color          string   `json:"color"`
	Doors          *int     `json:"doors" validate:"omitempty,min=2,max=6"`
	Seats          *int     `json:"seats" validate:"omitempty,min=1,max=9"`
	BodyType       string   `json:"bodyType"`
	EngineSize     string   `json:"engineSize"`
	Horsepower     *int     `json:"horsepower" validate:"omitempty,min=1"`
	Drivetrain     string   `json:"drivetrain"`
	Condition      string   `json:"condition" validate:"required"`
	PreviousOwners *int     `json:"previousOwners" validate:"omitempty,min=0"`
	AccidentFree   *bool    `json:"accidentFree"`
	ServiceHistory string   `json:"serviceHistory"`
	Features       []string `json:"features"`
	ImageURLs      []string `json:"imageUrls"`
	MainImageURL   string   `json:"mainImageUrl"`
	Description    string   `json:"description" validate:"required,min=50,max=2000"`
	Location       string   `json:"location"`
	ZipCode        string   `json:"zipCode"`
}

func (r createCarRequest) toCar() *model.Car {
	accidentFree := true
	if r.AccidentFree != nil {
		accidentFree = *r.AccidentFree
	}
	return &model.Car{
		Brand:          strings.TrimSpace(r.Brand),
		Model:          strings.TrimSpace(r.Model),
		Year:           r.Year,
		Price:          r.Price,
		Mileage:        *r.Mileage,
		FuelType:       r.FuelType,
		Transmission:   r.Transmission,
		Color:          r.Color,
		Doors:          r.Doors,
		Seats:          r.Seats,
		BodyType:       r.BodyType,
		EngineSize:     r.EngineSize,
		Horsepower:     r.Horsepower,
		Drivetrain:     r.Drivetrain,
		Condition:      r.Condition,
		PreviousOwners: r.PreviousOwners,
		AccidentFree:   accidentFree,
		ServiceHistory: r.ServiceHistory,
		Features:       r.Features,
		ImageURLs:      r.ImageURLs,
		MainImageURL:   r.MainImageURL,
		Description:    r.Description,
		Location:       r.Location,
		ZipCode:        r.ZipCode,
	}
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// List handles GET /cars: active listings only.
func (h *CarHandler) List(c echo.Context) error {
	cars, err := h.cars.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(cars))
}

// Get handles GET /cars/:id.
func (h *CarHandler) Get(c echo.Context) error {
	car, err := h.cars.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return listingLookupError(err)
	}
	return c.JSON(http.StatusOK, car)
}

// Search handles GET /cars/search.  Unset parameters do not filter; a
// parameter that does not parse as a number is rejected.
func (h *CarHandler) Search(c echo.Context) error {
	q := repository.CarSearchQuery{
		Brand:        c.QueryParam("brand"),
		Model:        c.QueryParam("model"),
		FuelType:     c.QueryParam("fuelType"),
		Transmission: c.QueryParam("transmission"),
	}
	var err error
	if q.MinPrice, err = queryFloat(c, "minPrice"); err != nil {
		return err
	}
	if q.MaxPrice, err = queryFloat(c, "maxPrice"); err != nil {
		return err
	}
	if q.MinYear, err = queryInt(c, "minYear"); err != nil {
		return err
	}
	if q.MaxYear, err = queryInt(c, "maxYear"); err != nil {
		return err
	}

	cars, err := h.cars.Search(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(cars))
}

// ByBrand handles GET /cars/brand/:brand.
func (h *CarHandler) ByBrand(c echo.Context) error {
	brand, err := url.PathUnescape(c.Param("brand"))
	if err != nil || strings.TrimSpace(brand) == "" {
		return badRequest("invalid brand", err)
	}
	cars, err := h.cars.ListByBrand(c.Request().Context(), brand)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(cars))
}

// Similar handles GET /cars/:id/similar.
func (h *CarHandler) Similar(c echo.Context) error {
	cars, err := h.cars.Similar(c.Request().Context(), c.Param("id"))
	if err != nil {
		return listingLookupError(err)
	}
	return c.JSON(http.StatusOK, nonNil(cars))
}

// Create handles POST /cars.
func (h *CarHandler) Create(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req createCarRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	car, err := h.cars.Create(c.Request().Context(), p.Subject, req.toCar())
	if err != nil {
		return listingMutationError(err)
	}
	h.log.Info("listing created", zap.String("car_id", car.ID), zap.String("seller_id", car.SellerID))
	return c.JSON(http.StatusCreated, car)
}

// Update handles PUT /cars/:id.  Omitted fields keep their value.
func (h *CarHandler) Update(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var patch service.CarPatch
	if err := bindAndValidate(c, &patch); err != nil {
		return err
	}
	car, err := h.cars.Update(c.Request().Context(), c.Param("id"), p.Subject, patch)
	if err != nil {
		return listingMutationError(err)
	}
	return c.JSON(http.StatusOK, car)
}

// UpdateStatus handles PATCH /cars/:id/status with {"status": "..."}.
func (h *CarHandler) UpdateStatus(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	var req statusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	next, err := model.ParseCarStatus(req.Status)
	if err != nil {
		return badRequest("invalid status", err)
	}
	car, err := h.cars.UpdateStatus(c.Request().Context(), c.Param("id"), p.Subject, next)
	if err != nil {
		return listingMutationError(err)
	}
	return c.JSON(http.StatusOK, car)
}

// Delete handles DELETE /cars/:id.
func (h *CarHandler) Delete(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.cars.Delete(c.Request().Context(), c.Param("id"), p.Subject); err != nil {
		return listingMutationError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine handles GET /cars/my: every listing of the caller, any status.
func (h *CarHandler) Mine(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	cars, err := h.cars.ListMine(c.Request().Context(), p.Subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(cars))
}

// MineByStatus handles GET /cars/my/status/:status.
func (h *CarHandler) MineByStatus(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	status, err := model.ParseCarStatus(c.Param("status"))
	if err != nil {
		return badRequest("invalid status", err)
	}
	cars, err := h.cars.ListMineByStatus(c.Request().Context(), p.Subject, status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, nonNil(cars))
}

// Stats handles GET /cars/stats.
func (h *CarHandler) Stats(c echo.Context) error {
	st, err := h.cars.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

// MyStats handles GET /cars/my/stats.
func (h *CarHandler) MyStats(c echo.Context) error {
	p, err := caller(c)
	if err != nil {
		return err
	}
	n, err := h.cars.SellerActiveCount(c.Request().Context(), p.Subject)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"activeListings": n})
}

func queryFloat(c echo.Context, name string) (*float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, badRequest("invalid query parameter "+name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, badRequest("invalid query parameter "+name, nil)
	}
	return &v, nil
}

func queryInt(c echo.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, badRequest("invalid query parameter "+name, err)
	}
	return &v, nil
}

// nonNil keeps empty results encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
