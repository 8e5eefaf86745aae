package repository

import (
	"strings"

	"github.com/automarket/marketplace-api/internal/model"
)

// CarPredicate reports whether a listing passes one filter.
type CarPredicate func(*model.Car) bool

// FilterCars keeps the listings that satisfy every predicate.  With no
// predicates the input is returned unchanged.
func FilterCars(cars []model.Car, preds ...CarPredicate) []model.Car {
	out := make([]model.Car, 0, len(cars))
next:
	for i := range cars {
		for _, p := range preds {
			if !p(&cars[i]) {
				continue next
			}
		}
		out = append(out, cars[i])
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func BrandContains(sub string) CarPredicate {
	return func(c *model.Car) bool { return containsFold(c.Brand, sub) }
}

func ModelContains(sub string) CarPredicate {
	return func(c *model.Car) bool { return containsFold(c.Model, sub) }
}

func BrandEquals(brand string) CarPredicate {
	return func(c *model.Car) bool { return strings.EqualFold(c.Brand, brand) }
}

func FuelTypeEquals(v string) CarPredicate {
	return func(c *model.Car) bool { return strings.EqualFold(c.FuelType, v) }
}

func TransmissionEquals(v string) CarPredicate {
	return func(c *model.Car) bool { return strings.EqualFold(c.Transmission, v) }
}

// PriceBetween is inclusive at both ends.
func PriceBetween(min, max float64) CarPredicate {
	return func(c *model.Car) bool { return c.Price >= min && c.Price <= max }
}

func PriceAtLeast(min float64) CarPredicate {
	return func(c *model.Car) bool { return c.Price >= min }
}

func PriceAtMost(max float64) CarPredicate {
	return func(c *model.Car) bool { return c.Price <= max }
}

func YearAtLeast(min int) CarPredicate {
	return func(c *model.Car) bool { return c.Year >= min }
}

func YearAtMost(max int) CarPredicate {
	return func(c *model.Car) bool { return c.Year <= max }
}

func StatusIs(s model.CarStatus) CarPredicate {
	return func(c *model.Car) bool { return c.Status == s }
}

func NotID(id string) CarPredicate {
	return func(c *model.Car) bool { return c.ID != id }
}
