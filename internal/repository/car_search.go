package repository

import "strings"

// CarSearchQuery holds the optional search filters.  Empty strings and nil
// bounds mean "no filter"; every filter that is set is ANDed.
type CarSearchQuery struct {
	Brand        string
	Model        string
	MinPrice     *float64
	MaxPrice     *float64
	MinYear      *int
	MaxYear      *int
	FuelType     string
	Transmission string
}

// Predicates turns the query into the filter list applied by FilterCars.
func (q CarSearchQuery) Predicates() []CarPredicate {
	var preds []CarPredicate
	if s := strings.TrimSpace(q.Brand); s != "" {
		preds = append(preds, BrandContains(s))
	}
	if s := strings.TrimSpace(q.Model); s != "" {
		preds = append(preds, ModelContains(s))
	}
	if q.MinPrice != nil {
		preds = append(preds, PriceAtLeast(*q.MinPrice))
	}
	if q.MaxPrice != nil {
		preds = append(preds, PriceAtMost(*q.MaxPrice))
	}
	if q.MinYear != nil {
		preds = append(preds, YearAtLeast(*q.MinYear))
	}
	if q.MaxYear != nil {
		preds = append(preds, YearAtMost(*q.MaxYear))
	}
	if s := strings.TrimSpace(q.FuelType); s != "" {
		preds = append(preds, FuelTypeEquals(s))
	}
	if s := strings.TrimSpace(q.Transmission); s != "" {
		preds = append(preds, TransmissionEquals(s))
	}
	return preds
}
