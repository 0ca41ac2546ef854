package models

import (
	"math"
	"time"
)

// Item statuses.
const (
	StatusListed = "Listed"
	StatusSold   = "Sold"
)

const isoDate = "2006-01-02"

// Item represents a single flip: something bought, listed for sale, and
// eventually sold. Dates are YYYY-MM-DD strings, nil when unknown.
type Item struct {
	ID           int64    `json:"id"`
	DateBought   *string  `json:"date_bought"`
	DateSold     *string  `json:"date_sold"`
	Description  string   `json:"description"`
	Cost         float64  `json:"cost"`
	ListingPrice *float64 `json:"listing_price"`
	SoldFor      *float64 `json:"sold_for"`
	Status       string   `json:"status"`
	Notes        *string  `json:"notes"`
	CreatedAt    string   `json:"-"`
	UpdatedAt    string   `json:"-"`
}

// ActualProfit returns sold price minus cost, or nil while unsold.
func (i *Item) ActualProfit() *float64 {
	if i.SoldFor == nil {
		return nil
	}
	p := *i.SoldFor - i.Cost
	return &p
}

// PredictedProfit returns listing price minus cost for items still listed,
// or nil once sold or when no listing price is set.
func (i *Item) PredictedProfit() *float64 {
	if i.Status == StatusSold || i.ListingPrice == nil || *i.ListingPrice == 0 {
		return nil
	}
	p := *i.ListingPrice - i.Cost
	return &p
}

// ActualMargin returns profit as a fraction of the sale price, rounded to
// four decimal places, or nil without a positive sale price.
func (i *Item) ActualMargin() *float64 {
	if i.SoldFor == nil || *i.SoldFor <= 0 {
		return nil
	}
	m := math.Round((*i.SoldFor-i.Cost)/(*i.SoldFor)*1e4) / 1e4
	return &m
}

// DaysToSell returns the whole days between purchase and sale, or nil when
// either date is missing or malformed.
func (i *Item) DaysToSell() *int {
	bought, ok := parseDate(i.DateBought)
	if !ok {
		return nil
	}
	sold, ok := parseDate(i.DateSold)
	if !ok {
		return nil
	}
	d := int(sold.Sub(bought) / (24 * time.Hour))
	return &d
}

// ProfitPerDay returns actual profit divided by days to sell, rounded to
// cents, or nil when the flip took zero days or is unsold.
func (i *Item) ProfitPerDay() *float64 {
	days := i.DaysToSell()
	profit := i.ActualProfit()
	if days == nil || *days <= 0 || profit == nil {
		return nil
	}
	p := math.Round(*profit / float64(*days) * 100) / 100
	return &p
}

// ItemResponse is the API shape of an item: the stored fields plus the
// derived figures the pages display.
type ItemResponse struct {
	Item
	ActualProfit    *float64 `json:"actual_profit"`
	PredictedProfit *float64 `json:"predicted_profit"`
	ActualMargin    *float64 `json:"actual_margin"`
	DaysToSell      *int     `json:"days_to_sell"`
	ProfitPerDay    *float64 `json:"profit_per_day"`
}

// Response builds the API representation of the item.
func (i *Item) Response() ItemResponse {
	return ItemResponse{
		Item:            *i,
		ActualProfit:    i.ActualProfit(),
		PredictedProfit: i.PredictedProfit(),
		ActualMargin:    i.ActualMargin(),
		DaysToSell:      i.DaysToSell(),
		ProfitPerDay:    i.ProfitPerDay(),
	}
}

func parseDate(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, *s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
