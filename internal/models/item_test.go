package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

func TestItemActualProfit(t *testing.T) {
	sold := &Item{Cost: 40, SoldFor: fp(100), Status: StatusSold}
	require.NotNil(t, sold.ActualProfit())
	assert.Equal(t, 60.0, *sold.ActualProfit())

	listed := &Item{Cost: 40, Status: StatusListed}
	assert.Nil(t, listed.ActualProfit())
}

func TestItemPredictedProfit(t *testing.T) {
	listed := &Item{Cost: 40, ListingPrice: fp(90), Status: StatusListed}
	require.NotNil(t, listed.PredictedProfit())
	assert.Equal(t, 50.0, *listed.PredictedProfit())

	// Sold items no longer carry a prediction.
	sold := &Item{Cost: 40, ListingPrice: fp(90), SoldFor: fp(100), Status: StatusSold}
	assert.Nil(t, sold.PredictedProfit())

	noListing := &Item{Cost: 40, Status: StatusListed}
	assert.Nil(t, noListing.PredictedProfit())
}

func TestItemActualMargin(t *testing.T) {
	it := &Item{Cost: 30, SoldFor: fp(90), Status: StatusSold}
	require.NotNil(t, it.ActualMargin())
	assert.InDelta(t, 0.6667, *it.ActualMargin(), 1e-9)

	zeroSale := &Item{Cost: 30, SoldFor: fp(0), Status: StatusSold}
	assert.Nil(t, zeroSale.ActualMargin())
}

func TestItemDaysToSell(t *testing.T) {
	it := &Item{
		DateBought: sp("2024-03-01"),
		DateSold:   sp("2024-03-11"),
	}
	require.NotNil(t, it.DaysToSell())
	assert.Equal(t, 10, *it.DaysToSell())

	assert.Nil(t, (&Item{DateBought: sp("2024-03-01")}).DaysToSell())
	assert.Nil(t, (&Item{DateBought: sp("junk"), DateSold: sp("2024-03-11")}).DaysToSell())
}

func TestItemProfitPerDay(t *testing.T) {
	it := &Item{
		DateBought: sp("2024-03-01"),
		DateSold:   sp("2024-03-04"),
		Cost:       10,
		SoldFor:    fp(100),
		Status:     StatusSold,
	}
	require.NotNil(t, it.ProfitPerDay())
	assert.Equal(t, 30.0, *it.ProfitPerDay())

	// Same-day flips have no per-day rate.
	sameDay := &Item{
		DateBought: sp("2024-03-01"),
		DateSold:   sp("2024-03-01"),
		Cost:       10,
		SoldFor:    fp(100),
	}
	assert.Nil(t, sameDay.ProfitPerDay())
}

func TestItemResponseCarriesDerivedFields(t *testing.T) {
	it := &Item{
		ID:          7,
		DateBought:  sp("2024-03-01"),
		DateSold:    sp("2024-03-06"),
		Description: "mid-century dresser",
		Cost:        50,
		SoldFor:     fp(200),
		Status:      StatusSold,
	}
	resp := it.Response()
	assert.Equal(t, int64(7), resp.ID)
	require.NotNil(t, resp.ActualProfit)
	assert.Equal(t, 150.0, *resp.ActualProfit)
	require.NotNil(t, resp.DaysToSell)
	assert.Equal(t, 5, *resp.DaysToSell)
	require.NotNil(t, resp.ProfitPerDay)
	assert.Equal(t, 30.0, *resp.ProfitPerDay)
}
