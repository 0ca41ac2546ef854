package service

import (
	"math"
	"sort"

	"github.com/noahjmorrison/onnaflips/internal/models"
)

const topListSize = 10

// ComputeStats aggregates the dashboard figures from the full item list.
// Money totals are rounded to cents, margins to four decimals, day averages
// to one decimal.
func ComputeStats(items []*models.Item) *models.Stats {
	var sold, listed []*models.Item
	for _, item := range items {
		switch item.Status {
		case models.StatusSold:
			sold = append(sold, item)
		case models.StatusListed:
			listed = append(listed, item)
		}
	}

	stats := &models.Stats{
		TotalItems:  len(items),
		SoldCount:   len(sold),
		ListedCount: len(listed),
	}

	for _, item := range items {
		stats.TotalSpent += item.Cost
	}
	for _, item := range sold {
		if item.SoldFor != nil {
			stats.TotalRevenue += *item.SoldFor
		}
		if p := item.ActualProfit(); p != nil {
			stats.TotalProfit += *p
		}
	}
	for _, item := range listed {
		stats.CurrentInvested += item.Cost
		if p := item.PredictedProfit(); p != nil {
			stats.PredictedProfit += *p
		}
	}
	stats.TotalSpent = round2(stats.TotalSpent)
	stats.TotalRevenue = round2(stats.TotalRevenue)
	stats.TotalProfit = round2(stats.TotalProfit)
	stats.CurrentInvested = round2(stats.CurrentInvested)
	stats.PredictedProfit = round2(stats.PredictedProfit)

	var marginSum float64
	var marginCount int
	for _, item := range sold {
		if m := item.ActualMargin(); m != nil {
			marginSum += *m
			marginCount++
		}
	}
	if marginCount > 0 {
		stats.AvgMargin = math.Round(marginSum/float64(marginCount)*1e4) / 1e4
	}

	var daySum, dayCount int
	for _, item := range sold {
		if d := item.DaysToSell(); d != nil && *d > 0 {
			daySum += *d
			dayCount++
		}
	}
	if dayCount > 0 {
		stats.AvgDaysToSell = math.Round(float64(daySum)/float64(dayCount)*10) / 10
	}

	stats.MonthlyProfit = monthlyProfit(sold)
	stats.TopItems = topByProfit(sold)
	stats.TopByEfficiency = topByProfitPerDay(sold)
	return stats
}

func monthlyProfit(sold []*models.Item) []models.MonthlyProfit {
	byMonth := map[string]float64{}
	for _, item := range sold {
		if item.DateSold == nil || len(*item.DateSold) < 7 {
			continue
		}
		if p := item.ActualProfit(); p != nil {
			byMonth[(*item.DateSold)[:7]] += *p
		}
	}
	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]models.MonthlyProfit, 0, len(months))
	for _, m := range months {
		out = append(out, models.MonthlyProfit{Month: m, Profit: round2(byMonth[m])})
	}
	return out
}

func topByProfit(sold []*models.Item) []models.TopItem {
	ranked := make([]*models.Item, 0, len(sold))
	for _, item := range sold {
		if item.ActualProfit() != nil {
			ranked = append(ranked, item)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ActualProfit() > *ranked[j].ActualProfit()
	})
	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}

	out := make([]models.TopItem, 0, len(ranked))
	for _, item := range ranked {
		out = append(out, models.TopItem{Description: item.Description, Profit: *item.ActualProfit()})
	}
	return out
}

func topByProfitPerDay(sold []*models.Item) []models.TopByDay {
	ranked := make([]*models.Item, 0, len(sold))
	for _, item := range sold {
		if ppd := item.ProfitPerDay(); ppd != nil && *ppd > 0 {
			ranked = append(ranked, item)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ProfitPerDay() > *ranked[j].ProfitPerDay()
	})
	if len(ranked) > topListSize {
		ranked = ranked[:topListSize]
	}

	out := make([]models.TopByDay, 0, len(ranked))
	for _, item := range ranked {
		out = append(out, models.TopByDay{
			Description:  item.Description,
			ProfitPerDay: *item.ProfitPerDay(),
			Days:         *item.DaysToSell(),
		})
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
