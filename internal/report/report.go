// Package report builds the tax-report PDF: a summary of realized sales for
// a period, plus the deeper cuts (rankings, brackets, scorecard) the business
// owner likes to read at tax time.
package report

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/noahjmorrison/onnaflips/internal/format"
	"github.com/noahjmorrison/onnaflips/internal/models"
)

var (
	colorInk       = rgb{26, 26, 46}
	colorMint      = rgb{232, 245, 233}
	colorStripe    = rgb{248, 249, 250}
	colorSlate     = rgb{108, 117, 125}
	colorAmber     = rgb{255, 243, 205}
	colorGreen     = rgb{40, 167, 69}
	colorTeal      = rgb{23, 162, 184}
	colorPurple    = rgb{111, 66, 193}
	colorOrange    = rgb{253, 126, 20}
	colorRaspberry = rgb{232, 62, 140}
)

type rgb struct{ r, g, b int }

// Generate renders the tax report for the sold items of a period and,
// optionally, the still-listed inventory. start and end are YYYY-MM-DD
// bounds, empty when open-ended; now stamps the "Generated" line.
func Generate(sold, listed []*models.Item, start, end string, now time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(40, 36, 40)
	pdf.SetAutoPageBreak(true, 36)
	pdf.AddPage()

	writeHeader(pdf, start, end, now)
	totals := sumTotals(sold, listed)
	writeSummary(pdf, sold, listed, totals)

	if len(sold) > 0 {
		writeSoldItems(pdf, sold, totals)
		writeMonthlyBreakout(pdf, sold, totals)
	}
	if len(listed) > 0 {
		writeUnsoldInventory(pdf, listed)
	}
	if len(sold) > 0 {
		writeAnalysis(pdf, sold, totals)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

type totals struct {
	cost      float64
	revenue   float64
	profit    float64
	predicted float64
	margins   []float64
}

func sumTotals(sold, listed []*models.Item) totals {
	var t totals
	for _, item := range sold {
		t.cost += item.Cost
		if item.SoldFor != nil {
			t.revenue += *item.SoldFor
		}
		if p := item.ActualProfit(); p != nil {
			t.profit += *p
		}
		if m := item.ActualMargin(); m != nil {
			t.margins = append(t.margins, *m)
		}
	}
	for _, item := range listed {
		if p := item.PredictedProfit(); p != nil {
			t.predicted += *p
		}
	}
	return t
}

func (t totals) avgMargin() (float64, bool) {
	if len(t.margins) == 0 {
		return 0, false
	}
	var sum float64
	for _, m := range t.margins {
		sum += m
	}
	return sum / float64(len(t.margins)), true
}

func writeHeader(pdf *fpdf.Fpdf, start, end string, now time.Time) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(colorInk.r, colorInk.g, colorInk.b)
	pdf.CellFormat(0, 24, "Onna's Flips - Tax Report", "", 1, "L", false, 0, "")

	var period string
	switch {
	case start != "" && end != "":
		period = fmt.Sprintf("%s - %s", longDate(start), longDate(end))
	case start != "":
		period = "From " + longDate(start)
	case end != "":
		period = "Through " + longDate(end)
	default:
		period = "All dates"
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 14, "Period: "+period, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 14, "Generated: "+now.Format("01/02/2006"), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

func writeSummary(pdf *fpdf.Fpdf, sold, listed []*models.Item, t totals) {
	avgMargin := format.Placeholder
	if m, ok := t.avgMargin(); ok {
		avgMargin = format.FormatPercent(&m)
	}

	pdf.SetFont("Helvetica", "B", 14)
	fill(pdf, colorInk)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(0, 24, "SUMMARY", "1", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	summaryRow(pdf, colorMint,
		[3]string{"Items Sold", "Total Revenue", "Total Profit"},
		[3]string{fmt.Sprintf("%d", len(sold)), money2(t.revenue), money2(t.profit)})
	summaryRow(pdf, colorMint,
		[3]string{"Cost of Goods", "Avg Margin", "Predicted Profit (Listed)"},
		[3]string{money2(t.cost), avgMargin, money2(t.predicted)})
	pdf.Ln(16)
}

func summaryRow(pdf *fpdf.Fpdf, labelFill rgb, labels, values [3]string) {
	const w = 177.0
	pdf.SetFont("Helvetica", "B", 10)
	fill(pdf, labelFill)
	for _, l := range labels {
		pdf.CellFormat(w, 18, l, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 13)
	for _, v := range values {
		pdf.CellFormat(w, 22, v, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
}

func writeSoldItems(pdf *fpdf.Fpdf, sold []*models.Item, t totals) {
	sectionTitle(pdf, "Sold Items", 13)

	rows := make([][]string, 0, len(sold)+1)
	for _, item := range sold {
		rows = append(rows, []string{
			format.FormatDate(deref(item.DateSold)),
			format.FormatDate(deref(item.DateBought)),
			clip(item.Description, 35),
			costCell(item.Cost),
			money2OrDash(item.SoldFor),
			money2OrDash(item.ActualProfit()),
		})
	}
	rows = append(rows, []string{"", "", "TOTALS", money2(t.cost), money2(t.revenue), money2(t.profit)})

	writeTable(pdf, tableSpec{
		headerFill: colorInk,
		totalFill:  &colorMint,
		cols: []col{
			{"Date Sold", 58, "L"}, {"Date Bought", 64, "L"}, {"Item", 195, "L"},
			{"Cost", 71, "R"}, {"Sold For", 71, "R"}, {"Profit", 72, "R"},
		},
	}, rows)
	pdf.Ln(16)
}

func writeMonthlyBreakout(pdf *fpdf.Fpdf, sold []*models.Item, t totals) {
	sectionTitle(pdf, "Monthly Breakout Analysis", 13)

	type bucket struct {
		items   int
		cost    float64
		revenue float64
		profit  float64
	}
	byMonth := map[string]*bucket{}
	for _, item := range sold {
		if item.DateSold == nil || len(*item.DateSold) < 7 {
			continue
		}
		key := (*item.DateSold)[:7]
		b := byMonth[key]
		if b == nil {
			b = &bucket{}
			byMonth[key] = b
		}
		b.items++
		b.cost += item.Cost
		if item.SoldFor != nil {
			b.revenue += *item.SoldFor
		}
		if p := item.ActualProfit(); p != nil {
			b.profit += *p
		}
	}
	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([][]string, 0, len(keys)+1)
	for _, k := range keys {
		b := byMonth[k]
		rows = append(rows, []string{
			monthLabel(k), fmt.Sprintf("%d", b.items),
			money2(b.cost), money2(b.revenue), money2(b.profit),
			marginCell(b.profit, b.revenue),
		})
	}
	rows = append(rows, []string{
		"TOTAL", fmt.Sprintf("%d", len(sold)),
		money2(t.cost), money2(t.revenue), money2(t.profit),
		marginCell(t.profit, t.revenue),
	})

	writeTable(pdf, tableSpec{
		headerFill: colorInk,
		totalFill:  &colorMint,
		cols: []col{
			{"Month", 90, "L"}, {"Items Sold", 75, "R"}, {"Cost", 91, "R"},
			{"Revenue", 91, "R"}, {"Profit", 91, "R"}, {"Margin", 93, "R"},
		},
	}, rows)
	pdf.Ln(16)
}

func writeUnsoldInventory(pdf *fpdf.Fpdf, listed []*models.Item) {
	sectionTitle(pdf, "Unsold Inventory", 13)

	var invested float64
	rows := make([][]string, 0, len(listed)+1)
	for _, item := range listed {
		invested += item.Cost
		rows = append(rows, []string{
			format.FormatDate(deref(item.DateBought)),
			clip(item.Description, 40),
			costCell(item.Cost),
			money2OrDash(item.ListingPrice),
			money2OrDash(item.PredictedProfit()),
		})
	}
	rows = append(rows, []string{"", "TOTAL INVESTED", money2(invested), "", ""})

	writeTable(pdf, tableSpec{
		headerFill: colorSlate,
		totalFill:  &colorAmber,
		cols: []col{
			{"Date Bought", 70, "L"}, {"Item", 215, "L"}, {"Cost", 80, "R"},
			{"Listing Price", 83, "R"}, {"Est. Profit", 83, "R"},
		},
	}, rows)
	pdf.Ln(16)
}

func writeAnalysis(pdf *fpdf.Fpdf, sold []*models.Item, t totals) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(colorInk.r, colorInk.g, colorInk.b)
	pdf.CellFormat(0, 20, "Wild Analysis", "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	writeBestWorst(pdf, sold)
	writeSpeedDemons(pdf, sold)
	writeROIChampions(pdf, sold)
	writePriceBrackets(pdf, sold)
	writeDayOfWeek(pdf, sold)
	writeScorecard(pdf, sold, t)
}

func writeBestWorst(pdf *fpdf.Fpdf, sold []*models.Item) {
	sectionTitle(pdf, "Best & Worst Flips", 11)

	ranked := withProfit(sold)
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ActualProfit() > *ranked[j].ActualProfit()
	})

	var rows [][]string
	for i, item := range top(ranked, 5) {
		rows = append(rows, []string{
			fmt.Sprintf("#%d", i+1), clip(item.Description, 30), money0(item.Cost),
			money0OrDash(item.SoldFor), money0OrDash(item.ActualProfit()),
			percentOrDash(item.ActualMargin()),
		})
	}
	if len(ranked) > 5 {
		rows = append(rows, []string{"", "", "", "", "", ""})
		worst := ranked[len(ranked)-3:]
		for i, item := range worst {
			rows = append(rows, []string{
				fmt.Sprintf("Worst #%d", i+1), clip(item.Description, 30), money0(item.Cost),
				money0OrDash(item.SoldFor), money0OrDash(item.ActualProfit()),
				percentOrDash(item.ActualMargin()),
			})
		}
	}

	writeTable(pdf, tableSpec{
		headerFill: colorGreen,
		cols: []col{
			{"Rank", 58, "L"}, {"Item", 175, "L"}, {"Cost", 68, "R"},
			{"Sold For", 70, "R"}, {"Profit", 80, "R"}, {"Margin", 80, "R"},
		},
	}, rows)
	pdf.Ln(12)
}

func writeSpeedDemons(pdf *fpdf.Fpdf, sold []*models.Item) {
	sectionTitle(pdf, "Speed Demons - Fastest Flips", 11)

	var fast []*models.Item
	for _, item := range sold {
		if d := item.DaysToSell(); d != nil && *d >= 0 {
			fast = append(fast, item)
		}
	}
	sort.SliceStable(fast, func(i, j int) bool {
		return *fast[i].DaysToSell() < *fast[j].DaysToSell()
	})

	var rows [][]string
	for _, item := range top(fast, 7) {
		rows = append(rows, []string{
			clip(item.Description, 35),
			fmt.Sprintf("%d", *item.DaysToSell()),
			money0OrDash(item.ActualProfit()),
			money0OrDash(item.ProfitPerDay()),
		})
	}

	writeTable(pdf, tableSpec{
		headerFill: colorTeal,
		cols: []col{
			{"Item", 255, "L"}, {"Days", 70, "R"}, {"Profit", 103, "R"}, {"$/Day", 103, "R"},
		},
	}, rows)
	pdf.Ln(12)
}

func writeROIChampions(pdf *fpdf.Fpdf, sold []*models.Item) {
	sectionTitle(pdf, "ROI Champions - Best Return on Investment", 11)

	var ranked []*models.Item
	for _, item := range sold {
		if item.Cost > 0 && item.ActualProfit() != nil {
			ranked = append(ranked, item)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ActualProfit()/ranked[i].Cost > *ranked[j].ActualProfit()/ranked[j].Cost
	})

	var rows [][]string
	for _, item := range top(ranked, 7) {
		roi := *item.ActualProfit() / item.Cost
		rows = append(rows, []string{
			clip(item.Description, 35), money0(item.Cost),
			money0OrDash(item.SoldFor), format.FormatPercent(&roi),
		})
	}

	writeTable(pdf, tableSpec{
		headerFill: colorPurple,
		cols: []col{
			{"Item", 255, "L"}, {"Cost", 85, "R"}, {"Sold For", 95, "R"}, {"ROI %", 96, "R"},
		},
	}, rows)
	pdf.Ln(12)
}

func writePriceBrackets(pdf *fpdf.Fpdf, sold []*models.Item) {
	sectionTitle(pdf, "Price Bracket Analysis - Where the Money Is", 11)

	brackets := []struct {
		label  string
		lo, hi float64
	}{
		{"$0-25", 0, 25}, {"$26-50", 26, 50}, {"$51-100", 51, 100},
		{"$101-200", 101, 200}, {"$201-300", 201, 300}, {"$300+", 301, 99999},
	}

	var rows [][]string
	for _, b := range brackets {
		var inBracket []*models.Item
		for _, item := range sold {
			if item.SoldFor != nil && *item.SoldFor >= b.lo && *item.SoldFor <= b.hi {
				inBracket = append(inBracket, item)
			}
		}
		if len(inBracket) == 0 {
			continue
		}
		var profitSum float64
		var daySum, dayCount int
		for _, item := range inBracket {
			if p := item.ActualProfit(); p != nil {
				profitSum += *p
			}
			if d := item.DaysToSell(); d != nil && *d > 0 {
				daySum += *d
				dayCount++
			}
		}
		avgDays := format.Placeholder
		if dayCount > 0 {
			avgDays = fmt.Sprintf("%.0f", float64(daySum)/float64(dayCount))
		}
		avgProfit := profitSum / float64(len(inBracket))
		rows = append(rows, []string{
			b.label, fmt.Sprintf("%d", len(inBracket)),
			money0(avgProfit), avgDays, money0(profitSum),
		})
	}

	writeTable(pdf, tableSpec{
		headerFill: colorOrange,
		cols: []col{
			{"Sale Price Range", 130, "L"}, {"Items", 70, "R"}, {"Avg Profit", 110, "R"},
			{"Avg Days", 105, "R"}, {"Total Profit", 116, "R"},
		},
	}, rows)
	pdf.Ln(12)
}

func writeDayOfWeek(pdf *fpdf.Fpdf, sold []*models.Item) {
	sectionTitle(pdf, "Best Day to Sell", 11)

	type dayStat struct {
		count  int
		profit float64
	}
	stats := map[time.Weekday]*dayStat{}
	for _, item := range sold {
		if item.DateSold == nil {
			continue
		}
		t, err := time.Parse(format.ISODate, *item.DateSold)
		if err != nil {
			continue
		}
		s := stats[t.Weekday()]
		if s == nil {
			s = &dayStat{}
			stats[t.Weekday()] = s
		}
		s.count++
		if p := item.ActualProfit(); p != nil {
			s.profit += *p
		}
	}

	// Monday-first ordering, matching the legacy report.
	order := []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
	var rows [][]string
	for _, day := range order {
		s := stats[day]
		if s == nil {
			continue
		}
		avg := s.profit / float64(s.count)
		rows = append(rows, []string{
			day.String(), fmt.Sprintf("%d", s.count), money0(s.profit), money0(avg),
		})
	}

	writeTable(pdf, tableSpec{
		headerFill: colorRaspberry,
		cols: []col{
			{"Day", 130, "L"}, {"Sales", 95, "R"}, {"Total Profit", 153, "R"}, {"Avg Profit", 153, "R"},
		},
	}, rows)
	pdf.Ln(12)
}

func writeScorecard(pdf *fpdf.Fpdf, sold []*models.Item, t totals) {
	sectionTitle(pdf, "Business Scorecard", 11)

	daysInBiz := daysInBusiness(sold)
	weeks := math.Max(float64(daysInBiz)/7, 1)

	biggest := maxByProfit(sold)
	fastest := fastestFlip(sold)

	rows := [][]string{
		{"Days in Business", fmt.Sprintf("%d", daysInBiz)},
		{"Profit per Week", money0(t.profit / weeks)},
		{"Avg Cost per Flip", money0(safeDiv(t.cost, float64(len(sold))))},
		{"Avg Sale Price", money0(safeDiv(t.revenue, float64(len(sold))))},
	}
	if biggest != nil {
		rows = append(rows, []string{"Biggest Win",
			fmt.Sprintf("%s (%s)", biggest.Description, money0OrDash(biggest.ActualProfit()))})
	}
	if fastest != nil {
		rows = append(rows, []string{"Fastest Flip",
			fmt.Sprintf("%s (%dd, %s)", fastest.Description, *fastest.DaysToSell(), money0OrDash(fastest.ActualProfit()))})
	}
	rows = append(rows, []string{"Items Flipped per Week", fmt.Sprintf("%.1f", float64(len(sold))/weeks)})
	if t.cost > 0 {
		rows = append(rows, []string{"Money Multiplier", fmt.Sprintf("%.1fx", t.revenue/t.cost)})
	}
	if m, ok := t.avgMargin(); ok {
		rows = append(rows, []string{"Profit if Reinvested at Avg Margin", money0(t.profit * (1 + m))})
	}

	writeTable(pdf, tableSpec{
		headerFill: colorInk,
		boldFirst:  true,
		cols:       []col{{"Metric", 180, "L"}, {"Value", 351, "L"}},
	}, rows)
}

// --- table plumbing ---

type col struct {
	title string
	width float64
	align string
}

type tableSpec struct {
	headerFill rgb
	totalFill  *rgb // highlights the final row when set
	boldFirst  bool // bold first column, scorecard style
	cols       []col
}

func writeTable(pdf *fpdf.Fpdf, spec tableSpec, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 8)
	fill(pdf, spec.headerFill)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetDrawColor(211, 211, 211)
	for _, c := range spec.cols {
		pdf.CellFormat(c.width, 16, c.title, "1", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	for i, row := range rows {
		last := i == len(rows)-1
		filled := false
		switch {
		case last && spec.totalFill != nil:
			fill(pdf, *spec.totalFill)
			pdf.SetFont("Helvetica", "B", 8)
			filled = true
		case i%2 == 1:
			fill(pdf, colorStripe)
			pdf.SetFont("Helvetica", "", 8)
			filled = true
		default:
			pdf.SetFont("Helvetica", "", 8)
		}
		for j, c := range spec.cols {
			if j == 0 && spec.boldFirst {
				pdf.SetFont("Helvetica", "B", 8)
			} else if !(last && spec.totalFill != nil) {
				pdf.SetFont("Helvetica", "", 8)
			}
			text := ""
			if j < len(row) {
				text = row[j]
			}
			pdf.CellFormat(c.width, 14, text, "1", 0, c.align, filled, 0, "")
		}
		pdf.Ln(-1)
	}
}

func sectionTitle(pdf *fpdf.Fpdf, title string, size float64) {
	pdf.SetFont("Helvetica", "B", size)
	pdf.CellFormat(0, size+6, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func fill(pdf *fpdf.Fpdf, c rgb) {
	pdf.SetFillColor(c.r, c.g, c.b)
}

// --- cell helpers ---

func money2(v float64) string { return format.FormatCurrencyCents(&v) }

func money0(v float64) string { return format.FormatCurrency(&v) }

func money2OrDash(v *float64) string { return format.FormatCurrencyCents(v) }

func money0OrDash(v *float64) string { return format.FormatCurrency(v) }

func percentOrDash(v *float64) string { return format.FormatPercent(v) }

// Zero cost renders as a flat "$0", the way the ledger always has.
func costCell(cost float64) string {
	if cost == 0 {
		return "$0"
	}
	return money2(cost)
}

func marginCell(profit, revenue float64) string {
	if revenue == 0 {
		return format.Placeholder
	}
	m := profit / revenue
	return format.FormatPercent(&m)
}

func monthLabel(yyyymm string) string {
	t, err := time.Parse("2006-01", yyyymm)
	if err != nil {
		return yyyymm
	}
	return t.Format("Jan 2006")
}

func longDate(iso string) string {
	t, err := time.Parse(format.ISODate, iso)
	if err != nil {
		return iso
	}
	return t.Format("01/02/2006")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func withProfit(items []*models.Item) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if item.ActualProfit() != nil {
			out = append(out, item)
		}
	}
	return out
}

func top(items []*models.Item, n int) []*models.Item {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func maxByProfit(sold []*models.Item) *models.Item {
	var best *models.Item
	var bestProfit float64
	for _, item := range sold {
		p := item.ActualProfit()
		if p == nil {
			continue
		}
		if best == nil || *p > bestProfit {
			best, bestProfit = item, *p
		}
	}
	return best
}

func fastestFlip(sold []*models.Item) *models.Item {
	var fastest *models.Item
	var fastestDays int
	for _, item := range sold {
		d := item.DaysToSell()
		if d == nil || *d <= 0 {
			continue
		}
		if fastest == nil || *d < fastestDays {
			fastest, fastestDays = item, *d
		}
	}
	return fastest
}

func daysInBusiness(sold []*models.Item) int {
	var firstBuy, lastSale time.Time
	for _, item := range sold {
		if t, err := parseISO(item.DateBought); err == nil {
			if firstBuy.IsZero() || t.Before(firstBuy) {
				firstBuy = t
			}
		}
		if t, err := parseISO(item.DateSold); err == nil {
			if lastSale.IsZero() || t.After(lastSale) {
				lastSale = t
			}
		}
	}
	if firstBuy.IsZero() || lastSale.IsZero() {
		return 0
	}
	days := int(lastSale.Sub(firstBuy) / (24 * time.Hour))
	if days == 0 {
		days = 1
	}
	return days
}

func parseISO(s *string) (time.Time, error) {
	if s == nil {
		return time.Time{}, fmt.Errorf("no date")
	}
	return time.Parse(format.ISODate, *s)
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
