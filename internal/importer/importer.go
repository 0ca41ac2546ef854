// Package importer loads the legacy "Onna Business" xlsx workbook into the
// items table. It reads just enough of the xlsx format (a zip of XML parts)
// to walk the Log sheet: shared strings, cell references, and Excel serial
// dates.
package importer

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/noahjmorrison/onnaflips/internal/models"
)

// SheetName is the workbook sheet holding the flip log.
const SheetName = "Log"

const (
	colDateBought  = 0
	colDateSold    = 1
	colDescription = 2
	colCost        = 3
	colListing     = 4
	colSoldFor     = 5
	// Columns 6-10 hold spreadsheet-side derived values we recompute.
	colStatus = 11

	columnCount = 12

	maxDescriptionLen = 200
)

// ReadWorkbook parses the workbook at path and returns the items of the Log
// sheet, ready for insertion.
func ReadWorkbook(path string) ([]*models.Item, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer zr.Close()

	shared, err := readSharedStrings(&zr.Reader)
	if err != nil {
		return nil, err
	}

	sheetPart, err := findSheetPart(&zr.Reader, SheetName)
	if err != nil {
		return nil, err
	}

	rows, err := readSheetRows(&zr.Reader, sheetPart, shared)
	if err != nil {
		return nil, err
	}

	items := make([]*models.Item, 0, len(rows))
	for _, row := range rows {
		if item := rowToItem(row); item != nil {
			items = append(items, item)
		}
	}
	return items, nil
}

// readSharedStrings loads xl/sharedStrings.xml. Workbooks without string
// cells ship without the part, which is fine.
func readSharedStrings(zr *zip.Reader) ([]string, error) {
	doc, err := readPart(zr, "xl/sharedStrings.xml")
	if err != nil {
		return nil, nil
	}
	var strs []string
	for _, si := range doc.FindElements("//si") {
		var b strings.Builder
		for _, t := range si.FindElements(".//t") {
			b.WriteString(t.Text())
		}
		strs = append(strs, b.String())
	}
	return strs, nil
}

// findSheetPart resolves a sheet name to its worksheet part via the workbook
// relationship table.
func findSheetPart(zr *zip.Reader, name string) (string, error) {
	workbook, err := readPart(zr, "xl/workbook.xml")
	if err != nil {
		return "", fmt.Errorf("failed to read workbook index: %w", err)
	}

	var relID string
	for _, sheet := range workbook.FindElements("//sheet") {
		if sheet.SelectAttrValue("name", "") == name {
			relID = sheet.SelectAttrValue("r:id", "")
			break
		}
	}
	if relID == "" {
		return "", fmt.Errorf("sheet %q not found in workbook", name)
	}

	rels, err := readPart(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return "", fmt.Errorf("failed to read workbook relationships: %w", err)
	}
	for _, rel := range rels.FindElements("//Relationship") {
		if rel.SelectAttrValue("Id", "") == relID {
			return "xl/" + rel.SelectAttrValue("Target", ""), nil
		}
	}
	return "", fmt.Errorf("relationship %q not found for sheet %q", relID, name)
}

// readSheetRows returns the data rows (header skipped) as fixed-width value
// slices, shared strings already resolved.
func readSheetRows(zr *zip.Reader, part string, shared []string) ([][]string, error) {
	doc, err := readPart(zr, part)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", part, err)
	}

	var rows [][]string
	for _, rowEl := range doc.FindElements("//sheetData/row") {
		if rowEl.SelectAttrValue("r", "") == "1" {
			continue // header
		}
		row := make([]string, columnCount)
		for _, cell := range rowEl.FindElements("./c") {
			idx := columnIndex(cell.SelectAttrValue("r", ""))
			if idx < 0 || idx >= columnCount {
				continue
			}
			row[idx] = cellValue(cell, shared)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellValue(cell *etree.Element, shared []string) string {
	switch cell.SelectAttrValue("t", "") {
	case "s":
		v := cell.FindElement("./v")
		if v == nil {
			return ""
		}
		idx, err := strconv.Atoi(strings.TrimSpace(v.Text()))
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		var b strings.Builder
		for _, t := range cell.FindElements(".//t") {
			b.WriteString(t.Text())
		}
		return b.String()
	default:
		if v := cell.FindElement("./v"); v != nil {
			return strings.TrimSpace(v.Text())
		}
		return ""
	}
}

func rowToItem(row []string) *models.Item {
	description := strings.TrimSpace(row[colDescription])
	if description == "" {
		return nil // completely empty or junk row
	}
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen]
	}

	item := &models.Item{
		DateBought:   toDate(row[colDateBought]),
		DateSold:     toDate(row[colDateSold]),
		Description:  description,
		ListingPrice: toFloat(row[colListing]),
		SoldFor:      toFloat(row[colSoldFor]),
	}
	if cost := toFloat(row[colCost]); cost != nil {
		item.Cost = *cost
	}

	switch strings.ToLower(strings.TrimSpace(row[colStatus])) {
	case "sold":
		item.Status = models.StatusSold
	case "listed":
		item.Status = models.StatusListed
	default:
		// No explicit status: a recorded sale price and date mean sold.
		if item.SoldFor != nil && item.DateSold != nil {
			item.Status = models.StatusSold
		} else {
			item.Status = models.StatusListed
		}
	}
	return item
}

// toDate accepts Excel serial numbers and ISO date(-time) strings.
func toDate(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		if serial <= 0 {
			return nil
		}
		// Excel day zero is 1899-12-30.
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(serial))
		s := t.Format("2006-01-02")
		return &s
	}
	// Date-time strings carry the date in the first 10 characters.
	if len(raw) >= 10 {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			s := t.Format("2006-01-02")
			return &s
		}
	}
	return nil
}

// toFloat parses a non-negative number; anything else counts as absent.
func toFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 || math.IsNaN(f) {
		return nil
	}
	return &f
}

// columnIndex maps a cell reference like "C12" to a zero-based column index.
func columnIndex(ref string) int {
	idx := 0
	seen := false
	for _, r := range ref {
		if r < 'A' || r > 'Z' {
			break
		}
		idx = idx*26 + int(r-'A') + 1
		seen = true
	}
	if !seen {
		return -1
	}
	return idx - 1
}

func readPart(zr *zip.Reader, name string) (*etree.Document, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("part %s not found", name)
}
