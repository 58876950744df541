// Package export renders saved circuits into downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/xuri/excelize/v2"
)

const bomSheet = "BOM"

var bomHeader = []string{"Component", "Quantity", "Estimated Price", "Source"}

// ParseBOM decodes a stored BOM payload. Both a bare item list and a full
// {items, total_estimated_cost, notes} object are accepted.
func ParseBOM(raw []byte) (models.BOM, error) {
	raw = bytes.TrimSpace(raw)
	var bom models.BOM
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '[':
		if err := json.Unmarshal(raw, &bom.Items); err != nil {
			return models.BOM{}, fmt.Errorf("invalid bom list: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &bom); err != nil {
			return models.BOM{}, fmt.Errorf("invalid bom object: %w", err)
		}
	}
	bom.Normalize()
	return bom, nil
}

// WriteBOM writes bom as an .xlsx workbook with one header row, one row per
// item and a trailing total row when a total is known.
func WriteBOM(w io.Writer, title string, bom models.BOM) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), bomSheet); err != nil {
		return err
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "circuitgen"}); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(bomSheet, "A1", &bomHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(bomSheet, "A1", "D1", bold); err != nil {
		return err
	}

	row := 2
	for _, item := range bom.Items {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []any{item.Component, int(item.Quantity), item.EstimatedPrice, item.Source}
		if err := f.SetSheetRow(bomSheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	if bom.TotalEstimatedCost != "" {
		label, _ := excelize.CoordinatesToCellName(1, row)
		total, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellValue(bomSheet, label, "Total"); err != nil {
			return err
		}
		if err := f.SetCellValue(bomSheet, total, bom.TotalEstimatedCost); err != nil {
			return err
		}
		if err := f.SetCellStyle(bomSheet, label, total, bold); err != nil {
			return err
		}
		row++
	}
	if bom.Notes != nil && *bom.Notes != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row+1)
		if err := f.SetCellValue(bomSheet, cell, *bom.Notes); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(bomSheet, "A", "A", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(bomSheet, "C", "D", 18); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}
