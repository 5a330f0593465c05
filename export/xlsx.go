package export

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nonsonwune/scopequery/models"
)

const sheetName = "Results"

// WriteXLSX writes rs to a single-sheet workbook. Integer columns are stored as numbers.
func WriteXLSX(w io.Writer, rs *models.ResultSet) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Error closing excel file: %v", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header, rows := Table(rs)
	if err := writeRow(f, 1, toCells(header, nil)); err != nil {
		return err
	}
	numeric := numericColumns(header)
	for i, row := range rows {
		if err := writeRow(f, i+2, toCells(row, numeric)); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write excel file: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func numericColumns(header []string) map[int]bool {
	numeric := make(map[int]bool)
	for i, col := range header {
		switch col {
		case models.FieldGrade, models.FieldQuizScore, "count":
			numeric[i] = true
		}
	}
	return numeric
}

func toCells(values []string, numeric map[int]bool) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
		if numeric[i] {
			if n, err := strconv.Atoi(v); err == nil {
				cells[i] = n
			}
		}
	}
	return cells
}
