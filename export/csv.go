package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nonsonwune/scopequery/models"
)

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, rs *models.ResultSet) error {
	header, rows := Table(rs)

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}
