// Package export writes result sets as CSV or XLSX. Columns keep record field order;
// count results export as a single count column.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nonsonwune/scopequery/models"
)

// Formats accepted by Filename and WriteFile.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table returns the header and rows of rs.
func Table(rs *models.ResultSet) ([]string, [][]string) {
	if rs.IsCount() {
		return []string{"count"}, [][]string{{strconv.Itoa(rs.Count)}}
	}
	return rs.Columns, rs.Rows()
}

// ParseFormat normalizes a format name.
func ParseFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", format)
}

// Filename builds a download name such as results_<queryID>.csv.
func Filename(queryID, format string) string {
	if queryID == "" {
		queryID = "export"
	}
	return fmt.Sprintf("results_%s.%s", queryID, format)
}

// WriteFile writes rs to path, picking the format from the extension.
func WriteFile(path string, rs *models.ResultSet) error {
	format, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if format == FormatXLSX {
		err = WriteXLSX(f, rs)
	} else {
		err = WriteCSV(f, rs)
	}
	if err != nil {
		return err
	}
	return f.Close()
}
