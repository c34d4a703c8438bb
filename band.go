package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ProjectionRow is one year of the forecast table with its derived bounds
type ProjectionRow struct {
	Year       int     `json:"year"`
	Average    float64 `json:"average"`
	Percentage float64 `json:"percentage"` // uncertainty, 0-100
	MinValue   float64 `json:"min_value"`
	MaxValue   float64 `json:"max_value"`
}

// Required forecast CSV columns
const (
	columnYear       = "Year"
	columnAverage    = "Average"
	columnPercentage = "Percentage"
)

// DeriveBand returns the row with MinValue and MaxValue set from Average and Percentage
func DeriveBand(row ProjectionRow) ProjectionRow {
	row.MinValue = row.Average * (1 - row.Percentage/100)
	row.MaxValue = row.Average * (1 + row.Percentage/100)
	return row
}

// DeriveBands derives the bounds of every row. The input slice is not modified.
func DeriveBands(rows []ProjectionRow) []ProjectionRow {
	out := make([]ProjectionRow, len(rows))
	for i, row := range rows {
		out[i] = DeriveBand(row)
	}
	return out
}

// LoadBandCSV reads a forecast CSV and returns its rows with derived bounds.
// Any failure is reported as a *FileError.
func LoadBandCSV(path string) ([]ProjectionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()

	rows, err := readBandCSV(f)
	if err != nil {
		var fe *FileError
		if errors.As(err, &fe) {
			fe.Path = path
			return nil, fe
		}
		return nil, &FileError{Path: path, Err: err}
	}
	return DeriveBands(rows), nil
}

func readBandCSV(r io.Reader) ([]ProjectionRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	cols := make([]int, 3)
	for i, name := range []string{columnYear, columnAverage, columnPercentage} {
		pos, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		cols[i] = pos
	}

	var rows []ProjectionRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FileError{Row: line, Err: err}
		}
		if isBlankRecord(record) {
			continue
		}

		row, err := parseBandRecord(record, cols)
		if err != nil {
			return nil, &FileError{Row: line, Err: err}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("no data rows")
	}
	return rows, nil
}

func parseBandRecord(record []string, cols []int) (ProjectionRow, error) {
	field := func(i int, name string) (string, error) {
		if cols[i] >= len(record) {
			return "", fmt.Errorf("missing %s value", name)
		}
		return strings.TrimSpace(record[cols[i]]), nil
	}

	yearStr, err := field(0, columnYear)
	if err != nil {
		return ProjectionRow{}, err
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		// Years are sometimes exported as "2030.0"
		f, ferr := strconv.ParseFloat(yearStr, 64)
		if ferr != nil || f != float64(int(f)) {
			return ProjectionRow{}, fmt.Errorf("invalid %s %q", columnYear, yearStr)
		}
		year = int(f)
	}

	avgStr, err := field(1, columnAverage)
	if err != nil {
		return ProjectionRow{}, err
	}
	average, err := strconv.ParseFloat(avgStr, 64)
	if err != nil {
		return ProjectionRow{}, fmt.Errorf("invalid %s %q", columnAverage, avgStr)
	}

	pctStr, err := field(2, columnPercentage)
	if err != nil {
		return ProjectionRow{}, err
	}
	percentage, err := strconv.ParseFloat(strings.TrimSuffix(pctStr, "%"), 64)
	if err != nil {
		return ProjectionRow{}, fmt.Errorf("invalid %s %q", columnPercentage, pctStr)
	}

	return ProjectionRow{Year: year, Average: average, Percentage: percentage}, nil
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
