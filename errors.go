package main

import (
	"errors"
	"fmt"
)

// ErrPriceNotFetched is returned when a projection is requested before a price
// has been fetched successfully.
var ErrPriceNotFetched = errors.New("no price fetched yet: use Fetch Data first")

// FileError reports a forecast CSV that is missing or malformed
type FileError struct {
	Path string
	Row  int // 1-based data row, 0 when the error is not tied to a row
	Err  error
}

func (e *FileError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("load %s: row %d: %v", e.Path, e.Row, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// NetworkError reports a failed price request or a non-200 response
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("price request %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("price request %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DataFormatError reports a price payload that could not be interpreted
type DataFormatError struct {
	Source string
	Err    error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("malformed price data from %s: %v", e.Source, e.Err)
}

func (e *DataFormatError) Unwrap() error { return e.Err }

// ValidationError reports user input that cannot be used
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
