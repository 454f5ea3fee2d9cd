package table

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoSheets indicates the workbook has no worksheets.
	ErrNoSheets = errors.New("workbook has no sheets")
	// ErrEmpty indicates the first worksheet has no rows.
	ErrEmpty = errors.New("the Excel file is empty")
)

// DecodeError reports that an uploaded file could not be turned into a Table.
type DecodeError struct {
	Filename string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("decode spreadsheet: %v", e.Err)
	}
	return fmt.Sprintf("decode spreadsheet %q: %v", e.Filename, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Code exposes a stable error code for handler logs.
func (e *DecodeError) Code() string {
	return "decode_error"
}

var supportedExtensions = map[string]struct{}{
	".xlsx": {},
	".xlsm": {},
	".xltx": {},
	".xltm": {},
	".xls":  {},
}

// SupportedExtension reports whether the file name looks like a spreadsheet we try to decode.
// Legacy .xls passes the filter but fails decoding with a DecodeError.
func SupportedExtension(name string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(strings.TrimSpace(name)))]
	return ok
}

// Loader decodes spreadsheets with excelize.
type Loader struct{}

// NewLoader returns a ready Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load decodes the first worksheet of data into a Table. The first row is treated as data.
func (l *Loader) Load(ctx context.Context, data []byte, filename string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Filename: filename, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Filename: filename, Err: ErrNoSheets}
	}

	// Raw values keep long phone numbers from being rendered in scientific notation.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &DecodeError{Filename: filename, Err: fmt.Errorf("read rows: %w", err)}
	}
	if len(rows) == 0 {
		return nil, &DecodeError{Filename: filename, Err: ErrEmpty}
	}
	return New(rows), nil
}
