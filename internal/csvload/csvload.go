// Package csvload reads CSV input into an ordered sequence of records.
// When the first row carries column labels, each record supports lookup by
// label; otherwise records are plain positional value lists.
package csvload

import (
	"encoding/csv"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	tkerrors "git.home.luguber.info/inful/textkit/internal/errors"
)

// ErrNoInput is returned when no file or reader was provided.
var ErrNoInput = errors.New("no input provided")

// Record is a single CSV row. Labels is nil when the input had no header
// row; otherwise it aliases the shared header slice.
type Record struct {
	Labels []string
	Values []string
}

// Get returns the value under the given column label and whether the label
// exists for this record. Short rows only carry the labels they have values
// for.
func (r Record) Get(label string) (string, bool) {
	for i, l := range r.Labels {
		if l == label && i < len(r.Values) {
			return r.Values[i], true
		}
	}
	return "", false
}

// Map renders the record as a label-to-value mapping. Returns nil for
// header-less records.
func (r Record) Map() map[string]string {
	if r.Labels == nil {
		return nil
	}
	m := make(map[string]string, len(r.Values))
	for i, v := range r.Values {
		if i < len(r.Labels) {
			m[r.Labels[i]] = v
		}
	}
	return m
}

// Records is an ordered CSV load result.
type Records struct {
	Header []string
	Rows   []Record
}

// Load reads CSV data from r. When hasHeader is true the first row is
// consumed as column labels and every subsequent record supports Get lookup.
// Ragged rows are tolerated; alignment beyond that is not validated.
func Load(r io.Reader, hasHeader bool) (*Records, error) {
	if r == nil {
		return nil, ErrNoInput
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // Tolerate ragged rows.

	out := &Records{}
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, tkerrors.Wrap(err, tkerrors.CategoryInput, tkerrors.SeverityError, "malformed CSV input")
		}
		if first && hasHeader {
			out.Header = row
			first = false
			continue
		}
		first = false
		out.Rows = append(out.Rows, Record{Labels: out.Header, Values: row})
	}
	return out, nil
}

// LoadFile reads CSV data from a file on disk.
func LoadFile(path string, hasHeader bool) (*Records, error) {
	if path == "" {
		return nil, ErrNoInput
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, tkerrors.Wrap(err, tkerrors.CategoryFileSystem, tkerrors.SeverityError, "open CSV file").WithContext("path", path)
	}
	defer func() {
		_ = f.Close() // Read-only handle.
	}()
	return Load(f, hasHeader)
}

// LoadUpload reads CSV data from a multipart upload, the entry point used by
// the HTTP mode. A nil header means the request carried no file.
func LoadUpload(fh *multipart.FileHeader, hasHeader bool) (*Records, error) {
	if fh == nil {
		return nil, ErrNoInput
	}
	f, err := fh.Open()
	if err != nil {
		return nil, tkerrors.Wrap(err, tkerrors.CategoryInput, tkerrors.SeverityError, "open uploaded file").WithContext("filename", fh.Filename)
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f, hasHeader)
}
