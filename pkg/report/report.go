// Package report writes joined BSS rows to CSV or JSON files.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/newtron-network/apbss/pkg/model"
	"github.com/newtron-network/apbss/pkg/util"
)

// DefaultName is the output name that selects a timestamped file under
// DefaultDir.
const (
	DefaultName = "ap-bss-table"
	DefaultDir  = "output"

	timestampLayout = "20060102_1504"
)

// Writer emits report rows. Write may be called more than once; Close
// finishes the document.
type Writer interface {
	Write(rows []model.ReportRow) error
	Close() error
}

// CSVWriter writes rows as CSV with a single header line.
type CSVWriter struct {
	w      *csv.Writer
	header bool
}

// NewCSVWriter returns a CSVWriter on w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

func (c *CSVWriter) writeHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	return c.w.Write(model.Columns)
}

// Write appends rows, emitting the header first if it has not been written.
func (c *CSVWriter) Write(rows []model.ReportRow) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	for _, r := range rows {
		if err := c.w.Write(r.Values()); err != nil {
			return err
		}
	}
	c.w.Flush()
	return c.w.Error()
}

// Close writes the header if no rows were ever written and flushes.
func (c *CSVWriter) Close() error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

// JSONWriter writes rows as one JSON array of objects.
type JSONWriter struct {
	w    io.Writer
	rows []model.ReportRow
}

// NewJSONWriter returns a JSONWriter on w. Rows are buffered until Close.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: w, rows: []model.ReportRow{}}
}

func (j *JSONWriter) Write(rows []model.ReportRow) error {
	j.rows = append(j.rows, rows...)
	return nil
}

func (j *JSONWriter) Close() error {
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.rows)
}

// Extension returns the file extension for the chosen format.
func Extension(asJSON bool) string {
	if asJSON {
		return "json"
	}
	return "csv"
}

// OutputPath returns the file a report is written to. The default name
// becomes output/<conductor>_<YYYYmmdd_HHMM>_ap-bss-table.<ext>; any other
// name is used as given plus the extension.
func OutputPath(name, conductor string, now time.Time, asJSON bool) string {
	ext := Extension(asJSON)
	if name != DefaultName {
		return name + "." + ext
	}
	file := fmt.Sprintf("%s_%s_%s.%s", util.SanitizeName(conductor), now.Format(timestampLayout), name, ext)
	return filepath.Join(DefaultDir, file)
}

// WriteFile writes rows to path in the chosen format, creating parent
// directories as needed.
func WriteFile(path string, rows []model.ReportRow, asJSON bool) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	var w Writer = NewCSVWriter(f)
	if asJSON {
		w = NewJSONWriter(f)
	}
	if err := w.Write(rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	util.WithField("path", path).Infof("Wrote %d records", len(rows))
	return nil
}
