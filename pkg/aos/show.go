package aos

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/newtron-network/apbss/pkg/util"
)

// Format selects how a showcommand response body is decoded. The JSON root
// differs per command, so each format is its own decode path.
type Format int

const (
	// FormatObject decodes an XML body into an element tree.
	FormatObject Format = iota
	// FormatMapping decodes a JSON object into named collections.
	FormatMapping
	// FormatRows decodes a JSON object holding one table of row records.
	FormatRows
)

func (f Format) String() string {
	switch f {
	case FormatObject:
		return "object"
	case FormatMapping:
		return "mapping"
	case FormatRows:
		return "rows"
	default:
		return "Format(" + strconv.Itoa(int(f)) + ")"
	}
}

// xmlRoot is the wrapper element the controller puts around XML output.
const xmlRoot = "my_xml_tag3xxx"

// metaKey holds the column order in JSON show output.
const metaKey = "_meta"

// dataKey holds free-form CLI output lines for commands without a table.
const dataKey = "_data"

// ErrNoCollection is returned when a response lacks a requested collection.
var ErrNoCollection = errors.New("collection not present in response")

// Result is a decoded showcommand response. Exactly one of Object, Mapping
// or Rows is populated, according to Format. A FormatRows response whose
// _data holds plain text fills Lines instead of Rows.
type Result struct {
	Command string
	Format  Format

	Object  *Element
	Mapping Mapping

	// Table is the name of the collection Rows was taken from.
	Table   string
	Columns []string
	Rows    []Row
	Lines   []string
}

// Show runs a show command and decodes the body as format. For FormatRows the
// response must hold exactly one table; use ShowRows to name it.
func (s *Session) Show(ctx context.Context, command string, format Format) (*Result, error) {
	return s.show(ctx, command, format, "")
}

// ShowRows runs a show command and returns the named table as rows.
func (s *Session) ShowRows(ctx context.Context, command, table string) ([]Row, error) {
	res, err := s.show(ctx, command, FormatRows, table)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// ShowMapping runs a show command and returns its named collections.
func (s *Session) ShowMapping(ctx context.Context, command string) (Mapping, error) {
	res, err := s.show(ctx, command, FormatMapping, "")
	if err != nil {
		return nil, err
	}
	return res.Mapping, nil
}

func (s *Session) show(ctx context.Context, command string, format Format, table string) (*Result, error) {
	if s.closed {
		return nil, fmt.Errorf("%s on %s: %w", command, s.host, util.ErrSessionClosed)
	}

	util.WithCommand(s.host, command).Debugf("Running show command (%s)", format)

	q := url.Values{"command": {command}, tokenParam: {s.token}}
	status, body, err := s.get(ctx, "configuration/showcommand", q)
	if err != nil {
		return nil, util.NewRequestError(s.host, command, status, err)
	}
	if status != http.StatusOK {
		return nil, util.NewRequestError(s.host, command, status, nil)
	}

	res := &Result{Command: command, Format: format}
	switch format {
	case FormatObject:
		res.Object, err = decodeObject(body)
	case FormatMapping:
		res.Mapping, err = decodeMapping(body)
	case FormatRows:
		err = s.decodeRows(res, body, table)
	default:
		err = fmt.Errorf("unknown format %s", format)
	}
	if err != nil {
		return nil, util.NewRequestError(s.host, command, status, err)
	}
	return res, nil
}

// ============================================================================
// Object (XML)
// ============================================================================

// Element is one node of an XML show response.
type Element struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []Element  `xml:",any"`
}

// Name returns the local element name.
func (e *Element) Name() string {
	return e.XMLName.Local
}

// Value returns the trimmed character data of the element.
func (e *Element) Value() string {
	return strings.TrimSpace(e.Text)
}

// Attr returns the named attribute value.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// Find returns the direct children with the given name.
func (e *Element) Find(name string) []Element {
	var out []Element
	for _, c := range e.Children {
		if c.XMLName.Local == name {
			out = append(out, c)
		}
	}
	return out
}

// First returns the first direct child with the given name.
func (e *Element) First(name string) (*Element, bool) {
	for i := range e.Children {
		if e.Children[i].XMLName.Local == name {
			return &e.Children[i], true
		}
	}
	return nil, false
}

func decodeObject(body []byte) (*Element, error) {
	var root Element
	if err := xml.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}
	if root.XMLName.Local != xmlRoot {
		return nil, fmt.Errorf("unexpected XML root <%s>, want <%s>", root.XMLName.Local, xmlRoot)
	}
	return &root, nil
}

// ============================================================================
// Mapping (JSON object of named collections)
// ============================================================================

// Mapping is a JSON show response keyed by collection name.
type Mapping map[string]json.RawMessage

// Has reports whether the response carries the named collection.
func (m Mapping) Has(name string) bool {
	_, ok := m[name]
	return ok
}

// Names returns the collection names, excluding metadata, sorted.
func (m Mapping) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		if !strings.HasPrefix(k, "_") {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

// Rows decodes the named collection as an array of row records.
// A JSON null collection is empty; a missing one wraps ErrNoCollection.
func (m Mapping) Rows(name string) ([]Row, error) {
	raw, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoCollection, name)
	}
	return decodeRowArray(name, raw)
}

func decodeMapping(body []byte) (Mapping, error) {
	var m Mapping
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decoding JSON object: %w", err)
	}
	if m == nil {
		return nil, errors.New("response is JSON null")
	}
	return m, nil
}

// ============================================================================
// Rows (JSON object holding one table)
// ============================================================================

// Row is one record of a show table, keyed by column name.
type Row map[string]string

// Get returns the named column, or "" if absent.
func (r Row) Get(column string) string {
	return r[column]
}

// decodeRows fills the table fields of res. With no table named, the sole
// collection is used, falling back to _data when there is none.
func (s *Session) decodeRows(res *Result, body []byte, table string) error {
	m, err := decodeMapping(body)
	if err != nil {
		return err
	}

	if table == "" {
		names := m.Names()
		switch {
		case len(names) == 1:
			table = names[0]
		case len(names) == 0 && m.Has(dataKey):
			table = dataKey
		default:
			return fmt.Errorf("expected exactly one table, found %d %v", len(names), names)
		}
	}
	res.Table = table

	if table == dataKey {
		if lines, ok := decodeLines(m[dataKey]); ok {
			res.Lines = lines
			return nil
		}
	}

	res.Rows, err = m.Rows(table)
	if err != nil {
		return err
	}

	if raw, ok := m[metaKey]; ok {
		if err := json.Unmarshal(raw, &res.Columns); err != nil {
			res.Columns = nil
			util.WithCommand(s.host, res.Command).Debugf("Ignoring malformed %s: %v", metaKey, err)
		}
	}
	return nil
}

// decodeLines decodes raw as an array of strings. ok is false when raw holds
// anything else, such as row records.
func decodeLines(raw json.RawMessage) ([]string, bool) {
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, false
	}
	return lines, true
}

func decodeRowArray(name string, raw json.RawMessage) ([]Row, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("collection %q is not an array of records: %w", name, err)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, len(rec))
		for k, v := range rec {
			row[k] = stringify(v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// stringify renders a decoded JSON scalar the way it appears in CLI output.
func stringify(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
