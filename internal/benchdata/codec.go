package benchdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// ScriptPrefix is the assignment the chart page expects in data.js.
const ScriptPrefix = "window.BENCHMARK_DATA = "

// Decode reads a dataset in either the data.js script form or plain JSON.
func Decode(r io.Reader) (*Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read benchmark data: %w", err)
	}
	return Unmarshal(raw)
}

// Unmarshal parses a dataset from data.js or JSON bytes.
func Unmarshal(raw []byte) (*Dataset, error) {
	body := bytes.TrimSpace(raw)
	if bytes.HasPrefix(body, []byte("window.BENCHMARK_DATA")) {
		eq := bytes.IndexByte(body, '=')
		if eq < 0 {
			return nil, fmt.Errorf("%w: missing assignment", ErrMalformed)
		}
		body = bytes.TrimSpace(body[eq+1:])
		body = bytes.TrimSuffix(body, []byte(";"))
	}

	ds := &Dataset{}
	if err := json.Unmarshal(body, ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if ds.Entries == nil {
		ds.Entries = make(map[string][]Entry)
	}
	return ds, nil
}

// Encode writes ds in the data.js script form.
func Encode(w io.Writer, ds *Dataset) error {
	out, err := Marshal(ds)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// Marshal renders ds in the data.js script form: two-space indentation, no
// HTML escaping, no trailing newline.
func Marshal(ds *Dataset) ([]byte, error) {
	body, err := MarshalJSON(ds)
	if err != nil {
		return nil, err
	}
	return append([]byte(ScriptPrefix), body...), nil
}

// MarshalJSON renders ds as indented JSON without the script assignment.
func MarshalJSON(ds *Dataset) ([]byte, error) {
	out := *ds
	if out.Entries == nil {
		out.Entries = map[string][]Entry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, fmt.Errorf("failed to encode benchmark data: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
