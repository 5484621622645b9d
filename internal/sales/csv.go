package sales

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotArray is returned when a CSV export body is not a JSON array
var ErrNotArray = errors.New("sales export is not a JSON array")

// ToCSV converts a JSON array of flat records into CSV text. The header is the
// keys of the first record in document order and every value is quoted.
func ToCSV(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return "", ErrNotArray
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return "", fmt.Errorf("failed to decode sales export: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	var header []string
	lines := make([]string, 0, len(records)+1)
	for i, rec := range records {
		keys, values, err := orderedObject(rec)
		if err != nil {
			return "", fmt.Errorf("record %d: %w", i, err)
		}
		if i == 0 {
			header = keys
			lines = append(lines, strings.Join(header, ","))
		}

		cells := make([]string, len(header))
		for j, k := range header {
			cells[j] = quote(values[k])
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n"), nil
}

// orderedObject reads a JSON object keeping key order
func orderedObject(raw json.RawMessage) ([]string, map[string]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected object, got %v", tok)
	}

	keys := make([]string, 0)
	values := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected key %v", tok)
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = cellText(v)
	}
	return keys, values, nil
}

func cellText(v json.RawMessage) string {
	if len(v) > 0 && v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
