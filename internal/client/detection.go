package client

import (
	"bytes"
	"encoding/json"
	"fmt"

	"smartkitchen/internal/models"
)

// ParseDetection decodes the detection endpoint response. The backend answers
// {filename: {vegetable: count}}; a flat {vegetable: count} object is also
// accepted.
func ParseDetection(body []byte) (*models.DetectionResult, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("%w: detection: %v", ErrParse, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: detection: empty body", ErrParse)
	}

	if len(top) == 1 {
		for filename, inner := range top {
			if isObject(inner) {
				counts, err := decodeCounts(inner)
				if err != nil {
					return nil, err
				}
				return &models.DetectionResult{Filename: filename, Counts: counts}, nil
			}
		}
	}

	counts, err := decodeCounts(body)
	if err != nil {
		return nil, err
	}
	return &models.DetectionResult{Counts: counts}, nil
}

func decodeCounts(raw []byte) (map[string]int, error) {
	var values map[string]json.Number
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("%w: detection counts: %v", ErrParse, err)
	}

	counts := make(map[string]int, len(values))
	for name, v := range values {
		n, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: detection count for %s: %v", ErrParse, name, err)
		}
		counts[name] = int(n)
	}
	return counts, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
