package models

import "sort"

// DetectionResult holds vegetable counts detected in an uploaded image
type DetectionResult struct {
	Filename string         `json:"filename,omitempty"`
	Counts   map[string]int `json:"counts"`
}

// Total returns the number of detected objects across all vegetables
func (d *DetectionResult) Total() int {
	total := 0
	for _, n := range d.Counts {
		total += n
	}
	return total
}

// Vegetables returns the detected vegetable names in alphabetical order
func (d *DetectionResult) Vegetables() []string {
	names := make([]string, 0, len(d.Counts))
	for name := range d.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
