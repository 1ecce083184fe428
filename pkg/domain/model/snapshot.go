package model

import "github.com/secmon-lab/grievance/pkg/domain/types"

// WordCount is a frequent token in complaint descriptions
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// Snapshot is the per-department statistics rollup.
// Median fields are nil when no complaint contributed a sample.
type Snapshot struct {
	Department       types.Department `json:"department"`
	Total            int              `json:"total"`
	Pending          int              `json:"pending"`
	InProgress       int              `json:"in_progress"`
	Resolved         int              `json:"resolved"`
	Invalid          int              `json:"invalid"`
	MedianResolved   *float64         `json:"median_resolved"`
	MedianInProgress *float64         `json:"median_in_progress"`
	TopWords         []WordCount      `json:"top_words"`
}
