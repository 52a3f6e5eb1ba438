package graph

import "time"

// Metadata describes one graph snapshot: when and where it was produced and
// aggregate counts computed from the collected nodes and edges.
type Metadata struct {
	// ScanID uniquely identifies the scan that produced this snapshot.
	ScanID string `json:"scanId"`

	// ScannedAt is when the scan started.
	ScannedAt time.Time `json:"scannedAt"`

	// Duration is how long the scan took.
	Duration time.Duration `json:"duration"`

	// RootPath is the absolute path of the scanned repository root.
	RootPath string `json:"rootPath"`

	// FileCount is the number of files that contributed nodes.
	FileCount int `json:"fileCount"`

	// TotalLines is the sum of line counts across all file nodes.
	TotalLines int `json:"totalLines"`

	// Languages is a histogram of file counts per detected language.
	Languages map[string]int `json:"languages,omitempty"`

	// NodeCount is the total number of nodes in the snapshot.
	NodeCount int `json:"nodeCount"`

	// EdgeCount is the total number of edges in the snapshot.
	EdgeCount int `json:"edgeCount"`
}
