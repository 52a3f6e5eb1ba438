package embed

import (
	"gonum.org/v1/gonum/floats"
)

// =============================================================================
// Sparse Encoding
// =============================================================================

// SparseEntry is one non-zero vector component.
type SparseEntry struct {
	// Index is the vocabulary position of the component.
	Index int `json:"i"`

	// Value is the component's weight.
	Value float64 `json:"v"`
}

// SparseVector is the persistence form of an embedding: only the non-zero
// components of a dense vector, in ascending index order.
type SparseVector struct {
	// Length is the dense vector length (the vocabulary size at build time).
	Length int `json:"length"`

	// Entries holds the non-zero components.
	Entries []SparseEntry `json:"entries,omitempty"`
}

// Compress converts a dense vector to its sparse form.
func Compress(dense []float64) SparseVector {
	sv := SparseVector{Length: len(dense)}
	for i, v := range dense {
		if v != 0 {
			sv.Entries = append(sv.Entries, SparseEntry{Index: i, Value: v})
		}
	}
	return sv
}

// Decompress reconstructs the dense vector from its sparse form. Components
// outside the stored entries are zero.
func Decompress(sv SparseVector) []float64 {
	dense := make([]float64, sv.Length)
	for _, e := range sv.Entries {
		if e.Index >= 0 && e.Index < sv.Length {
			dense[e.Index] = e.Value
		}
	}
	return dense
}

// =============================================================================
// Vector Math
// =============================================================================

// Cosine returns the cosine similarity of two equal-length vectors. Either
// vector being zero (or the lengths disagreeing) yields 0.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	magA := floats.Norm(a, 2)
	magB := floats.Norm(b, 2)
	if magA == 0 || magB == 0 {
		return 0
	}

	return floats.Dot(a, b) / (magA * magB)
}

// normalize scales a vector to unit length in place. The zero vector is left
// untouched.
func normalize(v []float64) {
	mag := floats.Norm(v, 2)
	if mag == 0 {
		return
	}
	floats.Scale(1/mag, v)
}
