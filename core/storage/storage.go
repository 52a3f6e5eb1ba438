// Package storage persists graph and index artifacts as JSON documents on
// disk. Writes are atomic (temp file plus rename) so readers never observe a
// partially written artifact, and index staleness is decided from file
// modification times.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adalundhe/codeatlas/core/embed"
	"github.com/adalundhe/codeatlas/core/graph"
)

// =============================================================================
// Constants and Errors
// =============================================================================

const (
	// GraphFileName is the graph artifact file name inside the artifact dir.
	GraphFileName = "graph.json"

	// IndexFileName is the index artifact file name inside the artifact dir.
	IndexFileName = "index.json"

	// GraphVersion tags the graph artifact format.
	GraphVersion = "1.0.0"
)

var (
	// ErrNoArtifact indicates the requested artifact file does not exist.
	ErrNoArtifact = errors.New("artifact not found")

	// ErrVersionMismatch indicates an artifact written by an incompatible
	// format version.
	ErrVersionMismatch = errors.New("artifact version mismatch")
)

// =============================================================================
// Store
// =============================================================================

// Store reads and writes artifacts under one directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir. The directory is created on the
// first write, not here.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// GraphPath returns the graph artifact path.
func (s *Store) GraphPath() string {
	return filepath.Join(s.dir, GraphFileName)
}

// IndexPath returns the index artifact path.
func (s *Store) IndexPath() string {
	return filepath.Join(s.dir, IndexFileName)
}

// =============================================================================
// Graph Artifact
// =============================================================================

// graphArtifact is the on-disk graph document. Nodes are keyed by identifier
// in their tagged wire form.
type graphArtifact struct {
	Version  string                     `json:"version"`
	Metadata graph.Metadata             `json:"metadata"`
	Nodes    map[string]json.RawMessage `json:"nodes"`
	Edges    []graph.Edge               `json:"edges"`
}

// SaveGraph writes the graph artifact atomically.
func (s *Store) SaveGraph(g *graph.KnowledgeGraph) error {
	artifact := graphArtifact{
		Version:  GraphVersion,
		Metadata: g.Metadata(),
		Nodes:    make(map[string]json.RawMessage, g.NodeCount()),
		Edges:    g.Edges(),
	}

	for _, node := range g.Nodes() {
		encoded, err := graph.EncodeNode(node)
		if err != nil {
			return fmt.Errorf("encoding node %s: %w", node.Base().ID, err)
		}
		artifact.Nodes[node.Base().ID] = encoded
	}

	return s.writeAtomic(s.GraphPath(), artifact)
}

// LoadGraph reads the graph artifact back into an immutable snapshot.
// Returns ErrNoArtifact when no graph has been persisted.
func (s *Store) LoadGraph() (*graph.KnowledgeGraph, error) {
	var artifact graphArtifact
	if err := s.readArtifact(s.GraphPath(), &artifact); err != nil {
		return nil, err
	}
	if artifact.Version != GraphVersion {
		return nil, fmt.Errorf("%w: graph artifact is %q, want %q",
			ErrVersionMismatch, artifact.Version, GraphVersion)
	}

	nodes := make([]graph.Node, 0, len(artifact.Nodes))
	for id, raw := range artifact.Nodes {
		node, err := graph.DecodeNode(raw)
		if err != nil {
			return nil, fmt.Errorf("decoding node %s: %w", id, err)
		}
		nodes = append(nodes, node)
	}

	return graph.New(artifact.Metadata, nodes, artifact.Edges)
}

// =============================================================================
// Index Artifact
// =============================================================================

// chunkArtifact is one chunk with its embedding in sparse form.
type chunkArtifact struct {
	ID        string             `json:"id"`
	Path      string             `json:"path"`
	Kind      graph.NodeKind     `json:"kind"`
	Name      string             `json:"name"`
	Content   string             `json:"content"`
	StartLine int                `json:"startLine"`
	EndLine   int                `json:"endLine"`
	Embedding embed.SparseVector `json:"embedding"`
}

// indexArtifact is the on-disk index document.
type indexArtifact struct {
	Version        string          `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	ChunkCount     int             `json:"chunkCount"`
	VocabularySize int             `json:"vocabularySize"`
	Vocabulary     []string        `json:"vocabulary"`
	IDF            []float64       `json:"idf"`
	Chunks         []chunkArtifact `json:"chunks"`
}

// SaveIndex writes the index artifact atomically, compressing every
// embedding to its non-zero components.
func (s *Store) SaveIndex(idx *embed.Index) error {
	artifact := indexArtifact{
		Version:        idx.Version,
		CreatedAt:      idx.CreatedAt,
		ChunkCount:     idx.ChunkCount(),
		VocabularySize: idx.VocabularySize(),
		Vocabulary:     idx.Vocabulary,
		IDF:            idx.IDF,
		Chunks:         make([]chunkArtifact, len(idx.Chunks)),
	}

	for i, chunk := range idx.Chunks {
		artifact.Chunks[i] = chunkArtifact{
			ID:        chunk.ID,
			Path:      chunk.Path,
			Kind:      chunk.Kind,
			Name:      chunk.Name,
			Content:   chunk.Content,
			StartLine: chunk.StartLine,
			EndLine:   chunk.EndLine,
			Embedding: embed.Compress(chunk.Vector),
		}
	}

	return s.writeAtomic(s.IndexPath(), artifact)
}

// LoadIndex reads the index artifact back, restoring dense vectors.
// Returns ErrNoArtifact when no index has been persisted.
func (s *Store) LoadIndex() (*embed.Index, error) {
	var artifact indexArtifact
	if err := s.readArtifact(s.IndexPath(), &artifact); err != nil {
		return nil, err
	}
	if artifact.Version != embed.IndexVersion {
		return nil, fmt.Errorf("%w: index artifact is %q, want %q",
			ErrVersionMismatch, artifact.Version, embed.IndexVersion)
	}

	idx := &embed.Index{
		Chunks:     make([]embed.CodeChunk, len(artifact.Chunks)),
		Vocabulary: artifact.Vocabulary,
		IDF:        artifact.IDF,
		CreatedAt:  artifact.CreatedAt,
		Version:    artifact.Version,
	}
	for i, chunk := range artifact.Chunks {
		idx.Chunks[i] = embed.CodeChunk{
			ID:        chunk.ID,
			Path:      chunk.Path,
			Kind:      chunk.Kind,
			Name:      chunk.Name,
			Content:   chunk.Content,
			StartLine: chunk.StartLine,
			EndLine:   chunk.EndLine,
			Vector:    embed.Decompress(chunk.Embedding),
		}
	}

	return idx, nil
}

// =============================================================================
// Staleness
// =============================================================================

// IndexStale reports whether the index needs rebuilding: true when either
// artifact is missing or when the graph artifact is newer than the index.
func (s *Store) IndexStale() bool {
	graphInfo, err := os.Stat(s.GraphPath())
	if err != nil {
		return true
	}
	indexInfo, err := os.Stat(s.IndexPath())
	if err != nil {
		return true
	}
	return graphInfo.ModTime().After(indexInfo.ModTime())
}

// =============================================================================
// I/O Helpers
// =============================================================================

// writeAtomic marshals v and renames a temp file over path so a crashed
// write never leaves a truncated artifact behind.
func (s *Store) writeAtomic(path string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding artifact: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp artifact: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing artifact: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publishing artifact: %w", err)
	}
	return nil
}

// readArtifact decodes the JSON document at path into v.
func (s *Store) readArtifact(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNoArtifact, path)
	}
	if err != nil {
		return fmt.Errorf("reading artifact: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	return nil
}
