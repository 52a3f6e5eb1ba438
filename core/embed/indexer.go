package embed

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/adalundhe/codeatlas/core/graph"
)

// IndexVersion tags the on-disk index format.
const IndexVersion = "1.0.0"

// ErrEmptyGraph indicates an index was requested for a graph with no nodes.
var ErrEmptyGraph = errors.New("cannot index an empty graph")

// =============================================================================
// Types
// =============================================================================

// CodeChunk is the indexed unit of search: one graph node with its
// synthesized text document and TF-IDF embedding.
type CodeChunk struct {
	// ID is the graph node identifier this chunk was built from.
	ID string `json:"id"`

	// Path is the owning file, relative to the scan root.
	Path string `json:"path"`

	// Kind is the node kind.
	Kind graph.NodeKind `json:"kind"`

	// Name is the node's declared name.
	Name string `json:"name"`

	// Content is the synthesized document the vector was computed from.
	Content string `json:"content"`

	// StartLine and EndLine bound the chunk in its file.
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`

	// Vector is the L2-normalized TF-IDF embedding, aligned to the index
	// vocabulary.
	Vector []float64 `json:"-"`
}

// Index is a searchable embedding index derived from one graph snapshot.
type Index struct {
	// Chunks holds one entry per graph node, ordered by chunk ID.
	Chunks []CodeChunk

	// Vocabulary is the sorted list of distinct tokens across all documents.
	Vocabulary []string

	// IDF holds inverse document frequency weights aligned to Vocabulary.
	IDF []float64

	// CreatedAt records when the index was built.
	CreatedAt time.Time

	// Version is the index format version.
	Version string

	// vocabIndex maps token to its vocabulary position.
	vocabIndex map[string]int
}

// =============================================================================
// Building
// =============================================================================

// BuildIndex computes a TF-IDF embedding index for every node in the graph.
//
// The build is two passes. The first tokenizes each node's synthesized
// document and accumulates global document frequencies; the second emits one
// normalized vector per document against the finished vocabulary. The order
// matters: a document's IDF weights depend on every other document's tokens.
func BuildIndex(g *graph.KnowledgeGraph) (*Index, error) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil, ErrEmptyGraph
	}

	// Pass 1: tokenize and count document frequencies.
	docs := make([][]string, len(nodes))
	contents := make([]string, len(nodes))
	docFreq := make(map[string]int)
	for i, node := range nodes {
		contents[i] = synthesizeDocument(g, node)
		docs[i] = Tokenize(contents[i])

		seen := make(map[string]struct{}, len(docs[i]))
		for _, token := range docs[i] {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			docFreq[token]++
		}
	}

	vocabulary := make([]string, 0, len(docFreq))
	for token := range docFreq {
		vocabulary = append(vocabulary, token)
	}
	sort.Strings(vocabulary)

	vocabIndex := make(map[string]int, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	total := float64(len(nodes))
	for i, token := range vocabulary {
		vocabIndex[token] = i
		idf[i] = math.Log(total / float64(docFreq[token]))
	}

	// Pass 2: one normalized vector per document.
	chunks := make([]CodeChunk, len(nodes))
	for i, node := range nodes {
		base := node.Base()
		chunks[i] = CodeChunk{
			ID:        base.ID,
			Path:      base.Path,
			Kind:      node.Kind(),
			Name:      base.Name,
			Content:   contents[i],
			StartLine: base.StartLine,
			EndLine:   base.EndLine,
			Vector:    vectorize(docs[i], vocabIndex, idf),
		}
	}

	return &Index{
		Chunks:     chunks,
		Vocabulary: vocabulary,
		IDF:        idf,
		CreatedAt:  time.Now().UTC(),
		Version:    IndexVersion,
		vocabIndex: vocabIndex,
	}, nil
}

// vectorize computes the normalized TF-IDF vector for one token stream
// against a fixed vocabulary. Tokens outside the vocabulary contribute
// nothing. The zero vector stays zero.
func vectorize(tokens []string, vocabIndex map[string]int, idf []float64) []float64 {
	vector := make([]float64, len(idf))
	if len(tokens) == 0 {
		return vector
	}

	counts := make(map[int]int, len(tokens))
	for _, token := range tokens {
		if i, ok := vocabIndex[token]; ok {
			counts[i]++
		}
	}

	docLen := float64(len(tokens))
	for i, count := range counts {
		vector[i] = (float64(count) / docLen) * idf[i]
	}

	normalize(vector)
	return vector
}

// =============================================================================
// Querying
// =============================================================================

// QueryVector embeds a query string against the index's fixed vocabulary and
// IDF weights. Out-of-vocabulary terms contribute zero; a query with no known
// terms produces the zero vector.
func (idx *Index) QueryVector(query string) []float64 {
	return vectorize(Tokenize(query), idx.lookup(), idx.IDF)
}

// VocabularySize returns the number of distinct indexed tokens.
func (idx *Index) VocabularySize() int {
	return len(idx.Vocabulary)
}

// ChunkCount returns the number of indexed chunks.
func (idx *Index) ChunkCount() int {
	return len(idx.Chunks)
}

// lookup returns the token position map, rebuilding it after deserialization.
func (idx *Index) lookup() map[string]int {
	if idx.vocabIndex == nil {
		idx.vocabIndex = make(map[string]int, len(idx.Vocabulary))
		for i, token := range idx.Vocabulary {
			idx.vocabIndex[token] = i
		}
	}
	return idx.vocabIndex
}
