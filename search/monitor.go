package search

import (
	"github.com/poiesic/archivist/core"
)

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during search.
type RetrievalMonitor interface {
	Start(query string)
	AfterEmbedding(dimension int)
	AfterIndexSearch(rows []uint64)
	AfterStoreLookup(passages []*core.Passage)
	Degraded(reason string)
	Finish(results []*core.ScoredPassage)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                     {}
func (n *noopMonitor) AfterEmbedding(_ int)               {}
func (n *noopMonitor) AfterIndexSearch(_ []uint64)        {}
func (n *noopMonitor) AfterStoreLookup(_ []*core.Passage) {}
func (n *noopMonitor) Degraded(_ string)                  {}
func (n *noopMonitor) Finish(_ []*core.ScoredPassage)     {}
