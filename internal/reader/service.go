package reader

import (
	"fmt"
	"sync"

	"github.com/pagemark/pagemark/internal/events"
)

// ProviderSource yields the annotation provider for a document.
type ProviderSource interface {
	ProviderFor(documentID uint) (Provider, error)
}

// Service is the highlights-panel view model: it computes highlight groups
// on demand and caches them per document until the underlying annotation
// set changes. Reads are safe to issue concurrently; every mutation
// invalidates the cache before the next read, so callers always observe
// groups recomputed from the post-mutation state.
type Service struct {
	source ProviderSource
	bus    *events.Bus

	mu    sync.Mutex
	cache map[uint][]Group
}

func NewService(source ProviderSource, bus *events.Bus) *Service {
	s := &Service{
		source: source,
		bus:    bus,
		cache:  make(map[uint][]Group),
	}
	if bus != nil {
		bus.Subscribe(s.onEvent)
	}
	return s
}

// Groups returns the document's highlight groups, recomputing them if the
// cached view was invalidated.
func (s *Service) Groups(documentID uint) ([]Group, error) {
	s.mu.Lock()
	if groups, ok := s.cache[documentID]; ok {
		s.mu.Unlock()
		return groups, nil
	}
	s.mu.Unlock()

	provider, err := s.source.ProviderFor(documentID)
	if err != nil {
		return nil, fmt.Errorf("resolve provider for document %d: %w", documentID, err)
	}
	groups := ComputeGroups(provider)

	s.mu.Lock()
	s.cache[documentID] = groups
	s.mu.Unlock()
	return groups, nil
}

// DeleteGroup removes the group identified by its first page index and
// text. Returns false when no such group exists anymore, which callers
// treat as already deleted. Individual members missing from the live
// document are skipped inside DeleteGroup; the operation itself does not
// fail on them.
func (s *Service) DeleteGroup(documentID uint, firstPageIndex int, text string) (bool, error) {
	groups, err := s.Groups(documentID)
	if err != nil {
		return false, err
	}

	var target *Group
	for i := range groups {
		if groups[i].FirstPageIndex == firstPageIndex && groups[i].Text == text {
			target = &groups[i]
			break
		}
	}
	if target == nil {
		return false, nil
	}

	provider, err := s.source.ProviderFor(documentID)
	if err != nil {
		return false, fmt.Errorf("resolve provider for document %d: %w", documentID, err)
	}
	// DeleteGroup ends with the provider's MarkDirtyAndSave, which
	// announces the mutation; invalidate here so the next read
	// recomputes regardless of event delivery timing.
	DeleteGroup(provider, *target)
	s.Invalidate(documentID)
	return true, nil
}

// Invalidate drops the cached groups for a document. Call after any
// annotation mutation that bypasses this service.
func (s *Service) Invalidate(documentID uint) {
	s.mu.Lock()
	delete(s.cache, documentID)
	s.mu.Unlock()
}

// onEvent keeps the cache coherent when mutations elsewhere in the
// application announce themselves on the bus.
func (s *Service) onEvent(e events.Event) {
	if changed, ok := e.(events.AnnotationsChanged); ok {
		s.Invalidate(changed.DocumentID)
	}
}
