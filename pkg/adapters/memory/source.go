package memory

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/arbor/pkg/domain"
)

// Source implements ports.Dataset over an in-memory copy of the dataset.
// Safe for concurrent use; Replace swaps the whole snapshot atomically.
type Source struct {
	mu     sync.RWMutex
	idx    *index
	path   string
	logger *slog.Logger

	subsMu sync.Mutex
	subs   []chan struct{}
}

type index struct {
	nodes       map[domain.NodeKey]domain.DialogueNode
	edges       map[domain.NodeKey][]domain.DialogueEdge
	checks      map[domain.NodeKey]domain.SkillCheck
	alternates  map[domain.NodeKey][]domain.Alternate
	conditional map[int][]domain.DialogueNode
	lines       []domain.DialogueNode
	actors      []string
}

// Option configures the Source.
type Option func(*Source)

// WithLogger sets the logger used to report fixture reload problems.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Source) {
		s.logger = logger
	}
}

// New creates a Source serving the given dataset.
func New(ds domain.Dataset, opts ...Option) *Source {
	s := &Source{idx: buildIndex(ds), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func buildIndex(ds domain.Dataset) *index {
	idx := &index{
		nodes:       make(map[domain.NodeKey]domain.DialogueNode, len(ds.Nodes)),
		edges:       make(map[domain.NodeKey][]domain.DialogueEdge),
		checks:      make(map[domain.NodeKey]domain.SkillCheck, len(ds.Checks)),
		alternates:  make(map[domain.NodeKey][]domain.Alternate),
		conditional: make(map[int][]domain.DialogueNode),
	}

	for _, n := range ds.Nodes {
		idx.nodes[n.Key] = n
	}
	for _, e := range ds.Edges {
		idx.edges[e.Origin] = append(idx.edges[e.Origin], e)
	}
	for _, c := range ds.Checks {
		idx.checks[c.Key] = c
	}
	for _, a := range ds.Alternates {
		idx.alternates[a.Key] = append(idx.alternates[a.Key], a)
	}

	idx.lines = make([]domain.DialogueNode, 0, len(idx.nodes))
	for _, n := range idx.nodes {
		idx.lines = append(idx.lines, n)
	}
	sort.Slice(idx.lines, func(i, j int) bool {
		a, b := idx.lines[i].Key, idx.lines[j].Key
		if a.ConversationID != b.ConversationID {
			return a.ConversationID < b.ConversationID
		}
		return a.DialogueID < b.DialogueID
	})
	for _, n := range idx.lines {
		if n.ConditionString != "" {
			idx.conditional[n.Key.ConversationID] = append(idx.conditional[n.Key.ConversationID], n)
		}
	}

	seen := make(map[string]bool)
	for _, a := range ds.Actors {
		if a.Name != "" && !seen[a.Name] {
			seen[a.Name] = true
			idx.actors = append(idx.actors, a.Name)
		}
	}
	sort.Strings(idx.actors)

	return idx
}

func (s *Source) snapshot() *index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// Replace swaps the served dataset and notifies watchers.
func (s *Source) Replace(ds domain.Dataset) {
	idx := buildIndex(ds)
	s.mu.Lock()
	s.idx = idx
	s.mu.Unlock()
	s.notify()
}

// GetNode returns the entry stored under key.
func (s *Source) GetNode(ctx context.Context, key domain.NodeKey) (*domain.DialogueNode, error) {
	n, ok := s.snapshot().nodes[key]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

// GetOutboundEdges returns the links leaving key.
func (s *Source) GetOutboundEdges(ctx context.Context, key domain.NodeKey) ([]domain.DialogueEdge, error) {
	return append([]domain.DialogueEdge(nil), s.snapshot().edges[key]...), nil
}

// GetCheck returns the skill check attached to key.
func (s *Source) GetCheck(ctx context.Context, key domain.NodeKey) (*domain.SkillCheck, error) {
	c, ok := s.snapshot().checks[key]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetAlternates returns the alternate lines attached to key.
func (s *Source) GetAlternates(ctx context.Context, key domain.NodeKey) ([]domain.Alternate, error) {
	return append([]domain.Alternate(nil), s.snapshot().alternates[key]...), nil
}

// ListConditionalNodes returns the conditional entries of a conversation ordered by dialogue ID.
func (s *Source) ListConditionalNodes(ctx context.Context, conversationID int) ([]domain.DialogueNode, error) {
	return append([]domain.DialogueNode(nil), s.snapshot().conditional[conversationID]...), nil
}

// ListActors returns the distinct actor names, sorted.
func (s *Source) ListActors(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.snapshot().actors...), nil
}

// SearchDialogues returns spoken lines containing keyword (taken literally,
// case-insensitive), optionally restricted to one actor. Lines without a
// speaker are skipped.
func (s *Source) SearchDialogues(ctx context.Context, actor, keyword string) ([]domain.DialogueMatch, error) {
	actor = strings.TrimSpace(actor)
	needle := strings.ToLower(keyword)

	var matches []domain.DialogueMatch
	for _, n := range s.snapshot().lines {
		if n.ActorName == "" {
			continue
		}
		if actor != "" && !strings.EqualFold(strings.TrimSpace(n.ActorName), actor) {
			continue
		}
		if !strings.Contains(strings.ToLower(n.Text), needle) {
			continue
		}
		matches = append(matches, domain.DialogueMatch{Actor: n.ActorName, Dialogue: n.Text})
	}
	return matches, nil
}
