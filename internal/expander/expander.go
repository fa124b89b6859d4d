// Package expander infers implied hard skills through the knowledge base
// rules.
package expander

import (
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/kb"
	"github.com/spigell/skillgap/internal/logger"
)

// DefaultDepth bounds forward inference. Chains longer than this are cut.
const DefaultDepth = 3

type Option func(*Expander)

// WithDepth sets the forward inference depth. Zero disables inference,
// negative values restore DefaultDepth.
func WithDepth(depth int) Option {
	return func(e *Expander) {
		if depth < 0 {
			depth = DefaultDepth
		}
		e.depth = depth
	}
}

type Expander struct {
	kb     *kb.KnowledgeBase
	depth  int
	logger *zap.Logger
}

func New(base *kb.KnowledgeBase, log *zap.Logger, opts ...Option) *Expander {
	e := &Expander{
		kb:     base,
		depth:  DefaultDepth,
		logger: logger.ForComponent(log, "expander", base.Source()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Expander) Depth() int {
	return e.depth
}

// Expand returns the sorted canonical hard skills held after inference.
// Names that do not resolve to a hard skill are dropped. When bidirectional
// is set, one reverse pass adds the sources of every rule whose target is a
// stated skill, and the added sources are then closed forward.
func (e *Expander) Expand(skills []string, bidirectional bool) []string {
	held := make(map[string]struct{}, len(skills))
	stated := make([]string, 0, len(skills))

	for _, s := range skills {
		name, ok := e.kb.CanonicalHard(s)
		if !ok {
			e.logger.Debug("dropping unknown skill", zap.String("skill", s))
			continue
		}
		if _, seen := held[name]; seen {
			continue
		}
		held[name] = struct{}{}
		stated = append(stated, name)
	}

	e.closeForward(held, stated)

	if bidirectional {
		// Only stated skills are reversed, never inferred ones.
		var added []string
		for _, s := range stated {
			for _, source := range e.kb.Sources(s) {
				if _, seen := held[source]; seen {
					continue
				}
				held[source] = struct{}{}
				added = append(added, source)
			}
		}
		e.closeForward(held, added)
	}

	out := make([]string, 0, len(held))
	for s := range held {
		out = append(out, s)
	}
	sort.Strings(out)

	e.logger.Debug("skills expanded",
		zap.Int("input", len(skills)),
		zap.Int("output", len(out)),
		zap.Bool("bidirectional", bidirectional),
	)

	return out
}

// closeForward follows the rules from frontier for at most depth levels,
// adding every reached skill to held.
func (e *Expander) closeForward(held map[string]struct{}, frontier []string) {
	for level := 0; level < e.depth && len(frontier) > 0; level++ {
		var next []string
		for _, s := range frontier {
			for _, t := range e.kb.Targets(s) {
				if _, seen := held[t]; seen {
					continue
				}
				held[t] = struct{}{}
				next = append(next, t)
			}
		}
		frontier = next
	}
}
