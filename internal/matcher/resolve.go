package matcher

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/textnorm"
)

const (
	// DefaultSimilarityCutoff is the lowest similarity ratio accepted as a role match.
	DefaultSimilarityCutoff = 0.6

	minContainmentLength = 3
)

// Strategy maps a folded query onto one of the role names.
type Strategy interface {
	Name() string
	Resolve(query string, roles []string) (string, bool)
}

// Resolution is the role a query resolved to and the strategy that found it.
type Resolution struct {
	Role     string
	Strategy string
}

// Status describes a configured strategy.
type Status struct {
	Name    string            `json:"name" yaml:"name"`
	Details map[string]string `json:"details,omitempty" yaml:"details,omitempty"`
}

// statusProvider is implemented by strategies with tunable settings.
type statusProvider interface {
	Status() Status
}

// Resolver tries its strategies in order and stops at the first hit.
type Resolver struct {
	strategies []Strategy
	logger     *zap.Logger
}

// DefaultStrategies returns similarity, containment and token overlap, in that order.
func DefaultStrategies(cutoff float64) []Strategy {
	return []Strategy{
		NewSimilarityStrategy(cutoff),
		containmentStrategy{},
		tokenOverlapStrategy{},
	}
}

// NewResolver builds a resolver. Without strategies it uses DefaultStrategies
// with DefaultSimilarityCutoff.
func NewResolver(log *zap.Logger, strategies ...Strategy) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies(DefaultSimilarityCutoff)
	}

	return &Resolver{
		strategies: strategies,
		logger:     logger.WithFields(log, zap.String(logger.FieldComponent, "resolver")),
	}
}

// Describe reports the strategies in evaluation order.
func (r *Resolver) Describe() []Status {
	statuses := make([]Status, 0, len(r.strategies))
	for _, s := range r.strategies {
		if reporter, ok := s.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{Name: s.Name()})
	}
	return statuses
}

func (r *Resolver) Resolve(query string, roles []string) (Resolution, bool) {
	folded := textnorm.Fold(query)
	if folded == "" || len(roles) == 0 {
		return Resolution{}, false
	}

	for _, s := range r.strategies {
		role, ok := s.Resolve(folded, roles)
		if !ok {
			r.logger.Debug("strategy did not resolve", zap.String(logger.FieldStrategy, s.Name()))
			continue
		}

		r.logger.Debug("role resolved",
			zap.String(logger.FieldStrategy, s.Name()),
			zap.String(logger.FieldRole, role),
			zap.String("query", logger.TruncateForLog(folded, previewLength)),
		)
		return Resolution{Role: role, Strategy: s.Name()}, true
	}

	r.logger.Debug("no role resolved", zap.String("query", logger.TruncateForLog(folded, previewLength)))
	return Resolution{}, false
}

type similarityStrategy struct {
	cutoff float64
}

// NewSimilarityStrategy matches on the sequence similarity ratio between the
// query and a role name. Values outside (0, 1] fall back to
// DefaultSimilarityCutoff.
func NewSimilarityStrategy(cutoff float64) Strategy {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = DefaultSimilarityCutoff
	}
	return similarityStrategy{cutoff: cutoff}
}

func (similarityStrategy) Name() string { return "similarity" }

func (s similarityStrategy) Status() Status {
	return Status{
		Name:    s.Name(),
		Details: map[string]string{"cutoff": strconv.FormatFloat(s.cutoff, 'f', 2, 64)},
	}
}

func (s similarityStrategy) Resolve(query string, roles []string) (string, bool) {
	best, bestRatio := "", 0.0
	q := strings.Split(query, "")

	for _, role := range sortedCopy(roles) {
		ratio := difflib.NewMatcher(q, strings.Split(textnorm.Fold(role), "")).Ratio()
		if ratio < s.cutoff {
			continue
		}
		if ratio > bestRatio {
			best, bestRatio = role, ratio
		}
	}

	return best, best != ""
}

type containmentStrategy struct{}

func (containmentStrategy) Name() string { return "containment" }

func (containmentStrategy) Resolve(query string, roles []string) (string, bool) {
	if utf8.RuneCountInString(query) < minContainmentLength {
		return "", false
	}

	best, bestLen := "", 0
	for _, role := range sortedCopy(roles) {
		name := textnorm.Fold(role)
		if name == "" || !(strings.Contains(name, query) || strings.Contains(query, name)) {
			continue
		}
		if n := utf8.RuneCountInString(name); n > bestLen {
			best, bestLen = role, n
		}
	}

	return best, best != ""
}

type tokenOverlapStrategy struct{}

func (tokenOverlapStrategy) Name() string { return "token_overlap" }

func (tokenOverlapStrategy) Resolve(query string, roles []string) (string, bool) {
	words := make(map[string]struct{})
	for _, tok := range textnorm.Tokens(query) {
		words[tok] = struct{}{}
	}

	best, bestCount := "", 0
	for _, role := range sortedCopy(roles) {
		count := 0
		seen := make(map[string]struct{})
		for _, tok := range textnorm.Tokens(role) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			if _, ok := words[tok]; ok {
				count++
			}
		}
		if count > bestCount {
			best, bestCount = role, count
		}
	}

	return best, best != ""
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
