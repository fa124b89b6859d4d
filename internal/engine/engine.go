// Package engine wires the extractor, expander and matcher over one
// immutable knowledge base. An Engine holds no mutable state and is safe for
// concurrent use.
package engine

import (
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/expander"
	"github.com/spigell/skillgap/internal/extractor"
	"github.com/spigell/skillgap/internal/kb"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/matcher"
)

type Config struct {
	// InferenceDepth bounds forward rule chains. Zero disables inference.
	InferenceDepth int
	// SimilarityCutoff is the minimum ratio for approximate role lookup.
	SimilarityCutoff float64
}

func DefaultConfig() Config {
	return Config{
		InferenceDepth:   expander.DefaultDepth,
		SimilarityCutoff: matcher.DefaultSimilarityCutoff,
	}
}

type Engine struct {
	kb        *kb.KnowledgeBase
	extractor *extractor.Extractor
	expander  *expander.Expander
	matcher   *matcher.Matcher
	resolver  *matcher.Resolver
}

func New(base *kb.KnowledgeBase, log *zap.Logger, cfg Config) *Engine {
	log = logger.WithFields(log, zap.String(logger.FieldKBSource, base.Source()))

	ext := extractor.New(base, log)
	exp := expander.New(base, log, expander.WithDepth(cfg.InferenceDepth))
	res := matcher.NewResolver(log, matcher.DefaultStrategies(cfg.SimilarityCutoff)...)

	if depth := base.Stats().MaxInferenceDepth; depth > exp.Depth() {
		log.Warn("rule chains are longer than the inference depth; expansion is not idempotent",
			zap.Int("max_inference_depth", depth),
			zap.Int("inference_depth", exp.Depth()),
		)
	}

	return &Engine{
		kb:        base,
		extractor: ext,
		expander:  exp,
		matcher:   matcher.New(base, ext, exp, res, log),
		resolver:  res,
	}
}

// NewDefault builds an engine over the embedded knowledge base.
func NewDefault(log *zap.Logger) (*Engine, error) {
	base, err := kb.Default(log)
	if err != nil {
		return nil, err
	}
	return New(base, log, DefaultConfig()), nil
}

func (e *Engine) KB() *kb.KnowledgeBase {
	return e.kb
}

func (e *Engine) ExtractSkills(text string, mode extractor.Mode) ([]string, []string) {
	return e.extractor.Extract(text, mode)
}

func (e *Engine) ExpandSkills(skills []string, bidirectional bool) []string {
	return e.expander.Expand(skills, bidirectional)
}

func (e *Engine) AnalyzeGap(cvText, jdText string) *matcher.Report {
	return e.matcher.AnalyzeGap(cvText, jdText)
}

// AnalyzeRole scores cvText against the archetype role resolves to.
func (e *Engine) AnalyzeRole(cvText, role string) (*matcher.Report, bool) {
	return e.matcher.AnalyzeRole(cvText, role)
}

func (e *Engine) DiscoverCareers(cvText string) []matcher.CareerMatch {
	return e.matcher.DiscoverCareers(cvText)
}

// Strategies describes the role lookup strategies in evaluation order.
func (e *Engine) Strategies() []matcher.Status {
	return e.resolver.Describe()
}

// ResolveRole maps a job title onto an archetype name.
func (e *Engine) ResolveRole(title string) (matcher.Resolution, bool) {
	return e.resolver.Resolve(title, e.kb.ArchetypeNames())
}
