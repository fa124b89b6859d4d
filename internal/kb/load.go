package kb

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/skillgap/internal/textnorm"
)

// DefaultSource names the embedded knowledge base.
const DefaultSource = "embedded:default_kb.yaml"

// ErrMalformed is wrapped by every load error caused by bad table content.
var ErrMalformed = errors.New("knowledge base is malformed")

//go:embed default_kb.yaml
var defaultKB []byte

type document struct {
	HardSkills []skillRecord     `mapstructure:"hard_skills" validate:"required,min=1,dive"`
	SoftSkills []skillRecord     `mapstructure:"soft_skills" validate:"dive"`
	Rules      []ruleRecord      `mapstructure:"rules" validate:"dive"`
	Clusters   []clusterRecord   `mapstructure:"clusters" validate:"dive"`
	Archetypes []archetypeRecord `mapstructure:"archetypes" validate:"dive"`
}

type skillRecord struct {
	Name       string   `mapstructure:"name" validate:"required"`
	Variations []string `mapstructure:"variations" validate:"dive,required"`
}

type ruleRecord struct {
	Source  string   `mapstructure:"source" validate:"required"`
	Targets []string `mapstructure:"targets" validate:"required,min=1,dive,required"`
}

type clusterRecord struct {
	Name    string   `mapstructure:"name" validate:"required"`
	Members []string `mapstructure:"members" validate:"required,min=2,dive,required"`
}

type archetypeRecord struct {
	Name       string   `mapstructure:"name" validate:"required"`
	Category   string   `mapstructure:"category"`
	Seniority  string   `mapstructure:"seniority"`
	HardSkills []string `mapstructure:"hard_skills" validate:"dive,required"`
	SoftSkills []string `mapstructure:"soft_skills" validate:"dive,required"`
}

// Default returns the knowledge base embedded in the binary.
func Default(logger *zap.Logger) (*KnowledgeBase, error) {
	return Parse(defaultKB, DefaultSource, logger)
}

// Load reads a YAML (or JSON) knowledge base file.
func Load(path string, logger *zap.Logger) (*KnowledgeBase, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("knowledge base path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base %q: %w", path, err)
	}

	return Parse(data, path, logger)
}

// Parse builds a knowledge base from raw YAML. source is only used for
// messages.
func Parse(data []byte, source string, logger *zap.Logger) (*KnowledgeBase, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: parse yaml: %v", ErrMalformed, source, err)
	}

	var doc document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &doc,
	})
	if err != nil {
		return nil, fmt.Errorf("building decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}

	if err := validator.New().Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMalformed, source, describeValidation(err))
	}

	k, err := build(&doc, source, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, source, err)
	}

	stats := k.Stats()
	logger.Debug("knowledge base loaded",
		zap.String("kb_source", source),
		zap.Int("hard_skills", stats.HardSkills),
		zap.Int("soft_skills", stats.SoftSkills),
		zap.Int("rules", stats.Rules),
		zap.Int("clusters", stats.Clusters),
		zap.Int("archetypes", stats.Archetypes),
	)

	return k, nil
}

func describeValidation(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return fmt.Sprintf("validation error: %s - %s", ve.Namespace(), ve.Tag())
	}
	return err.Error()
}

func build(doc *document, source string, logger *zap.Logger) (*KnowledgeBase, error) {
	k := &KnowledgeBase{
		source:        source,
		hard:          make(map[string]*Skill, len(doc.HardSkills)),
		soft:          make(map[string]*Skill, len(doc.SoftSkills)),
		rules:         make(map[string][]string),
		reverse:       make(map[string][]string),
		clusters:      make(map[string][]string),
		skillClusters: make(map[string][]string),
		archetypes:    make(map[string]*Archetype),
		lookup:        make(map[string]string),
	}

	if err := k.addSkills(doc.HardSkills, KindHard, k.hard); err != nil {
		return nil, err
	}
	if err := k.addSkills(doc.SoftSkills, KindSoft, k.soft); err != nil {
		return nil, err
	}
	k.hardNames = sortedKeys(k.hard)
	k.softNames = sortedKeys(k.soft)

	if err := k.addRules(doc.Rules); err != nil {
		return nil, err
	}
	if err := k.addClusters(doc.Clusters); err != nil {
		return nil, err
	}
	if err := k.addArchetypes(doc.Archetypes, logger); err != nil {
		return nil, err
	}

	k.hardVariations = buildVariationIndex(k.hard, KindHard)
	k.softVariations = buildVariationIndex(k.soft, KindSoft)

	return k, nil
}

func (k *KnowledgeBase) addSkills(records []skillRecord, kind Kind, into map[string]*Skill) error {
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		key := strings.ToLower(name)
		if existing, ok := k.lookup[key]; ok {
			return fmt.Errorf("skill %q is declared more than once (clashes with %q)", name, existing)
		}

		folded := textnorm.Fold(name)
		if folded == "" {
			return fmt.Errorf("skill %q has an empty normalized name", name)
		}

		variations := []string{folded}
		seen := map[string]struct{}{folded: {}}
		for _, v := range rec.Variations {
			fv := textnorm.Fold(v)
			if fv == "" {
				return fmt.Errorf("skill %q has a variation that is empty after normalization", name)
			}
			if _, dup := seen[fv]; dup {
				continue
			}
			seen[fv] = struct{}{}
			variations = append(variations, fv)
		}

		k.lookup[key] = name
		into[name] = &Skill{Name: name, Kind: kind, Variations: variations}
	}
	return nil
}

func (k *KnowledgeBase) addRules(records []ruleRecord) error {
	for _, rec := range records {
		source, ok := k.CanonicalHard(rec.Source)
		if !ok {
			return fmt.Errorf("rule source %q is not a hard skill", rec.Source)
		}

		for _, t := range rec.Targets {
			target, ok := k.CanonicalHard(t)
			if !ok {
				return fmt.Errorf("rule %q targets unknown hard skill %q", source, t)
			}
			if target == source {
				continue
			}
			k.rules[source] = appendUnique(k.rules[source], target)
			k.reverse[target] = appendUnique(k.reverse[target], source)
		}
	}

	for _, table := range []map[string][]string{k.rules, k.reverse} {
		for name := range table {
			sort.Strings(table[name])
		}
	}
	return nil
}

func (k *KnowledgeBase) addClusters(records []clusterRecord) error {
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if _, dup := k.clusters[name]; dup {
			return fmt.Errorf("cluster %q is declared more than once", name)
		}

		members := make([]string, 0, len(rec.Members))
		for _, m := range rec.Members {
			member, ok := k.CanonicalHard(m)
			if !ok {
				return fmt.Errorf("cluster %q lists unknown hard skill %q", name, m)
			}
			members = appendUnique(members, member)
		}
		if len(members) < 2 {
			return fmt.Errorf("cluster %q needs at least two distinct members", name)
		}
		sort.Strings(members)

		k.clusters[name] = members
		k.clusterNames = append(k.clusterNames, name)
		for _, member := range members {
			k.skillClusters[member] = append(k.skillClusters[member], name)
		}
	}

	sort.Strings(k.clusterNames)
	for skill := range k.skillClusters {
		sort.Strings(k.skillClusters[skill])
	}
	return nil
}

func (k *KnowledgeBase) addArchetypes(records []archetypeRecord, logger *zap.Logger) error {
	folded := make(map[string]string)
	for _, rec := range records {
		name := strings.TrimSpace(rec.Name)
		key := textnorm.Fold(name)
		if existing, dup := folded[key]; dup {
			return fmt.Errorf("archetype %q is declared more than once (clashes with %q)", name, existing)
		}
		folded[key] = name

		a := &Archetype{
			Name:      name,
			Category:  strings.TrimSpace(rec.Category),
			Seniority: strings.TrimSpace(rec.Seniority),
		}

		for _, s := range rec.HardSkills {
			skill, ok := k.CanonicalHard(s)
			if !ok {
				skill = strings.TrimSpace(s)
				logger.Warn("archetype references an unknown hard skill; it can never be satisfied",
					zap.String("role", name),
					zap.String("skill", skill),
				)
			}
			a.HardSkills = appendUnique(a.HardSkills, skill)
		}

		for _, s := range rec.SoftSkills {
			skill, ok := k.CanonicalSoft(s)
			if !ok {
				skill = strings.TrimSpace(s)
				logger.Warn("archetype references an unknown soft skill",
					zap.String("role", name),
					zap.String("skill", skill),
				)
			}
			a.SoftSkills = appendUnique(a.SoftSkills, skill)
		}

		k.archetypes[name] = a
		k.archetypeNames = append(k.archetypeNames, name)
	}

	sort.Strings(k.archetypeNames)
	return nil
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
