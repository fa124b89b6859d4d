// Package kb holds the static skill knowledge base: the hard and soft skill
// catalogs, inference rules, transferability clusters and job archetypes.
//
// A KnowledgeBase is built once by Load, Parse or Default and is read-only
// afterwards, so it can be shared by any number of goroutines.
package kb

import (
	"sort"
	"strings"
)

// Kind tells a hard skill from a soft one.
type Kind string

const (
	KindHard Kind = "hard"
	KindSoft Kind = "soft"
)

// Skill is a canonical skill with its folded surface variations.
// The folded canonical name is always the first variation.
type Skill struct {
	Name       string
	Kind       Kind
	Variations []string
}

// Archetype is a named job role with its required skills.
type Archetype struct {
	Name       string
	Category   string
	Seniority  string
	HardSkills []string
	SoftSkills []string
}

// Variation is a folded surface form and every canonical skill that owns it.
type Variation struct {
	Text   string
	Kind   Kind
	Owners []string
}

// KnowledgeBase is the immutable, indexed form of the skill tables.
type KnowledgeBase struct {
	source string

	hard      map[string]*Skill
	soft      map[string]*Skill
	hardNames []string
	softNames []string

	rules   map[string][]string
	reverse map[string][]string

	clusters      map[string][]string
	clusterNames  []string
	skillClusters map[string][]string

	archetypes     map[string]*Archetype
	archetypeNames []string

	// lower-cased name -> canonical name, for both catalogs.
	lookup map[string]string

	hardVariations []Variation
	softVariations []Variation
}

// Source describes where the tables were loaded from.
func (k *KnowledgeBase) Source() string {
	return k.source
}

// HardSkills returns canonical hard skill names mapped to their variations.
func (k *KnowledgeBase) HardSkills() map[string][]string {
	return copySkills(k.hard)
}

// SoftSkills returns canonical soft skill names mapped to their variations.
func (k *KnowledgeBase) SoftSkills() map[string][]string {
	return copySkills(k.soft)
}

// Rules returns the inference rules as source -> targets.
func (k *KnowledgeBase) Rules() map[string][]string {
	return copyTable(k.rules)
}

// Clusters returns the transferability clusters as name -> members.
func (k *KnowledgeBase) Clusters() map[string][]string {
	return copyTable(k.clusters)
}

// Archetypes returns the job archetypes keyed by role name.
func (k *KnowledgeBase) Archetypes() map[string]Archetype {
	out := make(map[string]Archetype, len(k.archetypes))
	for name, a := range k.archetypes {
		out[name] = a.clone()
	}
	return out
}

// ArchetypeNames returns the role names in a stable order.
func (k *KnowledgeBase) ArchetypeNames() []string {
	return append([]string(nil), k.archetypeNames...)
}

// Archetype looks a role up by its exact name.
func (k *KnowledgeBase) Archetype(name string) (Archetype, bool) {
	a, ok := k.archetypes[name]
	if !ok {
		return Archetype{}, false
	}
	return a.clone(), true
}

// Canonical resolves any casing of a skill name to its catalog spelling.
func (k *KnowledgeBase) Canonical(name string) (string, Kind, bool) {
	canonical, ok := k.lookup[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", "", false
	}
	if _, hard := k.hard[canonical]; hard {
		return canonical, KindHard, true
	}
	return canonical, KindSoft, true
}

// CanonicalHard is Canonical restricted to the hard catalog.
func (k *KnowledgeBase) CanonicalHard(name string) (string, bool) {
	canonical, kind, ok := k.Canonical(name)
	if !ok || kind != KindHard {
		return "", false
	}
	return canonical, true
}

// CanonicalSoft is Canonical restricted to the soft catalog.
func (k *KnowledgeBase) CanonicalSoft(name string) (string, bool) {
	canonical, kind, ok := k.Canonical(name)
	if !ok || kind != KindSoft {
		return "", false
	}
	return canonical, true
}

// IsHard reports whether name is exactly a canonical hard skill.
func (k *KnowledgeBase) IsHard(name string) bool {
	_, ok := k.hard[name]
	return ok
}

// Targets returns the skills implied by name. The slice must not be modified.
func (k *KnowledgeBase) Targets(name string) []string {
	return k.rules[name]
}

// Sources returns the skills whose rules imply name. The slice must not be modified.
func (k *KnowledgeBase) Sources(name string) []string {
	return k.reverse[name]
}

// ClustersOf returns the names of the clusters containing skill.
func (k *KnowledgeBase) ClustersOf(skill string) []string {
	return k.skillClusters[skill]
}

// ClusterMembers returns the members of the named cluster.
func (k *KnowledgeBase) ClusterMembers(name string) []string {
	return k.clusters[name]
}

// Variations returns the surface forms of one catalog, longest first.
// The slice must not be modified.
func (k *KnowledgeBase) Variations(kind Kind) []Variation {
	if kind == KindSoft {
		return k.softVariations
	}
	return k.hardVariations
}

func (a *Archetype) clone() Archetype {
	return Archetype{
		Name:       a.Name,
		Category:   a.Category,
		Seniority:  a.Seniority,
		HardSkills: append([]string(nil), a.HardSkills...),
		SoftSkills: append([]string(nil), a.SoftSkills...),
	}
}

func copySkills(in map[string]*Skill) map[string][]string {
	out := make(map[string][]string, len(in))
	for name, s := range in {
		out[name] = append([]string(nil), s.Variations...)
	}
	return out
}

func copyTable(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// buildVariationIndex groups variations by text and orders them longest
// first, so multi-word phrases are tested before the words inside them.
func buildVariationIndex(skills map[string]*Skill, kind Kind) []Variation {
	owners := make(map[string][]string)
	for _, name := range sortedKeys(skills) {
		for _, v := range skills[name].Variations {
			owners[v] = append(owners[v], name)
		}
	}

	index := make([]Variation, 0, len(owners))
	for text, names := range owners {
		index = append(index, Variation{Text: text, Kind: kind, Owners: names})
	}

	sort.Slice(index, func(i, j int) bool {
		if len(index[i].Text) != len(index[j].Text) {
			return len(index[i].Text) > len(index[j].Text)
		}
		return index[i].Text < index[j].Text
	})

	return index
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
