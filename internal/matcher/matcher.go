// Package matcher compares candidate skills with a requirement and ranks job
// archetypes against a résumé.
package matcher

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/expander"
	"github.com/spigell/skillgap/internal/extractor"
	"github.com/spigell/skillgap/internal/kb"
	"github.com/spigell/skillgap/internal/logger"
)

// Hit weights used by the gap score.
const (
	DirectWeight       = 1.0
	TransferableWeight = 0.5
)

const previewLength = 80

// SeniorityInfo is set when the requirement came from a job archetype.
type SeniorityInfo struct {
	BestRoleDetected string `json:"best_role_detected" yaml:"best_role_detected"`
	Strategy         string `json:"strategy" yaml:"strategy"`
	Category         string `json:"category,omitempty" yaml:"category,omitempty"`
	Seniority        string `json:"seniority,omitempty" yaml:"seniority,omitempty"`
}

// Report is the result of a gap analysis. Every slice is sorted and free of
// duplicates.
type Report struct {
	MatchPercentage       float64             `json:"match_percentage" yaml:"match_percentage"`
	MatchingHard          []string            `json:"matching_hard" yaml:"matching_hard"`
	Transferable          map[string][]string `json:"transferable" yaml:"transferable"`
	MissingHard           []string            `json:"missing_hard" yaml:"missing_hard"`
	ExtraHard             []string            `json:"extra_hard" yaml:"extra_hard"`
	SoftStatedStrengths   []string            `json:"soft_stated_strengths" yaml:"soft_stated_strengths"`
	SoftInterviewVerified []string            `json:"soft_interview_verified" yaml:"soft_interview_verified"`
	SeniorityInfo         *SeniorityInfo      `json:"seniority_info,omitempty" yaml:"seniority_info,omitempty"`
}

// CareerMatch is one ranked archetype from career discovery.
type CareerMatch struct {
	Role      string   `json:"role" yaml:"role"`
	Score     float64  `json:"score" yaml:"score"`
	Matched   []string `json:"matched" yaml:"matched"`
	Missing   []string `json:"missing" yaml:"missing"`
	Category  string   `json:"category,omitempty" yaml:"category,omitempty"`
	Seniority string   `json:"seniority,omitempty" yaml:"seniority,omitempty"`
}

type Matcher struct {
	kb        *kb.KnowledgeBase
	extractor *extractor.Extractor
	expander  *expander.Expander
	resolver  *Resolver
	logger    *zap.Logger
}

func New(base *kb.KnowledgeBase, ext *extractor.Extractor, exp *expander.Expander, res *Resolver, log *zap.Logger) *Matcher {
	if res == nil {
		res = NewResolver(log)
	}

	return &Matcher{
		kb:        base,
		extractor: ext,
		expander:  exp,
		resolver:  res,
		logger:    logger.ForComponent(log, "matcher", base.Source()),
	}
}

// AnalyzeGap scores a résumé against a job description. When the description
// names no hard skill it is treated as a role title and resolved to an
// archetype.
func (m *Matcher) AnalyzeGap(cvText, jdText string) *Report {
	cvHard, cvSoft := m.extractor.Extract(cvText, extractor.ModeCandidate)
	held := m.expander.Expand(cvHard, false)

	required, jdSoft := m.extractor.Extract(jdText, extractor.ModeRequirement)

	var info *SeniorityInfo
	if len(required) == 0 {
		resolution, ok := m.resolver.Resolve(jdText, m.kb.ArchetypeNames())
		if ok {
			archetype, _ := m.kb.Archetype(resolution.Role)
			required = archetype.HardSkills
			if len(jdSoft) == 0 {
				jdSoft = archetype.SoftSkills
			}
			info = seniorityInfo(archetype, resolution.Strategy)
		} else {
			m.logger.Debug("requirement has no skills and no matching role",
				zap.String("jd_preview", logger.TruncateForLog(jdText, previewLength)),
			)
		}
	}

	report := m.score(required, held, cvHard, cvSoft, jdSoft)
	report.SeniorityInfo = info
	return report
}

// AnalyzeRole scores a résumé against the archetype that role resolves to.
// It reports false when no archetype matches.
func (m *Matcher) AnalyzeRole(cvText, role string) (*Report, bool) {
	resolution, ok := m.resolver.Resolve(role, m.kb.ArchetypeNames())
	if !ok {
		return nil, false
	}

	archetype, _ := m.kb.Archetype(resolution.Role)
	cvHard, cvSoft := m.extractor.Extract(cvText, extractor.ModeCandidate)
	held := m.expander.Expand(cvHard, false)

	report := m.score(archetype.HardSkills, held, cvHard, cvSoft, archetype.SoftSkills)
	report.SeniorityInfo = seniorityInfo(archetype, resolution.Strategy)
	return report, true
}

// DiscoverCareers ranks every archetype by the share of its hard skills the
// résumé covers after bidirectional inference.
func (m *Matcher) DiscoverCareers(cvText string) []CareerMatch {
	cvHard, _ := m.extractor.Extract(cvText, extractor.ModeCandidate)
	held := toSet(m.expander.Expand(cvHard, true))

	matches := make([]CareerMatch, 0, len(m.kb.ArchetypeNames()))
	for _, name := range m.kb.ArchetypeNames() {
		archetype, _ := m.kb.Archetype(name)
		required := dedupe(archetype.HardSkills)
		if len(required) == 0 {
			continue
		}

		matched := []string{}
		missing := []string{}
		for _, skill := range required {
			if _, ok := held[skill]; ok {
				matched = append(matched, skill)
			} else {
				missing = append(missing, skill)
			}
		}

		matches = append(matches, CareerMatch{
			Role:      name,
			Score:     round1(float64(len(matched)) / float64(len(required)) * 100),
			Matched:   matched,
			Missing:   missing,
			Category:  archetype.Category,
			Seniority: archetype.Seniority,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Role < matches[j].Role
	})

	m.logger.Debug("careers discovered", zap.Int("archetypes", len(matches)), zap.Int("held", len(held)))
	return matches
}

func (m *Matcher) score(required, held, cvHard, cvSoft, jdSoft []string) *Report {
	report := emptyReport()

	required = dedupe(required)
	if len(required) == 0 {
		return report
	}

	heldSet := toSet(held)
	total := 0.0
	for _, skill := range required {
		if !m.kb.IsHard(skill) {
			m.logger.Warn("required skill is not in the knowledge base; counting it as missing",
				zap.String("skill", skill),
			)
			report.MissingHard = append(report.MissingHard, skill)
			continue
		}

		if _, ok := heldSet[skill]; ok {
			report.MatchingHard = append(report.MatchingHard, skill)
			total += DirectWeight
			continue
		}

		if peers := m.heldPeers(skill, heldSet); len(peers) > 0 {
			report.Transferable[skill] = peers
			total += TransferableWeight
			continue
		}

		report.MissingHard = append(report.MissingHard, skill)
	}

	report.MatchPercentage = round1(total / float64(len(required)) * 100)
	report.ExtraHard = difference(cvHard, toSet(required))

	jdSoft = dedupe(jdSoft)
	cvSoftSet := toSet(cvSoft)
	for _, skill := range jdSoft {
		if _, ok := cvSoftSet[skill]; ok {
			report.SoftStatedStrengths = append(report.SoftStatedStrengths, skill)
		} else {
			report.SoftInterviewVerified = append(report.SoftInterviewVerified, skill)
		}
	}

	m.logger.Debug("gap analyzed",
		zap.Float64("match_percentage", report.MatchPercentage),
		zap.Int("required", len(required)),
		zap.Int("matching", len(report.MatchingHard)),
		zap.Int("transferable", len(report.Transferable)),
		zap.Int("missing", len(report.MissingHard)),
	)

	return report
}

// heldPeers collects held members of every cluster that contains skill.
func (m *Matcher) heldPeers(skill string, held map[string]struct{}) []string {
	peers := make(map[string]struct{})
	for _, cluster := range m.kb.ClustersOf(skill) {
		for _, member := range m.kb.ClusterMembers(cluster) {
			if member == skill {
				continue
			}
			if _, ok := held[member]; ok {
				peers[member] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(peers))
	for p := range peers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func seniorityInfo(a kb.Archetype, strategy string) *SeniorityInfo {
	return &SeniorityInfo{
		BestRoleDetected: a.Name,
		Strategy:         strategy,
		Category:         a.Category,
		Seniority:        a.Seniority,
	}
}

func emptyReport() *Report {
	return &Report{
		MatchingHard:          []string{},
		Transferable:          map[string][]string{},
		MissingHard:           []string{},
		ExtraHard:             []string{},
		SoftStatedStrengths:   []string{},
		SoftInterviewVerified: []string{},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func toSet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[s] = struct{}{}
	}
	return set
}

// dedupe returns a sorted copy of list without duplicates.
func dedupe(list []string) []string {
	set := toSet(list)
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func difference(list []string, exclude map[string]struct{}) []string {
	out := []string{}
	for _, s := range dedupe(list) {
		if _, ok := exclude[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}
