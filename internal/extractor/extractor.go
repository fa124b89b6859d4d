// Package extractor finds canonical skills in free-form text.
package extractor

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/kb"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/textnorm"
)

// Mode hints who wrote the text. Extraction behaves the same in both modes.
type Mode int

const (
	ModeCandidate Mode = iota
	ModeRequirement
)

func (m Mode) String() string {
	switch m {
	case ModeCandidate:
		return "candidate"
	case ModeRequirement:
		return "requirement"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode converts a CLI value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "candidate", "cv":
		return ModeCandidate, nil
	case "requirement", "jd":
		return ModeRequirement, nil
	default:
		return ModeCandidate, fmt.Errorf("unknown extraction mode: %s", s)
	}
}

const previewLength = 80

// Extractor scans text for the surface variations of a knowledge base.
type Extractor struct {
	kb     *kb.KnowledgeBase
	logger *zap.Logger
}

func New(base *kb.KnowledgeBase, log *zap.Logger) *Extractor {
	return &Extractor{
		kb:     base,
		logger: logger.WithFields(log, zap.String(logger.FieldComponent, "extractor")),
	}
}

// Extract returns the sorted canonical hard and soft skills found in text.
func (e *Extractor) Extract(text string, mode Mode) ([]string, []string) {
	folded := textnorm.Fold(text)
	if folded == "" {
		return []string{}, []string{}
	}

	hard := sortedSet(scan(folded, e.kb.Variations(kb.KindHard)))
	soft := sortedSet(scan(folded, e.kb.Variations(kb.KindSoft)))

	e.logger.Debug("skills extracted",
		zap.Stringer("mode", mode),
		zap.String("text_preview", logger.TruncateForLog(folded, previewLength)),
		zap.Strings("hard", hard),
		zap.Strings("soft", soft),
	)

	return hard, soft
}

// scan tests variations longest first. Each valid occurrence is blanked out
// so shorter variations cannot fire inside a phrase that already matched.
func scan(folded string, variations []kb.Variation) map[string]struct{} {
	buf := []byte(folded)
	found := make(map[string]struct{})

	for _, v := range variations {
		hits := occurrences(buf, v.Text)
		if len(hits) == 0 {
			continue
		}

		for _, owner := range v.Owners {
			found[owner] = struct{}{}
		}
		for _, at := range hits {
			for i := at; i < at+len(v.Text); i++ {
				buf[i] = ' '
			}
		}
	}

	return found
}

func occurrences(buf []byte, pattern string) []int {
	if pattern == "" {
		return nil
	}

	needle := []byte(pattern)
	var hits []int
	for from := 0; from < len(buf); {
		idx := bytes.Index(buf[from:], needle)
		if idx < 0 {
			break
		}

		at := from + idx
		end := at + len(needle)
		if bounded(buf, at, end, pattern) {
			hits = append(hits, at)
			from = end
			continue
		}

		_, size := utf8.DecodeRune(buf[at:])
		from = at + size
	}

	return hits
}

// bounded checks the runes around buf[at:end]. A side whose pattern rune is a
// word rune needs a non-word neighbour or the text edge. A side whose pattern
// rune is a symbol ("c++", ".net", "c#") is not constrained.
func bounded(buf []byte, at, end int, pattern string) bool {
	first, _ := utf8.DecodeRuneInString(pattern)
	if textnorm.IsWordRune(first) && at > 0 {
		prev, _ := utf8.DecodeLastRune(buf[:at])
		if textnorm.IsWordRune(prev) {
			return false
		}
	}

	last, _ := utf8.DecodeLastRuneInString(pattern)
	if textnorm.IsWordRune(last) && end < len(buf) {
		next, _ := utf8.DecodeRune(buf[end:])
		if textnorm.IsWordRune(next) {
			return false
		}
	}

	return true
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
