// Package report renders gap reports and career rankings.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/spigell/skillgap/internal/matcher"
)

type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// BandFor buckets a match percentage: below 40 is low, above 75 is high.
func BandFor(score float64) Band {
	switch {
	case score < 40:
		return BandLow
	case score > 75:
		return BandHigh
	default:
		return BandMedium
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

// Envelope adds the match band to a report for structured output.
type Envelope struct {
	matcher.Report `yaml:",inline"`
	Band           Band `json:"band" yaml:"band"`
}

// Write renders r in the requested format.
func Write(w io.Writer, r *matcher.Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, Envelope{Report: *r, Band: BandFor(r.MatchPercentage)})
	case FormatYAML:
		return writeYAML(w, Envelope{Report: *r, Band: BandFor(r.MatchPercentage)})
	case FormatText, "":
		return writeText(w, r)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// WriteCareers renders a discovery ranking.
func WriteCareers(w io.Writer, matches []matcher.CareerMatch, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, matches)
	case FormatYAML:
		return writeYAML(w, matches)
	case FormatText, "":
		return writeCareersText(w, matches)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// ByCategory groups discovery results by archetype category, keeping the
// ranking order inside each group.
func ByCategory(matches []matcher.CareerMatch) map[string][]matcher.CareerMatch {
	grouped := make(map[string][]matcher.CareerMatch)
	for _, m := range matches {
		key := m.Category
		if key == "" {
			key = "uncategorized"
		}
		grouped[key] = append(grouped[key], m)
	}
	return grouped
}

// Encode writes any value as JSON or YAML.
func Encode(w io.Writer, v any, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, v)
	case FormatYAML:
		return writeYAML(w, v)
	default:
		return fmt.Errorf("format %s cannot encode arbitrary values", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return enc.Close()
}

func writeText(w io.Writer, r *matcher.Report) error {
	title := cases.Title(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "%s: %.1f%% (%s)\n", title.String("match"), r.MatchPercentage, BandFor(r.MatchPercentage))

	if info := r.SeniorityInfo; info != nil {
		details := strings.Join(nonEmpty(info.Category, info.Seniority), ", ")
		if details != "" {
			details = " (" + details + ")"
		}
		fmt.Fprintf(&b, "%s: %s%s via %s\n", title.String("detected role"), info.BestRoleDetected, details, info.Strategy)
	}

	line(&b, title.String("matching hard skills"), r.MatchingHard)

	fmt.Fprintf(&b, "%s:", title.String("transferable skills"))
	if len(r.Transferable) == 0 {
		b.WriteString(" -\n")
	} else {
		b.WriteString("\n")
		keys := make([]string, 0, len(r.Transferable))
		for k := range r.Transferable {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s <- %s\n", k, strings.Join(r.Transferable[k], ", "))
		}
	}

	line(&b, title.String("missing hard skills"), r.MissingHard)
	line(&b, title.String("extra hard skills"), r.ExtraHard)
	line(&b, title.String("soft skills stated"), r.SoftStatedStrengths)
	line(&b, title.String("soft skills to verify in interview"), r.SoftInterviewVerified)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeCareersText(w io.Writer, matches []matcher.CareerMatch) error {
	if len(matches) == 0 {
		_, err := io.WriteString(w, "No careers matched.\n")
		return err
	}

	var b strings.Builder
	for i, m := range matches {
		fmt.Fprintf(&b, "%2d. %-32s %5.1f%% (%s)", i+1, m.Role, m.Score, BandFor(m.Score))
		if details := strings.Join(nonEmpty(m.Category, m.Seniority), ", "); details != "" {
			fmt.Fprintf(&b, " [%s]", details)
		}
		b.WriteString("\n")
		if len(m.Missing) > 0 {
			fmt.Fprintf(&b, "    missing: %s\n", strings.Join(m.Missing, ", "))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func line(b *strings.Builder, heading string, values []string) {
	if len(values) == 0 {
		fmt.Fprintf(b, "%s: -\n", heading)
		return
	}
	fmt.Fprintf(b, "%s: %s\n", heading, strings.Join(values, ", "))
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
