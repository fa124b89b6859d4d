package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spigell/skillgap/internal/advisor"
	"github.com/spigell/skillgap/internal/matcher"
)

// WritePlan renders a learning plan.
func WritePlan(w io.Writer, plan *advisor.Plan, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, plan)
	case FormatYAML:
		return writeYAML(w, plan)
	case FormatText, "":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	var b strings.Builder
	b.WriteString("\nLearning Plan\n")
	if plan.Summary != "" {
		fmt.Fprintf(&b, "%s\n", plan.Summary)
	}
	for i, step := range plan.Steps {
		fmt.Fprintf(&b, "%d. [p%d] %s: %s\n", i+1, step.Priority, step.Skill, step.Action)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteGrouped renders discovery results grouped by category.
func WriteGrouped(w io.Writer, grouped map[string][]matcher.CareerMatch, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, grouped)
	case FormatYAML:
		return writeYAML(w, grouped)
	case FormatText, "":
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	categories := make([]string, 0, len(grouped))
	for c := range grouped {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		if _, err := fmt.Fprintf(w, "== %s ==\n", c); err != nil {
			return err
		}
		if err := writeCareersText(w, grouped[c]); err != nil {
			return err
		}
	}
	return nil
}
