// Package advisor turns a gap report into a learning plan.
package advisor

import (
	"context"

	"github.com/spigell/skillgap/internal/matcher"
)

type Step struct {
	Skill    string `json:"skill" yaml:"skill"`
	Action   string `json:"action" yaml:"action"`
	Priority int    `json:"priority" yaml:"priority"`
}

type Plan struct {
	Summary string `json:"summary" yaml:"summary"`
	Steps   []Step `json:"steps" yaml:"steps"`
	Raw     string `json:"-" yaml:"-"`
}

type Advisor interface {
	Advise(ctx context.Context, report *matcher.Report) (*Plan, error)
}
