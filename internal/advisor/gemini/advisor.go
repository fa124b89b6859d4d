package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/advisor"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/matcher"
)

const (
	systemInstruction   = "You write concise, practical learning plans. Answer with JSON only."
	defaultMaxLogLength = 200
	maxPriority         = 5
)

//go:embed prompt.md
var promptTemplate string

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

type Advisor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ advisor.Advisor = (*Advisor)(nil)

func NewAdvisor(generator contentGenerator, log *zap.Logger, maxLogLength int) *Advisor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Advisor{
		generator: generator,
		logger:    logger.WithFields(log, logger.AdvisorFields(Provider, generator.Model())...),
		maxLogLen: maxLogLength,
	}
}

// Advise asks the model for a learning plan covering the gaps in report.
func (a *Advisor) Advise(ctx context.Context, report *matcher.Report) (*advisor.Plan, error) {
	if report == nil {
		return nil, errors.New("gap report is required")
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal gap report: %w", err)
	}

	prompt := buildPrompt(string(payload))

	a.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, a.maxLogLen)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction, prompt)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, a.maxLogLen)),
	)

	plan, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	plan.Raw = raw
	return plan, nil
}

func buildPrompt(reportJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Gap report:\n{{REPORT_JSON}}\n\nJSON learning plan:"
	}
	return strings.ReplaceAll(template, "{{REPORT_JSON}}", reportJSON)
}

func parseResponse(raw string) (*advisor.Plan, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	plan := &advisor.Plan{
		Summary: coerceString(data["summary"]),
		Steps:   []advisor.Step{},
	}

	items, _ := data["steps"].([]any)
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}

		step := advisor.Step{
			Skill:  coerceString(fields["skill"]),
			Action: coerceString(fields["action"]),
		}
		if step.Skill == "" && step.Action == "" {
			continue
		}

		priority := coerceFloat(fields["priority"])
		if math.IsNaN(priority) {
			priority = maxPriority
		}
		step.Priority = int(math.Max(1, math.Min(maxPriority, math.Round(priority))))

		plan.Steps = append(plan.Steps, step)
	}

	sort.SliceStable(plan.Steps, func(i, j int) bool {
		return plan.Steps[i].Priority < plan.Steps[j].Priority
	})

	return plan, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
