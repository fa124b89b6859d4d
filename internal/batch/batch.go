// Package batch analyzes many résumés against one requirement.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/matcher"
)

// DefaultLimit caps concurrent analyses when the caller passes no limit.
const DefaultLimit = 4

// Analyzer is the part of the engine batch needs.
type Analyzer interface {
	AnalyzeGap(cvText, jdText string) *matcher.Report
}

type Candidate struct {
	Name string `json:"name"`
	Text string `json:"-"`
}

type Result struct {
	Candidate string          `json:"candidate"`
	Report    *matcher.Report `json:"report"`
}

type Results struct {
	Requirement string    `json:"requirement"`
	Items       []*Result `json:"items"`
}

// Run analyzes every candidate, at most limit at a time. Results keep the
// input order. Cancelling ctx stops items that have not started yet.
func Run(ctx context.Context, a Analyzer, jdText string, candidates []Candidate, limit int, log *zap.Logger) (*Results, error) {
	log = logger.WithFields(log, zap.String(logger.FieldComponent, "batch"))
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := &Results{
		Requirement: logger.TruncateForLog(jdText, 120),
		Items:       make([]*Result, len(candidates)),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, c := range candidates {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			report := a.AnalyzeGap(c.Text, jdText)
			results.Items[i] = &Result{Candidate: c.Name, Report: report}

			log.Debug("candidate analyzed",
				zap.String(logger.FieldCandidate, c.Name),
				zap.Float64("match_percentage", report.MatchPercentage),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch analysis: %w", err)
	}

	return results, nil
}

// LoadCandidates reads résumé files. The candidate name is the file name.
func LoadCandidates(paths []string) ([]Candidate, error) {
	candidates := make([]Candidate, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading cv %q: %w", p, err)
		}
		candidates = append(candidates, Candidate{Name: filepath.Base(p), Text: string(data)})
	}
	return candidates, nil
}

// Best returns the highest scoring result, or nil when there are none.
func (r *Results) Best() *Result {
	var best *Result
	for _, item := range r.Items {
		if item == nil {
			continue
		}
		if best == nil || item.Report.MatchPercentage > best.Report.MatchPercentage {
			best = item
		}
	}
	return best
}

// DumpToFile writes the results as indented JSON. An empty path creates a
// temporary file. The written path is returned.
func (r *Results) DumpToFile(path string) (string, error) {
	var (
		file *os.File
		err  error
	)

	if strings.TrimSpace(path) == "" {
		file, err = os.CreateTemp("", "skillgap_batch_*.json")
	} else {
		file, err = os.Create(path)
	}
	if err != nil {
		return "", err
	}

	if err := r.encodeTo(file); err != nil {
		return "", fmt.Errorf("writing %q: %w", file.Name(), err)
	}
	return file.Name(), nil
}

// encodeTo writes r to w and closes it, reporting a failed close.
func (r *Results) encodeTo(w io.WriteCloser) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		w.Close()
		return fmt.Errorf("encoding batch results: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing batch results: %w", err)
	}
	return nil
}
