package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/batch"
	"github.com/spigell/skillgap/internal/engine"
	"github.com/spigell/skillgap/internal/matcher"
	"github.com/spigell/skillgap/internal/report"
)

// roleAnalyzer scores every résumé against one resolved archetype.
type roleAnalyzer struct {
	engine *engine.Engine
	role   string
}

func (r roleAnalyzer) AnalyzeGap(cvText, _ string) *matcher.Report {
	gap, _ := r.engine.AnalyzeRole(cvText, r.role)
	return gap
}

var batchCmd = &cobra.Command{
	Use:   "batch [flags] CV...",
	Short: "Analyze many résumés against one job description or role",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().String("jd", "", "job description text file")
	batchCmd.Flags().String("role", "", "job title to compare against instead of a job description")
	batchCmd.Flags().String("out", "", "where to dump the json results (default is a temporary file)")
	batchCmd.Flags().IntP("limit", "l", batch.DefaultLimit, "how many résumés to analyze at once")

	batchCmd.MarkFlagsMutuallyExclusive("jd", "role")
	batchCmd.MarkFlagsOneRequired("jd", "role")
}

func runBatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, _, e := bootstrap()

	candidates, err := batch.LoadCandidates(args)
	if err != nil {
		logger.Fatal("loading résumés", zap.Error(err))
	}

	var (
		analyzer    batch.Analyzer = e
		requirement string
	)

	if role := strings.TrimSpace(cmd.Flag("role").Value.String()); role != "" {
		resolution, ok := e.ResolveRole(role)
		if !ok {
			logger.Fatal("role not found",
				zap.String("role", role),
				zap.Strings("known roles", e.KB().ArchetypeNames()),
			)
		}
		logger.Info("role resolved", zap.String("role", resolution.Role), zap.String("strategy", resolution.Strategy))
		analyzer = roleAnalyzer{engine: e, role: resolution.Role}
		requirement = resolution.Role
	} else {
		requirement, err = readText(cmd.Flag("jd").Value.String())
		if err != nil {
			logger.Fatal("reading the job description", zap.Error(err))
		}
	}

	limit, _ := cmd.Flags().GetInt("limit")
	results, err := batch.Run(ctx, analyzer, requirement, candidates, limit, logger)
	if err != nil {
		logger.Fatal("running the batch", zap.Error(err))
	}

	filename, err := results.DumpToFile(cmd.Flag("out").Value.String())
	if err != nil {
		logger.Fatal("dumping results to file", zap.Error(err))
	}
	logger.Info("dumping results to file", zap.String("filename", filename), zap.Int("candidates", len(results.Items)))

	for _, item := range results.Items {
		fmt.Printf("%-40s %5.1f%% (%s)\n", item.Candidate, item.Report.MatchPercentage, report.BandFor(item.Report.MatchPercentage))
	}

	if best := results.Best(); best != nil {
		logger.Info("best candidate", zap.String("candidate", best.Candidate), zap.Float64("match_percentage", best.Report.MatchPercentage))
	}
}
