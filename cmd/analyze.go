package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/engine"
	"github.com/spigell/skillgap/internal/matcher"
	"github.com/spigell/skillgap/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare a résumé with a job description or a role title",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("cv", "", "résumé text file, '-' for stdin")
	analyzeCmd.Flags().String("jd", "", "job description text file, '-' for stdin")
	analyzeCmd.Flags().String("role", "", "job title to compare against instead of a job description")
	analyzeCmd.Flags().StringP("format", "o", "text", "output format: text, json or yaml")
	analyzeCmd.Flags().Bool("advise", false, "ask the advisor for a learning plan")

	analyzeCmd.MarkFlagRequired("cv")
	analyzeCmd.MarkFlagsMutuallyExclusive("jd", "role")
	analyzeCmd.MarkFlagsOneRequired("jd", "role")
}

func analyze(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config, e := bootstrap()

	format, err := report.ParseFormat(cmd.Flag("format").Value.String())
	if err != nil {
		logger.Fatal("parsing output format", zap.Error(err))
	}

	cvText, err := readText(cmd.Flag("cv").Value.String())
	if err != nil {
		logger.Fatal("reading the résumé", zap.Error(err))
	}

	var gap *matcher.Report
	if role := strings.TrimSpace(cmd.Flag("role").Value.String()); role != "" {
		gap = analyzeRole(e, logger, cvText, role)
	} else {
		jdText, err := readText(cmd.Flag("jd").Value.String())
		if err != nil {
			logger.Fatal("reading the job description", zap.Error(err))
		}
		gap = e.AnalyzeGap(cvText, jdText)
	}

	logger.Info("gap analyzed",
		zap.Float64("match_percentage", gap.MatchPercentage),
		zap.String("band", string(report.BandFor(gap.MatchPercentage))),
	)

	if err := report.Write(os.Stdout, gap, format); err != nil {
		logger.Fatal("writing the report", zap.Error(err))
	}

	advise, _ := cmd.Flags().GetBool("advise")
	if advise || config.Advisor.Enabled {
		printPlan(ctx, config.Advisor, logger, gap, format)
	}
}

func analyzeRole(e *engine.Engine, logger *zap.Logger, cvText, role string) *matcher.Report {
	gap, ok := e.AnalyzeRole(cvText, role)
	if !ok {
		logger.Fatal("role not found",
			zap.String("role", role),
			zap.Strings("known roles", e.KB().ArchetypeNames()),
		)
	}
	return gap
}
