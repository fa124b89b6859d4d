package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/engine"
	"github.com/spigell/skillgap/internal/matcher"
	"github.com/spigell/skillgap/internal/report"
)

const (
	PromptExit       = "Exit"
	PromptByCategory = "Report by category"
	defaultTop       = 5
)

var errExit = errors.New("exit requested")

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Rank known job roles against a résumé",
	Run: func(cmd *cobra.Command, _ []string) {
		discover(cmd)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().String("cv", "", "résumé text file, '-' for stdin")
	discoverCmd.Flags().IntP("top", "n", defaultTop, "how many roles to show, 0 for all")
	discoverCmd.Flags().StringP("format", "o", "text", "output format: text, json or yaml")
	discoverCmd.Flags().Bool("by-category", false, "group roles by category")
	discoverCmd.Flags().BoolP("interactive", "i", false, "pick a role and print its gap report")

	discoverCmd.MarkFlagRequired("cv")
}

func discover(cmd *cobra.Command) {
	logger, _, e := bootstrap()

	format, err := report.ParseFormat(cmd.Flag("format").Value.String())
	if err != nil {
		logger.Fatal("parsing output format", zap.Error(err))
	}

	cvText, err := readText(cmd.Flag("cv").Value.String())
	if err != nil {
		logger.Fatal("reading the résumé", zap.Error(err))
	}

	matches := e.DiscoverCareers(cvText)
	logger.Info("careers discovered", zap.Int("count", len(matches)))

	top, _ := cmd.Flags().GetInt("top")
	if top > 0 && len(matches) > top {
		matches = matches[:top]
	}

	if byCategory, _ := cmd.Flags().GetBool("by-category"); byCategory {
		err = report.WriteGrouped(os.Stdout, report.ByCategory(matches), format)
	} else {
		err = report.WriteCareers(os.Stdout, matches, format)
	}
	if err != nil {
		logger.Fatal("writing the ranking", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); !interactive || len(matches) == 0 {
		return
	}

	for {
		if err := pickRole(e, logger, cvText, matches, format); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func pickRole(e *engine.Engine, logger *zap.Logger, cvText string, matches []matcher.CareerMatch, format report.Format) error {
	items := make([]string, 0, len(matches)+2)
	for _, m := range matches {
		items = append(items, m.Role)
	}
	items = append(items, PromptByCategory, PromptExit)

	prompt := promptui.Select{
		Label: "Analyze a role?",
		Items: items,
		Size:  len(items),
	}

	_, action, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return errExit
		}
		return err
	}

	switch action {
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptByCategory:
		return report.WriteGrouped(os.Stdout, report.ByCategory(matches), format)
	default:
		gap, ok := e.AnalyzeRole(cvText, action)
		if !ok {
			return fmt.Errorf("role %q is not in the knowledge base", action)
		}
		return report.Write(os.Stdout, gap, format)
	}
}
