package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/extractor"
	"github.com/spigell/skillgap/internal/report"
)

type extraction struct {
	Mode     string   `json:"mode" yaml:"mode"`
	Hard     []string `json:"hard" yaml:"hard"`
	Soft     []string `json:"soft" yaml:"soft"`
	Expanded []string `json:"expanded,omitempty" yaml:"expanded,omitempty"`
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the skills found in a text",
	Run: func(cmd *cobra.Command, _ []string) {
		extract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("file", "f", "-", "text file, '-' for stdin")
	extractCmd.Flags().StringP("mode", "m", "candidate", "who wrote the text: candidate or requirement")
	extractCmd.Flags().Bool("expand", false, "also print the hard skills implied by the rules")
	extractCmd.Flags().Bool("bidirectional", false, "add rule sources to the expansion")
	extractCmd.Flags().StringP("format", "o", "text", "output format: text, json or yaml")
}

func extract(cmd *cobra.Command) {
	logger, _, e := bootstrap()

	mode, err := extractor.ParseMode(cmd.Flag("mode").Value.String())
	if err != nil {
		logger.Fatal("parsing extraction mode", zap.Error(err))
	}

	format, err := report.ParseFormat(cmd.Flag("format").Value.String())
	if err != nil {
		logger.Fatal("parsing output format", zap.Error(err))
	}

	text, err := readText(cmd.Flag("file").Value.String())
	if err != nil {
		logger.Fatal("reading the text", zap.Error(err))
	}

	hard, soft := e.ExtractSkills(text, mode)
	result := extraction{Mode: mode.String(), Hard: hard, Soft: soft}

	if expand, _ := cmd.Flags().GetBool("expand"); expand {
		bidirectional, _ := cmd.Flags().GetBool("bidirectional")
		result.Expanded = e.ExpandSkills(hard, bidirectional)
	}

	if format != report.FormatText {
		if err := report.Encode(os.Stdout, result, format); err != nil {
			logger.Fatal("writing the skills", zap.Error(err))
		}
		return
	}

	fmt.Printf("hard: %s\n", strings.Join(result.Hard, ", "))
	fmt.Printf("soft: %s\n", strings.Join(result.Soft, ", "))
	if result.Expanded != nil {
		fmt.Printf("expanded: %s\n", strings.Join(result.Expanded, ", "))
	}
}
