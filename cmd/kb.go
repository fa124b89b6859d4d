package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/expander"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/matcher"
	"github.com/spigell/skillgap/internal/report"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Validate a knowledge base and print its statistics",
	Run: func(cmd *cobra.Command, _ []string) {
		inspectKB(cmd)
	},
}

func init() {
	rootCmd.AddCommand(kbCmd)

	kbCmd.Flags().StringP("file", "f", "", "knowledge base file to check (default is the configured one)")
	kbCmd.Flags().StringP("format", "o", "text", "output format: text, json or yaml")
	kbCmd.Flags().Bool("roles", false, "list the job roles")
}

func inspectKB(cmd *cobra.Command) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating a logger: %s\n", err)
		os.Exit(1)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	path := strings.TrimSpace(cmd.Flag("file").Value.String())
	if path == "" {
		path = config.KBFile
	}

	format, err := report.ParseFormat(cmd.Flag("format").Value.String())
	if err != nil {
		log.Fatal("parsing output format", zap.Error(err))
	}

	base, err := loadKB(path, log)
	if err != nil {
		log.Fatal("knowledge base is invalid", zap.Error(err))
	}

	stats := base.Stats()
	log.Info("knowledge base is valid", zap.String(logger.FieldKBSource, base.Source()))

	depth := config.InferenceDepth
	if depth < 0 {
		depth = expander.DefaultDepth
	}
	if stats.MaxInferenceDepth > depth {
		log.Warn("rule chains are longer than the inference depth",
			zap.Int("max_inference_depth", stats.MaxInferenceDepth),
			zap.Int("inference_depth", depth),
		)
	}

	roles, _ := cmd.Flags().GetBool("roles")
	strategies := matcher.NewResolver(log, matcher.DefaultStrategies(config.SimilarityCutoff)...).Describe()

	if format != report.FormatText {
		out := map[string]any{"source": base.Source(), "stats": stats, "role_lookup": strategies}
		if roles {
			out["roles"] = base.ArchetypeNames()
		}
		if err := report.Encode(os.Stdout, out, format); err != nil {
			log.Fatal("writing the statistics", zap.Error(err))
		}
		return
	}

	fmt.Printf("source:              %s\n", base.Source())
	fmt.Printf("hard skills:         %d\n", stats.HardSkills)
	fmt.Printf("soft skills:         %d\n", stats.SoftSkills)
	fmt.Printf("variations:          %d\n", stats.Variations)
	fmt.Printf("rules:               %d\n", stats.Rules)
	fmt.Printf("clusters:            %d\n", stats.Clusters)
	fmt.Printf("archetypes:          %d\n", stats.Archetypes)
	fmt.Printf("max inference depth: %d\n", stats.MaxInferenceDepth)

	lookup := make([]string, 0, len(strategies))
	for _, s := range strategies {
		if cutoff, ok := s.Details["cutoff"]; ok {
			lookup = append(lookup, fmt.Sprintf("%s (cutoff %s)", s.Name, cutoff))
			continue
		}
		lookup = append(lookup, s.Name)
	}
	fmt.Printf("role lookup:         %s\n", strings.Join(lookup, ", "))

	if roles {
		for _, name := range base.ArchetypeNames() {
			a, _ := base.Archetype(name)
			fmt.Printf("  %s [%s, %s]\n", a.Name, a.Category, a.Seniority)
		}
	}
}
