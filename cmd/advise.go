package cmd

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/advisor"
	"github.com/spigell/skillgap/internal/advisor/gemini"
	"github.com/spigell/skillgap/internal/matcher"
	"github.com/spigell/skillgap/internal/report"
	"github.com/spigell/skillgap/internal/secrets"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

func newAdvisor(ctx context.Context, config *AdvisorConfig, logger *zap.Logger) (advisor.Advisor, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: config.APIKey,
		Env:   geminiAPIKeyEnv,
		File:  config.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, config.Model, config.MaxRetries, logger)
	if err != nil {
		return nil, err
	}

	return gemini.NewAdvisor(generator, logger, config.MaxLogLength), nil
}

// printPlan is best effort: the report is already printed, so failures are
// only logged.
func printPlan(ctx context.Context, config *AdvisorConfig, logger *zap.Logger, gap *matcher.Report, format report.Format) {
	adv, err := newAdvisor(ctx, config, logger)
	if err != nil {
		logger.Warn("advisor is not available",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY, GEMINI_API_KEY_FILE or the 'advisor.api-key-file' key in the configuration file"),
		)
		return
	}

	plan, err := adv.Advise(ctx, gap)
	if err != nil {
		logger.Warn("advisor failed", zap.Error(err))
		return
	}

	if err := report.WritePlan(os.Stdout, plan, format); err != nil {
		logger.Warn("writing the learning plan", zap.Error(err))
	}
}
