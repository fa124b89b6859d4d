package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/engine"
	"github.com/spigell/skillgap/internal/expander"
	"github.com/spigell/skillgap/internal/kb"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/matcher"
)

const (
	app = "skillgap"

	defaultAdvisorRetries   = 3
	defaultAdvisorLogLength = 200
)

type Config struct {
	KBFile           string         `mapstructure:"kb-file"`
	InferenceDepth   int            `mapstructure:"inference-depth"`
	SimilarityCutoff float64        `mapstructure:"similarity-cutoff"`
	Advisor          *AdvisorConfig `mapstructure:"advisor"`
}

type AdvisorConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Model        string `mapstructure:"model"`
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillgap compares a résumé with a job description and reports the skill gap",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("kb-file", "SKILLGAP_KB_FILE"); err != nil {
		log.Fatalf("binding SKILLGAP_KB_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("advisor.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("inference-depth", expander.DefaultDepth)
	viper.SetDefault("similarity-cutoff", matcher.DefaultSimilarityCutoff)
	viper.SetDefault("advisor.max-retries", defaultAdvisorRetries)
	viper.SetDefault("advisor.max-log-length", defaultAdvisorLogLength)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillgap.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().String("kb-file", "", "knowledge base file (default is the embedded one)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("kb-file", rootCmd.PersistentFlags().Lookup("kb-file"))
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// An explicit config file must be readable.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Advisor == nil {
		config.Advisor = &AdvisorConfig{}
	}

	return config, nil
}

// bootstrap builds the logger, config and engine shared by every command.
func bootstrap() (*zap.Logger, *Config, *engine.Engine) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting", zap.String("version", version), zap.Any("config", redacted(config)))

	base, err := loadKB(config.KBFile, logger)
	if err != nil {
		logger.Fatal("loading the knowledge base",
			zap.Error(err),
			zap.String("hint", "check the file passed via --kb-file, SKILLGAP_KB_FILE or the 'kb-file' config key"),
		)
	}

	e := engine.New(base, logger, engine.Config{
		InferenceDepth:   config.InferenceDepth,
		SimilarityCutoff: config.SimilarityCutoff,
	})

	return logger, config, e
}

func loadKB(path string, logger *zap.Logger) (*kb.KnowledgeBase, error) {
	if strings.TrimSpace(path) == "" {
		return kb.Default(logger)
	}
	return kb.Load(path, logger)
}

// readText reads a file, or stdin when path is "-".
func readText(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}

	data, err := os.ReadFile(path)
	return string(data), err
}

func redacted(config *Config) Config {
	c := *config
	if c.Advisor != nil {
		advisor := *c.Advisor
		if advisor.APIKey != "" {
			advisor.APIKey = "***"
		}
		c.Advisor = &advisor
	}
	return c
}
