package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/matthewmjones/dissertation-matching/internal/ai/gemini"
	"github.com/matthewmjones/dissertation-matching/internal/logger"
	"github.com/matthewmjones/dissertation-matching/internal/matching"
	"github.com/matthewmjones/dissertation-matching/internal/output"
	"github.com/matthewmjones/dissertation-matching/internal/roster"
	"github.com/matthewmjones/dissertation-matching/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultOutputFile = "supervisor_assignments.csv"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the supervisor matching",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("students", "s", "", "CSV file with student records")
	runCmd.Flags().StringP("supervisors", "p", "", "CSV file with supervisor records")
	runCmd.Flags().StringP("output", "o", defaultOutputFile, "file to write the assignment CSV to")
	runCmd.Flags().Bool("sample", false, "use the bundled sample rosters instead of CSV files")
	runCmd.Flags().BoolP("auto-aprove", "y", false, "do not ask for confirmation before writing the output file")
	runCmd.Flags().Int("top-k", 0, "number of top candidates per supervisor to re-rank with the LLM")

	viper.BindPFlag("top-k", runCmd.Flags().Lookup("top-k"))
	viper.BindPFlag("output", runCmd.Flags().Lookup("output"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the dissertation-matching", zap.String("version", version))

	students, supervisors, err := loadRosters(cmd)
	if err != nil {
		logger.Fatal("loading rosters", zap.Error(err))
	}

	logger.Info("rosters loaded",
		zap.Int("students", len(students)),
		zap.Int("supervisors", len(supervisors)),
	)

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		logger.Fatal(
			"loading gemini api key",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	engine, err := buildEngine(ctx, config, apiKey, logger)
	if err != nil {
		logger.Fatal("building the matching engine", zap.Error(err))
	}

	result, err := engine.Run(ctx, students, supervisors)
	if err != nil {
		logger.Fatal("matching failed", zap.Error(err))
	}

	output.Summary(os.Stdout, result.Stats)
	if err := output.Table(os.Stdout, result); err != nil {
		logger.Fatal("rendering results", zap.Error(err))
	}

	outputPath := viper.GetString("output")
	if outputPath == "" || len(result.Assignments) == 0 {
		return
	}

	if cmd.Flag("auto-aprove").Value.String() == "false" {
		prompt := promptui.Select{
			Label: fmt.Sprintf("Write assignments to %s?", outputPath),
			Items: []string{PromptYes, PromptNo},
		}
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action != PromptYes {
			logger.Info("exiting", zap.String("reason", "export declined"))
			return
		}
	}

	if err := writeAssignments(outputPath, result); err != nil {
		logger.Fatal("writing assignments", zap.Error(err))
	}

	logger.Info("assignments written", zap.String("filename", outputPath))
}

func loadRosters(cmd *cobra.Command) ([]roster.Student, []roster.Supervisor, error) {
	if cmd.Flag("sample").Value.String() == "true" {
		students, err := roster.SampleStudents()
		if err != nil {
			return nil, nil, fmt.Errorf("sample students: %w", err)
		}
		supervisors, err := roster.SampleSupervisors()
		if err != nil {
			return nil, nil, fmt.Errorf("sample supervisors: %w", err)
		}
		return students, supervisors, nil
	}

	studentsPath := cmd.Flag("students").Value.String()
	supervisorsPath := cmd.Flag("supervisors").Value.String()
	if studentsPath == "" || supervisorsPath == "" {
		return nil, nil, fmt.Errorf("both --students and --supervisors files are required (or use --sample)")
	}

	students, err := parseStudentsFile(studentsPath)
	if err != nil {
		return nil, nil, err
	}
	supervisors, err := parseSupervisorsFile(supervisorsPath)
	if err != nil {
		return nil, nil, err
	}

	return students, supervisors, nil
}

func parseStudentsFile(path string) ([]roster.Student, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open students file: %w", err)
	}
	defer file.Close()

	students, err := roster.ParseStudents(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return students, nil
}

func parseSupervisorsFile(path string) ([]roster.Supervisor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open supervisors file: %w", err)
	}
	defer file.Close()

	supervisors, err := roster.ParseSupervisors(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return supervisors, nil
}

func writeAssignments(path string, result *matching.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	return output.WriteCSV(file, result)
}

func buildEngine(ctx context.Context, config *Config, apiKey string, logger *zap.Logger) (*matching.Engine, error) {
	geminiCfg := config.AI.Gemini

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("embedding_model", geminiCfg.EmbeddingModel),
		zap.String("reranker_model", geminiCfg.RerankerModel),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.EmbeddingModel, geminiCfg.RerankerModel, geminiCfg.MaxRetries, genLogger)
	if err != nil {
		return nil, fmt.Errorf("building gemini generator: %w", err)
	}

	judge := gemini.NewJudge(generator, genLogger, geminiCfg.MaxLogLength)

	opts := matching.Options{
		TopK:        viper.GetInt("top-k"),
		Concurrency: config.Concurrency,
	}
	if opts.TopK <= 0 {
		opts.TopK = config.TopK
	}
	if config.Timeout != "" {
		timeout, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parsing timeout %q: %w", config.Timeout, err)
		}
		opts.CallTimeout = timeout
	}

	return matching.NewEngine(generator, judge, logger, opts), nil
}
