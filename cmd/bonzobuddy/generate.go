package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/VindiceCode/bonzobuddy/config"
	"github.com/VindiceCode/bonzobuddy/delivery"
	"github.com/VindiceCode/bonzobuddy/pkg/log"
	"github.com/VindiceCode/bonzobuddy/record"
	"github.com/VindiceCode/bonzobuddy/schema"
	cli "github.com/urfave/cli/v3"
)

// NewGenerateCommand builds the record generation and bulk delivery command.
func NewGenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate test records and deliver them to the webhook endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the test suite YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "template",
				Usage: "Path to a JSON payload template (legacy {key} substitution)",
			},
			&cli.StringFlag{
				Name:    "schemas",
				Usage:   "Path to the schema registry directory",
				Value:   "schemas",
				Sources: cli.EnvVars("SCHEMAS_PATH"),
			},
			&cli.StringFlag{
				Name:  "profile",
				Usage: "Schema profile to use when generating from the registry",
			},
			&cli.IntFlag{
				Name:  "records",
				Usage: "Override the record count from the suite file",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Directory for the record set and delivery report",
				Value: "reports",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Generate and export records without sending them",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("generate")

	suite, err := config.LoadSuite(command.String("config"))
	if err != nil {
		return fmt.Errorf("loading suite: %w", err)
	}
	if n := command.Int("records"); n > 0 {
		suite.TestRecords = n
	}

	factoryCfg := record.FactoryConfig{
		IntegrationType: suite.IntegrationType,
		TotalRecords:    suite.TestRecords,
		Distribution:    suite.Distribution,
		Users:           suite.TestUsers,
		Settings:        suite.TestData,
	}
	if templatePath := command.String("template"); templatePath != "" {
		template, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("reading template: %w", err)
		}
		factoryCfg.Template = template
	} else {
		registry, err := schema.NewRegistry(command.String("schemas"))
		if err != nil {
			return fmt.Errorf("loading schema registry: %w", err)
		}
		s, err := registry.Get(suite.IntegrationType, command.String("profile"))
		if err != nil {
			return fmt.Errorf("resolving schema: %w", err)
		}
		factoryCfg.Schema = s
	}

	factory, err := record.NewFactory(factoryCfg)
	if err != nil {
		return fmt.Errorf("building factory: %w", err)
	}

	runID := record.NewRunID()
	records, err := factory.Generate(runID)
	if err != nil {
		return fmt.Errorf("generating records: %w", err)
	}
	logger.Info("records generated", "run_id", runID, "count", len(records))

	if problems := record.Validate(records, suite.TestRecords); len(problems) > 0 {
		for _, p := range problems {
			logger.Error("record validation problem", "problem", p)
		}
		return fmt.Errorf("record set failed validation with %d problems", len(problems))
	}

	outputDir := command.String("output")
	recordsPath := filepath.Join(outputDir, fmt.Sprintf("test_records_%s.json", runID))
	info := record.ExportInfo{
		IntegrationType: suite.IntegrationType,
		TestName:        suite.TestName,
		TotalRecords:    len(records),
		Users:           suite.TestUsers,
		GeneratedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := record.Export(records, info, recordsPath); err != nil {
		return fmt.Errorf("exporting records: %w", err)
	}
	logger.Info("record set exported", "path", recordsPath)

	if command.Bool("dry-run") {
		fmt.Printf("Dry run: %d records exported to %s\n", len(records), recordsPath)
		return nil
	}

	sender := delivery.NewSender(delivery.Config{
		WebhookURL:         suite.WebhookURL,
		Timeout:            suite.Webhook.Timeout,
		RetryAttempts:      suite.Webhook.RetryAttempts,
		RetryDelay:         suite.Webhook.RetryDelay,
		ConcurrentRequests: suite.Webhook.ConcurrentRequests,
	})

	check := sender.ValidateEndpoint(ctx)
	if !check.EndpointReachable {
		return fmt.Errorf("webhook endpoint is not reachable: %s", check.Error)
	}
	logger.Info("endpoint validated",
		"status", check.StatusCode, "response_time", check.ResponseTime)

	responses := sender.SendBulk(ctx, records)
	report := delivery.NewReport(responses)

	reportPath := filepath.Join(outputDir, fmt.Sprintf("delivery_report_%s.json", runID))
	if err := delivery.WriteReport(report, reportPath); err != nil {
		return fmt.Errorf("writing delivery report: %w", err)
	}

	fmt.Printf("Delivered %d/%d records (%.1f%% success), report at %s\n",
		report.Summary.SuccessfulRequests, report.Summary.TotalRequests,
		report.Summary.SuccessRatePercent, reportPath)
	if report.Summary.FailedRequests > 0 {
		return cli.Exit(fmt.Sprintf("%d records failed delivery", report.Summary.FailedRequests), 1)
	}
	return nil
}
