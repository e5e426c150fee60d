package main

import (
	"context"
	"fmt"

	"github.com/VindiceCode/bonzobuddy/bonzo"
	"github.com/VindiceCode/bonzobuddy/config"
	"github.com/VindiceCode/bonzobuddy/delivery"
	"github.com/VindiceCode/bonzobuddy/health"
	"github.com/VindiceCode/bonzobuddy/pkg/log"
	cli "github.com/urfave/cli/v3"
)

// NewHealthCommand builds the integration health check command.
func NewHealthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check webhook and API health for an integration suite",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the test suite YAML file",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "no-test-data",
				Usage: "Skip the recent test data check",
			},
			&cli.IntFlag{
				Name:  "test-data-hours",
				Usage: "How far back to look for recent test data",
				Value: 24,
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "Name pattern identifying test prospects",
				Value: "TestRecord",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Report file path (defaults under reports/)",
			},
		},
		Action: runHealth,
	}
}

func runHealth(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("health")

	suite, err := config.LoadSuite(command.String("config"))
	if err != nil {
		return fmt.Errorf("loading suite: %w", err)
	}

	sender := delivery.NewSender(delivery.Config{
		WebhookURL: suite.WebhookURL,
		Timeout:    suite.Webhook.Timeout,
	})
	client := bonzo.NewClient(suite.SuperuserAPIKey)
	checker := health.NewChecker(suite, sender, client, command.String("pattern"))

	report := checker.Run(ctx,
		!command.Bool("no-test-data"), command.Int("test-data-hours"))

	path, err := health.Save(report, command.String("output"))
	if err != nil {
		logger.Error("failed to save report", "error", err)
	} else {
		logger.Info("report saved", "path", path)
	}

	fmt.Print(health.Summary(report))

	switch report.OverallStatus {
	case health.StatusHealthy:
		return nil
	case health.StatusPartial, health.StatusUnhealthy:
		return cli.Exit(fmt.Sprintf("integration is %s", report.OverallStatus), 1)
	default:
		return cli.Exit(fmt.Sprintf("health check failed: %s", report.Error), 2)
	}
}
