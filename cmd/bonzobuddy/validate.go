package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/VindiceCode/bonzobuddy/bonzo"
	"github.com/VindiceCode/bonzobuddy/config"
	"github.com/VindiceCode/bonzobuddy/pkg/log"
	"github.com/VindiceCode/bonzobuddy/record"
	cli "github.com/urfave/cli/v3"
)

// NewValidateCommand builds the remote assignment validation command.
func NewValidateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Poll the CRM for delivered test prospects and validate their assignment",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "config",
				Aliases:  []string{"c"},
				Usage:    "Path to the test suite YAML file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "pattern",
				Usage: "Name pattern identifying test prospects",
				Value: "TestRecord",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for prospects to appear",
				Value: 2 * time.Minute,
			},
			&cli.DurationFlag{
				Name:  "interval",
				Usage: "Poll interval",
				Value: 10 * time.Second,
			},
			&cli.StringFlag{
				Name:  "created-after",
				Usage: "Only consider prospects created after this RFC3339 timestamp",
			},
		},
		Action: runValidate,
	}
}

func runValidate(ctx context.Context, command *cli.Command) error {
	logger := log.WithModule("validate")

	suite, err := config.LoadSuite(command.String("config"))
	if err != nil {
		return fmt.Errorf("loading suite: %w", err)
	}

	client := bonzo.NewClient(suite.SuperuserAPIKey)
	pattern := command.String("pattern")
	timeout := command.Duration("timeout")
	interval := command.Duration("interval")
	createdAfter := command.String("created-after")

	expected := expectedPerUser(suite)
	failures := 0
	for _, user := range suite.TestUsers {
		want := expected[user.Email]
		logger.Info("waiting for prospects",
			"user", user.Email, "expected", want, "timeout", timeout)

		prospects, err := client.WaitForProspects(
			ctx, user.UserID, pattern, want, timeout, interval, createdAfter)
		if err != nil {
			var timeoutErr *bonzo.TimeoutError
			if errors.As(err, &timeoutErr) {
				logger.Error("poll timed out",
					"user", user.Email,
					"expected", timeoutErr.Expected, "found", timeoutErr.Found)
				failures++
				continue
			}
			return fmt.Errorf("polling prospects for %s: %w", user.Email, err)
		}

		for _, p := range prospects {
			result := bonzo.ValidateAssignment(p, user.Email, user.UserID, user.TeamID)
			if result.AllMatch() {
				continue
			}
			failures++
			logger.Error("assignment mismatch",
				"prospect_id", p.ID,
				"user_email_match", result.UserEmailMatch,
				"user_id_match", result.UserIDMatch,
				"team_id_match", result.TeamIDMatch,
				"assigned_to_match", result.AssignedToMatch)
		}
	}

	if failures > 0 {
		return cli.Exit(fmt.Sprintf("%d validation failures", failures), 1)
	}
	fmt.Println("All prospects validated successfully")
	return nil
}

// expectedPerUser predicts how many prospects each user should have, using
// the same even split the record factory applies when generating the run.
func expectedPerUser(suite *config.Suite) map[string]int {
	expected := make(map[string]int, len(suite.TestUsers))
	if len(suite.TestUsers) == 0 {
		return expected
	}
	counts := record.DistributeEven(suite.TestRecords, len(suite.TestUsers))
	for i, u := range suite.TestUsers {
		expected[u.Email] = counts[i]
	}
	return expected
}
