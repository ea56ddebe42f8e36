package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart_time/internal/bot"
	"smart_time/internal/service"

	"github.com/spf13/cobra"
)

func remindCmd() *cobra.Command {
	var (
		limit  int
		every  time.Duration
		output string
	)

	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Deliver due reminders through Telegram",
		Long: `Fire every due reminder. Users with a linked Telegram chat get a message
when BOT_TOKEN is set; the rest are advanced without delivery.
With --every the dispatch repeats until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			var sender service.ReminderSender
			if e.cfg.BotToken != "" {
				b, err := bot.New(e.cfg.BotToken, bot.Services{
					Users:     e.svc.Users,
					Tasks:     e.svc.Tasks,
					Reminders: e.svc.Reminders,
					Reports:   e.svc.Reports,
				})
				if err != nil {
					return fmt.Errorf("telegram: %w", err)
				}
				sender = b
			}

			run := func() error {
				res, err := e.svc.Reminders.Dispatch(ctx, sender, limit)
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, res)
			}

			if every <= 0 {
				return run()
			}

			ticker := time.NewTicker(every)
			defer ticker.Stop()
			for {
				if err := run(); err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					return err
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "max reminders per run")
	cmd.Flags().DurationVar(&every, "every", 0, "repeat the dispatch at this interval")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: json or yaml")
	return cmd
}
