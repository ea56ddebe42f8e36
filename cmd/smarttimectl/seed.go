package main

import (
	"errors"
	"fmt"
	"time"

	"smart_time/internal/domain"
	"smart_time/internal/repository"
	"smart_time/internal/service"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	var (
		email    string
		password string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories and a demo account",
		Long: `Seed an empty database: default categories, a demo user with a few
sample tasks, and a token for that user. Existing data is reused.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			added, err := e.svc.Categories.SeedDefaults(ctx)
			if err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
			fmt.Fprintf(out, "categories added: %d\n", added)

			u, err := e.svc.Users.Register(ctx, service.RegisterInput{
				FirstName: "Demo",
				LastName:  "User",
				Email:     email,
				Password:  password,
			})
			switch {
			case errors.Is(err, service.ErrEmailTaken):
				u, err = e.svc.Users.Authenticate(ctx, email, password, "", "smarttimectl")
				if err != nil {
					return fmt.Errorf("existing user %s: %w", email, err)
				}
				fmt.Fprintf(out, "user exists id=%d\n", u.ID)
			case err != nil:
				return fmt.Errorf("register: %w", err)
			default:
				fmt.Fprintf(out, "user created id=%d\n", u.ID)
			}

			existing, err := e.svc.Tasks.List(ctx, u.ID, repository.TaskFilter{Limit: 1})
			if err != nil {
				return err
			}
			if len(existing) == 0 {
				n, err := seedTasks(cmd, e, u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "tasks added: %d\n", n)
			}

			token, err := service.GenerateJWT(u.ID)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintf(out, "token: %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "demo@smarttime.local", "demo account email")
	cmd.Flags().StringVarP(&password, "password", "p", "demo123", "demo account password")
	return cmd
}

func seedTasks(cmd *cobra.Command, e *env, userID int64) (int, error) {
	ctx := cmd.Context()

	cats, err := e.svc.Categories.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(cats) == 0 {
		return 0, errors.New("no categories to attach tasks to")
	}
	category := func(i int) int64 { return cats[i%len(cats)].ID }

	tomorrow := time.Now().AddDate(0, 0, 1)
	yesterday := time.Now().AddDate(0, 0, -1)
	hour := time.Hour
	half := 30 * time.Minute

	samples := []service.TaskInput{
		{CategoryID: category(0), Title: "Write weekly plan", Priority: domain.PriorityHigh, DueDate: &tomorrow, EstimatedDuration: &hour},
		{CategoryID: category(1), Title: "Review pull requests", Priority: domain.PriorityMedium, EstimatedDuration: &half},
		{CategoryID: category(2), Title: "Pay utility bills", Priority: domain.PriorityCritical, DueDate: &yesterday},
	}

	by := fmt.Sprintf("user:%d", userID)
	for i, in := range samples {
		if _, err := e.svc.Tasks.Create(ctx, userID, in, by); err != nil {
			return i, fmt.Errorf("create task %q: %w", in.Title, err)
		}
	}
	return len(samples), nil
}
