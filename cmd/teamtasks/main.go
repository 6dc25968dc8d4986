package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"teamtasks/internal/app"
	"teamtasks/internal/config"
	"teamtasks/internal/services"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "teamtasks",
	Short:         "Personal and team task manager",
	Long:          `Serves the task, project and team API and runs its background jobs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return a.Serve(ctx)
		})
	},
}

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Send the reminders that are due now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			sent, err := a.Reminders.Scan(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d reminder(s)\n", sent)
			return nil
		})
	},
}

var recurrenceUser string

var recurrenceCmd = &cobra.Command{
	Use:   "recurrence",
	Short: "Roll the open-ended recurring series of a user forward",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			user, err := a.Users.GetByID(ctx, recurrenceUser)
			if err != nil {
				return err
			}
			created, err := a.Tasks.CheckRecurrences(ctx, services.Actor{ID: user.ID, Name: user.DisplayName})
			if err != nil {
				return err
			}
			for _, t := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t#%d\t%s\t%s\n", t.ID, t.RecurrenceInstance, t.StartDate.Format("2006-01-02"), t.Title)
			}
			return nil
		})
	},
}

var dateCheckCmd = &cobra.Command{
	Use:   "date-check",
	Short: "Apply the start and overdue rules to every task and project",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return a.SweepDates(ctx)
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Open the configured store and create its schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			if err := a.Store.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s store ready\n", a.Config.Database.Driver)
			return nil
		})
	},
}

// withApp loads the configuration, wires the app and runs fn with it.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := app.NewLogger(cfg)
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn().Err(err).Msg("[app] close store")
		}
	}()
	return fn(ctx, a)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml (default "+config.DefaultPath+")")
	recurrenceCmd.Flags().StringVar(&recurrenceUser, "user", "", "user id")
	_ = recurrenceCmd.MarkFlagRequired("user")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(recurrenceCmd)
	rootCmd.AddCommand(dateCheckCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
