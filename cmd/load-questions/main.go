package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"never-have-i-ever/internal/config"
	"never-have-i-ever/internal/db"

	"github.com/spf13/cobra"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("failed to load .env", "error", err)
	}
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := config.NewViper()
	var file string

	cmd := &cobra.Command{
		Use:           "load-questions",
		Short:         "Upsert questions from a category,text,difficulty CSV.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromViper(v)
			slog.SetDefault(cfg.NewLogger(os.Stderr))
			return load(cmd.Context(), cfg, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "db/questions.csv", "path to questions csv")
	config.BindFlags(cmd.Flags(), v)
	return cmd
}

func load(ctx context.Context, cfg config.Config, file string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := db.Open(cfg)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close(conn)
	if err := db.Migrate(conn); err != nil {
		return err
	}

	loaded, err := db.LoadQuestions(ctx, conn, file)
	if err != nil {
		return fmt.Errorf("failed to load questions after %d rows: %w", loaded, err)
	}
	slog.Info("questions loaded", "count", loaded, "file", file)
	return nil
}
