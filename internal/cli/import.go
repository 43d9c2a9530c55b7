package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"timed-quiz/internal/config"
	"timed-quiz/internal/infra/postgres"
)

// NewImportCmd copies records from the remote source into Postgres.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import",
		Short: "Fetch question records from the source URL and store them in Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runImport(cmd.Context(), cfg)
		},
	}
}

func runImport(ctx context.Context, cfg config.Config) error {
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	records, err := newRemoteLoader(cfg).LoadRecords(ctx)
	if err != nil {
		return err
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := postgres.NewRecordStore(pool, sourceLimit(cfg)).SaveRecords(ctx, records); err != nil {
		return err
	}
	log.Printf("imported %d records", len(records))
	return nil
}
