package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"mathquiz/internal/infra/postgres"
)

// NewResultsCmd lists recently archived quiz results.
func NewResultsCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "results",
		Short: "List recent quiz results from Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResults(cmd.Context(), *configPath, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of results to show")
	return cmd
}

func runResults(ctx context.Context, configPath string, limit int) error {
	cfg, err := loadConfig(configPath, false)
	if err != nil {
		return err
	}
	configLogLevel(cfg.Log.Level)
	if cfg.Postgres.URL == "" {
		return errors.New("postgres url not configured")
	}
	if limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", limit)
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	results, err := postgres.NewResultStore(pool).Recent(ctx, limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FINISHED\tPLAYER\tSCORE\tQUESTIONS\tADMITTED\tSESSION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%t\t%s\n",
			r.FinishedAt.Format(time.RFC3339), r.PlayerName, r.Score, r.Questions, r.Admitted, r.SessionID)
	}
	return tw.Flush()
}
