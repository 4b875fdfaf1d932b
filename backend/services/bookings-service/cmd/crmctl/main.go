// Command crmctl is the operator CLI for the bookings database: apply
// migrations, seed demo units and inspect payments and stale holds.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/app"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/services"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-seeding"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const commandTimeout = 2 * time.Minute

var dbURL string

func main() {
	_ = godotenv.Load()
	utils.InitLogger("crmctl")

	rootCmd := &cobra.Command{
		Use:   "crmctl",
		Short: "Estate CRM bookings database tool",
	}
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", os.Getenv("DB_URL"), "Postgres connection URL (defaults to $DB_URL)")

	rootCmd.AddCommand(
		migrateCmd(),
		seedCmd(),
		summaryCmd(),
		staleHoldsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withPool(fn func(ctx context.Context, pool *pgxpool.Pool) error) error {
	if dbURL == "" {
		return errors.New("no database URL: set DB_URL or pass --db-url")
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return fmt.Errorf("invalid database URL: %w", err)
	}
	poolCfg.AfterConnect = repositories.AfterConnect
	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	return fn(ctx, pool)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				n, err := app.Migrate(ctx, pool)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d migration(s) applied\n", n)
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo units for tenant " + seeding.DemoTenantID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				n, err := seeding.SeedDemoUnits(ctx, repositories.NewUnitRepository(pool))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d unit(s) created\n", n)
				return nil
			})
		},
	}
}

func summaryCmd() *cobra.Command {
	var tenantID string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print payment totals per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				if tenantID != "" {
					ctx = utils.WithTenantID(ctx, tenantID)
				}
				payments := services.NewPaymentService(repositories.NewTxManager(pool), nil)
				resp, err := payments.Summary(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "STATUS\tCOUNT\tTOTAL")
				for _, row := range resp.ByStatus {
					fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Status, row.Count, row.Total.StringFixed(2))
				}
				fmt.Fprintf(tw, "ALL\t%d\t%s\n", resp.TotalCount, resp.TotalAmount.StringFixed(2))
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "limit to one tenant (default: all tenants)")
	return cmd
}

func staleHoldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stale-holds",
		Short: "List holds whose hold_expires_at has passed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(func(ctx context.Context, pool *pgxpool.Pool) error {
				stale, err := services.NewStaleHoldService(repositories.NewBookingRepository(pool)).Report(ctx)
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "BOOKING\tTENANT\tUNIT\tSTATUS\tEXPIRED AT")
				for _, b := range stale {
					expired := ""
					if b.HoldExpiresAt != nil {
						expired = b.HoldExpiresAt.UTC().Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", b.ID, b.TenantID, b.UnitID, b.Status, expired)
				}
				return tw.Flush()
			})
		},
	}
}
