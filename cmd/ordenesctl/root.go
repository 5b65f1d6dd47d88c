package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/jhoicas/ordenes-api/internal/application/inventory"
	"github.com/jhoicas/ordenes-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ordenes-api/pkg/config"
	"github.com/jhoicas/ordenes-api/pkg/logger"
)

// errMismatch hace que verify-stock termine con código distinto de cero.
var errMismatch = errors.New("stock no coincide con el libro de movimientos")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ordenesctl",
		Short:         "Operaciones sobre la base de órdenes y stock",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newVerifyStockCmd())
	return root
}

// env configuración, logger y pool compartidos por los subcomandos.
type env struct {
	cfg  *config.Config
	log  *logger.Logger
	pool *pgxpool.Pool
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "ordenesctl", Out: os.Stderr})
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return &env{cfg: cfg, log: log, pool: pool}, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Aplica las migraciones SQL pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()

			applied, err := postgres.Migrate(ctx, e.pool, e.log)
			if err != nil {
				return err
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
				return nil
			}
			for _, v := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "aplicada", v)
			}
			return nil
		},
	}
}

func newVerifyStockCmd() *cobra.Command {
	var companyID string
	cmd := &cobra.Command{
		Use:   "verify-stock",
		Short: "Compara el stock materializado contra la suma del libro de movimientos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			e, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer e.pool.Close()

			mismatches, err := inventory.NewStockQueryUseCase(postgres.NewTxRunner(e.pool)).Verify(ctx, companyID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(mismatches) == 0 {
				fmt.Fprintln(out, "stock consistente con el libro")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "EMPRESA\tPRODUCTO\tBODEGA\tSTOCK\tLIBRO")
			for _, m := range mismatches {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.CompanyID, m.ProductID, m.WarehouseID, m.Stock, m.LedgerSum)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			e.log.Warn().Int("pares", len(mismatches)).Msg("stock inconsistente")
			return fmt.Errorf("%w: %d pares", errMismatch, len(mismatches))
		},
	}
	cmd.Flags().StringVar(&companyID, "company", "", "limitar a una empresa (UUID)")
	return cmd
}
