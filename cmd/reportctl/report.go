package main

import (
	"context"
	"fmt"

	"github.com/fadilmartias/career-intel/internal/bootstrap"
	"github.com/fadilmartias/career-intel/internal/config"
	"github.com/fadilmartias/career-intel/internal/dto"
	applogger "github.com/fadilmartias/career-intel/internal/logger"
	"github.com/fadilmartias/career-intel/internal/usecase"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var ensureCmd = &cobra.Command{
	Use:   "ensure <candidate-id>",
	Short: "Return a fresh report, scoring the candidate if needed",
	Long:  "Builds the candidate context, reuses the stored report when its input hash still matches and otherwise scores the candidate and upserts the result.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnsure,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <candidate-id>",
	Short: "Print the stored report without scoring",
	Args:  cobra.ExactArgs(1),
	RunE:  runFetch,
}

var ensureForce bool

func init() {
	ensureCmd.Flags().BoolVarP(&ensureForce, "force", "f", false, "Rescore even when the stored report is current")
	rootCmd.AddCommand(ensureCmd, fetchCmd)
}

// newUsecase builds the engine and returns a cleanup that flushes the logger
// and closes the database pool.
func newUsecase(ctx context.Context) (*usecase.CareerReportUsecase, func(), error) {
	appConfig := config.LoadAppConfig()
	zl, err := applogger.New(appConfig.LogJSON, appConfig.LogDebug)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	zl = zl.With(zap.String("cmd", "reportctl"))

	db, err := bootstrap.ConnectDB(zl)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = zl.Sync()
	}

	uc, err := bootstrap.NewCareerReportUsecase(ctx, db, zl)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return uc, cleanup, nil
}

func runEnsure(cmd *cobra.Command, args []string) error {
	uc, cleanup, err := newUsecase(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := uc.EnsureReport(cmd.Context(), args[0], ensureForce)
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), dto.EnsureReportResponse{
		Status: result.Status,
		Report: dto.NewCareerReportDTO(result.Report),
	})
}

func runFetch(cmd *cobra.Command, args []string) error {
	uc, cleanup, err := newUsecase(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := uc.FetchReport(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), dto.NewCareerReportDTO(report))
}
