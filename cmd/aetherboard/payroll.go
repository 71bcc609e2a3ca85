package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aetherboard/aetherboard/internal/domain"
	"github.com/aetherboard/aetherboard/internal/events"
	"github.com/aetherboard/aetherboard/internal/repository"
	"github.com/aetherboard/aetherboard/internal/service"
)

var (
	payrollYear  int
	payrollMonth int
	payrollHalf  string
)

var payrollCmd = &cobra.Command{
	Use:   "payroll",
	Short: "Payroll maintenance",
}

var payrollGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate payroll records for a semi-monthly cutoff",
	Long: `Generate payroll rows from approved timesheets for one cutoff.

The first half covers days 1 to 15 and the second half the rest of the
month. Running it twice for the same cutoff creates no duplicates.`,
	RunE: runPayrollGenerate,
}

func init() {
	now := time.Now()
	half := string(domain.CutoffFirst)
	if now.Day() > 15 {
		half = string(domain.CutoffSecond)
	}
	payrollGenerateCmd.Flags().IntVar(&payrollYear, "year", now.Year(), "cutoff year")
	payrollGenerateCmd.Flags().IntVar(&payrollMonth, "month", int(now.Month()), "cutoff month (1-12)")
	payrollGenerateCmd.Flags().StringVar(&payrollHalf, "half", half, "cutoff half: first or second")
	payrollCmd.AddCommand(payrollGenerateCmd)
}

func runPayrollGenerate(cmd *cobra.Command, _ []string) error {
	rt, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer rt.close()

	payroll := service.NewPayrollService(service.PayrollDependencies{
		PayrollRepo: repository.NewPayrollRepository(rt.pg.PoolHandle()),
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      rt.logger,
	})
	cutoff, err := payroll.Cutoff(payrollYear, time.Month(payrollMonth), domain.CutoffHalf(payrollHalf))
	if err != nil {
		return err
	}
	generated, err := payroll.Generate(cmd.Context(), cutoff)
	if err != nil {
		return err
	}
	rt.logger.Info("payroll generated",
		zap.String("cutoff_start", cutoff.Start.Format(domain.DateLayout)),
		zap.String("cutoff_end", cutoff.End.Format(domain.DateLayout)),
		zap.Int("generated", generated))
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d payroll record(s) for %s to %s\n",
		generated, cutoff.Start.Format(domain.DateLayout), cutoff.End.Format(domain.DateLayout))
	return nil
}
