package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bendahara/internal/services"
)

func handoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "handover",
		Short: "Hand every pending transaction over to the committee",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			actor, err := a.actor(cmd)
			if err != nil {
				return err
			}

			moved, err := services.NewHandoverService(a.db.DB(), a.notifier).PerformHandover(cmd.Context(), actor)
			if err != nil {
				return err
			}
			services.NewAuditService(a.db.DB()).Log(cmd.Context(), actor.UserID, "PERFORM_HANDOVER", "transaction", "", "",
				map[string]any{"moved": moved, "via": "ledgerctl"})

			fmt.Fprintf(cmd.OutOrStdout(), "transactions handed over: %d\n", moved)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cash awaiting handover",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			actor, err := a.actor(cmd)
			if err != nil {
				return err
			}

			ledger := services.NewLedgerService(a.db.DB(), services.NewCategoryService(a.db.DB(), a.notifier))
			printHandoverStats(cmd.OutOrStdout(), ledger.GetHandoverStats(cmd.Context(), actor))
			return nil
		},
	}
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show per-category balances as the acting role sees them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.close()

			actor, err := a.actor(cmd)
			if err != nil {
				return err
			}

			ledger := services.NewLedgerService(a.db.DB(), services.NewCategoryService(a.db.DB(), a.notifier))
			balances, err := ledger.GetCategoryBalances(cmd.Context(), actor)
			if err != nil {
				return err
			}
			printBalances(cmd.OutOrStdout(), balances)
			return nil
		},
	}
}

func printHandoverStats(out io.Writer, stats services.HandoverStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	defer w.Flush()

	codes := make([]string, 0, len(stats.ByType))
	for code := range stats.ByType {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	fmt.Fprintln(w, "CATEGORY\tPENDING\t")
	for _, code := range codes {
		fmt.Fprintf(w, "%s\t%d\t\n", code, stats.ByType[code])
	}
	fmt.Fprintf(w, "TOTAL (%d rows)\t%d\t\n", stats.Count, stats.TotalPending)
}

func printBalances(out io.Writer, balances []services.CategoryBalance) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "CODE\tNAME\tTYPE\tINCOME\tEXPENSE\tBALANCE\tROWS")
	for _, b := range balances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			b.Code, b.Name, b.Type, b.TotalIncome, b.TotalExpense, b.Balance, b.TransactionCount)
	}
}
