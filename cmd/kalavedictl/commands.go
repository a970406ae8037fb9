package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kalavedi/model"
	"kalavedi/repository"
	"kalavedi/services"
)

func createAdminCmd(c *cli) *cobra.Command {
	var email, name string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a committee admin; the password is read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			admin, err := c.app.Auth.CreateAdmin(c.ctx, email, name, password)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %s (%s)\n", admin.Email, admin.AdminID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Admin email address")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("password is required on stdin")
	}
	return password, nil
}

func nextIDCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "next-id",
		Short: "Print the member id the next registration will receive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.app.Members.NextMemberID(c.ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func findMember(c *cli, memberID string) (*model.Member, error) {
	m, err := c.app.Members.GetByMemberID(c.ctx, memberID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("member %s: %w", memberID, services.ErrMemberNotFound)
	}
	return m, err
}

func certificateCmd(c *cli) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "certificate <memberId>",
		Short: "Write a member's certificate PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := findMember(c, args[0])
			if err != nil {
				return err
			}
			path := filepath.Join(outDir, services.CertificateFileName(m))
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", path, err)
			}
			if err := c.app.Certificates.Render(c.ctx, m, f); err != nil {
				f.Close()
				os.Remove(path)
				return fmt.Errorf("failed to render certificate: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "Output directory")
	return cmd
}

func setStatusCmd(c *cli) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "set-status <memberId> <accepted|rejected|banned>",
		Short: "Accept, reject or cancel a registration",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseMemberStatus(args[1])
			if err != nil {
				return err
			}
			m, err := findMember(c, args[0])
			if err != nil {
				return err
			}
			change, err := c.app.Members.UpdateStatus(c.ctx, m.DocID, status, message)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), change.Notice)
			return nil
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Custom message shown on the status page")
	return cmd
}

func ledgerReportCmd(c *cli) *cobra.Command {
	var filter services.LedgerFilter
	cmd := &cobra.Command{
		Use:   "ledger-report",
		Short: "Print income, expense and balance per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Ledger.Report(c.ctx, filter)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.View, "view", services.ViewOverview, "overview, monthly or yearly")
	cmd.Flags().IntVar(&filter.Year, "year", 0, "Year for the monthly and yearly views")
	cmd.Flags().IntVar(&filter.Month, "month", 0, "Month (1-12) for the monthly view")
	return cmd
}

func printReport(out io.Writer, r *services.LedgerReport) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "Period\tIncome\tExpense\tBalance\tCount\t")
	for _, m := range r.Monthly {
		fmt.Fprintf(w, "%s %d\t%.2f\t%.2f\t%.2f\t%d\t\n", m.Month, m.Year, m.Income, m.Expense, m.Balance, m.TransactionCount)
	}
	fmt.Fprintf(w, "Total\t%.2f\t%.2f\t%.2f\t%d\t\n", r.Totals.Income, r.Totals.Expense, r.Totals.Balance, r.Totals.Count)
	if r.View != services.ViewOverview {
		fmt.Fprintf(w, "Selected (%s)\t%.2f\t%.2f\t%.2f\t%d\t\n", r.View, r.Period.Income, r.Period.Expense, r.Period.Balance, r.Period.Count)
	}
	w.Flush()
}
