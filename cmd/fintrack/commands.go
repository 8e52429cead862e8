package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/myfintrack/fintrack-go/session"
	"github.com/myfintrack/fintrack-go/transactions"
)

func loginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.manager.Login(cmd.Context(), email, password); err != nil {
				if session.IsValidation(err) {
					return err
				}
				return fmt.Errorf("login failed: %w", err)
			}
			user := a.manager.CurrentUser()
			fmt.Printf("Logged in as %s\n", user.DisplayName())
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func registerCmd(a *app) *cobra.Command {
	var email, password, name string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.manager.Register(cmd.Context(), email, password, name); err != nil {
				return fmt.Errorf("registration failed: %w", err)
			}
			fmt.Printf("Registered and logged in as %s\n", email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Restore silently first so the server-side invalidation call
			// carries credentials; local clearing happens regardless.
			_, _ = a.manager.CheckAuth(cmd.Context())
			if err := a.manager.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Logged out")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			user := a.manager.CurrentUser()
			fmt.Printf("%s <%s>\n", user.DisplayName(), user.Email)
			return nil
		},
	}
}

func txCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
	}
	cmd.AddCommand(txListCmd(a), txAddCmd(a), txRemoveCmd(a))
	return cmd
}

func txListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			list, err := a.txs.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No transactions")
				return nil
			}
			for _, t := range list {
				sign := "-"
				if t.Type == transactions.Income {
					sign = "+"
				}
				fmt.Printf("%6d  %s  %s%8.2f  %-14s  %s\n", t.ID, t.Date, sign, t.Amount, t.Category, t.Description)
			}
			return nil
		},
	}
}

func txAddCmd(a *app) *cobra.Command {
	var txType, category, date, description string
	var amountStr string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			amount, err := strconv.ParseFloat(amountStr, 64)
			if err != nil {
				return fmt.Errorf("invalid amount %q", amountStr)
			}
			created, err := a.txs.Create(cmd.Context(), transactions.Transaction{
				Type:        transactions.Type(txType),
				Category:    category,
				Date:        date,
				Description: description,
				Amount:      amount,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added transaction %d\n", created.ID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&txType, "type", "t", "expense", "income or expense")
	cmd.Flags().StringVarP(&amountStr, "amount", "a", "", "amount")
	cmd.Flags().StringVarP(&category, "category", "c", "", "category code (see `fintrack categories`)")
	cmd.Flags().StringVarP(&date, "date", "d", "", "date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("category")
	return cmd
}

func txRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid transaction id %q", args[0])
			}
			if err := a.txs.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted transaction %d\n", id)
			return nil
		},
	}
}

func summaryCmd(a *app) *cobra.Command {
	var timeRange string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show income/expense totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			summary, err := a.txs.Summary(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Income:   %10.2f\nExpenses: %10.2f\nBalance:  %10.2f\n",
				float64(summary.TotalIncome), float64(summary.TotalExpenses), float64(summary.Balance))

			months, err := a.txs.MonthlyStats(cmd.Context(), timeRange)
			if err != nil {
				return err
			}
			if len(months) > 0 {
				fmt.Println("\nMonthly:")
				for _, m := range months {
					fmt.Printf("  %04d-%02d  in %10.2f  out %10.2f  saved %10.2f\n",
						m.Year, m.Month, float64(m.Income), float64(m.Expenses), float64(m.Savings))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&timeRange, "range", "6months", "3months, 6months, 1year or all")
	return cmd
}

func categoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List selectable categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireAuth(cmd); err != nil {
				return err
			}
			cats, err := a.txs.Categories(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println("Income:")
			for _, c := range cats.Income {
				fmt.Printf("  %-12s %s\n", c.Value, c.Label)
			}
			fmt.Println("Expense:")
			for _, c := range cats.Expense {
				fmt.Printf("  %-12s %s\n", c.Value, c.Label)
			}
			return nil
		},
	}
}
