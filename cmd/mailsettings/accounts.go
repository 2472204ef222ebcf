package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/mailsettings/internal/model"
	"github.com/nhle/mailsettings/internal/theme"
)

var accountsCmd = &cobra.Command{
	Use:     "accounts",
	Aliases: []string{"account", "acc"},
	Short:   "Manage configured accounts",
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		accs, err := e.accounts.List(cmd.Context())
		if err != nil {
			return err
		}
		defaultID, err := e.accounts.DefaultID(cmd.Context())
		if err != nil {
			return err
		}
		return printAccounts(cmd.OutOrStdout(), accs, defaultID)
	},
}

var accountsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an account and its saved passwords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.accounts.Delete(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting account %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted account %s\n", args[0])
		return nil
	},
}

var accountsDefaultCmd = &cobra.Command{
	Use:   "default <id>",
	Short: "Make an account the default account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.accounts.SetDefault(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("setting default account: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Default account is now %s\n", args[0])
		return nil
	},
}

var accountsCheckCmd = &cobra.Command{
	Use:   "check <id>",
	Short: "Check the stored settings of an account against its servers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		draft, err := e.accounts.Draft(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		eng := e.newEngine()
		defer eng.Close()

		timeout := time.Duration(e.cfg.Validation.TimeoutSec)*time.Second + 5*time.Second
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		handle, err := eng.Validate(ctx, draft)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Checking %s...\n", draft.Address)

		for {
			select {
			case <-ctx.Done():
				eng.Cancel(handle)
				return fmt.Errorf("checking %s: %w", draft.Address, ctx.Err())
			case resp, ok := <-eng.Responses():
				if !ok {
					return errors.New("validation engine stopped")
				}
				if resp.Handle != handle {
					continue
				}
				return reportCheck(cmd.OutOrStdout(), resp)
			}
		}
	},
}

func reportCheck(w io.Writer, resp model.ValidationResponse) error {
	outcome := model.OutcomeForCode(resp.Code)
	switch {
	case outcome == model.OutcomeSuccess:
		fmt.Fprintln(w, theme.SuccessStyle.Render("Incoming and outgoing servers accepted the account."))
	case outcome == model.OutcomeSuccessWithWarning:
		fmt.Fprintln(w, theme.WarningStyle.Render("Incoming server accepted the account; the outgoing server could not be verified."))
	default:
		return fmt.Errorf("check failed: %s (code %d)", outcome, resp.Code)
	}
	if resp.Payload != "" {
		fmt.Fprintf(w, "Server capabilities: %s\n", resp.Payload)
	}
	return nil
}

func printAccounts(w io.Writer, accs []model.Account, defaultID string) error {
	if len(accs) == 0 {
		_, err := fmt.Fprintln(w, "No accounts configured.")
		return err
	}

	rows := make([][]string, 0, len(accs))
	for _, a := range accs {
		mark := ""
		if a.ID == defaultID {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			a.ID,
			a.Name,
			a.Address,
			string(a.Incoming.Type),
			a.Incoming.Host + ":" + strconv.Itoa(a.Incoming.Port),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("", "ID", "NAME", "ADDRESS", "TYPE", "INCOMING").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
