package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/nhle/mailsettings/internal/model"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Inspect the provider registry",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known mail providers and their servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		return printProviders(cmd.OutOrStdout(), e.providers.Entries())
	},
}

func printProviders(w io.Writer, entries []model.ProviderEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, p := range entries {
		rows = append(rows, []string{
			p.ID,
			strings.Join(p.Domains, ", "),
			serverCell(p.Incoming),
			serverCell(p.Outgoing),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DOMAINS", "INCOMING", "OUTGOING").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func serverCell(p model.ServerProfile) string {
	return fmt.Sprintf("%s %s:%s %s", p.Type, p.Host, strconv.Itoa(p.Port), p.Security)
}
