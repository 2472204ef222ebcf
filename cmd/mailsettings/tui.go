package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/mailsettings/internal/app"
)

func runTUI(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	eng := e.newEngine()
	defer eng.Close()

	m := app.New(cmd.Context(), app.Deps{
		Validator: eng,
		Providers: e.providers,
		Accounts:  e.accounts,
		Logger:    e.logger,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
