package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/dayplan/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newKeyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the Anthropic API key in the OS keychain",
	}
	cmd.AddCommand(newKeySetCmd(app), newKeyStatusCmd(app), newKeyDeleteCmd(app))
	return cmd
}

func newKeySetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the API key (prompted, or read from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Keys == nil {
				return errors.New("keychain is not available")
			}

			var secret string
			if app.interactive() {
				err := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().
							Title("Anthropic API key").
							EchoMode(huh.EchoModePassword).
							Value(&secret).
							Validate(func(s string) error {
								if strings.TrimSpace(s) == "" {
									return errors.New("key is required")
								}
								return nil
							}),
					),
				).WithTheme(dayplanHuhTheme()).WithShowHelp(false).Run()
				if err != nil {
					return err
				}
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no key on stdin")
				}
				secret = line
			}

			secret = strings.TrimSpace(secret)
			if secret == "" {
				return errors.New("key is empty")
			}
			if err := app.Keys.Set(secret); err != nil {
				return fmt.Errorf("storing key: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("✔")+" API key stored")
			return nil
		},
	}
}

func newKeyStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether an API key is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Keys == nil {
				return errors.New("keychain is not available")
			}
			_, err := app.Keys.Get()
			switch {
			case errors.Is(err, ErrNoKey):
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No API key stored"))
			case err != nil:
				return err
			default:
				fmt.Fprintln(cmd.OutOrStdout(), formatter.StyleGreen.Render("●")+" API key stored")
			}
			return nil
		},
	}
}

func newKeyDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Keys == nil {
				return errors.New("keychain is not available")
			}
			if err := app.Keys.Delete(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "API key removed")
			return nil
		},
	}
}
