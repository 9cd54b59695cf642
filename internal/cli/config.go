package cli

import (
	"strings"

	"partners-cli/internal/config"
	"partners-cli/internal/format"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change saved settings",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings (flags, env, config file, defaults)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := app.settings()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, format.Envelope{
				Data: st,
				Meta: map[string]any{"file": cfg, "keys": config.Keys()},
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting in the config file",
		Long: strings.TrimSpace(`
Persist a setting in the config file. An empty value removes it.

Keys: ` + strings.Join(config.Keys(), ", ")),
		Example: strings.TrimSpace(`
partners config set endpoint http://localhost:3001
partners config set timeout 5s
partners config set tui.theme dark
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(args[0])
			cfg, err := config.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := cfg.Set(key, args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			path, _ := config.ConfigPath()
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"key": key, "value": strings.TrimSpace(args[1]), "path": path},
			})
		},
	}
}
