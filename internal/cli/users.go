package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"partners-cli/internal/console"
	"partners-cli/internal/form"
	"partners-cli/internal/format"
	"partners-cli/internal/model"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "List, inspect and edit users",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersShowCmd(app))
	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersUpdateCmd(app))
	cmd.AddCommand(newUsersDeleteCmd(app))
	cmd.AddCommand(newUsersCountriesCmd(app))
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List every user in the collection",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, logToStderr)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.console.Refresh(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			recs := s.console.Snapshot()

			var hints []string
			if len(recs) == 0 {
				hints = append(hints, `partners users create --name "<name>" --country <country>`)
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  recs,
				Meta:  map[string]any{"count": len(recs), "endpoint": s.settings.Endpoint},
				Hints: hints,
			})
		},
	}
}

func newUsersShowCmd(app *App) *cobra.Command {
	var markdown bool

	cmd := &cobra.Command{
		Use:     "show <id>",
		Aliases: []string{"get"},
		Short:   "Show one user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			s, err := openSession(cmd, app, logToStderr)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			var f form.Form
			if err := loadAndOpen(cmd, s, &f, form.ModeView, id); err != nil {
				return writeErr(cmd, err)
			}
			rec, _ := f.Record()
			if markdown {
				_, err := io.WriteString(cmd.OutOrStdout(), model.DetailsMarkdown(rec))
				return err
			}
			return writeOut(cmd, app, format.Envelope{
				Data:  rec,
				Hints: []string{"partners users update " + rec.ID + " --name <name>"},
			})
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print the details as Markdown instead of json/edn")
	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var name, code string
	var countries []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add a user",
		Example: strings.TrimSpace(`
partners users create --name "Ana" --code NA --country Spain --country Italy
partners users create --name "Bo" --country Japan,India
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app, logToStderr)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			var f form.Form
			if err := s.console.RequestAdd(&f); err != nil {
				return writeErr(cmd, err)
			}
			_ = f.SetName(name)
			_ = f.SetCode(code)
			picked, err := canonicalCountries(countries, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			for _, c := range picked {
				_ = f.ToggleCountry(c)
			}
			return commit(cmd, app, s, &f)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&code, "code", "", "User code")
	cmd.Flags().StringSliceVar(&countries, "country", nil, "Country (repeatable; at least one)")
	return cmd
}

func newUsersUpdateCmd(app *App) *cobra.Command {
	var name, code string
	var countries, add, remove []string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user",
		Long: strings.TrimSpace(`
Edit a user. Only the flags you pass change; everything else keeps its value.

--country replaces the whole selection. --add-country appends to the current
selection and --remove-country drops entries from it; existing countries keep
their order.
`),
		Example: strings.TrimSpace(`
partners users update 3 --name "Ana María"
partners users update 3 --add-country Norway --remove-country Spain
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("code") && !flags.Changed("country") &&
				!flags.Changed("add-country") && !flags.Changed("remove-country") {
				return writeErr(cmd, errors.New("nothing to update: pass --name, --code, --country, --add-country or --remove-country"))
			}

			s, err := openSession(cmd, app, logToStderr)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			var f form.Form
			if err := loadAndOpen(cmd, s, &f, form.ModeEdit, id); err != nil {
				return writeErr(cmd, err)
			}
			if flags.Changed("name") {
				_ = f.SetName(name)
			}
			if flags.Changed("code") {
				_ = f.SetCode(code)
			}
			if err := applyCountryFlags(&f, flags.Changed("country"), countries, add, remove); err != nil {
				return writeErr(cmd, err)
			}
			return commit(cmd, app, s, &f)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New user name")
	cmd.Flags().StringVar(&code, "code", "", "New user code (empty clears it)")
	cmd.Flags().StringSliceVar(&countries, "country", nil, "Replace the selected countries")
	cmd.Flags().StringSliceVar(&add, "add-country", nil, "Select an additional country")
	cmd.Flags().StringSliceVar(&remove, "remove-country", nil, "Deselect a country")
	return cmd
}

func newUsersDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a user",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			s, err := openSession(cmd, app, logToStderr)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close()

			if err := s.console.Refresh(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			rec, ok := s.console.Lookup(id)
			if !ok {
				return writeErr(cmd, errNotFound("user", id))
			}
			if err := s.console.CommitDelete(cmd.Context(), id); err != nil {
				return writeErr(cmd, fmt.Errorf("%s: %w", console.MsgDeleteFailed, err))
			}
			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{"id": rec.ID, "deleted": true},
				Meta: map[string]any{"message": s.lastMessage(), "remaining": len(s.console.Snapshot())},
			})
		},
	}
}

func newUsersCountriesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the countries a user can be assigned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOut(cmd, app, format.Envelope{Data: model.CountryOptions})
		},
	}
}

// loadAndOpen refreshes the snapshot and opens f for record id.
func loadAndOpen(cmd *cobra.Command, s *session, f *form.Form, mode form.Mode, id string) error {
	if err := s.console.Refresh(cmd.Context()); err != nil {
		return err
	}
	var err error
	if mode == form.ModeView {
		err = s.console.RequestView(f, id)
	} else {
		err = s.console.RequestEdit(f, id)
	}
	if errors.Is(err, console.ErrRecordNotFound) {
		return errNotFound("user", id)
	}
	return err
}

// commit submits f and prints the saved record. Invalid input is reported
// with the same messages the form shows.
func commit(cmd *cobra.Command, app *App, s *session, f *form.Form) error {
	sub, ok := f.Submit()
	if !ok {
		return writeErr(cmd, f.Errors())
	}
	rec, err := s.console.CommitSave(cmd.Context(), sub)
	if err != nil {
		return writeErr(cmd, fmt.Errorf("%s: %w", console.MsgSaveFailed, err))
	}
	return writeOut(cmd, app, format.Envelope{
		Data:  rec,
		Meta:  map[string]any{"message": s.lastMessage()},
		Hints: []string{"partners users show " + rec.ID},
	})
}

func applyCountryFlags(f *form.Form, replace bool, countries, add, remove []string) error {
	current := f.Countries()
	if replace {
		picked, err := canonicalCountries(countries, current)
		if err != nil {
			return err
		}
		for _, c := range current {
			_ = f.ToggleCountry(c)
		}
		for _, c := range picked {
			_ = f.ToggleCountry(c)
		}
		current = f.Countries()
	}

	added, err := canonicalCountries(add, current)
	if err != nil {
		return err
	}
	for _, c := range added {
		if !model.HasCountry(current, c) {
			_ = f.ToggleCountry(c)
		}
	}
	removed, err := canonicalCountries(remove, f.Countries())
	if err != nil {
		return err
	}
	for _, c := range removed {
		if model.HasCountry(f.Countries(), c) {
			_ = f.ToggleCountry(c)
		}
	}
	return nil
}

// canonicalCountries trims, de-duplicates and resolves names case-insensitively
// against the picker options (the fixed list plus anything already selected).
func canonicalCountries(names, selected []string) ([]string, error) {
	options := model.PickerOptions(selected)
	out := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		match := ""
		for _, opt := range options {
			if strings.EqualFold(opt, name) {
				match = opt
				break
			}
		}
		if match == "" {
			return nil, model.FieldErrors{
				model.FieldCountries: fmt.Sprintf("Unknown country %q (see `partners users countries`)", name),
			}
		}
		if !model.HasCountry(out, match) {
			out = append(out, match)
		}
	}
	return out, nil
}
