package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"partners-cli/internal/config"
	"partners-cli/internal/console"
	"partners-cli/internal/format"
	"partners-cli/internal/logging"
	"partners-cli/internal/notify"
	"partners-cli/internal/recordstore"
	"partners-cli/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type App struct {
	Endpoint   string
	Collection string
	Timeout    time.Duration
	LogFile    string
	Verbose    bool
	PrettyJSON bool
	Format     string
}

// isTerminal reports whether the console can take over stdin/stdout.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "partners",
		Short:         "Users & Partners admin console (TUI, web and scriptable CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive console
  partners

  # Point at another record store
  partners --endpoint http://localhost:3001 users list

  # Add a user from a script
  partners users create --name "Ana" --code NA --country Spain --country Italy

  # Serve the browser console
  partners web --addr 127.0.0.1:3335
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format %q (expected json|edn)", app.Format))
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Endpoint, "endpoint", "", "Record store base URL (env PARTNERS_ENDPOINT, default "+recordstore.DefaultEndpoint+")")
	cmd.PersistentFlags().StringVar(&app.Collection, "collection", "", "Collection name (env PARTNERS_COLLECTION, default "+recordstore.DefaultCollection+")")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout (default "+recordstore.DefaultTimeout.String()+")")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file for the interactive console (env PARTNERS_LOG_FILE)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PARTNERS_FORMAT", format.JSON), "Output format (json|edn)")

	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	if !isTerminal() {
		return writeErr(cmd, errors.New("the interactive console needs a terminal; use `partners users ...` from scripts"))
	}
	s, err := openSession(cmd, app, logToFile)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close()

	return tui.Run(cmd.Context(), tui.Options{
		Console:  s.console,
		Hub:      s.hub,
		Log:      s.log,
		Endpoint: s.settings.Endpoint,
		Theme:    s.settings.Theme,
		ToastTTL: time.Duration(s.settings.ToastSeconds) * time.Second,
	})
}

func (app *App) settings() (config.Settings, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return config.Settings{}, err
	}
	return config.Resolve(cfg, config.Overrides{
		Endpoint:   app.Endpoint,
		Collection: app.Collection,
		Timeout:    app.Timeout,
		LogFile:    app.LogFile,
	})
}

type logTarget int

const (
	// logToStderr keeps warnings and errors on stderr (debug with --verbose).
	logToStderr logTarget = iota
	// logToServer logs requests at info level to stderr.
	logToServer
	// logToFile writes to the configured log file so the screen stays clean.
	logToFile
)

// session is everything a command needs to talk to the record store.
type session struct {
	settings config.Settings
	log      *logging.ZapLogger
	hub      *notify.Hub
	console  *console.Console
}

func openSession(cmd *cobra.Command, app *App, target logTarget) (*session, error) {
	st, err := app.settings()
	if err != nil {
		return nil, err
	}

	opts := logging.Options{Verbose: app.Verbose}
	switch target {
	case logToFile:
		opts.Path = st.LogFile
	case logToServer:
		opts.Writer = cmd.ErrOrStderr()
	default:
		opts.Writer = cmd.ErrOrStderr()
		opts.Quiet = !app.Verbose
	}
	log, err := logging.New(opts)
	if err != nil {
		return nil, err
	}

	client, err := recordstore.New(recordstore.Config{
		Endpoint:   st.Endpoint,
		Collection: st.Collection,
		Timeout:    st.Timeout,
	})
	if err != nil {
		_ = log.Sync()
		return nil, err
	}

	hub := notify.New(notify.Options{})
	log.Debug(context.Background(), "session ready", "endpoint", st.Endpoint, "collection", st.Collection)
	return &session{
		settings: st,
		log:      log,
		hub:      hub,
		console:  console.New(client, hub, log),
	}, nil
}

func (s *session) Close() {
	s.hub.Close()
	_ = s.log.Sync()
}

// lastMessage is the newest notification, used as the command's status line.
func (s *session) lastMessage() string {
	recent := s.hub.Recent()
	if len(recent) == 0 {
		return ""
	}
	return recent[len(recent)-1].Message
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return reportedError{err: err}
}
