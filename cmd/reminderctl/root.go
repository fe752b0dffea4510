package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/notexe/reminder-tracker/internal/config"
	"github.com/notexe/reminder-tracker/internal/logger"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/notexe/reminder-tracker/internal/ui"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DBPath     string
	Today      string
	Format     string // "text" | "json"
	Verbose    bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for reminderctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reminderctl",
		Short: "Track compliance and renewal deadlines",
		Long: `reminderctl works directly on the local reminder database.

It lists reminders with their status, shows the upcoming digest,
runs the auto-renewal scan and sends notifications.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main renders errors
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.Today != "" {
				if _, err := reminder.ParseDate(opts.Today); err != nil {
					return fmt.Errorf("--today: %w", err)
				}
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", config.GetDefaultConfigPath(), "config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database path (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.Today, "today", "", "evaluate as of this date (YYYY-MM-DD)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewUpcomingCommand(opts))
	cmd.AddCommand(NewRenewCommand(opts))
	cmd.AddCommand(NewNotifyCommand(opts))

	return cmd
}

// session is the state one command invocation works with.
type session struct {
	cfg    *config.Config
	store  *reminder.SQLStore
	today  reminder.Date
	log    zerolog.Logger
	out    io.Writer
	errOut io.Writer
	format string
	fmt    *ui.Formatter
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.DBPath != "" {
		cfg.Database.Path = o.DBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	today := reminder.Today(time.Now, loc)
	if o.Today != "" {
		if today, err = reminder.ParseDate(o.Today); err != nil {
			return nil, fmt.Errorf("--today: %w", err)
		}
	}

	level := "warn"
	if o.Verbose {
		level = "debug"
	}
	// Logs go to stderr to keep JSON output clean.
	log := logger.New("reminderctl", logger.Options{Level: level, Pretty: true, Out: cmd.ErrOrStderr()})

	if err := cfg.EnsureDatabaseDir(); err != nil {
		return nil, err
	}
	store, err := reminder.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	return &session{
		cfg:    cfg,
		store:  store,
		today:  today,
		log:    log,
		out:    out,
		errOut: cmd.ErrOrStderr(),
		format: o.Format,
		fmt:    ui.NewFormatter(isTerminal(out)),
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) jsonOutput() bool {
	return s.format == "json"
}

func (s *session) gate() (*notify.Gate, error) {
	return notify.FromConfig(s.cfg.Notify, s.store, s.log)
}

func (s *session) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *session) printJSON(v any) error {
	enc := json.NewEncoder(s.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
