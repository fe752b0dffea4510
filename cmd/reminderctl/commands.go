package main

import (
	"context"
	"fmt"

	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/notexe/reminder-tracker/internal/ui"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reminders with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter reminder.Status
			if status != "" {
				var err error
				if filter, err = reminder.ParseStatus(status); err != nil {
					return err
				}
			}

			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			return runList(cmd.Context(), s, filter)
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "", "only show normal, warning or expired")

	return cmd
}

func runList(ctx context.Context, s *session, filter reminder.Status) error {
	rs, err := s.store.List(ctx)
	if err != nil {
		return err
	}
	if filter != "" {
		rs = reminder.FilterByStatus(rs, filter, s.today)
	}
	views := reminder.Views(rs, s.today)

	if s.jsonOutput() {
		return s.printJSON(views)
	}
	if len(views) == 0 {
		s.println(s.fmt.FormatInfo("No reminders found."))
		return nil
	}
	s.println(s.fmt.StatusTable(views))
	return nil
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Count reminders per status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rs, err := s.store.List(cmd.Context())
			if err != nil {
				return err
			}
			stats := reminder.ComputeStats(rs, s.today)
			if s.jsonOutput() {
				return s.printJSON(stats)
			}
			s.println(s.fmt.FormatStats(stats))
			return nil
		},
	}
}

// NewUpcomingCommand creates the upcoming command.
func NewUpcomingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upcoming",
		Short: "Show the digest of reminders whose window is open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rs, err := s.store.List(cmd.Context())
			if err != nil {
				return err
			}
			digest := notify.BuildDigest(rs, s.today)
			if s.jsonOutput() {
				return s.printJSON(digest)
			}
			if len(digest.Items) == 0 {
				s.println(s.fmt.FormatInfo("No upcoming reminders on " + s.today.String() + "."))
				return nil
			}

			renderer, err := notify.NewRenderer(s.cfg.Notify.Subject, s.cfg.Notify.Templates.Text, s.cfg.Notify.Templates.Markdown)
			if err != nil {
				return err
			}
			msg, err := renderer.Render(digest)
			if err != nil {
				return err
			}
			s.println(s.fmt.RenderMarkdown(msg.Markdown))
			return nil
		},
	}
}

// NewRenewCommand creates the renew command.
func NewRenewCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "renew",
		Short: "Create successors for expired auto-renewing reminders",
		Long: `Scan for expired reminders with auto_renew set and create the record
covering their next period. Reminders that already have a successor are
skipped, so running renew twice is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			rs, err := s.store.List(cmd.Context())
			if err != nil {
				return err
			}
			candidates := reminder.Candidates(rs, s.today)
			if len(candidates) == 0 && !s.jsonOutput() {
				s.println(s.fmt.FormatInfo("Nothing to renew."))
				return nil
			}

			if !yes && len(candidates) > 0 {
				for _, c := range candidates {
					fmt.Fprintf(s.out, "  %s (ended %s)\n", c.Name, c.EndDate)
				}
				ok, err := confirm(fmt.Sprintf("Renew %d reminder(s)? [y/N] ", len(candidates)))
				if err != nil {
					return err
				}
				if !ok {
					s.println(s.fmt.FormatInfo("Cancelled."))
					return nil
				}
			}

			res, err := reminder.NewEngine(s.store, s.log).Run(cmd.Context(), s.today)
			if err != nil {
				return err
			}
			if s.jsonOutput() {
				return s.printJSON(res.Report())
			}
			fmt.Fprint(s.out, s.fmt.FormatRenewal(res.Report()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func confirm(prompt string) (bool, error) {
	rl, err := ui.NewPrompt(prompt)
	if err != nil {
		return false, err
	}
	defer rl.Close()
	return ui.Confirm(rl)
}

// NewNotifyCommand creates the notify command.
func NewNotifyCommand(rootOpts *RootOptions) *cobra.Command {
	var channel string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Send the upcoming reminder digest",
		Long: `Send the digest of upcoming reminders to the configured channels,
or to the one named by --channel. Nothing is sent when no reminder is
upcoming.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootOpts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			gate, err := s.gate()
			if err != nil {
				return err
			}

			spinner := ui.NewSpinner(s.errOut, isTerminal(s.errOut))
			if isTerminal(s.errOut) {
				spinner.Start("Checking reminders…")
			}
			report, err := gate.Check(cmd.Context(), s.today, channel)
			spinner.Stop()
			if err != nil {
				return err
			}

			if s.jsonOutput() {
				return s.printJSON(report)
			}
			fmt.Fprint(s.out, s.fmt.FormatNotify(report))
			if report.Count == 0 {
				s.println()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "email, dingtalk or telegram (default: configured channels)")

	return cmd
}
