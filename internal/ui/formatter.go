package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
)

var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")). // Coral red
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")) // Warm yellow

	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114")). // Green
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")). // Yellow
			Bold(true)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")). // Soft blue border
			Padding(0, 1)
)

// statusStyles colors each reminder status.
var statusStyles = map[reminder.Status]lipgloss.Style{
	reminder.StatusNormal:  SuccessStyle,
	reminder.StatusWarning: WarningStyle,
	reminder.StatusExpired: ErrorStyle,
}

type Formatter struct {
	colored bool
}

func NewFormatter(colored bool) *Formatter {
	return &Formatter{colored: colored}
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if f.colored {
		return style.Render(s)
	}
	return s
}

func (f *Formatter) FormatError(err error) string {
	return f.render(ErrorStyle, "Error: ") + err.Error()
}

func (f *Formatter) FormatInfo(info string) string {
	return f.render(InfoStyle, info)
}

func (f *Formatter) FormatSuccess(msg string) string {
	return f.render(SuccessStyle, "✓") + " " + msg
}

// FormatStatus renders a status name in its color.
func (f *Formatter) FormatStatus(s reminder.Status) string {
	style, ok := statusStyles[s]
	if !ok {
		return string(s)
	}
	return f.render(style, string(s))
}

// FormatStats renders the four counters on one line.
func (f *Formatter) FormatStats(s reminder.Stats) string {
	return fmt.Sprintf("%s %d   %s %d   %s %d   %s %d",
		f.render(HeaderStyle, "total"), s.Total,
		f.FormatStatus(reminder.StatusWarning), s.Warning,
		f.FormatStatus(reminder.StatusExpired), s.Expired,
		f.FormatStatus(reminder.StatusNormal), s.Normal,
	)
}

// FormatRenewal summarizes a renewal run.
func (f *Formatter) FormatRenewal(rep reminder.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d, created %d, skipped %d, failed %d\n",
		rep.Processed, rep.Created, rep.Skipped, rep.Failed)
	for _, r := range rep.CreatedReminders {
		b.WriteString(f.FormatSuccess(fmt.Sprintf("%s %s → %s", r.Name, r.StartDate, r.EndDate)) + "\n")
	}
	for _, fl := range rep.Failures {
		b.WriteString(f.render(ErrorStyle, "✗") + fmt.Sprintf(" %s (id %d): %s\n", fl.Name, fl.ID, fl.Error))
	}
	return b.String()
}

// FormatNotify summarizes a notification check.
func (f *Formatter) FormatNotify(rep notify.Report) string {
	if rep.Count == 0 {
		return f.FormatInfo("No upcoming reminders on " + rep.Today + ".")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d upcoming on %s: %s\n", rep.Count, rep.Today, strings.Join(rep.Names, ", "))
	for _, o := range rep.Results {
		switch o.Status {
		case notify.StatusSent:
			b.WriteString(f.FormatSuccess(o.Channel) + "\n")
		case notify.StatusSkipped:
			b.WriteString(f.render(WarningStyle, "-") + " " + o.Channel + " skipped: " + o.Error + "\n")
		default:
			b.WriteString(f.render(ErrorStyle, "✗") + " " + o.Channel + ": " + o.Error + "\n")
		}
	}
	return b.String()
}

// FormatBox wraps content in a styled box
func (f *Formatter) FormatBox(title, content string) string {
	if f.colored {
		return HeaderStyle.Render(title) + "\n" + BoxStyle.Render(content)
	}
	return title + "\n" + content
}
