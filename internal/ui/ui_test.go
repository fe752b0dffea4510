package ui

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/chzyer/readline"
	"github.com/notexe/reminder-tracker/internal/notify"
	"github.com/notexe/reminder-tracker/internal/reminder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view(id int64, name, end string, advance int, today string) reminder.View {
	d := reminder.Draft{Name: name, Type: "certification", EndDate: reminder.MustParseDate(end), AdvanceDays: advance}
	d.Normalize()
	r := reminder.Reminder{ID: id, Draft: d}
	return reminder.View{Reminder: r, Status: reminder.Classify(r, reminder.MustParseDate(today))}
}

func TestStatusTablePlain(t *testing.T) {
	f := NewFormatter(false)
	out := f.StatusTable([]reminder.View{
		view(1, "ISO 27001", "2024-06-20", 10, "2024-06-15"),
		view(2, "Lease", "2024-06-01", 0, "2024-06-15"),
	})

	assert.Contains(t, out, "Status")
	assert.Contains(t, out, "ISO 27001")
	assert.Contains(t, out, "2024-06-10")
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "expired")
	assert.NotContains(t, out, "\x1b[")
}

func TestFormatStatsPlain(t *testing.T) {
	f := NewFormatter(false)
	assert.Equal(t, "total 3   warning 1   expired 1   normal 1",
		f.FormatStats(reminder.Stats{Total: 3, Warning: 1, Expired: 1, Normal: 1}))
}

func TestFormatRenewalPlain(t *testing.T) {
	f := NewFormatter(false)
	created := view(7, "ISO", "2024-04-09", 5, "2024-02-01").Reminder
	created.StartDate = reminder.MustParseDate("2024-01-11")

	out := f.FormatRenewal(reminder.Report{
		Summary:          reminder.Summary{Processed: 2, Created: 1, Failed: 1},
		CreatedReminders: []reminder.Reminder{created},
		Failures:         []reminder.FailureReport{{ID: 3, Name: "SOC2", Error: "disk full"}},
	})

	assert.Contains(t, out, "Processed 2, created 1, skipped 0, failed 1")
	assert.Contains(t, out, "✓ ISO 2024-01-11 → 2024-04-09")
	assert.Contains(t, out, "✗ SOC2 (id 3): disk full")
}

func TestFormatNotifyPlain(t *testing.T) {
	f := NewFormatter(false)

	assert.Equal(t, "No upcoming reminders on 2024-06-15.", f.FormatNotify(notify.Report{Today: "2024-06-15"}))

	out := f.FormatNotify(notify.Report{
		Today: "2024-06-15", Count: 2, Names: []string{"ISO", "Lease"},
		Results: []notify.Outcome{
			{Channel: "email", Status: notify.StatusSent},
			{Channel: "dingtalk", Status: notify.StatusSkipped, Error: "not configured"},
			{Channel: "telegram", Status: notify.StatusFailed, Error: "timeout"},
		},
	})
	assert.Contains(t, out, "2 upcoming on 2024-06-15: ISO, Lease")
	assert.Contains(t, out, "✓ email")
	assert.Contains(t, out, "- dingtalk skipped: not configured")
	assert.Contains(t, out, "✗ telegram: timeout")
}

func TestRenderMarkdownPlainPassthrough(t *testing.T) {
	md := "### Reminders\n\n- **ISO**"
	assert.Equal(t, md, NewFormatter(false).RenderMarkdown(md))
}

func TestRenderMarkdownColored(t *testing.T) {
	out := NewFormatter(true).RenderMarkdown("### Reminders\n\n- **ISO**")
	assert.Contains(t, out, "ISO")
	assert.Contains(t, out, "Reminders")
}

type scriptedReader struct {
	line string
	err  error
}

func (s scriptedReader) Readline() (string, error) { return s.line, s.err }

func TestConfirm(t *testing.T) {
	tests := []struct {
		name string
		in   scriptedReader
		want bool
	}{
		{"yes", scriptedReader{line: "yes"}, true},
		{"y upper", scriptedReader{line: " Y "}, true},
		{"no", scriptedReader{line: "n"}, false},
		{"empty", scriptedReader{line: ""}, false},
		{"eof", scriptedReader{err: io.EOF}, false},
		{"interrupt", scriptedReader{err: readline.ErrInterrupt}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := Confirm(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := Confirm(scriptedReader{err: errors.New("tty gone")})
	assert.Error(t, err)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var out syncBuffer
	s := NewSpinner(&out, false)

	s.Start("sending")
	assert.Eventually(t, func() bool { return strings.Contains(out.String(), "sending") }, 2*time.Second, 10*time.Millisecond)
	s.Stop()
	s.Stop()

	assert.True(t, strings.HasSuffix(out.String(), "\r\033[K"))
}

func TestFormatErrorPlain(t *testing.T) {
	assert.Equal(t, "Error: disk full", NewFormatter(false).FormatError(errors.New("disk full")))
}
