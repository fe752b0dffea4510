package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/notexe/reminder-tracker/internal/reminder"
)

// Item is one upcoming reminder as seen by the templates.
type Item struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Certifier    string `json:"certifier"`
	Handler      string `json:"handler"`
	EndDate      string `json:"end_date"`
	ReminderDate string `json:"reminder_date"`
	DaysLeft     int    `json:"days_left"`
}

// Digest is the template data for one notification.
type Digest struct {
	Today string `json:"today"`
	Items []Item `json:"items"`
}

// BuildDigest collects the reminders whose window is open on today.
func BuildDigest(rs []reminder.Reminder, today reminder.Date) Digest {
	d := Digest{Today: today.String()}
	for _, r := range reminder.Upcoming(rs, today) {
		d.Items = append(d.Items, Item{
			ID:           r.ID,
			Name:         r.Name,
			Type:         r.Type,
			Certifier:    r.Certifier,
			Handler:      r.Handler,
			EndDate:      r.EndDate.String(),
			ReminderDate: r.ReminderDate().String(),
			DaysLeft:     reminder.DaysBetween(today, r.EndDate),
		})
	}
	return d
}

// Message is a rendered digest. Channels pick the body they support.
type Message struct {
	Subject  string
	Text     string
	Markdown string
}

// Renderer turns a Digest into a Message.
type Renderer struct {
	subject  string
	text     *template.Template
	markdown *template.Template
}

// NewRenderer parses the text and markdown templates. Both get the sprig
// function set plus plural.
func NewRenderer(subject, textTmpl, markdownTmpl string) (*Renderer, error) {
	text, err := parseTemplate("text", textTmpl)
	if err != nil {
		return nil, err
	}
	md, err := parseTemplate("markdown", markdownTmpl)
	if err != nil {
		return nil, err
	}
	return &Renderer{subject: subject, text: text, markdown: md}, nil
}

func parseTemplate(name, src string) (*template.Template, error) {
	t, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{"plural": plural}).
		Option("missingkey=error").
		Parse(src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return t, nil
}

// Render executes both templates against d.
func (r *Renderer) Render(d Digest) (Message, error) {
	var text, md bytes.Buffer
	if err := r.text.Execute(&text, d); err != nil {
		return Message{}, fmt.Errorf("failed to render text digest: %w", err)
	}
	if err := r.markdown.Execute(&md, d); err != nil {
		return Message{}, fmt.Errorf("failed to render markdown digest: %w", err)
	}
	return Message{Subject: r.subject, Text: text.String(), Markdown: md.String()}, nil
}

func plural(n int, word string) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
