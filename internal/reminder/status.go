package reminder

import "fmt"

// Status is the computed state of a reminder on a given day.
type Status string

const (
	StatusNormal  Status = "normal"
	StatusWarning Status = "warning"
	StatusExpired Status = "expired"
)

// ParseStatus accepts the lowercase status names.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNormal, StatusWarning, StatusExpired:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status %q (use normal, warning or expired)", s)
}

// ClassifyDates evaluates the status rules in priority order: a reminder
// past its end date is expired even when its reminder date has also passed.
// An end date equal to today is still active.
func ClassifyDates(end, reminderDate, today Date) Status {
	if end.Before(today) {
		return StatusExpired
	}
	if !reminderDate.After(today) {
		return StatusWarning
	}
	return StatusNormal
}

// Classify returns the status of r on today.
func Classify(r Reminder, today Date) Status {
	return ClassifyDates(r.EndDate, r.ReminderDate(), today)
}

// Stats counts reminders per status.
type Stats struct {
	Total   int `json:"total"`
	Warning int `json:"warning"`
	Expired int `json:"expired"`
	Normal  int `json:"normal"`
}

// ComputeStats folds Classify over rs.
func ComputeStats(rs []Reminder, today Date) Stats {
	var s Stats
	for _, r := range rs {
		s.Total++
		switch Classify(r, today) {
		case StatusWarning:
			s.Warning++
		case StatusExpired:
			s.Expired++
		default:
			s.Normal++
		}
	}
	return s
}

// IsUpcoming reports whether today falls inside r's notification window,
// reminder date through end date inclusive.
func IsUpcoming(r Reminder, today Date) bool {
	return !r.ReminderDate().After(today) && !today.After(r.EndDate)
}

// Upcoming returns the reminders whose window is open, in input order.
func Upcoming(rs []Reminder, today Date) []Reminder {
	var out []Reminder
	for _, r := range rs {
		if IsUpcoming(r, today) {
			out = append(out, r)
		}
	}
	return out
}

// UpcomingNames returns the names of Upcoming(rs, today).
func UpcomingNames(rs []Reminder, today Date) []string {
	names := []string{}
	for _, r := range Upcoming(rs, today) {
		names = append(names, r.Name)
	}
	return names
}

// FilterByStatus keeps the reminders classified as status.
func FilterByStatus(rs []Reminder, status Status, today Date) []Reminder {
	var out []Reminder
	for _, r := range rs {
		if Classify(r, today) == status {
			out = append(out, r)
		}
	}
	return out
}

// View is a reminder annotated with its status, as presented to clients.
type View struct {
	Reminder
	Status Status `json:"status"`
}

// Views classifies every reminder in rs.
func Views(rs []Reminder, today Date) []View {
	out := make([]View, 0, len(rs))
	for _, r := range rs {
		out = append(out, View{Reminder: r, Status: Classify(r, today)})
	}
	return out
}
