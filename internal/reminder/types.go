package reminder

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultRenewPeriod is the renewal span in days used when a reminder does
// not set one.
const DefaultRenewPeriod = 365

// Draft holds every persisted field of a reminder except its ID.
type Draft struct {
	Name               string `json:"name"`
	Type               string `json:"type"`
	Certifier          string `json:"certifier,omitempty"`
	Handler            string `json:"handler,omitempty"`
	Period             int    `json:"period,omitempty"`
	StartDate          Date   `json:"start_date"`
	EndDate            Date   `json:"end_date"`
	AdvanceDays        int    `json:"advance_days"`
	ActualReminderDate Date   `json:"actual_reminder_date"`
	AutoRenew          Flag   `json:"auto_renew"`
	RenewPeriod        int    `json:"renew_period,omitempty"`
}

// Reminder is a stored compliance/renewal item.
type Reminder struct {
	ID int64 `json:"id"`
	Draft
}

// Normalize trims text fields and recomputes ActualReminderDate from
// EndDate and AdvanceDays.
func (d *Draft) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.TrimSpace(d.Type)
	d.Certifier = strings.TrimSpace(d.Certifier)
	d.Handler = strings.TrimSpace(d.Handler)
	if d.EndDate.IsZero() {
		d.ActualReminderDate = Date{}
		return
	}
	d.ActualReminderDate = DeriveReminderDate(d.EndDate, d.AdvanceDays)
}

// Validate reports the first field that breaks the data model rules.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if d.EndDate.IsZero() {
		return NewValidationError("end_date", "end_date is required")
	}
	if d.AdvanceDays < 0 {
		return NewValidationError("advance_days", "advance_days must not be negative")
	}
	if d.Period < 0 {
		return NewValidationError("period", "period must not be negative")
	}
	if d.RenewPeriod < 0 {
		return NewValidationError("renew_period", "renew_period must not be negative")
	}
	return nil
}

// ReminderDate is the derived activation date. It ignores the stored
// ActualReminderDate so stale rows still classify correctly.
func (d Draft) ReminderDate() Date {
	return DeriveReminderDate(d.EndDate, d.AdvanceDays)
}

// EffectiveRenewPeriod is RenewPeriod, or DefaultRenewPeriod when unset.
func (d Draft) EffectiveRenewPeriod() int {
	if d.RenewPeriod > 0 {
		return d.RenewPeriod
	}
	return DefaultRenewPeriod
}

// Flag is a boolean that also accepts the 0/1 encodings older clients and
// SQLite rows use.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	v, err := parseFlag(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

func parseFlag(s string) (Flag, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "on", "yes":
		return true, nil
	case "0", "false", "off", "no", "", "null":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
