package reminder

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// wireDraft mirrors the persisted record shape with loose types so that
// decoding errors can be reported per field.
type wireDraft struct {
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Certifier   *string         `json:"certifier"`
	Handler     *string         `json:"handler"`
	Period      json.RawMessage `json:"period"`
	StartDate   *string         `json:"start_date"`
	EndDate     *string         `json:"end_date"`
	AdvanceDays json.RawMessage `json:"advance_days"`
	AutoRenew   json.RawMessage `json:"auto_renew"`
	RenewPeriod json.RawMessage `json:"renew_period"`
}

// DecodeDraft parses a reminder record in wire format, validates it and
// normalizes derived fields. Any client supplied actual_reminder_date is
// discarded. All failures are ValidationErrors.
func DecodeDraft(data []byte) (Draft, error) {
	var w wireDraft
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&w); err != nil {
		return Draft{}, NewValidationError("body", "invalid JSON: "+err.Error())
	}

	d := Draft{
		Name: w.Name,
		Type: w.Type,
	}
	if w.Certifier != nil {
		d.Certifier = *w.Certifier
	}
	if w.Handler != nil {
		d.Handler = *w.Handler
	}

	var err error
	if d.Period, err = looseInt("period", w.Period); err != nil {
		return Draft{}, err
	}
	if d.AdvanceDays, err = looseInt("advance_days", w.AdvanceDays); err != nil {
		return Draft{}, err
	}
	if d.RenewPeriod, err = looseInt("renew_period", w.RenewPeriod); err != nil {
		return Draft{}, err
	}
	if d.StartDate, err = looseDate("start_date", w.StartDate); err != nil {
		return Draft{}, err
	}
	if d.EndDate, err = looseDate("end_date", w.EndDate); err != nil {
		return Draft{}, err
	}
	if len(w.AutoRenew) > 0 {
		if err := d.AutoRenew.UnmarshalJSON(w.AutoRenew); err != nil {
			return Draft{}, NewValidationError("auto_renew", err.Error())
		}
	}

	d.Normalize()
	if err := d.Validate(); err != nil {
		return Draft{}, err
	}
	return d, nil
}

// looseInt accepts a JSON number, a numeric string, "" or null.
func looseInt(field string, raw json.RawMessage) (int, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, nil
	}
	s = strings.Trim(s, `"`)
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, NewValidationError(field, field+" must be an integer")
	}
	return n, nil
}

func looseDate(field string, s *string) (Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return Date{}, nil
	}
	d, err := ParseDate(strings.TrimSpace(*s))
	if err != nil {
		return Date{}, NewValidationError(field, err.Error())
	}
	return d, nil
}
