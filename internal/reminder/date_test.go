package reminder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-06-15", d.String())

	for _, bad := range []string{"", "2024/06/15", "2024-02-30", "15-06-2024", "2024-6-1"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDeriveReminderDate(t *testing.T) {
	tests := []struct {
		end     string
		advance int
		want    string
	}{
		{"2024-06-20", 10, "2024-06-10"},
		{"2024-03-10", 15, "2024-02-24"},
		{"2025-03-10", 15, "2025-02-23"},
		{"2024-01-05", 10, "2023-12-26"},
		{"2024-06-01", 0, "2024-06-01"},
	}
	for _, tt := range tests {
		got := DeriveReminderDate(MustParseDate(tt.end), tt.advance)
		assert.Equal(t, tt.want, got.String(), "end=%s advance=%d", tt.end, tt.advance)
	}
}

func TestDaysBetween(t *testing.T) {
	a := MustParseDate("2024-01-11")
	assert.Equal(t, 89, DaysBetween(a, MustParseDate("2024-04-09")))
	assert.Equal(t, -10, DaysBetween(a, MustParseDate("2024-01-01")))
	assert.Equal(t, 0, DaysBetween(a, a))
}

func TestAddYearsLeapDay(t *testing.T) {
	assert.Equal(t, "2025-03-01", MustParseDate("2024-02-29").AddYears(1).String())
	assert.Equal(t, "2025-01-10", MustParseDate("2024-01-10").AddYears(1).String())
}

func TestToday(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC) }

	assert.Equal(t, "2024-01-01", Today(now, time.UTC).String())
	assert.Equal(t, "2024-01-02", Today(now, time.FixedZone("CST", 8*3600)).String())
}

func TestDateJSON(t *testing.T) {
	type doc struct {
		D Date `json:"d"`
	}

	out, err := json.Marshal(doc{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":null}`, string(out))

	out, err = json.Marshal(doc{D: MustParseDate("2024-06-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-06-01"}`, string(out))

	var in doc
	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &in))
	assert.True(t, in.D.IsZero())
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-02-29"}`), &in))
	assert.Equal(t, "2024-02-29", in.D.String())
	assert.Error(t, json.Unmarshal([]byte(`{"d":20240229}`), &in))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-01-05 10:00:00"))
	assert.Equal(t, "2024-01-05", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))

	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
