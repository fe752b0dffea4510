package reminder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rem(id int64, name, end string, advance int) Reminder {
	d := Draft{Name: name, EndDate: MustParseDate(end), AdvanceDays: advance}
	d.Normalize()
	return Reminder{ID: id, Draft: d}
}

func TestClassify(t *testing.T) {
	today := MustParseDate("2024-06-15")

	tests := []struct {
		name string
		r    Reminder
		want Status
	}{
		{"past end date", rem(1, "a", "2024-06-01", 7), StatusExpired},
		{"inside window", rem(2, "b", "2024-06-20", 10), StatusWarning},
		{"before window", rem(3, "c", "2024-07-01", 6), StatusNormal},
		{"ends today", rem(4, "d", "2024-06-15", 0), StatusWarning},
		{"window opens today", rem(5, "e", "2024-06-25", 10), StatusWarning},
		{"window opens tomorrow", rem(6, "f", "2024-06-26", 10), StatusNormal},
		{"expired wins over warning", rem(7, "g", "2024-06-14", 30), StatusExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.r, today))
		})
	}
}

func TestClassifyIgnoresStaleStoredDate(t *testing.T) {
	r := rem(1, "a", "2024-07-01", 30)
	r.ActualReminderDate = MustParseDate("2024-06-30")

	assert.Equal(t, StatusWarning, Classify(r, MustParseDate("2024-06-15")))
}

func TestComputeStats(t *testing.T) {
	today := MustParseDate("2024-06-15")
	rs := []Reminder{
		rem(1, "expired", "2024-06-01", 7),
		rem(2, "warning", "2024-06-20", 10),
		rem(3, "normal", "2024-07-01", 6),
	}

	assert.Equal(t, Stats{Total: 3, Warning: 1, Expired: 1, Normal: 1}, ComputeStats(rs, today))
	assert.Equal(t, Stats{}, ComputeStats(nil, today))
}

func TestUpcoming(t *testing.T) {
	today := MustParseDate("2024-06-15")
	rs := []Reminder{
		rem(1, "expired", "2024-06-01", 7),
		rem(2, "open", "2024-06-20", 10),
		rem(3, "later", "2024-07-01", 6),
		rem(4, "last day", "2024-06-15", 3),
	}

	assert.Equal(t, []string{"open", "last day"}, UpcomingNames(rs, today))
	assert.Equal(t, []string{}, UpcomingNames(nil, today))
}

func TestFilterByStatus(t *testing.T) {
	today := MustParseDate("2024-06-15")
	rs := []Reminder{
		rem(1, "expired", "2024-06-01", 7),
		rem(2, "warning", "2024-06-20", 10),
	}

	got := FilterByStatus(rs, StatusExpired, today)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Empty(t, FilterByStatus(rs, StatusNormal, today))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("warning")
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, s)

	_, err = ParseStatus("overdue")
	assert.Error(t, err)
}
