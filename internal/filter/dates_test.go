package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDateRelative(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{name: "now", token: "now", want: now},
		{name: "seconds", token: "now+30s", want: now.Add(30 * time.Second)},
		{name: "minutes", token: "now-15m", want: now.Add(-15 * time.Minute)},
		{name: "hours", token: "now+2h", want: now.Add(2 * time.Hour)},
		{name: "days", token: "now+7d", want: now.AddDate(0, 0, 7)},
		{name: "unit defaults to days", token: "now+7", want: now.AddDate(0, 0, 7)},
		{name: "weeks", token: "now-1w", want: now.AddDate(0, 0, -7)},
		{name: "months", token: "now+1M", want: now.AddDate(0, 1, 0)},
		{name: "years", token: "now-2y", want: now.AddDate(-2, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveDateAt(tt.token, now)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolveDateISO(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  time.Time
	}{
		{
			name:  "rfc3339",
			token: "2024-01-02T10:00:00Z",
			want:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "date time without zone",
			token: "2024-01-02T10:00:00",
			want:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			token: "2024-01-02",
			want:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveDate(tt.token)
			require.True(t, ok)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestResolveDateUnrecognized(t *testing.T) {
	tokens := []string{
		"",
		"tomorrow",
		"now+",
		"now+7x",
		"nownow",
		"2024-13-99nonsense",
		"not a date",
	}

	for _, token := range tokens {
		t.Run(token, func(t *testing.T) {
			_, ok := ResolveDate(token)
			assert.False(t, ok)
		})
	}
}

func TestResolveDateNowMinusWeekIsCloseToWallClock(t *testing.T) {
	got, ok := ResolveDate("now-1w")
	require.True(t, ok)

	want := time.Now().AddDate(0, 0, -7)
	assert.InDelta(t, want.Unix(), got.Unix(), 1)
}
