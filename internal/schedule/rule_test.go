package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		expr     string
		want     Rule
		wantSpec string
	}{
		{"0 */2 * * *", Rule{Kind: EveryNHours, Hours: 2}, "@every 2h"},
		{"", Rule{Kind: EveryNHours, Hours: 2}, "@every 2h"},
		{"15 * * * *", Rule{Kind: EveryHour}, "@every 1h"},
		{"30 6 * * *", Rule{Kind: DailyAt, Hour: 6, Minute: 30}, "30 6 * * *"},
		{"0 18", Rule{Kind: DailyAt, Hour: 18}, "0 18 * * *"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := ParseRule(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantSpec, got.Spec())
		})
	}
}

func TestParseRule_Invalid(t *testing.T) {
	for _, expr := range []string{"0", "0 */0 * * *", "0 */x * * *", "0 24 * * *", "* 6 * * *", "61 6 * * *"} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseRule(expr)
			assert.Error(t, err)
		})
	}
}

func TestRule_String(t *testing.T) {
	assert.Equal(t, "every 3 hours", Rule{Kind: EveryNHours, Hours: 3}.String())
	assert.Equal(t, "every hour", Rule{Kind: EveryHour}.String())
	assert.Equal(t, "daily at 06:05", Rule{Kind: DailyAt, Hour: 6, Minute: 5}.String())
}

func TestRule_Next(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	from := time.Date(2025, 5, 1, 7, 0, 0, 0, loc)

	next, err := Rule{Kind: DailyAt, Hour: 6, Minute: 30}.Next(from)
	require.NoError(t, err)
	assert.True(t, time.Date(2025, 5, 2, 6, 30, 0, 0, loc).Equal(next), "got %s", next)

	next, err = Rule{Kind: EveryNHours, Hours: 2}.Next(from)
	require.NoError(t, err)
	assert.True(t, from.Add(2*time.Hour).Equal(next), "got %s", next)
}
