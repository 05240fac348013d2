package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"canonical passes through", "2024-03-15", "2024-03-15", false},
		{"whitespace trimmed", "  2024-03-15 ", "2024-03-15", false},
		{"day first slashes", "15/03/2024", "2024-03-15", false},
		{"year first slashes", "2024/03/15", "2024-03-15", false},
		{"single digit slash groups", "5/3/2024", "2024-03-05", false},
		{"long month name", "March 15, 2024", "2024-03-15", false},
		{"short month name", "Mar 15, 2024", "2024-03-15", false},
		{"day month year words", "15 Mar 2024", "2024-03-15", false},
		{"datetime cell", "2024-03-15 09:30:00", "2024-03-15", false},
		{"rfc3339", "2024-03-15T09:30:00Z", "2024-03-15", false},
		{"year in the middle", "03/2024/15", "", true},
		{"no four digit year", "03/04/05", "", true},
		{"two slash groups", "03/2024", "", true},
		{"invalid calendar day", "32/01/2024", "", true},
		{"invalid month day first", "15/13/2024", "", true},
		{"empty", "", "", true},
		{"blank", "   ", "", true},
		{"garbage", "not a date", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
