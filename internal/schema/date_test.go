package schema

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	// Wednesday
	now := time.Date(2024, 3, 13, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-03-15", want: "2024-03-15"},
		{in: "2024-03-15T10:30:00Z", want: "2024-03-15"},
		{in: "15.03.2024", want: "2024-03-15"},
		{in: "tomorrow", want: "2024-03-14"},
		{in: "", wantErr: true},
		{in: "zzz qqq", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %q, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
