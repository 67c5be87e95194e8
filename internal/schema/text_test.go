package schema

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"İBRAHİM HALİL BOZDAĞ", "ibrahim halil bozdağ"},
		{"  Nike ", "nike"},
		{"ÖNCÜ", "öncü"},
	}
	for _, tt := range tests {
		if Fold(tt.a) != Fold(tt.b) {
			t.Errorf("Fold(%q) = %q, Fold(%q) = %q; want equal", tt.a, Fold(tt.a), tt.b, Fold(tt.b))
		}
	}
}
