package grading

import "testing"

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{" Café ", "café"},
		{"I am, fine!", "i am fine"},
		{"it's   \"quoted\"", "its quoted"},
		{"(He said: hello?)", "he said hello"},
		{"", ""},
		{"  \t \n ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
