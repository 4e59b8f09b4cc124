package wire

import "testing"

func TestIsKnownVersion(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"HTTP/1.0", true},
		{"HTTP/1.1", true},
		{"HTTP/2", true},
		{"HTTP/3", true},
		{"HTTP/0.9", false},
		{"ftp/1.1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsKnownVersion(tt.tok); got != tt.want {
			t.Errorf("IsKnownVersion(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestReasonPhrase(t *testing.T) {
	if got := ReasonPhrase(200); got != "OK" {
		t.Errorf("ReasonPhrase(200) = %q, want OK", got)
	}
	if got := ReasonPhrase(202); got != "Accepted" {
		t.Errorf("ReasonPhrase(202) = %q, want Accepted", got)
	}
	if got := ReasonPhrase(999); got != "" {
		t.Errorf("ReasonPhrase(999) = %q, want empty", got)
	}
}
