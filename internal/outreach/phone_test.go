package outreach

import "testing"

func TestNormalizeNumber(t *testing.T) {
	client, err := New(Config{AccountSID: "AC", AuthToken: "tok", VoiceCallerID: "+1555", DefaultCountryCode: "+52"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already international", "+525512345678", "+525512345678"},
		{"bare national number", "5512345678", "+525512345678"},
		{"spaces and dashes", "55 12-34 56.78", "+525512345678"},
		{"parens and plus", "+52 (55) 1234 5678", "+525512345678"},
		{"letters stripped", "55call12345678", "+525512345678"},
		{"empty", "   ", ""},
		{"no digits", "+-()", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := client.NormalizeNumber(tt.input); got != tt.want {
				t.Fatalf("NormalizeNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
