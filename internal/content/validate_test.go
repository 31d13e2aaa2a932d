package content

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestValidateInlineHome(t *testing.T) {
	cases := []struct {
		name    string
		field   string
		value   string
		want    string
		wantErr bool
	}{
		{"required title", "welcomeTitle", "", "", true},
		{"title ok", "welcomeTitle", "Welcome", "Welcome", false},
		{"trims", "principalName", "  Dr. Rao  ", "Dr. Rao", false},
		{"year ok", "yearEstablished", "1985", "1985", false},
		{"year too old", "yearEstablished", "1492", "", true},
		{"year garbage", "yearEstablished", "198", "", true},
		{"year optional", "yearEstablished", "", "", false},
		{"students ok", "students", "1,200+", "1,200+", false},
		{"students bad", "students", "many", "", true},
		{"rate bare", "successRate", "85", "85%", false},
		{"rate with sign", "successRate", "85%", "85%", false},
		{"rate out of range", "successRate", "150", "", true},
		{"rate not a number", "successRate", "high", "", true},
		{"rate optional", "successRate", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateInline(SectionHome, tc.field, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				var ve *ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("error is %T, want *ValidationError", err)
				}
				if ve.Field != tc.field {
					t.Errorf("error field = %q", ve.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateInlinePrincipalMessage(t *testing.T) {
	ok := strings.Repeat("a", PrincipalMessageLimit)
	if _, err := ValidateInline(SectionHome, "principalMessage", ok); err != nil {
		t.Errorf("message at limit rejected: %v", err)
	}
	if _, err := ValidateInline(SectionHome, "principalMessage", ok+"b"); err == nil {
		t.Errorf("message over limit accepted")
	}
	if got := TruncatePrincipalMessage(ok + "overflow"); got != ok {
		t.Errorf("truncate kept %d characters", len(got))
	}

	// The cap counts characters, so a multibyte message under the limit
	// passes even when its byte length exceeds it.
	devanagari := strings.Repeat("श", 400)
	if _, err := ValidateInline(SectionHome, "principalMessage", devanagari); err != nil {
		t.Errorf("400-character multibyte message rejected: %v", err)
	}
	if got := TruncatePrincipalMessage(devanagari); got != devanagari {
		t.Errorf("multibyte message under limit truncated to %d runes", utf8.RuneCountInString(got))
	}
	long := strings.Repeat("श", PrincipalMessageLimit+50)
	truncated := TruncatePrincipalMessage(long)
	if utf8.RuneCountInString(truncated) != PrincipalMessageLimit {
		t.Errorf("truncated to %d runes", utf8.RuneCountInString(truncated))
	}
	if !utf8.ValidString(truncated) {
		t.Errorf("truncation produced invalid UTF-8")
	}
}

func TestValidateInlineContact(t *testing.T) {
	cases := []struct {
		name    string
		field   string
		value   string
		wantErr bool
	}{
		{"required address", "address", "", true},
		{"address ok", "address", "12 New Road", false},
		{"phone list ok", "phone", "+91 11111, (011) 222-333", false},
		{"phone bad entry", "phone", "+91 11111, not-a-phone!", true},
		{"phone optional", "phone", "", false},
		{"email list ok", "email", "a@x.example, b@y.example", false},
		{"email bad entry", "email", "a@x.example, nope", true},
		{"facebook ok", "facebook", "https://facebook.com/school", false},
		{"facebook bare domain", "facebook", "facebook.com/school", false},
		{"facebook garbage", "facebook", "not a link", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ValidateInline(SectionContact, tc.field, tc.value)
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
