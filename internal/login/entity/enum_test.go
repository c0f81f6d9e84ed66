package entity

import "testing"

func TestParsePageFlag(t *testing.T) {
	cases := []struct {
		raw  string
		want PageFlag
	}{
		{"login", PageFlagLogin},
		{"loginWithPass", PageFlagLoginWithPass},
		{"otp", PageFlagOTP},
		{"resend", PageFlagResend},
		{"", PageFlagRender},
		{"bogus", PageFlagRender},
		{"LOGIN", PageFlagRender},
	}

	for _, c := range cases {
		if got := ParsePageFlag(c.raw); got != c.want {
			t.Fatalf("ParsePageFlag(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestClassifyIdentifier(t *testing.T) {
	cases := []struct {
		name       string
		identifier string
		want       IdentifierKind
	}{
		{"TenDigitsIsPhone", "9876543210", IdentifierPhone},
		{"NineDigitsIsUnknown", "987654321", IdentifierUnknown},
		{"ElevenDigitsIsUnknown", "98765432100", IdentifierUnknown},
		{"PlusPrefixedIsUnknown", "+919876543210", IdentifierUnknown},
		{"DashedNumberIsUnknown", "987-654-3210", IdentifierUnknown},
		{"SimpleEmail", "user@example.com", IdentifierEmail},
		{"DottedLocalPart", "first.last@example.co.in", IdentifierEmail},
		{"PlusInLocalPart", "user+tag@example.com", IdentifierEmail},
		{"SingleLetterTLDIsUnknown", "user@example.c", IdentifierUnknown},
		{"MissingAtIsUnknown", "userexample.com", IdentifierUnknown},
		{"EmptyIsUnknown", "", IdentifierUnknown},
		{"PlainUsernameIsUnknown", "someuser", IdentifierUnknown},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := ClassifyIdentifier(c.identifier); got != c.want {
				t.Fatalf("ClassifyIdentifier(%q) = %v, want %v", c.identifier, got, c.want)
			}
		})
	}
}
