package language

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"eng", "eng", true},
		{"ENG", "eng", true},
		{" en ", "eng", true},
		{"fr", "fra", true},
		{"fre", "fra", true},
		{"French", "fra", true},
		{"Français", "fra", true},
		{"ger", "deu", true},
		{"deutsch", "deu", true},
		{"chi", "zho", true},
		{"pt-BR", "por", true},
		{"fr-CA", "fra", true},
		{"xyz", "", false},
		{"klingon", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := Normalize(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Normalize(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestIsSupportedRequiresStoredCode(t *testing.T) {
	if !IsSupported("fra") {
		t.Fatal("expected fra supported")
	}
	for _, code := range []string{"fre", "fr", "FRA", "French", ""} {
		if IsSupported(code) {
			t.Errorf("IsSupported(%q) = true, want false", code)
		}
	}
}

func TestSupportedCodesAreCanonical(t *testing.T) {
	tags := Supported()
	if len(tags) == 0 {
		t.Fatal("expected supported languages")
	}
	if tags[0].Code != Default {
		t.Fatalf("expected default language listed first, got %q", tags[0].Code)
	}
	seen := map[string]bool{}
	for _, tag := range tags {
		if len(tag.Code) != 3 {
			t.Errorf("code %q is not three letters", tag.Code)
		}
		if seen[tag.Code] {
			t.Errorf("duplicate code %q", tag.Code)
		}
		seen[tag.Code] = true
		if got, ok := Normalize(tag.Code); !ok || got != tag.Code {
			t.Errorf("Normalize(%q) = (%q, %v), want round trip", tag.Code, got, ok)
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"eng", "English"},
		{"spa", "Spanish"},
		{"fra", "French"},
		{"", "Unknown"},
		{"xyz", "XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Label(tt.input); got != tt.expected {
				t.Errorf("Label(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
