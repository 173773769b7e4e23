package i18n

import (
	"testing"

	"golang.org/x/text/language"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input    string
		expected language.Tag
	}{
		{"", language.English},
		{"en", language.English},
		{"en-GB", language.English},
		{"English", language.English},
		{"es", language.Spanish},
		{"es-MX", language.Spanish},
		{"Español", language.Spanish},
		{"spanish", language.Spanish},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tag, err := ParseLocale(tt.input)
			if err != nil {
				t.Fatalf("ParseLocale(%q) error = %v", tt.input, err)
			}
			if tag != tt.expected {
				t.Errorf("ParseLocale(%q) = %v, expected %v", tt.input, tag, tt.expected)
			}
		})
	}

	for _, bad := range []string{"klingon!", "de", "ja"} {
		if _, err := ParseLocale(bad); err == nil {
			t.Errorf("ParseLocale(%q) expected error", bad)
		}
	}
}

func TestResolveAcceptLanguage(t *testing.T) {
	tests := map[string]language.Tag{
		"":                        language.English,
		"es-ES,es;q=0.9,en;q=0.8": language.Spanish,
		"en-US,en;q=0.9":          language.English,
		"fr-FR":                   language.English,
		";;;":                     language.English,
	}

	for header, expected := range tests {
		if got := ResolveAcceptLanguage(header); got != expected {
			t.Errorf("ResolveAcceptLanguage(%q) = %v, expected %v", header, got, expected)
		}
	}
}

func TestPrinterTranslates(t *testing.T) {
	en := Printer(language.English).Sprintf(MsgChartFiat)
	if en != "Future (Cash)" {
		t.Errorf("English chart label = %q", en)
	}

	es := Printer(language.Spanish).Sprintf(MsgChartFiat)
	if es != "Futuro (efectivo)" {
		t.Errorf("Spanish chart label = %q", es)
	}

	esMX := Printer(language.MustParse("es-MX")).Sprintf(MsgFiatTitle, "MXN")
	if esMX != "### Proyección en MXN" {
		t.Errorf("es-MX title = %q", esMX)
	}
}

func TestEveryEntryHasBothTranslations(t *testing.T) {
	seen := make(map[string]bool)
	for _, e := range entries {
		if e.en == "" || e.es == "" {
			t.Errorf("entry %s is missing a translation", e.key)
		}
		if seen[e.key] {
			t.Errorf("duplicate key %s", e.key)
		}
		seen[e.key] = true
	}
}
