// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"bytes"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tortoise-ln/tortoise/internal/logging"
)

func TestInit_LoadsEmbeddedLocales(t *testing.T) {
	Init("en")
	if Lang() != "en" {
		t.Fatalf("expected en, got %q", Lang())
	}
	langs := Supported()
	for _, want := range []string{"en", "de"} {
		if !slices.Contains(langs, want) {
			t.Fatalf("expected locale %q in %v", want, langs)
		}
	}
}

func TestT_TranslatesAndFormats(t *testing.T) {
	Init("en")
	if got := T("tab.dashboard"); got != "Dashboard" {
		t.Fatalf("expected Dashboard, got %q", got)
	}
	if got := T("spark.count", "12"); got != "24h relay count (max: 12)" {
		t.Fatalf("unexpected formatted text %q", got)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected id fallback, got %q", got)
	}

	Init("de")
	defer Init("en")
	if got := T("stats.title"); got != "Statistik" {
		t.Fatalf("expected German title, got %q", got)
	}
}

func TestInit_UnknownLanguageFallsBack(t *testing.T) {
	Init("%%")
	defer Init("en")
	if Lang() != "en" {
		t.Fatalf("expected fallback to en, got %q", Lang())
	}
	if got := T("tab.routing"); got != "Routing" {
		t.Fatalf("expected English text, got %q", got)
	}
}

func TestNumberAndSats_GroupDigits(t *testing.T) {
	Init("en")
	if got := Number(uint64(1234567)); got != "1,234,567" {
		t.Fatalf("expected grouped number, got %q", got)
	}
	if got := Sats(2_500_000_000); got != "2,500,000" {
		t.Fatalf("expected msat converted to sats, got %q", got)
	}
	if got := Sats(999); got != "0" {
		t.Fatalf("expected sub-sat amount to floor to 0, got %q", got)
	}

	Init("de")
	defer Init("en")
	if got := Number(int64(1234567)); got != "1.234.567" {
		t.Fatalf("expected German grouping, got %q", got)
	}
}

func TestLoadBundle_BrokenLocaleIsReported(t *testing.T) {
	var logs bytes.Buffer
	if err := logging.SetOutput(&logs, "warn"); err != nil {
		t.Fatalf("SetOutput: %v", err)
	}
	t.Cleanup(func() { _ = logging.SetOutput(os.Stderr, "warn") })

	fsys := fstest.MapFS{
		"locales/en.yaml": {Data: []byte("tab:\n  fiat: \"Fiat\"\n")},
		"locales/de.yaml": {Data: []byte("tab: [unclosed\n")},
	}
	b := loadBundle(fsys, "locales")

	if !strings.Contains(logs.String(), "de.yaml") {
		t.Fatalf("expected a warning naming de.yaml, got %q", logs.String())
	}
	msg, _ := i18n.NewLocalizer(b, "de").Localize(&i18n.LocalizeConfig{MessageID: "tab.fiat"})
	if msg != "Fiat" {
		t.Fatalf("expected English fallback, got %q", msg)
	}
}

// Run with -race: Supported reads the bundle while Init swaps it.
func TestSupported_ConcurrentWithInit(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				Init("en")
				return
			}
			if langs := Supported(); !slices.Contains(langs, "en") {
				t.Errorf("en missing from %v", langs)
			}
		}()
	}
	wg.Wait()
}
