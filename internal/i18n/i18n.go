// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n loads the embedded UI translations and formats numbers for
// the active language.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tortoise-ln/tortoise/internal/logging"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

var (
	mu        sync.RWMutex
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	printer   *message.Printer
	current   = "en"
)

// Init loads every embedded locale and activates lang. Unknown languages
// fall back to English.
func Init(lang string) {
	b := loadBundle(localeFS, "locales")

	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
		lang = "en"
	}

	mu.Lock()
	bundle = b
	localizer = i18n.NewLocalizer(b, lang)
	printer = message.NewPrinter(tag)
	current = lang
	mu.Unlock()
}

// Lang returns the active language code.
func Lang() string {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Supported lists the language codes that ship with the binary.
func Supported() []string {
	mu.RLock()
	b := bundle
	mu.RUnlock()
	if b == nil {
		Init("en")
		mu.RLock()
		b = bundle
		mu.RUnlock()
	}
	var out []string
	for _, t := range b.LanguageTags() {
		out = append(out, t.String())
	}
	return out
}

// loadBundle parses every yaml file in dir. A locale that fails to parse
// is skipped with a warning; its messages fall back to English.
func loadBundle(fsys fs.FS, dir string) *i18n.Bundle {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, err := fs.ReadDir(fsys, dir)
	if err != nil {
		logging.Warnf("i18n: reading %s: %v", dir, err)
		return b
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, f.Name()))
		if err != nil {
			logging.Warnf("i18n: reading locale %s: %v", f.Name(), err)
			continue
		}
		if _, err := b.ParseMessageFileBytes(data, f.Name()); err != nil {
			logging.Warnf("i18n: parsing locale %s: %v", f.Name(), err)
		}
	}
	return b
}

// T translates messageID. Extra args are applied with Sprintf semantics.
// A missing message yields the ID itself.
func T(messageID string, args ...any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		Init("en")
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: messageID})
	if err != nil {
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

// Printer returns a number-aware printer for the active language, so
// %d renders with the right digit grouping.
func Printer() *message.Printer {
	mu.RLock()
	p := printer
	mu.RUnlock()
	if p == nil {
		Init("en")
		mu.RLock()
		p = printer
		mu.RUnlock()
	}
	return p
}

// Number renders n with digit grouping.
func Number[T ~int | ~int64 | ~uint64 | ~uint32 | ~int32](n T) string {
	return Printer().Sprintf("%d", n)
}

// Sats renders a millisatoshi amount as whole satoshis with digit grouping.
func Sats(msat uint64) string {
	return Number(msat / 1000)
}
