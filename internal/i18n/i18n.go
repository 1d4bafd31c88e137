// Package i18n holds the translated UI strings. Locale files are embedded;
// English is the fallback for any missing message.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	bundleErr  error
	supported  []language.Tag

	current atomic.Pointer[Localizer]
)

func loadBundle() (*i18n.Bundle, error) {
	bundleOnce.Do(func() {
		b := i18n.NewBundle(language.English)
		b.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			bundleErr = fmt.Errorf("read locales dir: %w", err)
			return
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			data, err := localeFS.ReadFile("locales/" + e.Name())
			if err != nil {
				bundleErr = fmt.Errorf("read locale file %s: %w", e.Name(), err)
				return
			}
			f, err := b.ParseMessageFileBytes(data, e.Name())
			if err != nil {
				bundleErr = fmt.Errorf("parse locale file %s: %w", e.Name(), err)
				return
			}
			supported = append(supported, f.Tag)
		}
		bundle = b
	})
	return bundle, bundleErr
}

// Localizer translates messages for one language preference list.
type Localizer struct {
	lang string
	loc  *i18n.Localizer
}

// New returns a Localizer for the given languages, most preferred first.
// Accept-Language values are accepted as-is.
func New(langs ...string) (*Localizer, error) {
	b, err := loadBundle()
	if err != nil {
		return nil, err
	}
	lang := "en"
	if len(langs) > 0 && langs[0] != "" {
		lang = langs[0]
	}
	return &Localizer{lang: lang, loc: i18n.NewLocalizer(b, langs...)}, nil
}

// Init selects the process-wide language used by T, Td and Tp.
func Init(lang string) error {
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}
	l, err := New(lang)
	if err != nil {
		return err
	}
	current.Store(l)
	return nil
}

// Default returns the process-wide Localizer, English until Init is called.
func Default() *Localizer {
	if l := current.Load(); l != nil {
		return l
	}
	l, err := New("en")
	if err != nil {
		// The embedded locales are part of the binary; failing to parse
		// them is a build defect.
		panic(err)
	}
	current.CompareAndSwap(nil, l)
	return current.Load()
}

// Supported returns the languages that have a locale file.
func Supported() []language.Tag {
	if _, err := loadBundle(); err != nil {
		return nil
	}
	return append([]language.Tag(nil), supported...)
}

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) string {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	avail := Supported()
	if len(avail) == 0 {
		return "en"
	}
	_, idx, conf := language.NewMatcher(avail).Match(tags...)
	if conf == language.No {
		return "en"
	}
	base, _ := avail[idx].Base()
	return base.String()
}

// Lang returns the language this Localizer was created for.
func (l *Localizer) Lang() string { return l.lang }

// T translates a message by ID.
func (l *Localizer) T(msgID string) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func (l *Localizer) Td(msgID string, data map[string]any) string {
	return l.localize(&i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp translates a pluralized message by ID. Count is available to the
// template.
func (l *Localizer) Tp(msgID string, count int) string {
	return l.localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (l *Localizer) localize(cfg *i18n.LocalizeConfig) string {
	s, err := l.loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "lang", l.lang, "error", err)
		if s == "" {
			return cfg.MessageID
		}
	}
	return s
}

// T translates with the process-wide Localizer.
func T(msgID string) string { return Default().T(msgID) }

// Td translates with template data using the process-wide Localizer.
func Td(msgID string, data map[string]any) string { return Default().Td(msgID, data) }

// Tp translates a pluralized message using the process-wide Localizer.
func Tp(msgID string, count int) string { return Default().Tp(msgID, count) }
