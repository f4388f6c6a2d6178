package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator resolves label keys in one language, falling back to English.
type Translator struct {
	Lang      string
	languages []string
	localizer *i18n.Localizer
}

// NewTranslator loads the embedded catalogs and selects lang.
// Unknown languages resolve through the English catalog.
func NewTranslator(lang string) *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	t := &Translator{Lang: lang}
	if t.Lang == "" {
		t.Lang = config.DefaultLanguage
	}

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return t
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		t.languages = append(t.languages, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	t.localizer = i18n.NewLocalizer(bundle, t.Lang, config.DefaultLanguage)
	return t
}

// Languages lists the loaded catalogs.
func (t *Translator) Languages() []string {
	return slices.Clone(t.languages)
}

// Msg translates key, returning the key itself when it is unknown.
func (t *Translator) Msg(key string) string {
	return t.MsgWith(key, nil)
}

// MsgWith translates key with template data.
func (t *Translator) MsgWith(key string, data map[string]any) string {
	if msg, ok := t.lookup(key, data); ok {
		return msg
	}
	return key
}

func (t *Translator) lookup(key string, data map[string]any) (string, bool) {
	if t == nil || t.localizer == nil {
		return "", false
	}
	msg, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return "", false
	}
	return msg, true
}

// TimelineDescription describes a timeline age; ages without their own label
// read "N years young".
func (t *Translator) TimelineDescription(entry engine.TimelineEntry) string {
	if msg, ok := t.lookup(entry.DescriptionKey, nil); ok {
		return msg
	}
	if msg, ok := t.lookup(config.TKeyTimelineYoung, map[string]any{"Age": entry.Age}); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackTimelineYoung, entry.Age)
}

// Celebration is the banner shown when a milestone is reached.
func (t *Translator) Celebration(subject engine.Subject, age int) string {
	data := map[string]any{"Name": subject.DisplayName(), "Age": age}
	if msg, ok := t.lookup(config.TKeyCelebrate, data); ok {
		return msg
	}
	return fmt.Sprintf(config.FallbackCelebrate, subject.DisplayName(), age)
}

// ApplyTo installs localized event summaries on feed.
func (t *Translator) ApplyTo(feed *engine.CalendarFeed) {
	feed.FormatSummary = func(name string, age int) string {
		return t.MsgWith(config.TKeyEvtSummary, map[string]any{"Name": name, "Age": age})
	}
	feed.FormatBirth = func(name string) string {
		return t.MsgWith(config.TKeyEvtSummaryBirth, map[string]any{"Name": name})
	}
	feed.FormatMilestone = func(name string, age int) string {
		return t.MsgWith(config.TKeyEvtMilestone, map[string]any{"Name": name, "Age": age})
	}
}

// CategoryTitle is the heading of a facts category.
func (t *Translator) CategoryTitle(category facts.Category) string {
	switch category {
	case facts.CategoryHistorical:
		return t.Msg(config.TKeyCatHistorical)
	case facts.CategoryPopCulture:
		return t.Msg(config.TKeyCatPopCulture)
	case facts.CategoryTechnology:
		return t.Msg(config.TKeyCatTechnology)
	case facts.CategoryCelebrities:
		return t.Msg(config.TKeyCatCelebrities)
	case facts.CategoryComparisons:
		return t.Msg(config.TKeyCatComparisons)
	}
	return string(category)
}
