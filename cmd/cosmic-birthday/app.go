package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
	"github.com/Talos-git/cosmic-birthday/internal/ui"
)

// app carries what every command shares once flags are parsed.
type app struct {
	v        *viper.Viper
	settings config.Settings
	out      io.Writer
	errOut   io.Writer
	clock    engine.Clock

	logCloser io.Closer
}

func newApp(out, errOut io.Writer) *app {
	return &app{
		v:      viper.New(),
		out:    out,
		errOut: errOut,
		clock:  engine.RealClock{},
	}
}

func (a *app) close() {
	if a.logCloser != nil {
		_ = a.logCloser.Close()
		a.logCloser = nil
	}
}

// instantLayouts are tried in order for --at.
var instantLayouts = []string{
	config.DateFormatRFC3339,
	config.DateFormatFullT,
	config.DateFormatMinutes,
	config.DateFormatFullDash,
}

// evaluationClock is the real clock, or a frozen one when --at is set.
func (a *app) evaluationClock(at string) (engine.Clock, error) {
	if at == "" {
		return a.clock, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, at, time.Local); err == nil {
			return engine.ClockFunc(func() time.Time { return t }), nil
		}
	}
	return nil, engine.NewError(engine.CodeInvalidInput, fmt.Sprintf("%s: %q", config.ErrDateParse, at))
}

// subject resolves the person from --vcard or --birth.
func (a *app) subject(ctx context.Context, now time.Time) (engine.Subject, error) {
	s := a.settings
	country, err := engine.NormalizeCountry(s.Country)
	if err != nil {
		return engine.Subject{}, err
	}

	var subject engine.Subject
	switch {
	case s.VCard != "":
		f, err := engine.OpenVCard(ctx, engine.NewHTTPFetcher(), s.VCard)
		if err != nil {
			return engine.Subject{}, err
		}
		defer func() { _ = f.Close() }()

		subject, err = engine.ImportVCard(ctx, f, s.Name, time.Local)
		if err != nil {
			return engine.Subject{}, err
		}
		subject.Country = country

	case s.Birth != "":
		birth, err := engine.ParseBirthDate(s.Birth, time.Local)
		if err != nil {
			return engine.Subject{}, err
		}
		subject = engine.NewSubject(s.Name, birth, country)

	default:
		return engine.Subject{}, engine.NewError(engine.CodeInvalidInput, config.ErrBirthMissing)
	}

	if err := engine.ValidateBirth(subject.Birth, now); err != nil {
		return engine.Subject{}, err
	}

	slog.Debug(config.MsgSubjectLoaded,
		config.LogKeyComponent, config.CompMain,
		config.LogKeySubject, subject.ID.String(),
		config.LogKeyBirth, subject.Birthdate(),
		config.LogKeyCountry, subject.Country,
	)
	return subject, nil
}

func (a *app) translator() *ui.Translator {
	return ui.NewTranslator(a.settings.Lang)
}

func (a *app) renderer() *ui.Renderer {
	return ui.NewRenderer(a.out, a.translator(), a.settings.Output)
}

// factsService prefers the remote generator when a URL is configured.
func (a *app) factsService(clock engine.Clock, rec facts.Recorder) (*facts.Service, error) {
	svc := facts.NewService(nil, facts.NewGenerator(clock))
	svc.Recorder = rec

	if a.settings.FactsURL == "" {
		slog.Debug(config.MsgFactsLocal, config.LogKeyComponent, config.CompFacts)
		return svc, nil
	}

	key, err := config.ResolveFactsKey(a.settings.FactsKey)
	if err != nil {
		return nil, err
	}
	client := facts.NewClient(a.settings.FactsURL, key)
	client.Recorder = rec
	svc.Remote = client
	return svc, nil
}

func (a *app) feedConfig() engine.FeedConfig {
	return engine.FeedConfig{
		ReminderTrigger: a.settings.Calendar.Reminder,
		SpanYears:       config.DefaultFeedSpanYears,
	}
}
