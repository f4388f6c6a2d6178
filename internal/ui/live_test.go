package ui_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
	"github.com/Talos-git/cosmic-birthday/internal/ui"
)

func newLiveView(format string) (*ui.LiveView, *bytes.Buffer) {
	var buf bytes.Buffer
	r := ui.NewRenderer(&buf, ui.NewTranslator("en"), format)
	return ui.NewLiveView(r, time.Second), &buf
}

func TestLiveView_AppendsWithoutTerminal(t *testing.T) {
	v, buf := newLiveView(config.OutputPlain)
	assert.False(t, v.Redraw)

	stats := testStats(t)
	v.OnStats(testSubject(), stats)
	v.OnStats(testSubject(), stats)

	out := buf.String()
	assert.Equal(t, 2, strings.Count(out, "Subject: Ada (France)"))
	assert.NotContains(t, out, "\033[2J")
	assert.NotContains(t, out, "Press Ctrl+C")
}

func TestLiveView_CelebrationPersists(t *testing.T) {
	v, buf := newLiveView(config.OutputPlain)
	subject := testSubject()

	v.Celebrate(subject, 40)
	v.OnStats(subject, testStats(t))

	assert.Equal(t, 2, strings.Count(buf.String(), "Happy milestone, Ada! 40 years!"))
}

func TestLiveView_FactsPrintedOnce(t *testing.T) {
	v, buf := newLiveView(config.OutputPlain)

	v.SetFacts(facts.Result{Facts: facts.Facts{PopCulture: []string{"A fact"}}, Source: config.SourceRemote})
	v.OnStats(testSubject(), testStats(t))
	v.OnStats(testSubject(), testStats(t))

	assert.Equal(t, 1, strings.Count(buf.String(), "  - A fact"))
}

func TestLiveView_Redraw(t *testing.T) {
	v, buf := newLiveView(config.OutputTable)
	v.Redraw = true

	v.SetFacts(facts.Result{Facts: facts.Facts{PopCulture: []string{"A fact"}}, Personalized: true, Source: config.SourceRemote})
	assert.Empty(t, buf.String(), "facts wait for the next redraw")

	v.OnStats(testSubject(), testStats(t))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\033[H\033[2JCosmic Birthday\n"))
	assert.Contains(t, out, "  - A fact")
	assert.Contains(t, out, "Refreshing every 1s")
	assert.Contains(t, out, "Press Ctrl+C to stop")
}

func TestLiveView_OnError(t *testing.T) {
	v, buf := newLiveView(config.OutputPlain)

	v.OnError(engine.Subject{}, errors.New("clock failure"))

	assert.Equal(t, "Live updates stopped: clock failure\n", buf.String())
}

func TestLiveView_IsObserver(t *testing.T) {
	var _ engine.Observer = &ui.LiveView{}
}
