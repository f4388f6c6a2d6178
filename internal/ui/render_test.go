package ui_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
	"github.com/Talos-git/cosmic-birthday/internal/ui"
)

var (
	testBirth = time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC)
	testNow   = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
)

func testSubject() engine.Subject {
	return engine.NewSubject("Ada", testBirth, "FR")
}

func testStats(t *testing.T) engine.AgeStats {
	t.Helper()
	stats, err := engine.Calculate(testBirth, testNow)
	require.NoError(t, err)
	return stats
}

func newRenderer(format string) (*ui.Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	return ui.NewRenderer(&buf, ui.NewTranslator("en"), format), &buf
}

func TestNewRenderer_Defaults(t *testing.T) {
	r, _ := newRenderer("")
	assert.Equal(t, config.OutputTable, r.Format)
	assert.False(t, r.UseColors, "a buffer is not a terminal")
}

func TestRenderer_StatsTable(t *testing.T) {
	r, buf := newRenderer(config.OutputTable)
	stats := testStats(t)

	require.NoError(t, r.Stats(testSubject(), stats))

	out := buf.String()
	for _, want := range []string{
		"Ada (France)",
		"Years",
		strconv.Itoa(stats.Years),
		strconv.FormatInt(stats.Seconds, 10),
		stats.DayOfWeek,
		"40 years in",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, strings.ToUpper(out), "STATISTIC")
}

func TestRenderer_StatsPlain(t *testing.T) {
	r, buf := newRenderer(config.OutputPlain)
	stats := testStats(t)

	require.NoError(t, r.Stats(testSubject(), stats))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "Subject: Ada (France)", lines[0])
	assert.Equal(t, "Years: "+strconv.Itoa(stats.Years), lines[1])
	assert.Equal(t, "Total days: "+strconv.Itoa(stats.TotalDays), lines[7])
}

func TestRenderer_StatsPlain_Birthday(t *testing.T) {
	r, buf := newRenderer(config.OutputPlain)
	stats, err := engine.Calculate(testBirth, time.Date(2024, time.May, 15, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, r.Stats(testSubject(), stats))
	assert.Contains(t, buf.String(), "Next birthday: Today!")
}

func TestRenderer_StatsPlain_NoMilestone(t *testing.T) {
	r, buf := newRenderer(config.OutputPlain)
	stats := testStats(t)
	stats.NextMilestone = nil

	require.NoError(t, r.Stats(testSubject(), stats))
	assert.Contains(t, buf.String(), "Next milestone: All milestones reached")
}

func TestRenderer_StatsJSON(t *testing.T) {
	r, buf := newRenderer(config.OutputJSON)
	stats := testStats(t)

	require.NoError(t, r.Stats(testSubject(), stats))

	var doc struct {
		Name      string          `json:"name"`
		Birthdate string          `json:"birthdate"`
		Country   string          `json:"country"`
		Stats     engine.AgeStats `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Ada", doc.Name)
	assert.Equal(t, "1990-05-15", doc.Birthdate)
	assert.Equal(t, "FR", doc.Country)
	assert.Equal(t, stats, doc.Stats)
}

func TestRenderer_Timeline(t *testing.T) {
	entries, err := engine.Timeline(testBirth, testNow)
	require.NoError(t, err)

	t.Run("Plain", func(t *testing.T) {
		r, buf := newRenderer(config.OutputPlain)
		require.NoError(t, r.Timeline(entries))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, len(config.TimelineAges))
		assert.Equal(t, "0\t1990-05-15\tReached\tBorn into the world", lines[0])
		assert.Contains(t, lines[len(lines)-1], "Centenarian milestone!")
		assert.Contains(t, lines[len(lines)-1], "In ")
	})

	t.Run("Table", func(t *testing.T) {
		r, buf := newRenderer(config.OutputTable)
		require.NoError(t, r.Timeline(entries))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "Life timeline\n"))
		assert.Contains(t, out, "Quarter century")
		assert.Contains(t, out, "2030-05-15")
	})

	t.Run("JSON", func(t *testing.T) {
		r, buf := newRenderer(config.OutputJSON)
		require.NoError(t, r.Timeline(entries))

		var docs []map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
		require.Len(t, docs, len(entries))
		assert.Equal(t, "Thriving thirties", docs[7]["description"])
		assert.Equal(t, true, docs[7]["current"])
		assert.Equal(t, "timeline_30", docs[7]["descriptionKey"])
	})
}

func TestRenderer_Facts(t *testing.T) {
	res := facts.Result{
		Facts: facts.Facts{
			HistoricalEvents: []string{"First fact"},
			FunComparisons:   []string{"Second fact"},
		},
		Personalized: true,
		Source:       config.SourceLocal,
	}

	t.Run("Text", func(t *testing.T) {
		r, buf := newRenderer(config.OutputTable)
		require.NoError(t, r.Facts(res))

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, "Personalized facts\n"))
		assert.Contains(t, out, "\nHistorical events\n  - First fact\n")
		assert.Contains(t, out, "\nFun comparisons\n  - Second fact\n")
		assert.NotContains(t, out, "Pop culture")
		assert.Contains(t, out, "Source: local")
	})

	t.Run("Generic", func(t *testing.T) {
		r, buf := newRenderer(config.OutputPlain)
		require.NoError(t, r.Facts(facts.Result{Facts: facts.Fallback(), Source: config.SourceFallback}))
		assert.True(t, strings.HasPrefix(buf.String(), "Generic facts"))
	})

	t.Run("JSON", func(t *testing.T) {
		r, buf := newRenderer(config.OutputJSON)
		require.NoError(t, r.Facts(res))

		var got facts.Result
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, res.Facts.HistoricalEvents, got.Facts.HistoricalEvents)
		assert.True(t, got.Personalized)
		assert.Equal(t, config.SourceLocal, got.Source)
	})
}

func TestRenderer_HaltedAndBanner(t *testing.T) {
	r, buf := newRenderer(config.OutputPlain)

	require.NoError(t, r.Halted(errors.New("boom")))
	require.NoError(t, r.Banner("hello"))
	assert.Equal(t, "Live updates stopped: boom\nhello\n", buf.String())

	j, jbuf := newRenderer(config.OutputJSON)
	require.NoError(t, j.Banner("hello"))
	assert.Empty(t, jbuf.String())
}
