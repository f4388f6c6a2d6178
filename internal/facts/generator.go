package facts

import (
	"fmt"
	"strings"
	"time"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
)

// milestoneEvent is a dated event a person may have lived through.
type milestoneEvent struct {
	Year  int
	Name  string // Short name, used in "older than" lists
	Event string // Sentence fragment, "the iPhone launched"
}

var technologyLaunches = []milestoneEvent{
	{1971, "email", "the first email was sent"},
	{1981, "the IBM PC", "the IBM PC went on sale"},
	{1983, "the mobile phone", "the first commercial mobile phone went on sale"},
	{1991, "the World Wide Web", "the first website went live"},
	{1998, "Google", "Google was founded"},
	{2004, "Facebook", "Facebook launched"},
	{2005, "YouTube", "YouTube launched"},
	{2006, "Twitter", "Twitter launched"},
	{2007, "the iPhone", "the iPhone launched"},
	{2010, "Instagram", "Instagram launched"},
	{2016, "TikTok", "TikTok launched"},
	{2022, "ChatGPT", "ChatGPT was released"},
}

var historicalEvents = []milestoneEvent{
	{1969, "", "humans first walked on the Moon"},
	{1989, "", "the Berlin Wall fell"},
	{1997, "", "a rover first drove on Mars"},
	{2000, "", "the world welcomed a new millennium"},
	{2012, "", "Curiosity landed on Mars"},
	{2019, "", "the first image of a black hole was captured"},
}

const (
	fmtOlderThan   = "You're older than %s - you watched them all arrive!"
	fmtAlwaysHad   = "%s arrived in %d, before you did, so you have never known a world without it."
	fmtYouWere     = "You were %d when %s (%d)."
	fmtBornAfter   = "You were born after %s (%d)."
	fmtHeartbeats  = "You've been alive for %d days - that's roughly %d heartbeats!"
	fmtMoons       = "You have seen about %d full moons and completed %d trips around the Sun."
	fmtGrowingUp   = "Growing up in %s, you saw local traditions meet a fast-globalizing pop culture."
	maxEventFacts  = 2
	heartbeatsPerM = 80
	synodicMonth   = 29.530588
)

// Generator produces deterministic facts locally, honoring the remote contract.
type Generator struct {
	Clock engine.Clock
}

// NewGenerator creates a generator reading time from clock.
func NewGenerator(clock engine.Clock) *Generator {
	return &Generator{Clock: clock}
}

// Generate answers req. Categories it cannot personalize come from the fallback set.
func (g *Generator) Generate(req Request) (Response, error) {
	if strings.TrimSpace(req.Birthdate) == "" {
		return Response{}, engine.NewError(engine.CodeInvalidInput, config.ErrBirthdateMissing)
	}
	birth, err := engine.ParseBirthDate(req.Birthdate, time.UTC)
	if err != nil {
		return Response{}, err
	}
	now := g.Clock.Now()
	if err := engine.ValidateBirth(birth, now); err != nil {
		return Response{}, err
	}
	stats, err := engine.Calculate(birth, now)
	if err != nil {
		return Response{}, err
	}

	facts := Fallback()
	if lines := historicalFacts(birth); len(lines) > 0 {
		facts.HistoricalEvents = lines
	}
	facts.TechnologyMilestones = technologyFacts(birth)
	facts.FunComparisons = comparisonFacts(stats)

	country := ""
	if req.Country != "" {
		country = engine.CountryName(req.Country)
		facts.PopCulture = append([]string{fmt.Sprintf(fmtGrowingUp, country)}, facts.PopCulture...)
	}

	return Response{
		Success:   true,
		Facts:     facts,
		Birthdate: req.Birthdate,
		Age:       req.CurrentAge,
		Country:   country,
	}, nil
}

// ageDuring is the age reached by mid-year of year, floored at zero.
func ageDuring(birth time.Time, year int) int {
	mid := time.Date(year, time.July, 1, 0, 0, 0, 0, birth.Location())
	stats, err := engine.Calculate(birth, mid)
	if err != nil {
		return 0
	}
	return stats.Years
}

// historicalFacts lists the most recent events the person lived through.
func historicalFacts(birth time.Time) []string {
	var lines []string
	for i := len(historicalEvents) - 1; i >= 0 && len(lines) < maxEventFacts; i-- {
		e := historicalEvents[i]
		if e.Year <= birth.Year() {
			break
		}
		lines = append(lines, fmt.Sprintf(fmtYouWere, ageDuring(birth, e.Year), e.Event, e.Year))
	}
	if len(lines) == 0 {
		last := historicalEvents[len(historicalEvents)-1]
		lines = append(lines, fmt.Sprintf(fmtBornAfter, last.Event, last.Year))
	}
	return lines
}

// technologyFacts names the launches the person is older than, and the latest one
// that predates them.
func technologyFacts(birth time.Time) []string {
	var older []string
	var before *milestoneEvent
	for i := range technologyLaunches {
		launch := &technologyLaunches[i]
		if launch.Year > birth.Year() {
			older = append(older, launch.Name)
		} else {
			before = launch
		}
	}

	var lines []string
	if len(older) > 0 {
		lines = append(lines, fmt.Sprintf(fmtOlderThan, joinNames(older)))
	}
	if before != nil {
		lines = append(lines, fmt.Sprintf(fmtAlwaysHad, capitalize(before.Name), before.Year))
	}
	return lines
}

func comparisonFacts(stats engine.AgeStats) []string {
	moons := int(float64(stats.TotalDays) / synodicMonth)
	return []string{
		fmt.Sprintf(fmtHeartbeats, stats.TotalDays, stats.Minutes*heartbeatsPerM),
		fmt.Sprintf(fmtMoons, moons, stats.Years),
	}
}

// joinNames renders "a", "a and b", "a, b and c".
func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
