// Package ui renders age statistics, the life timeline and facts to a terminal.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/term"

	"github.com/Talos-git/cosmic-birthday/internal/config"
	"github.com/Talos-git/cosmic-birthday/internal/engine"
	"github.com/Talos-git/cosmic-birthday/internal/facts"
)

// Renderer writes views in one of the output formats.
type Renderer struct {
	Out       io.Writer
	T         *Translator
	Format    string
	UseColors bool
}

// NewRenderer enables colors only when out is a terminal.
func NewRenderer(out io.Writer, t *Translator, format string) *Renderer {
	if format == "" {
		format = config.DefaultOutput
	}
	return &Renderer{
		Out:       out,
		T:         t,
		Format:    format,
		UseColors: isTerminal(out),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type statsDocument struct {
	Name      string          `json:"name"`
	Birthdate string          `json:"birthdate"`
	Country   string          `json:"country,omitempty"`
	Stats     engine.AgeStats `json:"stats"`
}

type timelineDocument struct {
	engine.TimelineEntry
	Description string `json:"description"`
}

// Stats writes one age snapshot.
func (r *Renderer) Stats(subject engine.Subject, stats engine.AgeStats) error {
	if r.Format == config.OutputJSON {
		return r.writeJSON(statsDocument{
			Name:      subject.DisplayName(),
			Birthdate: subject.Birthdate(),
			Country:   subject.Country,
			Stats:     stats,
		})
	}

	rows := r.statRows(subject, stats)
	if r.Format == config.OutputPlain {
		return r.writePlain(rows)
	}
	return r.writeTable([]string{r.T.Msg(config.TKeyColStat), r.T.Msg(config.TKeyColValue)}, rows)
}

func (r *Renderer) statRows(subject engine.Subject, stats engine.AgeStats) [][]string {
	name := subject.DisplayName()
	if subject.Country != "" {
		name = fmt.Sprintf("%s (%s)", name, engine.CountryName(subject.Country))
	}

	nextBirthday := r.T.Msg(config.TKeyLblBirthdayToday)
	if !stats.IsBirthday() {
		nextBirthday = r.T.MsgWith(config.TKeyDaysValue, map[string]any{"Days": stats.NextBirthdayDays})
	}

	nextMilestone := r.T.Msg(config.TKeyLblNoMilestone)
	if m := stats.NextMilestone; m != nil {
		nextMilestone = r.T.MsgWith(config.TKeyMilestoneValue, map[string]any{"Age": m.Age, "Days": m.Days})
	}

	return [][]string{
		{r.T.Msg(config.TKeyLblSubject), name},
		{r.T.Msg(config.TKeyLblYears), strconv.Itoa(stats.Years)},
		{r.T.Msg(config.TKeyLblMonths), strconv.Itoa(stats.Months)},
		{r.T.Msg(config.TKeyLblDays), strconv.Itoa(stats.Days)},
		{r.T.Msg(config.TKeyLblHours), strconv.FormatInt(stats.Hours, 10)},
		{r.T.Msg(config.TKeyLblMinutes), strconv.FormatInt(stats.Minutes, 10)},
		{r.T.Msg(config.TKeyLblSeconds), strconv.FormatInt(stats.Seconds, 10)},
		{r.T.Msg(config.TKeyLblTotalDays), strconv.Itoa(stats.TotalDays)},
		{r.T.Msg(config.TKeyLblDayOfWeek), stats.DayOfWeek},
		{r.T.Msg(config.TKeyLblNextBirthday), nextBirthday},
		{r.T.Msg(config.TKeyLblNextMilestone), nextMilestone},
	}
}

// Timeline writes the notable ages; the current entry is highlighted.
func (r *Renderer) Timeline(entries []engine.TimelineEntry) error {
	if r.Format == config.OutputJSON {
		docs := make([]timelineDocument, 0, len(entries))
		for _, e := range entries {
			docs = append(docs, timelineDocument{TimelineEntry: e, Description: r.T.TimelineDescription(e)})
		}
		return r.writeJSON(docs)
	}

	highlight := fmt.Sprint
	if r.UseColors {
		highlight = color.New(color.FgGreen, color.Bold).SprintFunc()
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		status := r.T.Msg(config.TKeyStatusReached)
		if !e.Reached {
			status = r.T.MsgWith(config.TKeyStatusUpcoming, map[string]any{"Days": e.DaysUntil})
		}
		age := strconv.Itoa(e.Age)
		if e.Current {
			age = highlight(age)
		}
		rows = append(rows, []string{
			age,
			e.Date.Format(config.DateFormatFullDash),
			status,
			r.T.TimelineDescription(e),
		})
	}

	if r.Format == config.OutputPlain {
		for _, row := range rows {
			if _, err := fmt.Fprintf(r.Out, "%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3]); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
		}
		return nil
	}

	if _, err := fmt.Fprintln(r.Out, r.T.Msg(config.TKeyLblTimeline)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	headers := []string{
		r.T.Msg(config.TKeyColAge),
		r.T.Msg(config.TKeyColDate),
		r.T.Msg(config.TKeyColStatus),
		r.T.Msg(config.TKeyColDescription),
	}
	return r.writeTable(headers, rows)
}

// Facts writes a facts result grouped by category.
func (r *Renderer) Facts(res facts.Result) error {
	if r.Format == config.OutputJSON {
		return r.writeJSON(res)
	}

	heading, dim := fmt.Sprint, fmt.Sprint
	if r.UseColors {
		heading = color.New(color.FgCyan, color.Bold).SprintFunc()
		dim = color.New(color.FgHiBlack).SprintFunc()
	}

	title := r.T.Msg(config.TKeyLblFacts)
	if !res.Personalized {
		title = r.T.Msg(config.TKeyLblFactsGeneric)
	}
	if _, err := fmt.Fprintln(r.Out, heading(title)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}

	for _, c := range facts.Categories() {
		items := res.Facts.Get(c)
		if len(items) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(r.Out, "\n%s\n", heading(r.T.CategoryTitle(c))); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
		}
		for _, item := range items {
			if _, err := fmt.Fprintf(r.Out, "  - %s\n", item); err != nil {
				return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
			}
		}
	}

	source := r.T.MsgWith(config.TKeyFactsSource, map[string]any{"Source": res.Source})
	if _, err := fmt.Fprintf(r.Out, "\n%s\n", dim(source)); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}

// Halted reports that live updates stopped.
func (r *Renderer) Halted(cause error) error {
	alert := fmt.Sprint
	if r.UseColors {
		alert = color.New(color.FgRed, color.Bold).SprintFunc()
	}
	_, err := fmt.Fprintf(r.Out, "%s: %v\n", alert(r.T.Msg(config.TKeyLblHalted)), cause)
	return err
}

// Banner writes a highlighted single line.
func (r *Renderer) Banner(msg string) error {
	if r.Format == config.OutputJSON {
		return nil
	}
	paint := fmt.Sprint
	if r.UseColors {
		paint = color.New(color.FgMagenta, color.Bold).SprintFunc()
	}
	_, err := fmt.Fprintln(r.Out, paint(msg))
	return err
}

func (r *Renderer) writeTable(headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(r.Out)
	defer func() { _ = table.Close() }()

	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}

func (r *Renderer) writePlain(rows [][]string) error {
	for _, row := range rows {
		if _, err := fmt.Fprintf(r.Out, "%s: %s\n", row[0], row[1]); err != nil {
			return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
		}
	}
	return nil
}

func (r *Renderer) writeJSON(v any) error {
	if err := json.NewEncoder(r.Out).Encode(v); err != nil {
		return fmt.Errorf("%s: %w", config.ErrWriteOutput, err)
	}
	return nil
}
