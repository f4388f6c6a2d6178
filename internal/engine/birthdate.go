package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emersion/go-vcard"

	"github.com/Talos-git/cosmic-birthday/internal/config"
)

// earliestBirth is the first accepted birth date (calendar comparison).
var earliestBirth = time.Date(config.EarliestBirthYear, time.January, 1, 0, 0, 0, 0, time.UTC)

// dateLayouts are tried in order; the first one that parses wins.
var dateLayouts = []string{
	config.DateFormatFullDash,
	config.DateFormatFullBasic,
	config.DateFormatRFC3339,
	config.DateFormatFullT,
	config.DateFormatMinutes,
}

var yearlessLayouts = []string{config.DateFormatNoYearD, config.DateFormatNoYearB}

// ParseBirthDate parses a birth date or instant. Layouts without a zone are read in loc.
func ParseBirthDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	value = strings.TrimSpace(value)

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	for _, layout := range yearlessLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return time.Time{}, NewError(CodeInvalidInput, config.ErrYearUnknown)
		}
	}

	return time.Time{}, WrapError(fmt.Errorf("%q", value), CodeInvalidInput, config.ErrDateParse)
}

// ValidateBirth enforces 1900-01-01 <= birth <= now.
func ValidateBirth(birth, now time.Time) error {
	y, m, d := birth.Date()
	if time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(earliestBirth) {
		return NewError(CodeInvalidInput, config.ErrBirthTooEarly)
	}
	if birth.After(now) {
		return NewError(CodeInvalidInput, config.ErrBirthAfterNow)
	}
	return nil
}

// ImportVCard reads a vCard stream and returns the subject of the card named name,
// or of the first card with a usable birthday when name is empty.
// Malformed cards are skipped. Yearless birthdays cannot yield an age and are rejected.
func ImportVCard(ctx context.Context, r io.Reader, name string, loc *time.Location) (Subject, error) {
	logger := slog.With(config.LogKeyComponent, config.CompEngine)
	decoder := vcard.NewDecoder(r)
	var yearless bool
	failures := 0

	for {
		if ctx.Err() != nil {
			return Subject{}, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A broken reader fails the same way forever.
			if failures++; failures >= config.MaxConsecutiveCardErrors {
				return Subject{}, WrapError(err, CodeInvalidInput, config.ErrVCardParse)
			}
			logger.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}
		failures = 0

		cardName := displayName(card)
		if name != "" && !strings.EqualFold(strings.TrimSpace(cardName), strings.TrimSpace(name)) {
			continue
		}

		bday := card.Get(config.VCardBDAY)
		if bday == nil || bday.Value == "" {
			continue
		}

		birth, err := ParseBirthDate(bday.Value, loc)
		if err != nil {
			yearless = yearless || strings.HasPrefix(bday.Value, "--")
			logger.Debug(config.MsgSkippedDate, config.LogKeyValue, bday.Value)
			continue
		}

		if name == "" {
			name = cardName
		}
		return NewSubject(name, birth, ""), nil
	}

	if yearless {
		return Subject{}, NewError(CodeInvalidInput, config.ErrYearUnknown)
	}
	return Subject{}, NewError(CodeNotFound, config.ErrVCardNoBirthday)
}

// displayName follows FN (formatted), then N (structured).
func displayName(card vcard.Card) string {
	if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
		return fn.Value
	}
	if n := card.Get(config.VCardN); n != nil {
		return n.Value
	}
	return ""
}
