// Package normalize turns raw contact fields into canonical forms. Every
// function is pure and total: invalid input degrades to nil, it never aborts
// ingestion.
package normalize

import (
	"regexp"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"grievancedesk/backend/internal/config"
)

var (
	whitespace = regexp.MustCompile(`\s+`)
	validate   = validator.New()
)

// Phone parses a raw phone number against the given default region and
// returns its E.164 form, or nil if it does not parse as a valid number for
// that region.
func Phone(raw, region string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return nil
	}
	if !phonenumbers.IsValidNumber(num) {
		return nil
	}
	e164 := phonenumbers.Format(num, phonenumbers.E164)
	return &e164
}

// Email lower-cases, trims and syntactically validates an address. No
// deliverability check is performed.
func Email(raw string) *string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return nil
	}
	if err := validate.Var(s, "email"); err != nil {
		return nil
	}
	return &s
}

// Text trims, collapses internal whitespace runs to single spaces,
// lower-cases and truncates to the configured maximum length.
func Text(raw string) *string {
	s := whitespace.ReplaceAllString(strings.TrimSpace(strings.ToLower(raw)), " ")
	if s == "" {
		return nil
	}
	if runes := []rune(s); len(runes) > config.MaxTextLen {
		s = string(runes[:config.MaxTextLen])
	}
	return &s
}

// Timestamp parses a raw date string leniently and reformats it as ISO-8601
// with second precision. Sub-second components are dropped.
func Timestamp(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	iso := t.Format("2006-01-02T15:04:05")
	return &iso
}

// Day extracts the calendar-day portion of a normalized timestamp.
func Day(ts string) string {
	if len(ts) < 10 {
		return ts
	}
	return ts[:10]
}
