// Package parse reads and writes the duration and predecessor text fields.
//
//	duration:     amount[unit]                 e.g. "5", "4h", "2w", "1.5d"
//	predecessors: id[kind][(+|-)lag], ...      e.g. "7fs+2d, 12ss-4h"
//
// Units are h, d, w (default d); kinds are fs, ss, ff, sf (default fs).
// Input is case and whitespace insensitive.
package parse

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sulaimanalsheibani1-lgtm/gantt-chart-app/internal/model"
)

var (
	durationRe = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*([hdw])?$`)
	linkRe     = regexp.MustCompile(`(?i)^(\d+)\s*(fs|ss|ff|sf)?\s*(?:([+-])\s*(\d+(?:\.\d+)?)\s*([hdw])?)?$`)
)

// Duration parses a duration field.
func Duration(text string) (model.Duration, error) {
	s := strings.TrimSpace(text)
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return model.Duration{}, &model.ParseError{Field: "duration", Input: text, Msg: "expected amount followed by h, d or w"}
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return model.Duration{}, &model.ParseError{Field: "duration", Input: text, Msg: err.Error()}
	}
	return model.Duration{Value: v, Unit: unit(m[2])}, nil
}

// Links parses a predecessor field. Blank text yields no links; blank
// entries between separators are skipped. Semicolons are accepted as separators.
func Links(text string) ([]model.Link, error) {
	src := strings.ReplaceAll(text, ";", ",")
	var links []model.Link
	for _, part := range strings.Split(src, ",") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		m := linkRe.FindStringSubmatch(entry)
		if m == nil {
			return nil, &model.ParseError{Field: "predecessors", Input: entry, Msg: "expected id[fs|ss|ff|sf][+/-lag]"}
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id <= 0 {
			return nil, &model.ParseError{Field: "predecessors", Input: entry, Msg: "predecessor id must be a positive integer"}
		}
		link := model.Link{PredecessorID: id, Kind: model.FS, Lag: model.Days(0)}
		if m[2] != "" {
			link.Kind = model.LinkKind(strings.ToUpper(m[2]))
		}
		if m[3] != "" {
			v, err := strconv.ParseFloat(m[4], 64)
			if err != nil {
				return nil, &model.ParseError{Field: "predecessors", Input: entry, Msg: err.Error()}
			}
			if m[3] == "-" {
				v = -v
			}
			link.Lag = model.Duration{Value: v, Unit: unit(m[5])}
		}
		links = append(links, link)
	}
	return links, nil
}

// FormatDuration renders d so that Duration(FormatDuration(d)) == d.
// Negative values are rendered with their sign and are only meaningful as lags.
func FormatDuration(d model.Duration) string {
	d = d.Normalized()
	return strconv.FormatFloat(d.Value, 'f', -1, 64) + string(d.Unit)
}

// FormatLinks renders links in canonical form: lowercase kind always present,
// zero lag omitted, no spaces.
func FormatLinks(links []model.Link) string {
	parts := make([]string, 0, len(links))
	for _, l := range links {
		var b strings.Builder
		b.WriteString(strconv.Itoa(l.PredecessorID))
		b.WriteString(strings.ToLower(string(l.KindOrDefault())))
		if !l.Lag.IsZero() {
			if l.Lag.Value > 0 {
				b.WriteByte('+')
			}
			b.WriteString(FormatDuration(l.Lag))
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, ",")
}

func unit(s string) model.Unit {
	if s == "" {
		return model.Day
	}
	return model.Unit(strings.ToLower(s))
}
