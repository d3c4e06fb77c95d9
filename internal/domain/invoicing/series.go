package invoicing

import (
	"fmt"
	"strconv"
	"strings"
)

// SeriesConfig describes how invoice numbers in one series are formed:
// prefix, optional year segment, separator, counter start and padding.
// "INV", year-inclusive, start 1, pad 4 yields INV-2024-0001.
type SeriesConfig struct {
	Prefix      string `json:"prefix"`
	Separator   string `json:"separator"`
	IncludeYear bool   `json:"include_year"`
	StartNumber int64  `json:"start_number"`
	PadWidth    int    `json:"pad_width"`
}

// DefaultSeriesConfig returns the standard series used when a tenant
// has not configured one
func DefaultSeriesConfig() SeriesConfig {
	return SeriesConfig{
		Prefix:      "INV",
		Separator:   "-",
		IncludeYear: true,
		StartNumber: 1,
		PadWidth:    4,
	}
}

// Normalize fills zero-valued fields with defaults
func (c SeriesConfig) Normalize() SeriesConfig {
	d := DefaultSeriesConfig()
	if c.Prefix == "" {
		c.Prefix = d.Prefix
	}
	if c.Separator == "" {
		c.Separator = d.Separator
	}
	if c.StartNumber <= 0 {
		c.StartNumber = d.StartNumber
	}
	if c.PadWidth <= 0 {
		c.PadWidth = d.PadWidth
	}
	return c
}

// Label returns the series label for a year, e.g. "INV-2024" or "INV"
// for year-less series
func (c SeriesConfig) Label(year int) string {
	if !c.IncludeYear {
		return c.Prefix
	}
	return c.Prefix + c.Separator + strconv.Itoa(year)
}

// Format renders a counter value as the full invoice number. The
// counter is zero-padded to PadWidth so numbers within a series sort
// lexicographically; values beyond the pad width widen naturally.
func (c SeriesConfig) Format(year int, counter int64) string {
	return c.Label(year) + c.Separator + fmt.Sprintf("%0*d", c.PadWidth, counter)
}

// ParseCounter extracts the counter value from a number previously
// produced by Format. Used for numbering statistics on stored numbers.
func (c SeriesConfig) ParseCounter(number string) (int64, bool) {
	idx := strings.LastIndex(number, c.Separator)
	if idx < 0 || idx+len(c.Separator) >= len(number) {
		return 0, false
	}
	n, err := strconv.ParseInt(number[idx+len(c.Separator):], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
