package invoicing

// SeriesBreakdown counts issued numbers for one (series, year) scope
type SeriesBreakdown struct {
	Series     string `json:"series"`
	Year       int    `json:"year"`
	Count      int64  `json:"count"`
	LastNumber string `json:"last_number"`
}

// MonthBreakdown counts invoices issued in one calendar month
type MonthBreakdown struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// NumberingStats summarizes invoice numbering for a tenant database:
// the next and last numbers in the active series plus per-series and
// per-month breakdowns
type NumberingStats struct {
	NextNumber  string            `json:"next_number"`
	LastNumber  string            `json:"last_number"`
	TotalIssued int64             `json:"total_issued"`
	BySeries    []SeriesBreakdown `json:"by_series"`
	ByMonth     []MonthBreakdown  `json:"by_month"`
}

// BuildNumberingStats derives statistics from sequence counters and a
// month histogram of invoice issue dates. The active series config
// determines the next/last number rendering.
func BuildNumberingStats(cfg SeriesConfig, year int, sequences []Sequence, byMonth []MonthBreakdown) NumberingStats {
	cfg = cfg.Normalize()
	stats := NumberingStats{
		ByMonth:  byMonth,
		BySeries: make([]SeriesBreakdown, 0, len(sequences)),
	}

	for _, seq := range sequences {
		issued := seq.LastValue - (cfg.StartNumber - 1)
		if issued < 0 {
			issued = 0
		}
		breakdown := SeriesBreakdown{
			Series: seq.Series,
			Year:   seq.Year,
			Count:  issued,
		}
		if issued > 0 {
			breakdown.LastNumber = cfg.Format(seq.Year, seq.LastValue)
		}
		stats.BySeries = append(stats.BySeries, breakdown)
		stats.TotalIssued += issued

		if seq.Series == cfg.Prefix && seq.Year == year {
			stats.NextNumber = cfg.Format(seq.Year, seq.LastValue+1)
			stats.LastNumber = breakdown.LastNumber
		}
	}

	// A scope that has never allocated still advertises its first number.
	if stats.NextNumber == "" {
		stats.NextNumber = cfg.Format(year, cfg.StartNumber)
	}
	return stats
}
