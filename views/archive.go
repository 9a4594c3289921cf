package views

import "time"

// Months lists the first instant of every month from earliest's month up to now's
// month, newest first, in now's location. Without an earliest date, or with one
// after now, only the current month is listed.
func Months(earliest *time.Time, now time.Time) []time.Time {
	loc := now.Location()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if earliest == nil {
		return []time.Time{current}
	}

	e := earliest.In(loc)
	first := time.Date(e.Year(), e.Month(), 1, 0, 0, 0, 0, loc)
	if first.After(current) {
		return []time.Time{current}
	}

	var months []time.Time
	for m := current; !m.Before(first); m = m.AddDate(0, -1, 0) {
		months = append(months, m)
	}
	return months
}

type ArchiveMonth struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ArchiveLinks formats months for the sidebar.
func ArchiveLinks(months []time.Time) []ArchiveMonth {
	out := make([]ArchiveMonth, len(months))
	for i, m := range months {
		out[i] = ArchiveMonth{
			Year:  m.Year(),
			Month: int(m.Month()),
			Label: m.Format("January 2006"),
			URL:   m.Format("/archive/2006/1/"),
		}
	}
	return out
}
