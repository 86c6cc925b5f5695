// Package schedule computes when the next analysis pass should fire from
// a list of daily time-of-day marks and a Monday-to-Friday trading rule.
package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Mark is a time of day at which a pass should be triggered.
type Mark struct {
	Hour   int
	Minute int
}

func (m Mark) String() string {
	return fmt.Sprintf("%02d:%02d", m.Hour, m.Minute)
}

// At anchors the mark on the calendar date of t, in t's location.
func (m Mark) At(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), m.Hour, m.Minute, 0, 0, t.Location())
}

// ParseMarks parses a comma-separated list of HH:MM marks. Items that do
// not parse are skipped; the result is sorted ascending. An empty result
// is an error: with no marks the scheduler would never fire.
func ParseMarks(value string) ([]Mark, error) {
	var marks []Mark
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		t, err := time.Parse("15:04", item)
		if err != nil {
			continue
		}
		marks = append(marks, Mark{Hour: t.Hour(), Minute: t.Minute()})
	}
	if len(marks) == 0 {
		return nil, fmt.Errorf("no valid HH:MM run times in %q", value)
	}
	sort.Slice(marks, func(i, j int) bool {
		if marks[i].Hour != marks[j].Hour {
			return marks[i].Hour < marks[j].Hour
		}
		return marks[i].Minute < marks[j].Minute
	})
	return marks, nil
}

// NextRun returns the next instant strictly after now at which a pass is
// due: the first remaining mark today if today is a weekday, otherwise
// the first mark of the next weekday. The result is never on a Saturday
// or Sunday and never at or before now. marks must be sorted and
// non-empty, as returned by ParseMarks.
func NextRun(now time.Time, marks []Mark) time.Time {
	if isWeekday(now) {
		for _, m := range marks {
			if candidate := m.At(now); candidate.After(now) {
				return candidate
			}
		}
	}

	day := now.AddDate(0, 0, 1)
	for !isWeekday(day) {
		day = day.AddDate(0, 0, 1)
	}
	return marks[0].At(day)
}

func isWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd >= time.Monday && wd <= time.Friday
}
