// Package dategroup buckets notes by the calendar day they were created on and
// formats note timestamps for display.
package dategroup

import (
	"fmt"
	"sort"
	"time"

	"github.com/diarynotes/diary-go/internal/model"
)

const (
	LabelToday     = "Today"
	LabelYesterday = "Yesterday"

	labelLayout = "02 Jan"
	timeLayout  = "03:04 pm"
	dateLayout  = "02 Jan 2006"
)

// Group is the notes created on one labelled day, newest first.
type Group struct {
	Label string
	Notes []model.Note
}

// ByDay buckets notes by calendar day in now's location. Groups come back as
// Today, Yesterday, then the remaining labels in descending string order.
// Within a group notes are ordered by createdAt, newest first.
func ByDay(notes []model.Note, now time.Time) []Group {
	groups := []Group{}
	if len(notes) == 0 {
		return groups
	}

	sorted := make([]model.Note, len(notes))
	copy(sorted, notes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})

	index := make(map[string]int)
	for _, n := range sorted {
		label := Label(n.CreatedAt, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, Group{Label: label})
		}
		groups[i].Notes = append(groups[i].Notes, n)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		ri, rj := rank(groups[i].Label), rank(groups[j].Label)
		if ri != rj {
			return ri < rj
		}
		return groups[i].Label > groups[j].Label
	})
	return groups
}

func rank(label string) int {
	switch label {
	case LabelToday:
		return 0
	case LabelYesterday:
		return 1
	default:
		return 2
	}
}

// Label names the day createdAt (epoch millis) falls on, relative to now.
func Label(createdAt int64, now time.Time) string {
	t := time.UnixMilli(createdAt).In(now.Location())
	switch {
	case sameDay(t, now):
		return LabelToday
	case sameDay(t, now.AddDate(0, 0, -1)):
		return LabelYesterday
	default:
		return t.Format(labelLayout)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Flatten concatenates the groups back into a single list.
func Flatten(groups []Group) []model.Note {
	var n int
	for _, g := range groups {
		n += len(g.Notes)
	}
	out := make([]model.Note, 0, n)
	for _, g := range groups {
		out = append(out, g.Notes...)
	}
	return out
}

// Count returns the number of notes across all groups.
func Count(groups []Group) int {
	var n int
	for _, g := range groups {
		n += len(g.Notes)
	}
	return n
}

// FormatTime renders the clock time of createdAt, e.g. "09:05 am".
func FormatTime(createdAt int64, loc *time.Location) string {
	return time.UnixMilli(createdAt).In(loc).Format(timeLayout)
}

// FormatDetail renders a timestamp for the note detail view:
// "Today, 09:05 am", "Yesterday, 09:05 am" or "15 Aug 2024, 09:05 am".
func FormatDetail(createdAt int64, now time.Time) string {
	t := time.UnixMilli(createdAt).In(now.Location())
	day := t.Format(dateLayout)
	switch Label(createdAt, now) {
	case LabelToday:
		day = LabelToday
	case LabelYesterday:
		day = LabelYesterday
	}
	return day + ", " + t.Format(timeLayout)
}

// Relative describes how long ago createdAt was: "Just now", "5m ago", "3h ago",
// "Yesterday", "4d ago", or the date once a week has passed.
func Relative(createdAt int64, now time.Time) string {
	diff := now.Sub(time.UnixMilli(createdAt))
	minutes := int64(diff / time.Minute)
	hours := int64(diff / time.Hour)
	days := hours / 24

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days == 1:
		return LabelYesterday
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return time.UnixMilli(createdAt).In(now.Location()).Format(dateLayout)
	}
}
