// Package briefing assembles and schedules the daily morning digest.
package briefing

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/rowanhart/curator/internal/vault"
)

const (
	upcomingWindowDays = 3
	recentWindow       = 24 * time.Hour
	recentShown        = 5
)

// Build assembles the briefing text for the given moment: overdue actions
// (most overdue first), actions due today, actions due within the next three
// days (soonest first), captures from the last 24 hours, and one randomly
// chosen unconsumed media item. When nothing qualifies the all-clear line is
// returned instead.
func Build(v *vault.Vault, now time.Time) string {
	today := now.Format("2006-01-02")

	var overdue, dueToday, upcoming []vault.Action
	for _, a := range v.ScanActions() {
		if a.Status == "done" || a.Status == "completed" || a.DueDate == "" {
			continue
		}
		due, err := time.Parse("2006-01-02", a.DueDate)
		if err != nil {
			continue
		}
		switch {
		case a.DueDate < today:
			overdue = append(overdue, a)
		case a.DueDate == today:
			dueToday = append(dueToday, a)
		case due.Sub(now) <= upcomingWindowDays*24*time.Hour:
			upcoming = append(upcoming, a)
		}
	}
	sort.Slice(overdue, func(i, j int) bool { return overdue[i].DueDate < overdue[j].DueDate })
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].DueDate < upcoming[j].DueDate })

	recent := v.ScanRecent(recentWindow)
	backlog := v.ScanMediaBacklog()

	if len(overdue) == 0 && len(dueToday) == 0 && len(upcoming) == 0 &&
		len(recent) == 0 && len(backlog) == 0 {
		return "☀️ All clear — nothing urgent today!"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*☀️ Morning Briefing — %s*\n", now.Format("Monday 02 January"))

	if len(overdue) > 0 {
		b.WriteString("\n*🔴 Overdue*\n")
		for _, a := range overdue {
			fmt.Fprintf(&b, "• %s (due %s)%s\n", a.Title, a.DueDate, projectSuffix(a))
		}
	}
	if len(dueToday) > 0 {
		b.WriteString("\n*🟡 Due Today*\n")
		for _, a := range dueToday {
			fmt.Fprintf(&b, "• %s%s\n", a.Title, projectSuffix(a))
		}
	}
	if len(upcoming) > 0 {
		b.WriteString("\n*🔵 Coming Up*\n")
		for _, a := range upcoming {
			fmt.Fprintf(&b, "• %s (due %s)%s\n", a.Title, a.DueDate, projectSuffix(a))
		}
	}
	if len(recent) > 0 {
		b.WriteString("\n*📥 Captured in the last 24h*\n")
		shown := recent
		if len(shown) > recentShown {
			shown = shown[:recentShown]
		}
		for _, c := range shown {
			fmt.Fprintf(&b, "• %s (%s)\n", c.Title, c.Folder)
		}
		if extra := len(recent) - recentShown; extra > 0 {
			fmt.Fprintf(&b, "...and %d more\n", extra)
		}
	}
	if len(backlog) > 0 {
		pick := backlog[rand.Intn(len(backlog))]
		fmt.Fprintf(&b, "\n*🎬 From your media backlog*\n• %s (%s) — maybe today?\n",
			pick.Title, pick.Type)
	}
	return strings.TrimRight(b.String(), "\n")
}

func projectSuffix(a vault.Action) string {
	if a.Project == "" {
		return ""
	}
	return " · " + a.Project
}
