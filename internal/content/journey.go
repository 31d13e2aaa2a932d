package content

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var yearRunPattern = regexp.MustCompile(`\d{4}`)

// MilestoneYear extracts the first 4-digit run from the free-text year
// field. The second return is false when no run exists.
func MilestoneYear(year string) (int, bool) {
	match := yearRunPattern.FindString(year)
	if match == "" {
		return 0, false
	}
	parsed, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// SortMilestones orders milestones descending by extracted year, with
// unparseable years trailing and ties broken by case-insensitive title. The
// persisted list is always the sorted list; there is no separate
// display-order field, so this runs on every mutation.
func SortMilestones(milestones []Milestone) []Milestone {
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	sort.SliceStable(out, func(i, j int) bool {
		yi, okI := MilestoneYear(out[i].Year)
		yj, okJ := MilestoneYear(out[j].Year)
		if okI != okJ {
			return okI
		}
		if okI && yi != yj {
			return yi > yj
		}
		return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
	})
	return out
}
