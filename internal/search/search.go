package search

import (
	"fmt"

	"campora/api/internal/content"
)

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultAnnouncement ResultType = "announcement"
	ResultAchievement  ResultType = "achievement"
	ResultStaff        ResultType = "staff"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type     ResultType `json:"type"`
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Snippet  string     `json:"snippet"`
	SchoolID string     `json:"schoolId"`
	Category string     `json:"category,omitempty"`
}

// Query describes a search request. SchoolID is required on the public
// endpoint; an empty SchoolID searches across tenants (admin only).
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	SchoolID   string
	Limit      int
	Offset     int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// AnnouncementRecord is the data indexed for one announcement. Key is the
// index primary key, unique across schools; legacy positional entity IDs
// repeat per school.
type AnnouncementRecord struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	SchoolID    string `json:"schoolId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

type AchievementRecord struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	SchoolID    string `json:"schoolId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SectionKey  string `json:"sectionKey"`
	Level       string `json:"level"`
}

type StaffRecord struct {
	Key             string `json:"key"`
	ID              string `json:"id"`
	SchoolID        string `json:"schoolId"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	Position        string `json:"position"`
	Specializations string `json:"specializations"`
}

// SchoolRecords is everything indexed for one school, rebuilt wholesale
// from the reconciled view model after each save.
type SchoolRecords struct {
	Announcements []AnnouncementRecord
	Achievements  []AchievementRecord
	Staff         []StaffRecord
}

// BuildRecords flattens a reconciled view model into index records.
func BuildRecords(schoolID string, vm content.ViewModel) SchoolRecords {
	records := SchoolRecords{
		Announcements: make([]AnnouncementRecord, 0, len(vm.Announcements)),
		Achievements:  make([]AchievementRecord, 0, len(vm.Achievements)),
		Staff:         make([]StaffRecord, 0, len(vm.Staff)),
	}
	for _, a := range vm.Announcements {
		records.Announcements = append(records.Announcements, AnnouncementRecord{
			Key:         recordKey(schoolID, a.ID),
			ID:          a.ID,
			SchoolID:    schoolID,
			Title:       a.Title,
			Description: a.Description,
			Category:    a.Category,
			Date:        a.Date,
		})
	}
	for _, a := range vm.Achievements {
		records.Achievements = append(records.Achievements, AchievementRecord{
			Key:         recordKey(schoolID, a.ID),
			ID:          a.ID,
			SchoolID:    schoolID,
			Title:       a.Title,
			Description: a.Description,
			SectionKey:  a.SectionKey,
			Level:       a.Level,
		})
	}
	for _, s := range vm.Staff {
		records.Staff = append(records.Staff, StaffRecord{
			Key:             recordKey(schoolID, s.ID),
			ID:              s.ID,
			SchoolID:        schoolID,
			Name:            s.Name,
			Department:      s.Department,
			Position:        s.Position,
			Specializations: s.Specializations,
		})
	}
	return records
}

func recordKey(schoolID, entityID string) string {
	return fmt.Sprintf("%s_%s", schoolID, entityID)
}
