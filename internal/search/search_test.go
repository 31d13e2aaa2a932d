package search

import (
	"testing"

	"campora/api/internal/content"
)

func TestBuildRecords(t *testing.T) {
	vm := content.ViewModel{
		Announcements: []content.Announcement{
			{ID: "announcement-1", Title: "Exam schedule", Description: "Mid-terms", Category: "exams"},
		},
		Achievements: []content.Achievement{
			{ID: "a1", Title: "Gold", SectionKey: "sports", Level: "state"},
		},
		Staff: []content.StaffMember{
			{ID: "s1", Name: "A. Teacher", Department: "Science", Position: "HOD"},
		},
	}
	records := BuildRecords("sch_1", vm)

	if len(records.Announcements) != 1 || len(records.Achievements) != 1 || len(records.Staff) != 1 {
		t.Fatalf("records = %+v", records)
	}
	ann := records.Announcements[0]
	if ann.Key != "sch_1_announcement-1" {
		t.Errorf("key = %q, must be unique across schools", ann.Key)
	}
	if ann.SchoolID != "sch_1" || ann.Category != "exams" {
		t.Errorf("announcement record = %+v", ann)
	}
	if records.Achievements[0].SectionKey != "sports" {
		t.Errorf("achievement record = %+v", records.Achievements[0])
	}
	if records.Staff[0].Name != "A. Teacher" {
		t.Errorf("staff record = %+v", records.Staff[0])
	}
}

func TestBuildRecordsEmptyViewModel(t *testing.T) {
	records := BuildRecords("sch_1", content.EmptyViewModel())
	if len(records.Announcements) != 0 || len(records.Achievements) != 0 || len(records.Staff) != 0 {
		t.Fatalf("records = %+v", records)
	}
}
