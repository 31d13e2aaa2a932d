package content

import (
	"reflect"
	"testing"
)

func TestBuildHomePayloadEmbedsSortedMilestones(t *testing.T) {
	home := HomeContent{WelcomeTitle: "Welcome", SuccessRate: "92"}
	milestones := []Milestone{
		{ID: "m1", Year: "1990", Title: "Founded"},
		{ID: "m2", Year: "2015", Title: "New wing"},
	}
	payload := BuildHomePayload(home, milestones)

	timeline := payload["timelineSection"].(map[string]any)
	list := timeline["milestones"].([]map[string]any)
	if len(list) != 2 || list[0]["id"] != "m2" || list[1]["id"] != "m1" {
		t.Fatalf("milestones not sorted descending: %+v", list)
	}
	stats := payload["statisticsSection"].(map[string]any)
	if stats["successRate"] != "92%" {
		t.Errorf("successRate = %v", stats["successRate"])
	}
}

func TestBuildContactPayloadRoundTrip(t *testing.T) {
	contact := ContactContent{
		Address:   "12 New Road",
		Phone:     "+91 11111,+91 22222",
		Email:     "office@school.example",
		WhatsApp:  "+91 33333",
		Facebook:  "https://facebook.com/school",
		Instagram: "https://instagram.com/school",
	}
	doc := docWithPages(map[string]any{PageContact: anyMap(BuildContactPayload(contact))})
	got := Reconcile(doc).Contact
	if !reflect.DeepEqual(got, contact) {
		t.Fatalf("round trip changed contact:\n got %+v\nwant %+v", got, contact)
	}
}

func TestBuildAchievementsPayloadFixesStaleTitles(t *testing.T) {
	in := []Achievement{{
		ID:           "a1",
		Title:        "Gold",
		SectionKey:   "sports",
		SectionTitle: "Stale Title From 2019",
	}}
	payload := BuildAchievementsPayload(in)
	if payload[0]["sectionTitle"] != "Sports Achievements" {
		t.Fatalf("sectionTitle = %v, titles must be re-derived", payload[0]["sectionTitle"])
	}
}

func TestBuildGalleryPayloadDerivesType(t *testing.T) {
	items := []GalleryItem{
		{ID: "g1", Type: "video", Images: []string{"https://cdn.example.com/a.jpg"}},
		{ID: "g2", Type: "image", VideoURL: "https://youtu.be/abc"},
	}
	payload := BuildGalleryPayload(items)
	if payload[0]["type"] != "image" {
		t.Errorf("item without video persisted as %v", payload[0]["type"])
	}
	if payload[1]["type"] != "video" || payload[1]["videoUrl"] != "https://youtu.be/abc" {
		t.Errorf("video item: %+v", payload[1])
	}
	if _, ok := payload[0]["videoUrl"]; ok {
		t.Errorf("empty videoUrl should be omitted")
	}
}

func TestBuildAnnouncementsPayloadCanonicalizes(t *testing.T) {
	payload := BuildAnnouncementsPayload([]Announcement{
		{ID: "n1", Title: "Exam schedule", Category: "Test", Priority: "high", Type: "event"},
		{ID: "n2", Title: "Strike notice", Category: "general", Priority: "urgent", Type: "bulletin"},
	})
	if payload[0]["category"] != "exams" {
		t.Fatalf("category = %v", payload[0]["category"])
	}
	if payload[0]["priority"] != "high" || payload[0]["type"] != "event" {
		t.Errorf("in-set values rewritten: priority=%v type=%v", payload[0]["priority"], payload[0]["type"])
	}
	if payload[1]["priority"] != "medium" {
		t.Errorf("out-of-set priority persisted as %v", payload[1]["priority"])
	}
	if payload[1]["type"] != "announcement" {
		t.Errorf("out-of-set type persisted as %v", payload[1]["type"])
	}
}

func TestBuildAchievementsPayloadClampsLevel(t *testing.T) {
	payload := BuildAchievementsPayload([]Achievement{
		{ID: "a1", Title: "Gold", Level: "galactic", SectionKey: "sports"},
		{ID: "a2", Title: "Silver", Level: "National", SectionKey: "sports"},
	})
	if payload[0]["level"] != "school" {
		t.Errorf("out-of-set level persisted as %v", payload[0]["level"])
	}
	if payload[1]["level"] != "national" {
		t.Errorf("level not lowercased: %v", payload[1]["level"])
	}
}

// Saving what was just reconciled and reconciling again must be a fixed
// point for the list pages.
func TestReconcileBuildRoundTripIdempotent(t *testing.T) {
	original := docWithPages(map[string]any{
		PageStaff: map[string]any{"staff": map[string]any{
			"0": map[string]any{"name": "A. Teacher", "department": "Science"},
			"1": map[string]any{"name": "B. Teacher", "position": "Sports Coach"},
		}},
		PageGallery: map[string]any{
			"sports": []any{"https://cdn.example.com/run.jpg"},
		},
		PageAchievements: map[string]any{
			"sports": map[string]any{"achievements": []any{map[string]any{"title": "Gold"}}},
		},
		PageAnnouncements: []any{map[string]any{"title": "Note", "category": "exam"}},
	})
	first := Reconcile(original)

	rebuilt := docWithPages(map[string]any{
		PageStaff:         anySlice(BuildStaffPayload(first.Staff)),
		PageGallery:       anySlice(BuildGalleryPayload(first.Gallery)),
		PageAchievements:  anySlice(BuildAchievementsPayload(first.Achievements)),
		PageAnnouncements: anySlice(BuildAnnouncementsPayload(first.Announcements)),
	})
	second := Reconcile(rebuilt)

	if !reflect.DeepEqual(first.Staff, second.Staff) {
		t.Errorf("staff drifted:\n first %+v\nsecond %+v", first.Staff, second.Staff)
	}
	if !reflect.DeepEqual(first.Gallery, second.Gallery) {
		t.Errorf("gallery drifted:\n first %+v\nsecond %+v", first.Gallery, second.Gallery)
	}
	if !reflect.DeepEqual(first.Achievements, second.Achievements) {
		t.Errorf("achievements drifted:\n first %+v\nsecond %+v", first.Achievements, second.Achievements)
	}
	if !reflect.DeepEqual(first.Announcements, second.Announcements) {
		t.Errorf("announcements drifted:\n first %+v\nsecond %+v", first.Announcements, second.Announcements)
	}
}

// Test documents decode from JSON as map[string]any / []any; these helpers
// put built payloads back into that shape.
func anyMap(m map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range m {
		out[k] = anyValue(v)
	}
	return out
}

func anySlice(items []map[string]any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, anyMap(item))
	}
	return out
}

func anyValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return anyMap(value)
	case []map[string]any:
		return anySlice(value)
	case []string:
		items := make([]any, 0, len(value))
		for _, s := range value {
			items = append(items, s)
		}
		return items
	default:
		return v
	}
}
