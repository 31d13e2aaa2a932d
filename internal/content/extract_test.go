package content

import (
	"reflect"
	"testing"
)

func TestListFieldShapes(t *testing.T) {
	array := []any{"a", "b"}
	keyed := map[string]any{"1": "b", "0": "a"}

	if got := listField(array); !reflect.DeepEqual(got, []any{"a", "b"}) {
		t.Errorf("array shape: %v", got)
	}
	if got := listField(keyed); !reflect.DeepEqual(got, []any{"a", "b"}) {
		t.Errorf("keyed shape: %v", got)
	}
	if got := listField("solo"); !reflect.DeepEqual(got, []any{"solo"}) {
		t.Errorf("scalar shape: %v", got)
	}
	if got := listField(nil); got != nil {
		t.Errorf("nil shape: %v", got)
	}
}

func TestSortedEntriesNumericFirst(t *testing.T) {
	m := map[string]any{"10": "j", "2": "b", "abc": "x", "1": "a"}
	var keys []string
	for _, e := range sortedEntries(m) {
		keys = append(keys, e.key)
	}
	want := []string{"1", "2", "10", "abc"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("key order %v, want %v", keys, want)
	}
}

func TestExtractImageList(t *testing.T) {
	raw := map[string]any{
		"0": "https://cdn.example.com/a.jpg",
		"1": map[string]any{"imageUrl": "https://cdn.example.com/b.jpg"},
		"2": []any{map[string]any{"url": "https://cdn.example.com/c.jpg"}, ""},
	}
	got := ExtractImageList(raw)
	want := []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
		"https://cdn.example.com/c.jpg",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractVideoURL(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"bare string", "https://youtu.be/abc", "https://youtu.be/abc"},
		{"videoUrl field", map[string]any{"videoUrl": "https://youtu.be/abc"}, "https://youtu.be/abc"},
		{"nested array", map[string]any{"videoUrls": []any{"", "https://youtu.be/x"}}, "https://youtu.be/x"},
		{"link fallback", map[string]any{"link": map[string]any{"url": "https://youtu.be/y"}}, "https://youtu.be/y"},
		{"nothing", map[string]any{"title": "no video"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVideoURL(tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsValidYouTubeURL(t *testing.T) {
	valid := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/abc123",
		"https://m.youtube.com/live/xyz",
		"https://youtu.be/dQw4w9WgXcQ",
		"youtu.be/dQw4w9WgXcQ",
	}
	for _, u := range valid {
		if !IsValidYouTubeURL(u) {
			t.Errorf("expected valid: %q", u)
		}
	}
	invalid := []string{
		"",
		"https://vimeo.com/12345",
		"https://www.youtube.com/watch",
		"https://www.youtube.com/embed/",
		"https://youtu.be/",
		"https://example.com/youtu.be/abc",
	}
	for _, u := range invalid {
		if IsValidYouTubeURL(u) {
			t.Errorf("expected invalid: %q", u)
		}
	}
}

func TestExtractStaffShapes(t *testing.T) {
	member := map[string]any{"name": "A. Teacher", "department": "Science"}
	wrapped := map[string]any{"staffMembers": []any{member}}
	keyed := map[string]any{"0": member, "updatedAt": "2024-01-01"}

	for name, raw := range map[string]any{
		"array":   []any{member},
		"wrapped": wrapped,
		"keyed":   keyed,
	} {
		got := ExtractStaff(raw)
		if len(got) != 1 || got[0].Name != "A. Teacher" || got[0].Department != "Science" {
			t.Errorf("%s: got %+v", name, got)
		}
	}
}

func TestExtractStaffSpecializations(t *testing.T) {
	raw := []any{map[string]any{
		"name":            "B. Teacher",
		"specializations": map[string]any{"0": "Physics", "1": "Maths"},
	}}
	got := ExtractStaff(raw)
	if len(got) != 1 || got[0].Specializations != "Physics, Maths" {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractAlumniNumericKeyOrder(t *testing.T) {
	raw := map[string]any{
		"1": map[string]any{"name": "B", "graduationYear": "2010"},
		"0": map[string]any{"name": "A", "graduationYear": "2005"},
	}
	got := ExtractAlumni(raw)
	if len(got) != 2 || got[0].Name != "A" || got[1].Name != "B" {
		t.Fatalf("got %+v", got)
	}
	if got[0].Industry != "Other" {
		t.Errorf("missing industry should default to Other, got %q", got[0].Industry)
	}
}

func TestExtractGalleryItemsSectionMap(t *testing.T) {
	raw := map[string]any{
		"sports": []any{
			"https://cdn.example.com/run.jpg",
			map[string]any{"id": "g1", "title": "Finals", "images": []any{"https://cdn.example.com/win.jpg"}},
		},
	}
	got := ExtractGalleryItems(raw)
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(got), got)
	}
	for _, item := range got {
		if item.Category != "Sports" {
			t.Errorf("map key should hint category, got %q", item.Category)
		}
		if item.Type != "image" {
			t.Errorf("type = %q", item.Type)
		}
	}
	if got[1].ID != "g1" || got[1].Title != "Finals" {
		t.Errorf("object item: %+v", got[1])
	}
}

func TestExtractGalleryItemsVideo(t *testing.T) {
	raw := []any{map[string]any{"id": "v1", "videoUrl": "https://youtu.be/abc"}}
	got := ExtractGalleryItems(raw)
	if len(got) != 1 || got[0].Type != "video" || got[0].VideoURL != "https://youtu.be/abc" {
		t.Fatalf("got %+v", got)
	}
}

func TestDedupeGalleryItems(t *testing.T) {
	items := []GalleryItem{
		{ID: "a", Title: "first"},
		{ID: "b"},
		{ID: "a", Title: "second"},
	}
	got := DedupeGalleryItems(items)
	if len(got) != 2 || got[0].Title != "first" {
		t.Fatalf("got %+v", got)
	}
}

func TestExtractAnnouncementsDefaults(t *testing.T) {
	raw := map[string]any{"recentUpdates": []any{map[string]any{
		"title":    "Exam schedule",
		"category": "exam, test",
		"priority": "URGENT",
	}}}
	got := ExtractAnnouncements(raw)
	if len(got) != 1 {
		t.Fatalf("got %d announcements", len(got))
	}
	a := got[0]
	if a.Category != "exams" {
		t.Errorf("category = %q, want exams (first canonical only)", a.Category)
	}
	if a.Priority != "medium" {
		t.Errorf("unknown priority should default to medium, got %q", a.Priority)
	}
	if a.Type != "announcement" {
		t.Errorf("type = %q", a.Type)
	}
	if a.ID != "announcement-1" {
		t.Errorf("fallback id = %q", a.ID)
	}
}

func TestExtractAchievementsLayouts(t *testing.T) {
	flat := []any{map[string]any{"title": "Gold", "section": "sports"}}
	keyedFlat := map[string]any{"0": map[string]any{"title": "Gold", "category": "sports"}}
	sectioned := map[string]any{
		"sports": map[string]any{
			"sectionTitle": "Old Stale Title",
			"achievements": []any{map[string]any{"title": "Gold"}},
		},
	}
	for name, raw := range map[string]any{
		"flat array":   flat,
		"keyed flat":   keyedFlat,
		"section objs": sectioned,
	} {
		got := ExtractAchievements(raw)
		if len(got) != 1 {
			t.Errorf("%s: got %d achievements", name, len(got))
			continue
		}
		if got[0].SectionKey != "sports" || got[0].SectionTitle != "Sports Achievements" {
			t.Errorf("%s: section %q title %q", name, got[0].SectionKey, got[0].SectionTitle)
		}
		if got[0].Level != "school" {
			t.Errorf("%s: level should default to school, got %q", name, got[0].Level)
		}
	}
}

func TestExtractMilestones(t *testing.T) {
	raw := []any{
		map[string]any{"year": "1998", "title": "Founded"},
		map[string]any{"note": "not a milestone"},
		map[string]any{"year": 2005, "title": "New campus"},
	}
	got := ExtractMilestones(raw)
	if len(got) != 2 {
		t.Fatalf("got %d milestones", len(got))
	}
	if got[1].Year != "2005" {
		t.Errorf("numeric year should coerce, got %q", got[1].Year)
	}
	if got[0].ID != "milestone-1" {
		t.Errorf("fallback id = %q", got[0].ID)
	}
}
