package content

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Shape matchers. Every list-valued field in the persisted documents may be
// an array, a keyed map, or a bare scalar; the decode helpers here turn any
// of those into a flat slice so the per-type extractors never type-switch on
// their own.

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// stringValue coerces scalars to strings. Numbers round-trip through JSON as
// float64; integral values are printed without a fraction.
func stringValue(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

func boolValue(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return value == "true" || value == "yes" || value == "1"
	case float64:
		return value != 0
	default:
		return false
	}
}

// field returns the first non-empty string among the named keys.
func field(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := strings.TrimSpace(stringValue(m[key])); s != "" {
			return s
		}
	}
	return ""
}

// sortedEntries flattens a keyed map into (key, value) pairs. Index-like
// numeric keys sort ascending by value and come before everything else;
// remaining keys sort lexically, which stands in for the insertion order
// JSON objects do not preserve.
type entry struct {
	key   string
	value any
}

func sortedEntries(m map[string]any) []entry {
	entries := make([]entry, 0, len(m))
	for key, value := range m {
		entries = append(entries, entry{key: key, value: value})
	}
	sort.Slice(entries, func(i, j int) bool {
		ni, errI := strconv.Atoi(entries[i].key)
		nj, errJ := strconv.Atoi(entries[j].key)
		if errI == nil && errJ == nil {
			return ni < nj
		}
		if errI == nil {
			return true
		}
		if errJ == nil {
			return false
		}
		return entries[i].key < entries[j].key
	})
	return entries
}

// listField decodes raw as an ordered chain of shape matchers: array first,
// then keyed-map values, then a scalar wrapped as a single element.
func listField(raw any) []any {
	if raw == nil {
		return nil
	}
	if items, ok := asSlice(raw); ok {
		return items
	}
	if m, ok := asMap(raw); ok {
		entries := sortedEntries(m)
		out := make([]any, 0, len(entries))
		for _, e := range entries {
			out = append(out, e.value)
		}
		return out
	}
	if s := strings.TrimSpace(stringValue(raw)); s != "" {
		return []any{s}
	}
	return nil
}

// ExtractImageList descends into any of the historical image shapes (a bare
// URL, an array of URLs or image objects, or a keyed map of either) and
// returns the flat URL list with empties dropped.
func ExtractImageList(raw any) []string {
	out := []string{}
	var walk func(v any)
	walk = func(v any) {
		switch value := v.(type) {
		case string:
			if s := strings.TrimSpace(value); s != "" {
				out = append(out, s)
			}
		case []any:
			for _, item := range value {
				walk(item)
			}
		case map[string]any:
			if u := field(value, "imageUrl", "url", "image", "src", "secureUrl"); u != "" {
				out = append(out, u)
				return
			}
			for _, e := range sortedEntries(value) {
				walk(e.value)
			}
		}
	}
	walk(raw)
	return out
}

var videoFieldCandidates = []string{"videoUrl", "videoUrls", "video", "url", "link", "src"}

// ExtractVideoURL recursively unwraps arrays and objects looking for the
// first non-empty string under a known video field name. A bare string is
// accepted as-is.
func ExtractVideoURL(raw any) string {
	switch value := raw.(type) {
	case string:
		return strings.TrimSpace(value)
	case []any:
		for _, item := range value {
			if u := ExtractVideoURL(item); u != "" {
				return u
			}
		}
	case map[string]any:
		for _, key := range videoFieldCandidates {
			nested, ok := value[key]
			if !ok {
				continue
			}
			if u := ExtractVideoURL(nested); u != "" {
				return u
			}
		}
	}
	return ""
}

// IsValidYouTubeURL accepts only youtube.com embed/shorts/live/watch URLs and
// non-empty youtu.be short links. Anything else is a validation error for the
// caller to surface, never a silent drop.
func IsValidYouTubeURL(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		path := parsed.Path
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(path, prefix) {
				return strings.Trim(strings.TrimPrefix(path, prefix), "/") != ""
			}
		}
		if path == "/watch" {
			return parsed.Query().Get("v") != ""
		}
		return false
	case "youtu.be":
		return strings.Trim(parsed.Path, "/") != ""
	default:
		return false
	}
}

// looksLikeStaff rejects unrelated sibling fields discovered during map
// traversal (timestamps, counters and the like).
func looksLikeStaff(m map[string]any) bool {
	return field(m, "name", "fullName", "staffName") != "" ||
		field(m, "department", "dept") != "" ||
		field(m, "position", "designation", "role") != ""
}

// joinSpecializations normalizes the persisted specializations field
// (string, array, or keyed map) to a comma-joined string for editing.
func joinSpecializations(raw any) string {
	parts := []string{}
	for _, item := range listField(raw) {
		if s := strings.TrimSpace(stringValue(item)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

func parseStaff(m map[string]any, fallbackID string) StaffMember {
	id := field(m, "id")
	if id == "" {
		id = fallbackID
	}
	return StaffMember{
		ID:              id,
		Name:            field(m, "name", "fullName", "staffName"),
		Department:      field(m, "department", "dept"),
		Position:        field(m, "position", "designation", "role"),
		Education:       field(m, "education", "qualification"),
		Specializations: joinSpecializations(firstPresent(m, "specializations", "specialization", "subjects")),
		Experience:      field(m, "experience", "experienceYears"),
		Email:           field(m, "email"),
		Phone:           field(m, "phone", "contact", "mobile"),
		Image:           field(m, "image", "photo", "imageUrl"),
		SchoolID:        field(m, "schoolId"),
	}
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// ExtractStaff accepts an array, a keyed map, or a wrapping object and keeps
// only entries that look like staff records.
func ExtractStaff(raw any) []StaffMember {
	if m, ok := asMap(raw); ok {
		if nested := firstPresent(m, "staff", "staffMembers", "members"); nested != nil {
			if _, isMap := asMap(nested); isMap || isSliceValue(nested) {
				raw = nested
			}
		}
	}
	out := []StaffMember{}
	for i, item := range listField(raw) {
		m, ok := asMap(item)
		if !ok || !looksLikeStaff(m) {
			continue
		}
		out = append(out, parseStaff(m, "staff-"+strconv.Itoa(i+1)))
	}
	return out
}

func isSliceValue(v any) bool {
	_, ok := asSlice(v)
	return ok
}

func looksLikeAlumni(m map[string]any) bool {
	return field(m, "name", "fullName") != "" ||
		field(m, "company", "organization", "employer") != "" ||
		field(m, "graduationYear", "year", "batch", "passingYear") != ""
}

func parseAlumni(m map[string]any, fallbackID string) AlumniMember {
	id := field(m, "id")
	if id == "" {
		id = fallbackID
	}
	industry := field(m, "industry")
	if industry == "" {
		industry = "Other"
	}
	return AlumniMember{
		ID:              id,
		Name:            field(m, "name", "fullName"),
		Company:         field(m, "company", "organization", "employer"),
		CurrentPosition: field(m, "currentPosition", "position", "designation"),
		GraduationYear:  field(m, "graduationYear", "year", "batch", "passingYear"),
		Image:           field(m, "image", "photo"),
		Industry:        industry,
		Location:        field(m, "location", "city"),
		LinkedInURL:     field(m, "linkedinUrl", "linkedin", "linkedInUrl"),
	}
}

// ExtractAlumni accepts an array, an object carrying an alumni/alumniMembers
// sub-list, or a raw keyed map sorted by numeric key ascending.
func ExtractAlumni(raw any) []AlumniMember {
	if m, ok := asMap(raw); ok {
		if nested := firstPresent(m, "alumni", "alumniMembers"); nested != nil {
			raw = nested
		}
	}
	out := []AlumniMember{}
	for i, item := range listField(raw) {
		m, ok := asMap(item)
		if !ok || !looksLikeAlumni(m) {
			continue
		}
		out = append(out, parseAlumni(m, "alumni-"+strconv.Itoa(i+1)))
	}
	return out
}

// looksLikeGalleryItem matches entries with an images list, any single image
// field, or any video field.
func looksLikeGalleryItem(m map[string]any) bool {
	if _, ok := m["images"]; ok {
		return true
	}
	if field(m, "imageUrl", "url", "image", "src") != "" {
		return true
	}
	for _, key := range videoFieldCandidates {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func parseGalleryItem(m map[string]any, fallbackID, fallbackCategory string) GalleryItem {
	id := field(m, "id")
	if id == "" {
		id = fallbackID
	}
	images := []string{}
	if rawImages, ok := m["images"]; ok {
		images = ExtractImageList(rawImages)
	} else if single := field(m, "imageUrl", "url", "image", "src"); single != "" {
		images = []string{single}
	}
	category := field(m, "category", "section")
	if category == "" {
		category = fallbackCategory
	}
	videoURL := ""
	for _, key := range videoFieldCandidates {
		if nested, ok := m[key]; ok {
			if u := ExtractVideoURL(nested); u != "" {
				videoURL = u
				break
			}
		}
	}
	item := GalleryItem{
		ID:          id,
		Title:       field(m, "title", "name", "caption"),
		Category:    NormalizeGalleryCategory(category),
		Description: field(m, "description"),
		Date:        field(m, "date"),
		Images:      images,
		VideoURL:    videoURL,
	}
	item.Type = DeriveGalleryType(item.VideoURL)
	return item
}

// DeriveGalleryType recomputes the item type from video URL presence; the
// type is never an independent source of truth.
func DeriveGalleryType(videoURL string) string {
	if strings.TrimSpace(videoURL) != "" {
		return "video"
	}
	return "image"
}

// ExtractGalleryItems handles plain URL strings, single-image objects,
// multi-photo objects, and section maps whose values are per-category image
// collections. Callers still dedupe by ID as a final pass; multiple
// traversal paths can discover the same item twice.
func ExtractGalleryItems(raw any) []GalleryItem {
	out := []GalleryItem{}
	counter := 0
	nextID := func() string {
		counter++
		return "gallery-" + strconv.Itoa(counter)
	}
	var walk func(v any, categoryHint string)
	walk = func(v any, categoryHint string) {
		switch value := v.(type) {
		case string:
			if s := strings.TrimSpace(value); s != "" {
				out = append(out, GalleryItem{
					ID:       nextID(),
					Category: NormalizeGalleryCategory(categoryHint),
					Images:   []string{s},
					Type:     DeriveGalleryType(""),
				})
			}
		case []any:
			for _, item := range value {
				walk(item, categoryHint)
			}
		case map[string]any:
			if looksLikeGalleryItem(value) {
				out = append(out, parseGalleryItem(value, nextID(), categoryHint))
				return
			}
			for _, e := range sortedEntries(value) {
				walk(e.value, e.key)
			}
		}
	}
	walk(raw, "")
	return out
}

// DedupeGalleryItems drops repeated IDs, first occurrence wins.
func DedupeGalleryItems(items []GalleryItem) []GalleryItem {
	out := make([]GalleryItem, 0, len(items))
	seen := map[string]bool{}
	for _, item := range items {
		if item.ID != "" && seen[item.ID] {
			continue
		}
		if item.ID != "" {
			seen[item.ID] = true
		}
		out = append(out, item)
	}
	return out
}

func looksLikeAnnouncement(m map[string]any) bool {
	return field(m, "title", "content", "description") != ""
}

func parseAnnouncement(m map[string]any, fallbackID string) Announcement {
	id := field(m, "id")
	if id == "" {
		id = fallbackID
	}
	categories := NormalizeAnnouncementCategories(firstPresent(m, "category", "categories"))
	category := "general"
	if len(categories) > 0 {
		category = categories[0]
	}
	priority := NormalizeAnnouncementPriority(field(m, "priority"))
	kind := NormalizeAnnouncementType(field(m, "type"))
	tags := []string{}
	for _, item := range listField(firstPresent(m, "tags")) {
		if s := strings.TrimSpace(stringValue(item)); s != "" {
			tags = append(tags, s)
		}
	}
	return Announcement{
		ID:          id,
		Title:       field(m, "title"),
		Description: field(m, "description", "content", "message", "body"),
		Date:        field(m, "date", "publishedDate", "createdAt"),
		Category:    category,
		Priority:    priority,
		Type:        kind,
		IsPinned:    boolValue(firstPresent(m, "isPinned", "pinned")),
		IsUrgent:    boolValue(firstPresent(m, "isUrgent", "urgent")),
		Audience:    field(m, "audience", "targetAudience"),
		Author:      field(m, "author", "postedBy"),
		Tags:        tags,
	}
}

// ExtractAnnouncements accepts an array, an object with announcements or
// recentUpdates sub-lists, or, as a last resort, any map values that look
// announcement-shaped.
func ExtractAnnouncements(raw any) []Announcement {
	if m, ok := asMap(raw); ok {
		if nested := firstPresent(m, "announcements", "recentUpdates"); nested != nil {
			raw = nested
		}
	}
	out := []Announcement{}
	for i, item := range listField(raw) {
		m, ok := asMap(item)
		if !ok || !looksLikeAnnouncement(m) {
			continue
		}
		out = append(out, parseAnnouncement(m, "announcement-"+strconv.Itoa(i+1)))
	}
	return out
}

func looksLikeAchievement(m map[string]any) bool {
	return field(m, "title", "name") != ""
}

func parseAchievement(m map[string]any, fallbackID, sectionHint string) Achievement {
	id := field(m, "id")
	if id == "" {
		id = fallbackID
	}
	sectionRaw := field(m, "sectionKey", "section", "category")
	if sectionRaw == "" {
		sectionRaw = sectionHint
	}
	sectionKey := NormalizeAchievementSection(sectionRaw)
	level := NormalizeAchievementLevel(field(m, "level"))
	return Achievement{
		ID:           id,
		Title:        field(m, "title", "name"),
		Description:  field(m, "description", "details"),
		Date:         field(m, "date", "year"),
		Level:        level,
		SectionKey:   sectionKey,
		SectionTitle: AchievementSectionTitle(sectionKey),
		Image:        field(m, "image", "photo"),
		SchoolID:     field(m, "schoolId"),
	}
}

// ExtractAchievements flattens the three legacy layouts into one list: a
// flat array, a keyed map of flat achievement objects, or a keyed map of
// section objects each holding an achievements array.
func ExtractAchievements(raw any) []Achievement {
	out := []Achievement{}
	counter := 0
	nextID := func() string {
		counter++
		return "achievement-" + strconv.Itoa(counter)
	}
	appendFlat := func(items []any, sectionHint string) {
		for _, item := range items {
			m, ok := asMap(item)
			if !ok || !looksLikeAchievement(m) {
				continue
			}
			out = append(out, parseAchievement(m, nextID(), sectionHint))
		}
	}
	if items, ok := asSlice(raw); ok {
		appendFlat(items, "")
		return out
	}
	m, ok := asMap(raw)
	if !ok {
		return out
	}
	for _, e := range sortedEntries(m) {
		entryMap, isMap := asMap(e.value)
		if !isMap {
			continue
		}
		if nested, hasNested := asSlice(entryMap["achievements"]); hasNested {
			hint := field(entryMap, "sectionKey", "key")
			if hint == "" {
				hint = e.key
			}
			appendFlat(nested, hint)
			continue
		}
		if looksLikeAchievement(entryMap) {
			out = append(out, parseAchievement(entryMap, nextID(), ""))
		}
	}
	return out
}

func parseMilestone(m map[string]any, fallbackID string) Milestone {
	id := field(m, "id")
	if id == "" {
		id = fallbackID
	}
	return Milestone{
		ID:          id,
		Year:        field(m, "year"),
		Title:       field(m, "title", "heading"),
		Description: field(m, "description", "details"),
	}
}

// ExtractMilestones maps an array of milestone objects; non-array input is
// rejected by the reconciler's candidate-path rule before reaching here.
func ExtractMilestones(raw []any) []Milestone {
	out := []Milestone{}
	for i, item := range raw {
		m, ok := asMap(item)
		if !ok {
			continue
		}
		if field(m, "year") == "" && field(m, "title", "heading") == "" {
			continue
		}
		out = append(out, parseMilestone(m, "milestone-"+strconv.Itoa(i+1)))
	}
	return out
}

// joinList normalizes a string/array/map field to a joined string.
func joinList(raw any, separator string) string {
	parts := []string{}
	for _, item := range listField(raw) {
		if s := strings.TrimSpace(stringValue(item)); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, separator)
}
