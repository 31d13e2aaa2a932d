package content

import "strings"

// Reconcile turns one raw school document into the fully normalized view
// model consulted by both the public pages and the admin panel. A nil
// document is the "school not found / fetch failed" terminal state and
// yields the cleared view model rather than an error. Malformed or unknown
// legacy shapes are silently excluded from the produced lists; the
// reconciler never fails.
func Reconcile(doc *SchoolDocument) ViewModel {
	if doc == nil {
		return EmptyViewModel()
	}

	vm := ViewModel{
		Home:          reconcileHome(doc),
		Journey:       reconcileJourney(doc),
		Achievements:  reconcileAchievements(doc),
		Staff:         reconcileStaff(doc),
		Alumni:        reconcileAlumni(doc),
		Gallery:       reconcileGallery(doc),
		Announcements: reconcileAnnouncements(doc),
		Contact:       reconcileContact(doc),
	}
	vm.AchievementSections = reconcileSectionMeta(vm.Achievements)
	return vm
}

func rootMap(doc *SchoolDocument, key string) map[string]any {
	if doc.Root == nil {
		return nil
	}
	m, _ := doc.Root[key].(map[string]any)
	return m
}

func pageMap(doc *SchoolDocument, key string) map[string]any {
	m, _ := doc.Page(key).(map[string]any)
	return m
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	nested, _ := m[key].(map[string]any)
	return nested
}

// firstField walks maps in priority order and returns the first non-empty
// value under any of the keys. Nil maps are skipped.
func firstField(maps []map[string]any, keys ...string) string {
	for _, m := range maps {
		if m == nil {
			continue
		}
		if v := field(m, keys...); v != "" {
			return v
		}
	}
	return ""
}

func reconcileHome(doc *SchoolDocument) HomeContent {
	home := pageMap(doc, PageHome)
	hero := subMap(home, "heroSection")
	principal := subMap(home, "principalSection")
	stats := subMap(home, "statisticsSection")

	// New schema key first, then the legacy top-level key, then empty.
	content := HomeContent{
		WelcomeTitle:     firstField([]map[string]any{hero, home}, "welcomeTitle", "title"),
		WelcomeSubtitle:  firstField([]map[string]any{hero, home}, "welcomeSubtitle", "subtitle"),
		PrincipalName:    firstField([]map[string]any{principal, home}, "principalName", "name"),
		PrincipalMessage: firstField([]map[string]any{principal, home}, "principalMessage", "message"),
		PrincipalPhoto:   firstField([]map[string]any{principal, home}, "principalPhoto", "photo", "image"),
		YearEstablished:  firstField([]map[string]any{stats, home}, "yearEstablished", "established"),
		Students:         firstField([]map[string]any{stats, home}, "students", "studentCount"),
		Teachers:         firstField([]map[string]any{stats, home}, "teachers", "teacherCount", "staffCount"),
		SuccessRate:      normalizeSuccessRate(firstField([]map[string]any{stats, home}, "successRate")),
	}

	// Hero images may live in three locations; the first non-empty wins.
	content.HeroImages = []string{}
	for _, candidate := range []any{
		value(hero, "heroImages"),
		value(home, "heroImages"),
		value(principal, "heroImages"),
	} {
		if images := ExtractImageList(candidate); len(images) > 0 {
			content.HeroImages = images
			break
		}
	}
	return content
}

func value(m map[string]any, key string) any {
	if m == nil {
		return nil
	}
	return m[key]
}

// normalizeSuccessRate appends a trailing % to non-empty values that lack
// one. Empty stays empty.
func normalizeSuccessRate(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasSuffix(trimmed, "%") {
		return trimmed
	}
	return trimmed + "%"
}

// reconcileJourney reads the milestone list from six candidate paths in
// priority order. The first candidate that is itself an array is used; all
// others are ignored, even if later candidates are also arrays.
func reconcileJourney(doc *SchoolDocument) []Milestone {
	home := pageMap(doc, PageHome)
	timelineSection := subMap(home, "timelineSection")
	rootTimelineSection := rootMap(doc, "timelineSection")
	rootTimeline := rootMap(doc, "timeline")

	candidates := []any{
		value(timelineSection, "milestones"),
		value(home, "timelineSection"),
		value(home, "timeline"),
		value(rootTimelineSection, "milestones"),
		value(rootTimeline, "milestones"),
		rootValue(doc, "timeline"),
	}
	for _, candidate := range candidates {
		items, ok := asSlice(candidate)
		if !ok {
			continue
		}
		return SortMilestones(ExtractMilestones(items))
	}
	return []Milestone{}
}

func rootValue(doc *SchoolDocument, key string) any {
	if doc.Root == nil {
		return nil
	}
	return doc.Root[key]
}

func reconcileAchievements(doc *SchoolDocument) []Achievement {
	return ExtractAchievements(doc.Page(PageAchievements))
}

// reconcileSectionMeta rebuilds the section picker metadata from the
// flattened achievement list, seeded with the fixed default sections so the
// picker always offers them even when unused. The first title seen per
// section key wins.
func reconcileSectionMeta(achievements []Achievement) []SectionMeta {
	meta := DefaultSections()
	known := map[string]bool{}
	for _, section := range meta {
		known[section.Key] = true
	}
	for _, achievement := range achievements {
		if known[achievement.SectionKey] {
			continue
		}
		known[achievement.SectionKey] = true
		meta = append(meta, SectionMeta{Key: achievement.SectionKey, Title: achievement.SectionTitle})
	}
	return meta
}

func reconcileStaff(doc *SchoolDocument) []StaffMember {
	return ExtractStaff(doc.Page(PageStaff))
}

func reconcileAlumni(doc *SchoolDocument) []AlumniMember {
	return ExtractAlumni(doc.Page(PageAlumni))
}

func reconcileGallery(doc *SchoolDocument) []GalleryItem {
	return DedupeGalleryItems(ExtractGalleryItems(doc.Page(PageGallery)))
}

// reconcileAnnouncements prefers the dedicated announcements page and falls
// back to the legacy announcements section inside the home page.
func reconcileAnnouncements(doc *SchoolDocument) []Announcement {
	if raw := doc.Page(PageAnnouncements); raw != nil {
		if items := ExtractAnnouncements(raw); len(items) > 0 {
			return items
		}
	}
	home := pageMap(doc, PageHome)
	if legacy := value(home, "announcementsSection"); legacy != nil {
		return ExtractAnnouncements(legacy)
	}
	return []Announcement{}
}

// reconcileContact merges the school-level contactInfo (lower priority) with
// the contact page content (higher priority) field by field. The socialMedia
// sub-objects of both levels merge first, page-level winning per network.
func reconcileContact(doc *SchoolDocument) ContactContent {
	schoolInfo := rootMap(doc, "contactInfo")
	page := pageMap(doc, PageContact)
	pageContent := subMap(page, "content")
	if pageContent == nil {
		pageContent = page
	}

	social := map[string]any{}
	for key, v := range subMap(schoolInfo, "socialMedia") {
		social[key] = v
	}
	for key, v := range rootMap(doc, "socialMedia") {
		social[key] = v
	}
	for key, v := range subMap(pageContent, "socialMedia") {
		social[key] = v
	}

	sources := []map[string]any{pageContent, schoolInfo}
	return ContactContent{
		Address:     firstField(sources, "address", "schoolAddress"),
		Phone:       firstJoined(sources, ",", "phone", "phoneNumbers", "contactNumber"),
		Email:       firstJoined(sources, ",", "email", "emails"),
		OfficeHours: firstJoined(sources, "\n", "officeHours", "hours"),
		WhatsApp:    firstField([]map[string]any{pageContent, social, schoolInfo}, "whatsApp", "whatsapp", "whatsappNumber"),
		Facebook:    firstField([]map[string]any{social, pageContent, schoolInfo}, "facebook", "facebookUrl"),
		Instagram:   firstField([]map[string]any{social, pageContent, schoolInfo}, "instagram", "instagramUrl"),
	}
}

// firstJoined returns the first source containing any of the keys, with its
// value normalized to a joined string.
func firstJoined(maps []map[string]any, separator string, keys ...string) string {
	for _, m := range maps {
		if m == nil {
			continue
		}
		for _, key := range keys {
			raw, ok := m[key]
			if !ok || raw == nil {
				continue
			}
			if joined := joinList(raw, separator); joined != "" {
				return joined
			}
		}
	}
	return ""
}
