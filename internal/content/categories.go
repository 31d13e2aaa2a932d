package content

import "strings"

// CategoryOption declares one canonical category value, its display label and
// the historical aliases that map onto it.
type CategoryOption struct {
	Value   string
	Label   string
	Aliases []string
}

var announcementCategoryOptions = []CategoryOption{
	{Value: "general", Label: "General", Aliases: []string{"notice", "notices", "info", "information"}},
	{Value: "exams", Label: "Exams", Aliases: []string{"exam", "examination", "examinations", "test", "tests"}},
	{Value: "admissions", Label: "Admissions", Aliases: []string{"admission", "enrollment", "enrolment"}},
	{Value: "events", Label: "Events", Aliases: []string{"event", "function", "functions", "fest"}},
	{Value: "holidays", Label: "Holidays", Aliases: []string{"holiday", "vacation", "vacations", "break"}},
	{Value: "sports", Label: "Sports", Aliases: []string{"sport", "games", "athletics"}},
	{Value: "results", Label: "Results", Aliases: []string{"result", "marks", "grades"}},
}

// GalleryDefaultCategory is the fallback label for unrecognized gallery input.
const GalleryDefaultCategory = "Others"

var galleryCategoryOptions = []CategoryOption{
	{Value: "Events", Label: "Events", Aliases: []string{"event", "functions", "function", "fest", "celebration", "celebrations"}},
	{Value: "Sports", Label: "Sports", Aliases: []string{"sport", "athletics", "games", "sports day"}},
	{Value: "Cultural", Label: "Cultural", Aliases: []string{"culture", "arts", "art", "dance", "music"}},
	{Value: "Academics", Label: "Academics", Aliases: []string{"academic", "classroom", "classrooms", "study", "labs", "lab"}},
	{Value: "Campus", Label: "Campus", Aliases: []string{"infrastructure", "building", "buildings", "facilities", "school"}},
	{Value: GalleryDefaultCategory, Label: GalleryDefaultCategory, Aliases: []string{"other", "misc", "miscellaneous"}},
}

// AchievementDefaultSection is the section used when input matches nothing.
const AchievementDefaultSection = "general"

var achievementSectionOptions = []CategoryOption{
	{Value: "general", Label: "General Achievements", Aliases: []string{"overall", "misc", "other"}},
	{Value: "academics", Label: "Academics Achievements", Aliases: []string{"academic", "science", "scholastic", "education"}},
	{Value: "arts", Label: "Arts Achievements", Aliases: []string{"art", "music", "dance", "drama"}},
	{Value: "sports", Label: "Sports Achievements", Aliases: []string{"sport", "athletics", "games"}},
	{Value: "community", Label: "Community Achievements", Aliases: []string{"social", "service", "outreach"}},
	{Value: "cultural", Label: "Cultural Achievements", Aliases: []string{"culture", "heritage"}},
	{Value: "others", Label: "Others Achievements", Aliases: []string{}},
}

type aliasTable map[string]string

func buildAliasTable(options []CategoryOption, strip func(string) string) aliasTable {
	table := make(aliasTable)
	for _, option := range options {
		table[strip(option.Value)] = option.Value
		for _, alias := range option.Aliases {
			table[strip(alias)] = option.Value
		}
	}
	return table
}

func trimLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// stripKey lowercases and removes every non-alphanumeric rune, so "Sports Day"
// and "sports-day" collide.
func stripKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var (
	announcementAliases = buildAliasTable(announcementCategoryOptions, trimLower)
	galleryAliases      = buildAliasTable(galleryCategoryOptions, stripKey)
	achievementAliases  = buildAliasTable(achievementSectionOptions, trimLower)
)

// NormalizeAnnouncementCategory canonicalizes a single announcement category.
// Unknown input is returned as its trimmed-lowercased self rather than being
// forced into the closed set.
func NormalizeAnnouncementCategory(raw string) string {
	key := trimLower(raw)
	if key == "" {
		return ""
	}
	if canonical, ok := announcementAliases[key]; ok {
		return canonical
	}
	return key
}

// AnnouncementCategoryLabel returns the display label for a canonical value,
// capitalizing unknown values as a fallback.
func AnnouncementCategoryLabel(canonical string) string {
	for _, option := range announcementCategoryOptions {
		if option.Value == canonical {
			return option.Label
		}
	}
	return capitalize(canonical)
}

// NormalizeAnnouncementCategories flattens raw category input (string, list,
// or nested lists; strings may be comma-joined) into canonical values,
// de-duplicated in first-seen order with empties dropped. Only the first
// element is ever persisted as the announcement's category.
func NormalizeAnnouncementCategories(raw any) []string {
	out := []string{}
	seen := map[string]bool{}
	var walk func(v any)
	walk = func(v any) {
		switch value := v.(type) {
		case string:
			for _, part := range strings.Split(value, ",") {
				canonical := NormalizeAnnouncementCategory(part)
				if canonical == "" || seen[canonical] {
					continue
				}
				seen[canonical] = true
				out = append(out, canonical)
			}
		case []any:
			for _, item := range value {
				walk(item)
			}
		case []string:
			for _, item := range value {
				walk(item)
			}
		}
	}
	walk(raw)
	return out
}

// NormalizeGalleryCategory maps free-form input onto one of the six fixed
// gallery labels, defaulting to "Others".
func NormalizeGalleryCategory(raw string) string {
	key := stripKey(raw)
	if key == "" {
		return GalleryDefaultCategory
	}
	if canonical, ok := galleryAliases[key]; ok {
		return canonical
	}
	return GalleryDefaultCategory
}

// GalleryCategories lists the fixed gallery labels in declaration order.
func GalleryCategories() []string {
	out := make([]string, 0, len(galleryCategoryOptions))
	for _, option := range galleryCategoryOptions {
		out = append(out, option.Value)
	}
	return out
}

// NormalizeAchievementSection maps free-form input onto a canonical section
// key, defaulting to "general".
func NormalizeAchievementSection(raw string) string {
	key := trimLower(raw)
	if key == "" {
		return AchievementDefaultSection
	}
	if canonical, ok := achievementAliases[key]; ok {
		return canonical
	}
	return AchievementDefaultSection
}

// NormalizeAnnouncementPriority clamps to the closed priority set,
// defaulting to "medium".
func NormalizeAnnouncementPriority(raw string) string {
	switch p := trimLower(raw); p {
	case "high", "medium", "low":
		return p
	default:
		return "medium"
	}
}

// NormalizeAnnouncementType clamps to the closed type set, defaulting to
// "announcement".
func NormalizeAnnouncementType(raw string) string {
	switch t := trimLower(raw); t {
	case "announcement", "event", "news":
		return t
	default:
		return "announcement"
	}
}

// NormalizeAchievementLevel clamps to the closed level set, defaulting to
// "school".
func NormalizeAchievementLevel(raw string) string {
	switch l := trimLower(raw); l {
	case "international", "national", "state", "district", "school", "others":
		return l
	default:
		return "school"
	}
}

// AchievementSectionTitle returns the display title for a section key. The
// title is always re-derived from the key at build time; stale persisted
// titles are never trusted.
func AchievementSectionTitle(key string) string {
	canonical := NormalizeAchievementSection(key)
	for _, option := range achievementSectionOptions {
		if option.Value == canonical {
			return option.Label
		}
	}
	return capitalize(canonical) + " Achievements"
}

// DefaultSections seeds the admin section picker so that every default
// section is offered even when currently unused.
func DefaultSections() []SectionMeta {
	out := make([]SectionMeta, 0, len(achievementSectionOptions))
	for _, option := range achievementSectionOptions {
		out = append(out, SectionMeta{Key: option.Value, Title: option.Label})
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
