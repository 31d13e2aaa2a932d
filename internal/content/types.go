// Package content normalizes the heterogeneous school page documents into
// consistent view models and builds the persisted payloads back from them.
// Historical documents store the same logical list as an array, a keyed map
// or a bare scalar, under several generations of field names; everything in
// this package is tolerant of all of them on the read side and writes only
// the current schema on the write side.
package content

// SchoolDocument is one raw school document as fetched from the store.
// Root holds the decoded JSON document: the pages sub-document plus any
// legacy school-level fields (timeline, contactInfo, socialMedia, ...).
type SchoolDocument struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Slug           string         `json:"slug"`
	Logo           string         `json:"logo"`
	PrimaryColor   string         `json:"primaryColor"`
	SecondaryColor string         `json:"secondaryColor"`
	Root           map[string]any `json:"root"`
}

// Pages returns the pages sub-document, or nil when absent.
func (d *SchoolDocument) Pages() map[string]any {
	if d == nil || d.Root == nil {
		return nil
	}
	pages, _ := d.Root["pages"].(map[string]any)
	return pages
}

// Page returns one page sub-document by key. Absence means "no content".
func (d *SchoolDocument) Page(key string) any {
	pages := d.Pages()
	if pages == nil {
		return nil
	}
	return pages[key]
}

// HomeContent is the normalized home page state.
type HomeContent struct {
	WelcomeTitle     string   `json:"welcomeTitle"`
	WelcomeSubtitle  string   `json:"welcomeSubtitle"`
	PrincipalName    string   `json:"principalName"`
	PrincipalMessage string   `json:"principalMessage"`
	PrincipalPhoto   string   `json:"principalPhoto"`
	HeroImages       []string `json:"heroImages"`
	YearEstablished  string   `json:"yearEstablished"`
	Students         string   `json:"students"`
	Teachers         string   `json:"teachers"`
	SuccessRate      string   `json:"successRate"`
}

// Milestone is one entry of the school journey timeline. Year is free text;
// the first 4-digit run is used for sorting.
type Milestone struct {
	ID          string `json:"id"`
	Year        string `json:"year"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Achievement struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Date         string `json:"date"`
	Level        string `json:"level"`
	SectionKey   string `json:"sectionKey"`
	SectionTitle string `json:"sectionTitle"`
	Image        string `json:"image"`
	SchoolID     string `json:"schoolId"`
}

// SectionMeta describes one achievement section offered by the admin picker.
type SectionMeta struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

type StaffMember struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Department      string `json:"department"`
	Position        string `json:"position"`
	Education       string `json:"education"`
	Specializations string `json:"specializations"`
	Experience      string `json:"experience"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Image           string `json:"image"`
	SchoolID        string `json:"schoolId"`
}

type AlumniMember struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Company         string `json:"company"`
	CurrentPosition string `json:"currentPosition"`
	GraduationYear  string `json:"graduationYear"`
	Image           string `json:"image"`
	Industry        string `json:"industry"`
	Location        string `json:"location"`
	LinkedInURL     string `json:"linkedinUrl"`
}

// GalleryItem is one logical gallery entry: one or more photos, or a single
// YouTube video. Type is always derived from VideoURL presence, never stored
// independently.
type GalleryItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Images      []string `json:"images"`
	VideoURL    string   `json:"videoUrl,omitempty"`
	Type        string   `json:"type"`
}

type Announcement struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Category    string   `json:"category"`
	Priority    string   `json:"priority"`
	Type        string   `json:"type"`
	IsPinned    bool     `json:"isPinned"`
	IsUrgent    bool     `json:"isUrgent"`
	Audience    string   `json:"audience"`
	Author      string   `json:"author"`
	Tags        []string `json:"tags"`
}

// ContactContent is the normalized contact page state. Phone and Email are
// comma-joined lists, OfficeHours is newline-joined.
type ContactContent struct {
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	OfficeHours string `json:"officeHours"`
	WhatsApp    string `json:"whatsApp"`
	Facebook    string `json:"facebook"`
	Instagram   string `json:"instagram"`
}

// ViewModel is the fully reconciled state for every page section of one
// school. It is the single source of truth for both the public read path and
// the admin panel pre-population.
type ViewModel struct {
	Home                HomeContent    `json:"home"`
	Journey             []Milestone    `json:"journey"`
	Achievements        []Achievement  `json:"achievements"`
	AchievementSections []SectionMeta  `json:"achievementSections"`
	Staff               []StaffMember  `json:"staff"`
	Alumni              []AlumniMember `json:"alumni"`
	Gallery             []GalleryItem  `json:"gallery"`
	Announcements       []Announcement `json:"announcements"`
	Contact             ContactContent `json:"contact"`
}

// EmptyViewModel is the cleared state used when the school document is
// missing or the fetch failed. All lists are empty, all scalars default.
func EmptyViewModel() ViewModel {
	return ViewModel{
		Journey:             []Milestone{},
		Achievements:        []Achievement{},
		AchievementSections: DefaultSections(),
		Staff:               []StaffMember{},
		Alumni:              []AlumniMember{},
		Gallery:             []GalleryItem{},
		Announcements:       []Announcement{},
		Home:                HomeContent{HeroImages: []string{}},
	}
}

// Page sub-document keys of the current schema.
const (
	PageHome          = "homePage"
	PageContact       = "contactPage"
	PageAchievements  = "achievementsPage"
	PageStaff         = "staffPage"
	PageAlumni        = "alumniPage"
	PageGallery       = "galleryPage"
	PageAnnouncements = "announcementsPage"
)

// Sections editable through the admin panel, used for store writes and the
// dirty-state machine.
type Section string

const (
	SectionHome          Section = "home"
	SectionContact       Section = "contact"
	SectionAchievements  Section = "achievements"
	SectionStaff         Section = "staff"
	SectionAlumni        Section = "alumni"
	SectionGallery       Section = "gallery"
	SectionAnnouncements Section = "announcements"
)

// PageKey maps an editable section to its pages sub-document key.
func (s Section) PageKey() string {
	switch s {
	case SectionHome:
		return PageHome
	case SectionContact:
		return PageContact
	case SectionAchievements:
		return PageAchievements
	case SectionStaff:
		return PageStaff
	case SectionAlumni:
		return PageAlumni
	case SectionGallery:
		return PageGallery
	case SectionAnnouncements:
		return PageAnnouncements
	default:
		return ""
	}
}
