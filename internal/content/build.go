package content

// Payload builders turn edited view-model state back into the persisted page
// sub-documents. They always emit the current schema: structured section
// objects for home and contact, plain arrays for every list page. Derived
// fields (gallery type, achievement section titles) are recomputed from
// canonical inputs on every build so stale stored values cannot survive a
// save.

// BuildHomePayload produces the home page sub-document. The journey
// milestones are embedded sorted, so a home save also persists the current
// timeline state.
func BuildHomePayload(home HomeContent, milestones []Milestone) map[string]any {
	heroImages := home.HeroImages
	if heroImages == nil {
		heroImages = []string{}
	}
	sorted := SortMilestones(milestones)
	milestoneList := make([]map[string]any, 0, len(sorted))
	for _, m := range sorted {
		milestoneList = append(milestoneList, map[string]any{
			"id":          m.ID,
			"year":        m.Year,
			"title":       m.Title,
			"description": m.Description,
		})
	}
	return map[string]any{
		"heroSection": map[string]any{
			"welcomeTitle":    home.WelcomeTitle,
			"welcomeSubtitle": home.WelcomeSubtitle,
			"heroImages":      heroImages,
		},
		"principalSection": map[string]any{
			"principalName":    home.PrincipalName,
			"principalMessage": TruncatePrincipalMessage(home.PrincipalMessage),
			"principalPhoto":   home.PrincipalPhoto,
		},
		"statisticsSection": map[string]any{
			"yearEstablished": home.YearEstablished,
			"students":        home.Students,
			"teachers":        home.Teachers,
			"successRate":     normalizeSuccessRate(home.SuccessRate),
		},
		"timelineSection": map[string]any{
			"milestones": milestoneList,
		},
	}
}

// BuildContactPayload produces the contact page sub-document.
func BuildContactPayload(contact ContactContent) map[string]any {
	return map[string]any{
		"content": map[string]any{
			"address":     contact.Address,
			"phone":       contact.Phone,
			"email":       contact.Email,
			"officeHours": contact.OfficeHours,
			"whatsApp":    contact.WhatsApp,
			"socialMedia": map[string]any{
				"facebook":  contact.Facebook,
				"instagram": contact.Instagram,
			},
		},
	}
}

// BuildAchievementsPayload flattens every section into one plain array.
// Section titles are re-derived from the section key, never taken from the
// incoming records.
func BuildAchievementsPayload(achievements []Achievement) []map[string]any {
	out := make([]map[string]any, 0, len(achievements))
	for _, a := range achievements {
		key := NormalizeAchievementSection(a.SectionKey)
		out = append(out, map[string]any{
			"id":           a.ID,
			"title":        a.Title,
			"description":  a.Description,
			"date":         a.Date,
			"level":        NormalizeAchievementLevel(a.Level),
			"sectionKey":   key,
			"sectionTitle": AchievementSectionTitle(key),
			"image":        a.Image,
			"schoolId":     a.SchoolID,
		})
	}
	return out
}

func BuildStaffPayload(staff []StaffMember) []map[string]any {
	out := make([]map[string]any, 0, len(staff))
	for _, s := range staff {
		out = append(out, map[string]any{
			"id":              s.ID,
			"name":            s.Name,
			"department":      s.Department,
			"position":        s.Position,
			"education":       s.Education,
			"specializations": s.Specializations,
			"experience":      s.Experience,
			"email":           s.Email,
			"phone":           s.Phone,
			"image":           s.Image,
			"schoolId":        s.SchoolID,
		})
	}
	return out
}

func BuildAlumniPayload(alumni []AlumniMember) []map[string]any {
	out := make([]map[string]any, 0, len(alumni))
	for _, a := range alumni {
		industry := a.Industry
		if industry == "" {
			industry = "Other"
		}
		out = append(out, map[string]any{
			"id":              a.ID,
			"name":            a.Name,
			"company":         a.Company,
			"currentPosition": a.CurrentPosition,
			"graduationYear":  a.GraduationYear,
			"image":           a.Image,
			"industry":        industry,
			"location":        a.Location,
			"linkedinUrl":     a.LinkedInURL,
		})
	}
	return out
}

// BuildGalleryPayload re-derives each item's type from its video URL and
// canonicalizes its category before writing.
func BuildGalleryPayload(items []GalleryItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		images := item.Images
		if images == nil {
			images = []string{}
		}
		entry := map[string]any{
			"id":          item.ID,
			"title":       item.Title,
			"category":    NormalizeGalleryCategory(item.Category),
			"description": item.Description,
			"date":        item.Date,
			"images":      images,
			"type":        DeriveGalleryType(item.VideoURL),
		}
		if item.VideoURL != "" {
			entry["videoUrl"] = item.VideoURL
		}
		out = append(out, entry)
	}
	return out
}

// BuildAnnouncementsPayload canonicalizes each announcement's category,
// priority and type before writing, so the persisted shape stays inside the
// closed sets even for values that never passed through the read path.
func BuildAnnouncementsPayload(items []Announcement) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, a := range items {
		tags := a.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, map[string]any{
			"id":          a.ID,
			"title":       a.Title,
			"description": a.Description,
			"date":        a.Date,
			"category":    NormalizeAnnouncementCategory(a.Category),
			"priority":    NormalizeAnnouncementPriority(a.Priority),
			"type":        NormalizeAnnouncementType(a.Type),
			"isPinned":    a.IsPinned,
			"isUrgent":    a.IsUrgent,
			"audience":    a.Audience,
			"author":      a.Author,
			"tags":        tags,
		})
	}
	return out
}
