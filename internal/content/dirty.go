package content

// DirtyState tracks unsaved edits across the home and contact sections,
// which share a persisted payload. It is raised when either section saves a
// field and narrowed as each section's refresh completes; navigation away
// while not Clean prompts for confirmation.
type DirtyState int

const (
	Clean DirtyState = iota
	DirtyHome
	DirtyContact
	DirtyBoth
)

func (s DirtyState) String() string {
	switch s {
	case DirtyHome:
		return "home"
	case DirtyContact:
		return "contact"
	case DirtyBoth:
		return "both"
	default:
		return "clean"
	}
}

// Mark raises the flag for a saved section. Sections other than home and
// contact do not participate.
func (s DirtyState) Mark(section Section) DirtyState {
	switch section {
	case SectionHome:
		if s == DirtyContact || s == DirtyBoth {
			return DirtyBoth
		}
		return DirtyHome
	case SectionContact:
		if s == DirtyHome || s == DirtyBoth {
			return DirtyBoth
		}
		return DirtyContact
	default:
		return s
	}
}

// Settle narrows the flag after a section's refresh completes.
func (s DirtyState) Settle(section Section) DirtyState {
	switch section {
	case SectionHome:
		switch s {
		case DirtyHome:
			return Clean
		case DirtyBoth:
			return DirtyContact
		}
	case SectionContact:
		switch s {
		case DirtyContact:
			return Clean
		case DirtyBoth:
			return DirtyHome
		}
	}
	return s
}

// NeedsConfirm reports whether navigating away must prompt the user.
func (s DirtyState) NeedsConfirm() bool {
	return s != Clean
}
