package models

import id "presence/pkg/domain"

// TeamMember is an active roster entry. The roster is owned elsewhere;
// this subsystem never writes it.
type TeamMember struct {
	Initials    id.Initials `json:"initials"`
	DisplayName string      `json:"displayName"`
	FirstName   string      `json:"firstName,omitempty"`
	Level       string      `json:"level,omitempty"`
}

// Roster is an ordered list of members with case-insensitive lookup.
type Roster []TeamMember

// Find returns the member whose initials match person.
func (r Roster) Find(person id.Initials) (TeamMember, bool) {
	for _, m := range r {
		if m.Initials.Key() == person.Key() && !person.IsNil() {
			return m, true
		}
	}
	return TeamMember{}, false
}

// DisplayName returns the member's display name, falling back to the initials.
func (r Roster) DisplayName(person id.Initials) string {
	if m, ok := r.Find(person); ok && m.DisplayName != "" {
		return m.DisplayName
	}
	return person.String()
}
