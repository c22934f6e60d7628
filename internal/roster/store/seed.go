package store

import (
	"context"

	"presence/internal/roster/models"
)

// DemoTeam is the roster used when the server runs without a database.
var DemoTeam = models.Roster{
	{Initials: "AB", DisplayName: "Alex Brown", FirstName: "Alex", Level: "Partner"},
	{Initials: "CD", DisplayName: "Casey Doyle", FirstName: "Casey", Level: "Associate"},
	{Initials: "EF", DisplayName: "Erin Fox", FirstName: "Erin", Level: "Paralegal"},
}

// SeedDemoTeam loads DemoTeam into an in-memory roster.
func SeedDemoTeam(s *InMemory) models.Roster {
	s.Replace(DemoTeam)
	members, _ := s.Members(context.Background())
	return members
}
