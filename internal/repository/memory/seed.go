package memory

import (
	"context"
	"time"

	"diving-mate-backend/internal/domain"
)

// SeedDemoListings fills an empty repository with a few listings so a local
// server without a database has something to search.
func SeedDemoListings(ctx context.Context, repo *ProfileRepo) error {
	now := time.Now().UTC()

	instructors := []domain.Instructor{
		{
			ID: "demo-instructor-1", Name: "Maya Santos", Address: "Moalboal, Cebu, Philippines",
			Bio:         "PADI course director focused on reef conservation dives.",
			Specialties: []string{"Reef", "Nitrox", "Photography"},
			Services: []domain.Offering{
				{Name: "Open Water course", Price: 380, Duration: "4 days"},
				{Name: "Fun dive", Price: 45, Duration: "2 hours"},
			},
			Certifications: []string{"PADI Course Director"},
			Experience:     14,
			Stats:          domain.ProfileStats{Views: 320, Rating: 4.9, ReviewCount: 88},
		},
		{
			ID: "demo-instructor-2", Name: "Kenji Arai", Address: "Okinawa, Japan",
			Bio:         "Technical diving and cave training.",
			Specialties: []string{"Technical", "Cave", "Deep"},
			Services: []domain.Offering{
				{Name: "Intro to Cave", Price: 900, Duration: "5 days"},
			},
			Certifications: []string{"TDI Instructor Trainer"},
			Experience:     21,
			Stats:          domain.ProfileStats{Views: 150, Rating: 4.8, ReviewCount: 31},
		},
	}
	resorts := []domain.Resort{
		{
			ID: "demo-resort-1", Name: "Blue Lagoon Dive Resort", Address: "Padang Bai, Bali, Indonesia",
			Description: "Beachfront resort with house reef and daily boat dives.",
			Facilities:  []string{"Pool", "Nitrox", "Equipment rental"},
			Packages: []domain.Offering{
				{Name: "5 nights + 10 dives", Price: 1250, Duration: "6 days"},
			},
			Stats: domain.ProfileStats{Views: 540, Rating: 4.6, ReviewCount: 210},
		},
	}

	for i := range instructors {
		instructors[i].OwnerID = instructors[i].ID
		instructors[i].CreatedAt, instructors[i].UpdatedAt = now, now
		if err := repo.SaveInstructor(ctx, &instructors[i]); err != nil {
			return err
		}
	}
	for i := range resorts {
		resorts[i].OwnerID = resorts[i].ID
		resorts[i].CreatedAt, resorts[i].UpdatedAt = now, now
		if err := repo.SaveResort(ctx, &resorts[i]); err != nil {
			return err
		}
	}
	return nil
}
