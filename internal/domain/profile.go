package domain

import (
	"context"
	"math"
	"time"
)

// ProfileKind discriminates instructor and resort listings
type ProfileKind string

const (
	KindInstructor ProfileKind = "instructor"
	KindResort     ProfileKind = "resort"
)

// IsValid checks if the kind is a known listing kind
func (k ProfileKind) IsValid() bool {
	return k == KindInstructor || k == KindResort
}

// Offering is a priced service (instructor) or package (resort)
type Offering struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Price    float64 `json:"price" validate:"gte=0"`
	Duration string  `json:"duration,omitempty" validate:"max=60"`
}

type ProfileStats struct {
	Views       int64   `json:"views"`
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// Instructor is the stored instructor listing document
type Instructor struct {
	ID             string       `json:"id"`
	OwnerID        string       `json:"owner_id"`
	Name           string       `json:"name"`
	Bio            string       `json:"bio"`
	Address        string       `json:"address"`
	Specialties    []string     `json:"specialties"`
	Services       []Offering   `json:"services"`
	Certifications []string     `json:"certifications,omitempty"`
	Experience     int          `json:"experience"` // Years
	ImageURL       *string      `json:"image_url,omitempty"`
	Stats          ProfileStats `json:"stats"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Resort is the stored resort listing document
type Resort struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Address     string       `json:"address"`
	Facilities  []string     `json:"facilities"`
	Packages    []Offering   `json:"packages"`
	ImageURL    *string      `json:"image_url,omitempty"`
	Stats       ProfileStats `json:"stats"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Profile is the kind-tagged listing view the directory works on.
// It is built once from an Instructor or Resort when the record is loaded.
type Profile struct {
	Kind           ProfileKind  `json:"kind"`
	ID             string       `json:"id"`
	OwnerID        string       `json:"owner_id"`
	Name           string       `json:"name"`
	Summary        string       `json:"summary"` // Instructor bio or resort description
	Address        string       `json:"address"`
	Tags           []string     `json:"tags"`       // Specialties or facilities
	Priceables     []Offering   `json:"priceables"` // Services or packages
	Stats          ProfileStats `json:"stats"`
	Experience     int          `json:"experience,omitempty"`
	Certifications []string     `json:"certifications,omitempty"`
	ImageURL       *string      `json:"image_url,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Profile projects the instructor document into the directory view
func (i *Instructor) Profile() Profile {
	return Profile{
		Kind:           KindInstructor,
		ID:             i.ID,
		OwnerID:        i.OwnerID,
		Name:           i.Name,
		Summary:        i.Bio,
		Address:        i.Address,
		Tags:           i.Specialties,
		Priceables:     i.Services,
		Stats:          i.Stats,
		Experience:     i.Experience,
		Certifications: i.Certifications,
		ImageURL:       i.ImageURL,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// Profile projects the resort document into the directory view
func (r *Resort) Profile() Profile {
	return Profile{
		Kind:       KindResort,
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Name:       r.Name,
		Summary:    r.Description,
		Address:    r.Address,
		Tags:       r.Facilities,
		Priceables: r.Packages,
		Stats:      r.Stats,
		ImageURL:   r.ImageURL,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// MinPrice returns the cheapest offering price.
// ok is false when there are no offerings or a price is not a finite number.
func (p *Profile) MinPrice() (min float64, ok bool) {
	if len(p.Priceables) == 0 {
		return 0, false
	}
	min = math.Inf(1)
	for _, o := range p.Priceables {
		if math.IsNaN(o.Price) || math.IsInf(o.Price, 0) {
			return 0, false
		}
		if o.Price < min {
			min = o.Price
		}
	}
	return min, true
}

// ListingRequest is the owner-editable part of a listing; fields that do not
// apply to the kind are ignored.
type ListingRequest struct {
	Name           string     `json:"name" validate:"required,max=120,no_emoji"`
	Summary        string     `json:"summary" validate:"max=4000"`
	Address        string     `json:"address" validate:"required,max=300"`
	Tags           []string   `json:"tags" validate:"max=30,dive,max=60"`
	Offerings      []Offering `json:"offerings" validate:"min=1,max=50,dive"`
	Certifications []string   `json:"certifications" validate:"max=20,dive,max=120"`
	Experience     int        `json:"experience" validate:"gte=0,lte=80"`
	ImageURL       *string    `json:"image_url" validate:"omitempty,url"`
}

// SearchPage is a paged slice of pipeline results
type SearchPage struct {
	Items []Profile `json:"items"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

// ProfileFacets describes the filterable vocabulary of a dataset
type ProfileFacets struct {
	Tags     []string `json:"tags"`
	MinPrice float64  `json:"min_price"`
	MaxPrice float64  `json:"max_price"`
	Count    int      `json:"count"`
}

// ProfileRepository is the profile data source
type ProfileRepository interface {
	List(ctx context.Context, kind ProfileKind) ([]Profile, error)
	GetByID(ctx context.Context, kind ProfileKind, id string) (*Profile, error)
	GetByOwner(ctx context.Context, ownerID string) (*Profile, error)
	SaveInstructor(ctx context.Context, instructor *Instructor) error
	SaveResort(ctx context.Context, resort *Resort) error
	IncrementViews(ctx context.Context, kind ProfileKind, id string) error
}

type ProfileUsecase interface {
	Search(ctx context.Context, kind ProfileKind, filter FilterState, sort SortKey, page, limit int) (*SearchPage, error)
	GetProfile(ctx context.Context, kind ProfileKind, id string) (*Profile, error)
	Facets(ctx context.Context, kind ProfileKind) (*ProfileFacets, error)
	UpsertOwnListing(ctx context.Context, ownerID string, req *ListingRequest) (*Profile, error)
}
