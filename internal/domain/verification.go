package domain

import (
	"context"
	"time"
)

// UserType is the kind of business asking to be listed
type UserType string

const (
	UserTypeInstructor UserType = "instructor"
	UserTypeResort     UserType = "resort"
)

// IsValid checks if the user type is known
func (t UserType) IsValid() bool {
	return t == UserTypeInstructor || t == UserTypeResort
}

// VerificationStatus constants
const (
	VerificationStatusDraft       = "draft"
	VerificationStatusPending     = "pending"
	VerificationStatusUnderReview = "under_review"
	VerificationStatusApproved    = "approved"
	VerificationStatusRejected    = "rejected"
)

// Review actions
const (
	ReviewActionStart   = "start_review"
	ReviewActionApprove = "approve"
	ReviewActionReject  = "reject"
)

type Address struct {
	Street     string `json:"street" validate:"max=200"`
	City       string `json:"city" validate:"max=100"`
	State      string `json:"state,omitempty" validate:"max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"max=20"`
	Country    string `json:"country,omitempty" validate:"max=100"`
}

// BusinessInfo is collected in step 1
type BusinessInfo struct {
	BusinessName    string  `json:"business_name" validate:"max=120,no_emoji"`
	Description     string  `json:"description" validate:"max=4000"`
	Address         Address `json:"address"`
	Website         string  `json:"website,omitempty" validate:"omitempty,url"`
	YearsInBusiness int     `json:"years_in_business,omitempty" validate:"gte=0,lte=200"`
}

type Contact struct {
	Name     string `json:"name" validate:"max=120,valid_name"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"valid_phone"`
	Position string `json:"position,omitempty" validate:"max=120"`
}

// ContactInfo is collected in step 2
type ContactInfo struct {
	Primary   Contact  `json:"primary"`
	Emergency *Contact `json:"emergency,omitempty"`
}

// VerificationDocument is an uploaded supporting document
type VerificationDocument struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// DocumentRequirement lists a document type expected for a user type
type DocumentRequirement struct {
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

var documentRequirements = map[UserType][]DocumentRequirement{
	UserTypeInstructor: {
		{Type: "certification", Label: "Diving instructor certification", Required: true},
		{Type: "insurance", Label: "Professional liability insurance", Required: true},
		{Type: "identification", Label: "Government-issued ID", Required: true},
		{Type: "first_aid", Label: "First aid / CPR certificate", Required: false},
	},
	UserTypeResort: {
		{Type: "business_license", Label: "Business license", Required: true},
		{Type: "insurance", Label: "Liability insurance", Required: true},
		{Type: "safety_certificate", Label: "Dive safety certificate", Required: true},
		{Type: "facility_photos", Label: "Facility photos", Required: false},
	},
}

// RequiredDocuments returns the document list for a user type
func RequiredDocuments(t UserType) []DocumentRequirement {
	return documentRequirements[t]
}

// IsKnownDocumentType checks the type against the user type's list
func IsKnownDocumentType(t UserType, docType string) bool {
	for _, r := range documentRequirements[t] {
		if r.Type == docType {
			return true
		}
	}
	return false
}

// VerificationRequest is the onboarding submission for becoming a listed business
type VerificationRequest struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	UserType     UserType               `json:"user_type"`
	Status       string                 `json:"status"`
	Step         int                    `json:"step"`
	BusinessInfo BusinessInfo           `json:"business_info"`
	ContactInfo  ContactInfo            `json:"contact_info"`
	Documents    []VerificationDocument `json:"documents"`
	Notes        *string                `json:"notes,omitempty"`
	ReviewedBy   *string                `json:"reviewed_by,omitempty"`
	SubmittedAt  *time.Time             `json:"submitted_at,omitempty"`
	ReviewedAt   *time.Time             `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// WorkflowView is the API shape of a verification in progress
type WorkflowView struct {
	Request           *VerificationRequest  `json:"request"`
	Step              int                   `json:"step"`
	StepComplete      map[int]bool          `json:"step_complete"`
	CanAdvance        bool                  `json:"can_advance"`
	CanSubmit         bool                  `json:"can_submit"`
	Submitted         bool                  `json:"submitted"`
	RequiredDocuments []DocumentRequirement `json:"required_documents"`
}

// VerificationFilter defines filtering options
type VerificationFilter struct {
	UserType string `json:"user_type,omitempty"`
	Status   string `json:"status,omitempty"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

// UploadedFile is the raw upload handed to the document collaborator
type UploadedFile struct {
	Filename string
	Data     []byte
}

// DocumentUploader stores a document and returns its record
type DocumentUploader interface {
	Upload(ctx context.Context, userID, docType string, file UploadedFile) (*VerificationDocument, error)
}

// VerificationSubmitter accepts an assembled request for review
type VerificationSubmitter interface {
	Submit(ctx context.Context, req *VerificationRequest) error
}

type VerificationRepository interface {
	Create(ctx context.Context, req *VerificationRequest) error
	GetByID(ctx context.Context, id string) (*VerificationRequest, error)
	GetByUserID(ctx context.Context, userID string) (*VerificationRequest, error)
	Update(ctx context.Context, req *VerificationRequest) error
	List(ctx context.Context, filter VerificationFilter) ([]VerificationRequest, int64, error)
}

type VerificationUsecase interface {
	Start(ctx context.Context, userID string, userType UserType) (*WorkflowView, error)
	Get(ctx context.Context, userID string) (*WorkflowView, error)
	SaveBusinessInfo(ctx context.Context, userID string, info BusinessInfo) (*WorkflowView, error)
	SaveContactInfo(ctx context.Context, userID string, info ContactInfo) (*WorkflowView, error)
	Next(ctx context.Context, userID string) (*WorkflowView, error)
	Back(ctx context.Context, userID string) (*WorkflowView, error)
	UploadDocument(ctx context.Context, userID, docType string, file UploadedFile) (*WorkflowView, error)
	Submit(ctx context.Context, userID string) (*WorkflowView, error)

	// Admin
	List(ctx context.Context, filter VerificationFilter) ([]VerificationRequest, int64, error)
	Review(ctx context.Context, adminID, id, action, notes string) (*VerificationRequest, error)
	Export(ctx context.Context, filter VerificationFilter) ([]byte, error)
}
