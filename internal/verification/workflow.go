// Package verification implements the three-step onboarding workflow that a
// business goes through before it is listed in the directory.
package verification

import (
	"context"
	"strings"
	"time"

	"diving-mate-backend/internal/domain"
)

// Step is a workflow position
type Step int

const (
	StepBusinessInfo Step = 1
	StepContactInfo  Step = 2
	StepDocuments    Step = 3
	StepSubmitted    Step = 4
)

func (s Step) String() string {
	switch s {
	case StepBusinessInfo:
		return "business_info"
	case StepContactInfo:
		return "contact_info"
	case StepDocuments:
		return "documents"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Workflow gates forward movement through the steps of a verification request.
// Moves that are not allowed are ignored rather than reported.
type Workflow struct {
	req  *domain.VerificationRequest
	step Step
	now  func() time.Time
}

// New starts a workflow for a fresh draft request
func New(userID string, userType domain.UserType) *Workflow {
	req := &domain.VerificationRequest{
		UserID:    userID,
		UserType:  userType,
		Status:    domain.VerificationStatusDraft,
		Step:      int(StepBusinessInfo),
		Documents: []domain.VerificationDocument{},
	}
	return Resume(req)
}

// Resume rebuilds a workflow from a stored request. Requests past the draft
// stage resume as submitted.
func Resume(req *domain.VerificationRequest) *Workflow {
	w := &Workflow{req: req, now: time.Now}
	switch {
	case req.Status != "" && req.Status != domain.VerificationStatusDraft:
		w.step = StepSubmitted
	case req.Step < int(StepBusinessInfo):
		w.step = StepBusinessInfo
	case req.Step > int(StepDocuments):
		w.step = StepDocuments
	default:
		w.step = Step(req.Step)
	}
	req.Step = int(w.step)
	return w
}

// Request returns the underlying request
func (w *Workflow) Request() *domain.VerificationRequest { return w.req }

// Step returns the current position
func (w *Workflow) Step() Step { return w.step }

// Submitted reports whether the workflow reached its terminal state
func (w *Workflow) Submitted() bool { return w.step == StepSubmitted }

// IsStepComplete evaluates the completion predicate of a form step
func (w *Workflow) IsStepComplete(s Step) bool {
	switch s {
	case StepBusinessInfo:
		b := w.req.BusinessInfo
		return filled(b.BusinessName, b.Description, b.Address.Street, b.Address.City)
	case StepContactInfo:
		c := w.req.ContactInfo.Primary
		return filled(c.Name, c.Email, c.Phone)
	case StepDocuments:
		return len(MissingDocuments(w.req)) == 0
	default:
		return false
	}
}

// CanAdvance reports whether Next would move forward
func (w *Workflow) CanAdvance() bool {
	return w.step < StepDocuments && w.IsStepComplete(w.step)
}

// CanSubmit reports whether Submit would call the submitter
func (w *Workflow) CanSubmit() bool {
	return w.step == StepDocuments && w.IsStepComplete(StepDocuments)
}

// Next moves one step forward when the current step is complete
func (w *Workflow) Next() bool {
	if !w.CanAdvance() {
		return false
	}
	w.moveTo(w.step + 1)
	return true
}

// Back moves one step backward without validation
func (w *Workflow) Back() bool {
	if w.step <= StepBusinessInfo || w.Submitted() {
		return false
	}
	w.moveTo(w.step - 1)
	return true
}

// SetBusinessInfo replaces the step 1 data. Ignored after submission.
func (w *Workflow) SetBusinessInfo(info domain.BusinessInfo) bool {
	if w.Submitted() {
		return false
	}
	w.req.BusinessInfo = info
	return true
}

// SetContactInfo replaces the step 2 data. Ignored after submission.
func (w *Workflow) SetContactInfo(info domain.ContactInfo) bool {
	if w.Submitted() {
		return false
	}
	w.req.ContactInfo = info
	return true
}

// AttachDocument records an uploaded document. Ignored after submission.
func (w *Workflow) AttachDocument(doc domain.VerificationDocument) bool {
	if w.Submitted() {
		return false
	}
	w.req.Documents = append(w.req.Documents, doc)
	return true
}

// Submit hands the request to the submitter once step 3 is complete.
// It returns false with a nil error when submission is not yet allowed.
// A submitter error is returned as is and the workflow stays on step 3.
// Only step 3 readiness is checked here; steps 1 and 2 are not re-checked,
// so data blanked through SetBusinessInfo or SetContactInfo after moving
// on is submitted as is.
func (w *Workflow) Submit(ctx context.Context, submitter domain.VerificationSubmitter) (bool, error) {
	if !w.CanSubmit() {
		return false, nil
	}

	prevStatus, prevSubmittedAt := w.req.Status, w.req.SubmittedAt
	now := w.now()
	w.req.Status = domain.VerificationStatusPending
	w.req.SubmittedAt = &now

	if err := submitter.Submit(ctx, w.req); err != nil {
		w.req.Status, w.req.SubmittedAt = prevStatus, prevSubmittedAt
		return false, err
	}
	w.step = StepSubmitted
	return true, nil
}

// View summarizes the workflow for clients
func (w *Workflow) View() *domain.WorkflowView {
	return &domain.WorkflowView{
		Request: w.req,
		Step:    int(w.step),
		StepComplete: map[int]bool{
			int(StepBusinessInfo): w.IsStepComplete(StepBusinessInfo),
			int(StepContactInfo):  w.IsStepComplete(StepContactInfo),
			int(StepDocuments):    w.IsStepComplete(StepDocuments),
		},
		CanAdvance:        w.CanAdvance(),
		CanSubmit:         w.CanSubmit(),
		Submitted:         w.Submitted(),
		RequiredDocuments: domain.RequiredDocuments(w.req.UserType),
	}
}

func (w *Workflow) moveTo(s Step) {
	w.step = s
	w.req.Step = int(s)
}

// MissingDocuments lists the required document types with no upload yet
func MissingDocuments(req *domain.VerificationRequest) []string {
	have := make(map[string]bool, len(req.Documents))
	for _, d := range req.Documents {
		have[d.Type] = true
	}
	var missing []string
	for _, r := range domain.RequiredDocuments(req.UserType) {
		if r.Required && !have[r.Type] {
			missing = append(missing, r.Type)
		}
	}
	return missing
}

func filled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
