package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/verification"
	"diving-mate-backend/pkg/apperror"
	"diving-mate-backend/pkg/logger"
	"diving-mate-backend/pkg/security"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const exportPageSize = 100

type verificationUsecase struct {
	verificationRepo domain.VerificationRepository
	userRepo         domain.UserRepository
	uploader         domain.DocumentUploader
	validate         *validator.Validate
	securityLogger   *security.SecurityLogger
	submitter        domain.VerificationSubmitter
}

func NewVerificationUsecase(
	repo domain.VerificationRepository,
	userRepo domain.UserRepository,
	uploader domain.DocumentUploader,
	validate *validator.Validate,
	securityLogger *security.SecurityLogger,
) domain.VerificationUsecase {
	if securityLogger == nil {
		securityLogger = security.DefaultLogger()
	}
	return &verificationUsecase{
		verificationRepo: repo,
		userRepo:         userRepo,
		uploader:         uploader,
		validate:         validate,
		securityLogger:   securityLogger,
		submitter:        repositorySubmitter{repo: repo},
	}
}

// repositorySubmitter submits a request by persisting it in its pending state
type repositorySubmitter struct {
	repo domain.VerificationRepository
}

func (s repositorySubmitter) Submit(ctx context.Context, req *domain.VerificationRequest) error {
	req.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, req)
}

func (uc *verificationUsecase) Start(ctx context.Context, userID string, userType domain.UserType) (*domain.WorkflowView, error) {
	if err := requireSelf(ctx, userID); err != nil {
		return nil, err
	}
	if !userType.IsValid() {
		return nil, apperror.BadRequest("user_type must be instructor or resort")
	}

	existing, err := uc.verificationRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if existing.UserType != userType {
			return nil, apperror.Conflict("A verification for a different business type already exists")
		}
		return verification.Resume(existing).View(), nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, apperror.Internal(err)
	}

	wf := verification.New(userID, userType)
	req := wf.Request()
	req.ID = uuid.NewString()
	req.CreatedAt = time.Now().UTC()
	req.UpdatedAt = req.CreatedAt

	if err := uc.verificationRepo.Create(ctx, req); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, apperror.Conflict("Verification already started")
		}
		return nil, apperror.Internal(err)
	}
	return wf.View(), nil
}

func (uc *verificationUsecase) Get(ctx context.Context, userID string) (*domain.WorkflowView, error) {
	wf, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return wf.View(), nil
}

func (uc *verificationUsecase) SaveBusinessInfo(ctx context.Context, userID string, info domain.BusinessInfo) (*domain.WorkflowView, error) {
	// Field formats only; completeness is judged by the workflow
	if err := uc.validate.Struct(info); err != nil {
		return nil, invalidInput(err)
	}
	return uc.mutate(ctx, userID, func(wf *verification.Workflow) bool {
		return wf.SetBusinessInfo(info)
	})
}

func (uc *verificationUsecase) SaveContactInfo(ctx context.Context, userID string, info domain.ContactInfo) (*domain.WorkflowView, error) {
	if err := uc.validate.Struct(info); err != nil {
		return nil, invalidInput(err)
	}
	return uc.mutate(ctx, userID, func(wf *verification.Workflow) bool {
		return wf.SetContactInfo(info)
	})
}

func (uc *verificationUsecase) Next(ctx context.Context, userID string) (*domain.WorkflowView, error) {
	return uc.move(ctx, userID, (*verification.Workflow).Next)
}

func (uc *verificationUsecase) Back(ctx context.Context, userID string) (*domain.WorkflowView, error) {
	return uc.move(ctx, userID, (*verification.Workflow).Back)
}

func (uc *verificationUsecase) UploadDocument(ctx context.Context, userID, docType string, file domain.UploadedFile) (*domain.WorkflowView, error) {
	wf, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wf.Submitted() {
		return nil, apperror.Conflict("Verification already submitted")
	}
	if !domain.IsKnownDocumentType(wf.Request().UserType, docType) {
		return nil, apperror.BadRequest(fmt.Sprintf("Unknown document type %q", docType))
	}

	doc, err := uc.uploader.Upload(ctx, userID, docType, file)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.BadGateway("Failed to upload document", err)
	}

	wf.AttachDocument(*doc)
	if err := uc.persist(ctx, wf); err != nil {
		return nil, err
	}
	return wf.View(), nil
}

// Submit is a no-op returning the unchanged view when the workflow is not
// ready; callers read View.Submitted.
func (uc *verificationUsecase) Submit(ctx context.Context, userID string) (*domain.WorkflowView, error) {
	wf, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	submitted, err := wf.Submit(ctx, uc.submitter)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if submitted {
		logger.Log.Info("Verification submitted", "verification_id", wf.Request().ID, "user_type", wf.Request().UserType)
	}
	return wf.View(), nil
}

func (uc *verificationUsecase) List(ctx context.Context, filter domain.VerificationFilter) ([]domain.VerificationRequest, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	items, total, err := uc.verificationRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return items, total, nil
}

// reviewTransitions maps an action to the statuses it may start from and the
// status it produces
var reviewTransitions = map[string]struct {
	from []string
	to   string
}{
	domain.ReviewActionStart: {
		from: []string{domain.VerificationStatusPending},
		to:   domain.VerificationStatusUnderReview,
	},
	domain.ReviewActionApprove: {
		from: []string{domain.VerificationStatusPending, domain.VerificationStatusUnderReview},
		to:   domain.VerificationStatusApproved,
	},
	domain.ReviewActionReject: {
		from: []string{domain.VerificationStatusPending, domain.VerificationStatusUnderReview},
		to:   domain.VerificationStatusRejected,
	},
}

func (uc *verificationUsecase) Review(ctx context.Context, adminID, id, action, notes string) (*domain.VerificationRequest, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	action = strings.ToLower(strings.TrimSpace(action))
	transition, ok := reviewTransitions[action]
	if !ok {
		return nil, apperror.BadRequest("action must be start_review, approve or reject")
	}
	notes = strings.TrimSpace(notes)
	if action == domain.ReviewActionReject && notes == "" {
		return nil, apperror.BadRequest("Notes are required when rejecting")
	}

	v, err := uc.verificationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Verification not found")
		}
		return nil, apperror.Internal(err)
	}

	allowed := false
	for _, s := range transition.from {
		if v.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperror.Conflict(fmt.Sprintf("Cannot %s a verification that is %s", action, v.Status))
	}

	now := time.Now().UTC()
	v.Status = transition.to
	v.ReviewedBy = &adminID
	v.ReviewedAt = &now
	v.UpdatedAt = now
	if notes != "" {
		v.Notes = &notes
	}

	if err := uc.verificationRepo.Update(ctx, v); err != nil {
		return nil, apperror.Internal(err)
	}

	if v.Status == domain.VerificationStatusApproved {
		if err := uc.grantListingRole(ctx, v); err != nil {
			return nil, err
		}
	}

	uc.securityLogger.LogVerificationReviewed(ctx, adminID, v.ID, action)
	return v, nil
}

// grantListingRole lets an approved business publish its listing
func (uc *verificationUsecase) grantListingRole(ctx context.Context, v *domain.VerificationRequest) error {
	user, err := uc.userRepo.GetByID(ctx, v.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Log.Warn("Approved verification has no user record", "verification_id", v.ID, "user_id", v.UserID)
			return nil
		}
		return apperror.Internal(err)
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}
	user.Role = string(v.UserType)
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(ctx, user); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

var exportColumns = []string{
	"ID", "USER ID", "USER TYPE", "STATUS", "BUSINESS NAME", "CITY", "COUNTRY",
	"CONTACT NAME", "CONTACT EMAIL", "CONTACT PHONE", "DOCUMENTS", "SUBMITTED AT", "REVIEWED AT", "NOTES",
}

// Export writes every verification matching filter to an xlsx workbook
func (uc *verificationUsecase) Export(ctx context.Context, filter domain.VerificationFilter) ([]byte, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	var all []domain.VerificationRequest
	filter.Limit = exportPageSize
	for filter.Page = 1; ; filter.Page++ {
		items, total, err := uc.verificationRepo.List(ctx, filter)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		all = append(all, items...)
		if len(items) < exportPageSize || int64(len(all)) >= total {
			break
		}
	}

	data, err := exportWorkbook(all)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return data, nil
}

func exportWorkbook(items []domain.VerificationRequest) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Verifications"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#0B4F6C"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, v := range items {
		docTypes := make([]string, 0, len(v.Documents))
		for _, d := range v.Documents {
			docTypes = append(docTypes, d.Type)
		}
		row := []interface{}{
			v.ID, v.UserID, string(v.UserType), v.Status,
			v.BusinessInfo.BusinessName, v.BusinessInfo.Address.City, v.BusinessInfo.Address.Country,
			v.ContactInfo.Primary.Name, v.ContactInfo.Primary.Email, v.ContactInfo.Primary.Phone,
			strings.Join(docTypes, ", "), formatTime(v.SubmittedAt), formatTime(v.ReviewedAt), derefString(v.Notes),
		}
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", rowIdx+2, err)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (uc *verificationUsecase) load(ctx context.Context, userID string) (*verification.Workflow, error) {
	if err := requireSelf(ctx, userID); err != nil {
		return nil, err
	}
	req, err := uc.verificationRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Verification not started")
		}
		return nil, apperror.Internal(err)
	}
	return verification.Resume(req), nil
}

func (uc *verificationUsecase) persist(ctx context.Context, wf *verification.Workflow) error {
	req := wf.Request()
	req.UpdatedAt = time.Now().UTC()
	if err := uc.verificationRepo.Update(ctx, req); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// mutate applies a data change and stores it; edits after submission conflict
func (uc *verificationUsecase) mutate(ctx context.Context, userID string, apply func(*verification.Workflow) bool) (*domain.WorkflowView, error) {
	wf, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !apply(wf) {
		return nil, apperror.Conflict("Verification already submitted")
	}
	if err := uc.persist(ctx, wf); err != nil {
		return nil, err
	}
	return wf.View(), nil
}

// move applies a transition; a blocked transition returns the unchanged view
func (uc *verificationUsecase) move(ctx context.Context, userID string, transition func(*verification.Workflow) bool) (*domain.WorkflowView, error) {
	wf, err := uc.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if transition(wf) {
		if err := uc.persist(ctx, wf); err != nil {
			return nil, err
		}
	}
	return wf.View(), nil
}
