package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/repository/memory"
	"diving-mate-backend/internal/usecase"
	"diving-mate-backend/pkg/apperror"
	"diving-mate-backend/pkg/security"
	"diving-mate-backend/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, userID, docType string, file domain.UploadedFile) (*domain.VerificationDocument, error) {
	args := m.Called(ctx, userID, docType, file)
	switch ret := args.Get(0).(type) {
	case func(context.Context, string, string, domain.UploadedFile) *domain.VerificationDocument:
		return ret(ctx, userID, docType, file), args.Error(1)
	case *domain.VerificationDocument:
		return ret, args.Error(1)
	}
	return nil, args.Error(1)
}

type verificationFixture struct {
	uc       domain.VerificationUsecase
	repo     *memory.VerificationRepo
	users    *memory.UserRepo
	uploader *MockUploader
	logs     *observer.ObservedLogs
}

func newVerificationFixture(t *testing.T) *verificationFixture {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	f := &verificationFixture{
		repo:     memory.NewVerificationRepository(),
		users:    memory.NewUserRepository(),
		uploader: new(MockUploader),
		logs:     logs,
	}
	f.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(func(_ context.Context, _ string, docType string, file domain.UploadedFile) *domain.VerificationDocument {
			return &domain.VerificationDocument{ID: "doc-" + docType, Type: docType, Name: file.Filename, URL: "https://files.test/" + docType}
		}, nil)
	f.uc = usecase.NewVerificationUsecase(f.repo, f.users, f.uploader, validation.New(),
		security.NewSecurityLoggerWith(zap.New(core), "test", "test"))
	return f
}

func completeBusinessInfo() domain.BusinessInfo {
	return domain.BusinessInfo{
		BusinessName: "Blue Lagoon Divers",
		Description:  "Daily boat dives",
		Address:      domain.Address{Street: "1 Beach Rd", City: "Padang Bai"},
	}
}

func completeContactInfo() domain.ContactInfo {
	return domain.ContactInfo{Primary: domain.Contact{Name: "Ann Lee", Email: "ann@example.com", Phone: "+62 812 3456 789"}}
}

// walkToSubmit fills every step for an instructor and submits
func walkToSubmit(t *testing.T, f *verificationFixture, ctx context.Context, userID string) *domain.WorkflowView {
	t.Helper()
	_, err := f.uc.Start(ctx, userID, domain.UserTypeInstructor)
	require.NoError(t, err)
	_, err = f.uc.SaveBusinessInfo(ctx, userID, completeBusinessInfo())
	require.NoError(t, err)
	_, err = f.uc.Next(ctx, userID)
	require.NoError(t, err)
	_, err = f.uc.SaveContactInfo(ctx, userID, completeContactInfo())
	require.NoError(t, err)
	_, err = f.uc.Next(ctx, userID)
	require.NoError(t, err)
	for _, docType := range []string{"certification", "insurance", "identification"} {
		_, err = f.uc.UploadDocument(ctx, userID, docType, domain.UploadedFile{Filename: docType + ".pdf", Data: []byte("%PDF")})
		require.NoError(t, err)
	}
	view, err := f.uc.Submit(ctx, userID)
	require.NoError(t, err)
	return view
}

func TestVerificationWorkflowThroughUsecase(t *testing.T) {
	ctx := userCtx("user1", domain.RoleConsumer)

	t.Run("Should walk all steps and submit", func(t *testing.T) {
		f := newVerificationFixture(t)
		view := walkToSubmit(t, f, ctx, "user1")

		assert.True(t, view.Submitted)
		assert.Equal(t, domain.VerificationStatusPending, view.Request.Status)
		assert.NotNil(t, view.Request.SubmittedAt)

		stored, err := f.repo.GetByUserID(context.Background(), "user1")
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusPending, stored.Status)
		assert.Len(t, stored.Documents, 3)
	})

	t.Run("Should not advance past an incomplete step", func(t *testing.T) {
		f := newVerificationFixture(t)
		_, err := f.uc.Start(ctx, "user1", domain.UserTypeResort)
		require.NoError(t, err)

		info := completeBusinessInfo()
		info.BusinessName = "   "
		_, err = f.uc.SaveBusinessInfo(ctx, "user1", info)
		require.NoError(t, err)

		view, err := f.uc.Next(ctx, "user1")
		require.NoError(t, err)
		assert.Equal(t, 1, view.Step)
		assert.False(t, view.CanAdvance)
	})

	t.Run("Should treat an early submit as a no-op", func(t *testing.T) {
		f := newVerificationFixture(t)
		_, err := f.uc.Start(ctx, "user1", domain.UserTypeInstructor)
		require.NoError(t, err)

		view, err := f.uc.Submit(ctx, "user1")
		require.NoError(t, err)
		assert.False(t, view.Submitted)
		assert.Equal(t, domain.VerificationStatusDraft, view.Request.Status)
	})

	t.Run("Should resume the existing request on a second start", func(t *testing.T) {
		f := newVerificationFixture(t)
		first, err := f.uc.Start(ctx, "user1", domain.UserTypeInstructor)
		require.NoError(t, err)
		again, err := f.uc.Start(ctx, "user1", domain.UserTypeInstructor)
		require.NoError(t, err)
		assert.Equal(t, first.Request.ID, again.Request.ID)

		_, err = f.uc.Start(ctx, "user1", domain.UserTypeResort)
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Should reject documents of another user type", func(t *testing.T) {
		f := newVerificationFixture(t)
		_, err := f.uc.Start(ctx, "user1", domain.UserTypeInstructor)
		require.NoError(t, err)

		_, err = f.uc.UploadDocument(ctx, "user1", "business_license", domain.UploadedFile{Filename: "a.pdf", Data: []byte("%PDF")})
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should wrap uploader failures as bad gateway", func(t *testing.T) {
		f := newVerificationFixture(t)
		f.uploader.ExpectedCalls = nil
		f.uploader.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("s3 down"))

		_, err := f.uc.Start(ctx, "user1", domain.UserTypeInstructor)
		require.NoError(t, err)
		_, err = f.uc.UploadDocument(ctx, "user1", "insurance", domain.UploadedFile{Filename: "a.pdf", Data: []byte("%PDF")})
		assert.Equal(t, http.StatusBadGateway, apperror.CodeOf(err))
	})

	t.Run("Should refuse edits after submission", func(t *testing.T) {
		f := newVerificationFixture(t)
		walkToSubmit(t, f, ctx, "user1")

		_, err := f.uc.SaveBusinessInfo(ctx, "user1", completeBusinessInfo())
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))

		view, err := f.uc.Back(ctx, "user1")
		require.NoError(t, err)
		assert.True(t, view.Submitted)
	})

	t.Run("Should fail validation for a malformed email", func(t *testing.T) {
		f := newVerificationFixture(t)
		_, err := f.uc.Start(ctx, "user1", domain.UserTypeInstructor)
		require.NoError(t, err)

		info := completeContactInfo()
		info.Primary.Email = "not-an-email"
		_, err = f.uc.SaveContactInfo(ctx, "user1", info)
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))
	})

	t.Run("Should not expose another user's request", func(t *testing.T) {
		f := newVerificationFixture(t)
		_, err := f.uc.Get(ctx, "user2")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}

func TestVerificationReview(t *testing.T) {
	userCtx1 := userCtx("user1", domain.RoleConsumer)
	adminCtx := userCtx("admin1", domain.RoleAdmin)

	setup := func(t *testing.T) (*verificationFixture, string) {
		f := newVerificationFixture(t)
		require.NoError(t, f.users.Create(context.Background(), &domain.User{ID: "user1", Role: domain.RoleConsumer, CreatedAt: time.Now()}))
		view := walkToSubmit(t, f, userCtx1, "user1")
		return f, view.Request.ID
	}

	t.Run("Should fail if role is not admin", func(t *testing.T) {
		f, id := setup(t)
		_, err := f.uc.Review(userCtx1, "user1", id, domain.ReviewActionApprove, "")
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})

	t.Run("Should approve and grant the listing role", func(t *testing.T) {
		f, id := setup(t)

		v, err := f.uc.Review(adminCtx, "admin1", id, domain.ReviewActionStart, "")
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusUnderReview, v.Status)

		v, err = f.uc.Review(adminCtx, "admin1", id, "APPROVE", "looks good")
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusApproved, v.Status)
		require.NotNil(t, v.ReviewedBy)
		assert.Equal(t, "admin1", *v.ReviewedBy)

		user, err := f.users.GetByID(context.Background(), "user1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleInstructor, user.Role)
		assert.Equal(t, 2, f.logs.FilterMessage(string(security.EventVerificationReviewed)).Len())
	})

	t.Run("Should require notes to reject", func(t *testing.T) {
		f, id := setup(t)
		_, err := f.uc.Review(adminCtx, "admin1", id, domain.ReviewActionReject, " ")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))

		v, err := f.uc.Review(adminCtx, "admin1", id, domain.ReviewActionReject, "Insurance expired")
		require.NoError(t, err)
		assert.Equal(t, domain.VerificationStatusRejected, v.Status)
	})

	t.Run("Should refuse transitions out of a final state", func(t *testing.T) {
		f, id := setup(t)
		_, err := f.uc.Review(adminCtx, "admin1", id, domain.ReviewActionApprove, "")
		require.NoError(t, err)

		_, err = f.uc.Review(adminCtx, "admin1", id, domain.ReviewActionStart, "")
		assert.Equal(t, http.StatusConflict, apperror.CodeOf(err))
	})

	t.Run("Should reject unknown actions and ids", func(t *testing.T) {
		f, id := setup(t)
		_, err := f.uc.Review(adminCtx, "admin1", id, "escalate", "")
		assert.Equal(t, http.StatusBadRequest, apperror.CodeOf(err))

		_, err = f.uc.Review(adminCtx, "admin1", "missing", domain.ReviewActionApprove, "")
		assert.Equal(t, http.StatusNotFound, apperror.CodeOf(err))
	})

	t.Run("Should list and export for admins", func(t *testing.T) {
		f, id := setup(t)

		items, total, err := f.uc.List(adminCtx, domain.VerificationFilter{Status: domain.VerificationStatusPending})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, id, items[0].ID)

		data, err := f.uc.Export(adminCtx, domain.VerificationFilter{})
		require.NoError(t, err)

		book, err := excelize.OpenReader(bytes.NewReader(data))
		require.NoError(t, err)
		defer book.Close()
		rows, err := book.GetRows("Verifications")
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "BUSINESS NAME", rows[0][4])
		assert.Equal(t, "Blue Lagoon Divers", rows[1][4])

		_, err = f.uc.Export(userCtx1, domain.VerificationFilter{})
		assert.Equal(t, http.StatusForbidden, apperror.CodeOf(err))
	})
}
