package v1

import (
	"io"
	"net/http"

	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"
	"diving-mate-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type VerificationHandler struct {
	verificationUC domain.VerificationUsecase
	maxUploadBytes int64
}

type startVerificationRequest struct {
	UserType domain.UserType `json:"user_type" binding:"required"`
}

func NewVerificationHandler(r *gin.RouterGroup, uc domain.VerificationUsecase, maxUploadBytes int64, writeLimit, uploadLimit gin.HandlerFunc) {
	handler := &VerificationHandler{verificationUC: uc, maxUploadBytes: maxUploadBytes}

	verifications := r.Group("/verifications")
	{
		verifications.POST("", writeLimit, handler.Start)
		verifications.GET("/me", handler.Get)
		verifications.PUT("/me/business-info", writeLimit, handler.SaveBusinessInfo)
		verifications.PUT("/me/contact-info", writeLimit, handler.SaveContactInfo)
		verifications.POST("/me/next", handler.Next)
		verifications.POST("/me/back", handler.Back)
		verifications.POST("/me/documents", uploadLimit, handler.UploadDocument)
		verifications.POST("/me/submit", writeLimit, handler.Submit)
	}
}

// Start godoc
// @Summary Start business verification
// @Description Opens a verification for an instructor or resort. Calling again with the same type returns the existing one.
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body startVerificationRequest true "Business type"
// @Success 200 {object} domain.WorkflowView
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /verifications [post]
func (h *VerificationHandler) Start(c *gin.Context) {
	var req startVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	view, err := h.verificationUC.Start(c.Request.Context(), c.GetString(string(domain.KeyUserID)), req.UserType)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Verification started", view)
}

// Get godoc
// @Summary Get my verification
// @Tags Verification
// @Produce json
// @Success 200 {object} domain.WorkflowView
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /verifications/me [get]
func (h *VerificationHandler) Get(c *gin.Context) {
	view, err := h.verificationUC.Get(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Verification retrieved", view)
}

// SaveBusinessInfo godoc
// @Summary Save step 1
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body domain.BusinessInfo true "Business information"
// @Success 200 {object} domain.WorkflowView
// @Security BearerAuth
// @Router /verifications/me/business-info [put]
func (h *VerificationHandler) SaveBusinessInfo(c *gin.Context) {
	var info domain.BusinessInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	view, err := h.verificationUC.SaveBusinessInfo(c.Request.Context(), c.GetString(string(domain.KeyUserID)), info)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Business information saved", view)
}

// SaveContactInfo godoc
// @Summary Save step 2
// @Tags Verification
// @Accept json
// @Produce json
// @Param request body domain.ContactInfo true "Contact information"
// @Success 200 {object} domain.WorkflowView
// @Security BearerAuth
// @Router /verifications/me/contact-info [put]
func (h *VerificationHandler) SaveContactInfo(c *gin.Context) {
	var info domain.ContactInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	view, err := h.verificationUC.SaveContactInfo(c.Request.Context(), c.GetString(string(domain.KeyUserID)), info)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Contact information saved", view)
}

// Next godoc
// @Summary Advance to the next step
// @Description No-op when the current step is incomplete or already last
// @Tags Verification
// @Produce json
// @Success 200 {object} domain.WorkflowView
// @Security BearerAuth
// @Router /verifications/me/next [post]
func (h *VerificationHandler) Next(c *gin.Context) {
	view, err := h.verificationUC.Next(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Step updated", view)
}

// Back godoc
// @Summary Return to the previous step
// @Tags Verification
// @Produce json
// @Success 200 {object} domain.WorkflowView
// @Security BearerAuth
// @Router /verifications/me/back [post]
func (h *VerificationHandler) Back(c *gin.Context) {
	view, err := h.verificationUC.Back(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Step updated", view)
}

// UploadDocument godoc
// @Summary Upload a verification document
// @Description Accepts JPEG, PNG, WebP or PDF. Images are recompressed before storage.
// @Tags Verification
// @Accept multipart/form-data
// @Produce json
// @Param type formData string true "Document type"
// @Param file formData file true "Document file"
// @Success 200 {object} domain.WorkflowView
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Security BearerAuth
// @Router /verifications/me/documents [post]
func (h *VerificationHandler) UploadDocument(c *gin.Context) {
	docType := c.PostForm("type")
	if docType == "" {
		response.Error(c, http.StatusBadRequest, "Document type is required", nil)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "File is required", nil)
		return
	}
	if header.Size > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "File too large", nil)
		return
	}

	f, err := header.Open()
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		_ = c.Error(apperror.Internal(err))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		response.Error(c, http.StatusRequestEntityTooLarge, "File too large", nil)
		return
	}

	view, err := h.verificationUC.UploadDocument(c.Request.Context(), c.GetString(string(domain.KeyUserID)), docType, domain.UploadedFile{
		Filename: header.Filename,
		Data:     data,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Document uploaded", view)
}

// Submit godoc
// @Summary Submit for review
// @Description Returns the unchanged workflow when required steps are incomplete
// @Tags Verification
// @Produce json
// @Success 200 {object} domain.WorkflowView
// @Security BearerAuth
// @Router /verifications/me/submit [post]
func (h *VerificationHandler) Submit(c *gin.Context) {
	view, err := h.verificationUC.Submit(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	msg := "Verification submitted"
	if !view.Submitted {
		msg = "Verification is incomplete"
	}
	response.Success(c, http.StatusOK, msg, view)
}
