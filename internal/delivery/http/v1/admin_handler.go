package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"diving-mate-backend/internal/delivery/http/middleware"
	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	verificationUC domain.VerificationUsecase
}

type reviewRequest struct {
	Action string `json:"action" binding:"required,oneof=start_review approve reject"`
	Notes  string `json:"notes"`
}

func NewAdminHandler(r *gin.RouterGroup, uc domain.VerificationUsecase) {
	handler := &AdminHandler{verificationUC: uc}

	admin := r.Group("/admin")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	{
		admin.GET("/verifications", handler.ListVerifications)
		admin.GET("/verifications/export", handler.ExportVerifications)
		admin.POST("/verifications/:id/review", handler.ReviewVerification)
	}
}

func verificationFilter(c *gin.Context) domain.VerificationFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return domain.VerificationFilter{
		UserType: c.Query("user_type"),
		Status:   c.Query("status"),
		Page:     page,
		Limit:    limit,
	}
}

// ListVerifications godoc
// @Summary List verification requests
// @Tags Admin
// @Produce json
// @Param user_type query string false "instructor or resort"
// @Param status query string false "Status filter"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Page
// @Security BearerAuth
// @Router /admin/verifications [get]
func (h *AdminHandler) ListVerifications(c *gin.Context) {
	filter := verificationFilter(c)
	items, total, err := h.verificationUC.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	response.Success(c, http.StatusOK, "Verifications retrieved", response.Page{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	})
}

// ExportVerifications godoc
// @Summary Export verification requests
// @Description Downloads all requests matching the filter as an xlsx workbook
// @Tags Admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param user_type query string false "instructor or resort"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /admin/verifications/export [get]
func (h *AdminHandler) ExportVerifications(c *gin.Context) {
	filter := verificationFilter(c)
	data, err := h.verificationUC.Export(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	filename := fmt.Sprintf("verifications_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// ReviewVerification godoc
// @Summary Review a verification request
// @Description start_review, approve or reject. Rejections need notes.
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Verification ID"
// @Param request body reviewRequest true "Decision"
// @Success 200 {object} domain.VerificationRequest
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /admin/verifications/{id}/review [post]
func (h *AdminHandler) ReviewVerification(c *gin.Context) {
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	adminID := c.GetString(string(domain.KeyUserID))
	result, err := h.verificationUC.Review(c.Request.Context(), adminID, c.Param("id"), req.Action, req.Notes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Verification reviewed", result)
}
