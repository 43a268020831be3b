package v1

import (
	"net/http"

	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	authUC  domain.AuthUsecase
	savedUC domain.SavedItemsUsecase
}

func NewAccountHandler(protected *gin.RouterGroup, authUC domain.AuthUsecase, savedUC domain.SavedItemsUsecase, writeLimit gin.HandlerFunc) {
	handler := &AccountHandler{authUC: authUC, savedUC: savedUC}

	me := protected.Group("/me")
	{
		me.GET("", handler.Me)
		me.PUT("", writeLimit, handler.UpdateAccount)
		me.GET("/saved", handler.ListSaved)
		me.POST("/saved/:id/toggle", writeLimit, handler.ToggleSaved)
	}
}

// Me godoc
// @Summary Current account
// @Tags Account
// @Produce json
// @Success 200 {object} domain.User
// @Security BearerAuth
// @Router /me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	user, err := h.authUC.GetCurrentUser(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User retrieved", user)
}

// UpdateAccount godoc
// @Summary Update current account
// @Tags Account
// @Accept json
// @Produce json
// @Param request body domain.AccountUpdate true "Fields to change"
// @Success 200 {object} domain.User
// @Security BearerAuth
// @Router /me [put]
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req domain.AccountUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	user, err := h.authUC.UpdateAccount(c.Request.Context(), c.GetString(string(domain.KeyUserID)), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Account updated", user)
}

// ListSaved godoc
// @Summary Saved listings
// @Tags Saved
// @Produce json
// @Success 200 {object} domain.SavedItems
// @Security BearerAuth
// @Router /me/saved [get]
func (h *AccountHandler) ListSaved(c *gin.Context) {
	items, err := h.savedUC.List(c.Request.Context(), c.GetString(string(domain.KeyUserID)))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Saved items retrieved", items)
}

// ToggleSaved godoc
// @Summary Save or unsave a listing
// @Description Adds the id when absent and removes it when present
// @Tags Saved
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} domain.SavedToggleResult
// @Security BearerAuth
// @Router /me/saved/{id}/toggle [post]
func (h *AccountHandler) ToggleSaved(c *gin.Context) {
	result, err := h.savedUC.Toggle(c.Request.Context(), c.GetString(string(domain.KeyUserID)), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	msg := "Removed from saved"
	if result.Saved {
		msg = "Saved"
	}
	response.Success(c, http.StatusOK, msg, result)
}
