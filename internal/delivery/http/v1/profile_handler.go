package v1

import (
	"net/http"
	"strconv"
	"strings"

	"diving-mate-backend/internal/delivery/http/response"
	"diving-mate-backend/internal/domain"
	"diving-mate-backend/internal/search"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	profileUC domain.ProfileUsecase
}

func NewProfileHandler(public, protected *gin.RouterGroup, uc domain.ProfileUsecase, writeLimit gin.HandlerFunc) {
	handler := &ProfileHandler{profileUC: uc}

	for _, kind := range []domain.ProfileKind{domain.KindInstructor, domain.KindResort} {
		group := public.Group("/" + string(kind) + "s")
		group.GET("", handler.Search(kind))
		group.GET("/facets", handler.Facets(kind))
		group.GET("/:id", handler.Get(kind))
	}

	protected.PUT("/me/listing", writeLimit, handler.UpsertOwnListing)
}

// Search godoc
// @Summary Search instructor or resort listings
// @Description Filters by text, location, specialties and price, then sorts and pages
// @Tags Listings
// @Produce json
// @Param q query string false "Text query (name, summary, address)"
// @Param location query string false "Location substring"
// @Param specialties query string false "Comma separated tags, any of"
// @Param min_price query number false "Lower price bound (0-5000)"
// @Param max_price query number false "Upper price bound (0-5000)"
// @Param sort query string false "views, name or experience"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {object} domain.SearchPage
// @Router /instructors [get]
// @Router /resorts [get]
func (h *ProfileHandler) Search(kind domain.ProfileKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := parseFilter(c)
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(search.DefaultLimit)))

		result, err := h.profileUC.Search(c.Request.Context(), kind, filter, search.ParseSortKey(c.Query("sort")), page, limit)
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Listings retrieved", result)
	}
}

// parseFilter reads the filter from the query string. The price clause is
// only active when a bound is given; a bound that does not parse keeps its
// default.
func parseFilter(c *gin.Context) domain.FilterState {
	filter := domain.FilterState{
		Query:    c.Query("q"),
		Location: c.Query("location"),
	}
	if raw := c.Query("specialties"); raw != "" {
		filter.Specialties = strings.Split(raw, ",")
	}

	minRaw, hasMin := c.GetQuery("min_price")
	maxRaw, hasMax := c.GetQuery("max_price")
	if hasMin || hasMax {
		filter.PriceRange = &domain.PriceRange{
			Min: parsePrice(minRaw, domain.PriceFloor),
			Max: parsePrice(maxRaw, domain.PriceCeiling),
		}
	}
	return filter
}

func parsePrice(raw string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

// Facets godoc
// @Summary Filter vocabulary for listings
// @Tags Listings
// @Produce json
// @Success 200 {object} domain.ProfileFacets
// @Router /instructors/facets [get]
// @Router /resorts/facets [get]
func (h *ProfileHandler) Facets(kind domain.ProfileKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		facets, err := h.profileUC.Facets(c.Request.Context(), kind)
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Facets retrieved", facets)
	}
}

// Get godoc
// @Summary Get a listing
// @Description Returns one listing and counts the view
// @Tags Listings
// @Produce json
// @Param id path string true "Listing ID"
// @Success 200 {object} domain.Profile
// @Failure 404 {object} response.Response
// @Router /instructors/{id} [get]
// @Router /resorts/{id} [get]
func (h *ProfileHandler) Get(kind domain.ProfileKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := h.profileUC.GetProfile(c.Request.Context(), kind, c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		response.Success(c, http.StatusOK, "Listing retrieved", profile)
	}
}

// UpsertOwnListing godoc
// @Summary Create or update my listing
// @Description Verified instructors and resorts publish their directory listing
// @Tags Listings
// @Accept json
// @Produce json
// @Param request body domain.ListingRequest true "Listing"
// @Success 200 {object} domain.Profile
// @Failure 403 {object} response.Response
// @Security BearerAuth
// @Router /me/listing [put]
func (h *ProfileHandler) UpsertOwnListing(c *gin.Context) {
	var req domain.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	userID := c.GetString(string(domain.KeyUserID))
	profile, err := h.profileUC.UpsertOwnListing(c.Request.Context(), userID, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Listing saved", profile)
}
