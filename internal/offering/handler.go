package offering

import (
	"errors"
	"net/http"
	"strconv"

	"debmarket/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// CreateCompany godoc
// @Summary      Create an issuing company
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body offering.CreateCompanyRequest true "Company payload"
// @Success      201 {object} offering.Company
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/companies [post]
func (h *Handler) CreateCompany(c *gin.Context) {
	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	company, err := h.service.CreateCompany(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// CreateOffering godoc
// @Summary      Create a debenture offering
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body offering.CreateOfferingRequest true "Offering payload"
// @Success      201 {object} offering.Offering
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/offerings [post]
func (h *Handler) CreateOffering(c *gin.Context) {
	var req CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	offering, err := h.service.CreateOffering(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrCompanyNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "company not found"})
		case errors.Is(err, ErrInvalidOffering):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid offering parameters"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to create offering"})
		}
		return
	}

	c.JSON(http.StatusCreated, offering)
}

// ListOfferings godoc
// @Summary      List open offerings
// @Tags         offerings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} offering.OfferingWithCompany
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /offerings [get]
func (h *Handler) ListOfferings(c *gin.Context) {
	offerings, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to fetch offerings"})
		return
	}

	c.JSON(http.StatusOK, offerings)
}

// GetOffering godoc
// @Summary      Get offering detail
// @Tags         offerings
// @Produce      json
// @Security     BearerAuth
// @Param        offeringID path int true "Offering ID"
// @Success      200 {object} offering.OfferingWithCompany
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /offerings/{offeringID} [get]
func (h *Handler) GetOffering(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("offeringID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid offering id"})
		return
	}

	offering, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "offering not found"})
		return
	}

	c.JSON(http.StatusOK, offering)
}

// CloseOffering godoc
// @Summary      Close an offering
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        offeringID path int true "Offering ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /admin/offerings/{offeringID}/close [post]
func (h *Handler) CloseOffering(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("offeringID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid offering id"})
		return
	}

	if err := h.service.CloseOffering(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "offering not found"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "offering closed"})
}
