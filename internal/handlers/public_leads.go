package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"salesor-api/internal/cache"
	"salesor-api/internal/models"
	"salesor-api/internal/repository"
	"salesor-api/internal/utils"

	"github.com/gin-gonic/gin"
)

const thankYouPage = `<div style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1 style="color: #10b981;">Thank You!</h1>
    <p>We have received your information and will contact you soon.</p>
    <button onclick="window.history.back()" style="padding: 10px 20px; cursor: pointer;">Go Back</button>
</div>`

// PublicLeadHandler serves the unauthenticated lead-capture form endpoint.
type PublicLeadHandler struct {
	leadRepo *repository.LeadRepository
	userRepo *repository.UserRepository
	cache    cache.Store
}

func NewPublicLeadHandler(leadRepo *repository.LeadRepository, userRepo *repository.UserRepository, cacheStore cache.Store) *PublicLeadHandler {
	return &PublicLeadHandler{
		leadRepo: leadRepo,
		userRepo: userRepo,
		cache:    cacheStore,
	}
}

// CaptureLead godoc
// @Summary Capture a lead from a public web form
// @Description Unauthenticated. Stores the lead against the form owner's account; form posts receive an HTML thank-you page. Input is untrusted, so free-text fields are stripped of any HTML before storage.
// @Tags leads
// @Accept json,x-www-form-urlencoded
// @Produce json,html
// @Param userId path string true "form owner id"
// @Param request body models.CaptureLeadRequest true "captured fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/public/{userId} [post]
func (h *PublicLeadHandler) CaptureLead(c *gin.Context) {
	userID := c.Param("userId")

	var req models.CaptureLeadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	req.Name = utils.SanitizePlainText(req.Name)
	req.Email = utils.SanitizePlainText(req.Email)
	req.Message = utils.SanitizePlainText(req.Message)

	if req.Name == "" || req.Email == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Name and Email are required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Verify the form belongs to a real user before accepting anything.
	user, err := h.userRepo.FindByID(ctx, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Invalid form ID",
		})
		return
	}

	source := req.Source
	if source == "" {
		source = "Web Form"
	}
	note := "Lead captured via Web Form"
	if req.Message != "" {
		note = "Form Submission Message: " + req.Message
	}

	lead := &models.Lead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		Status:     models.StatusNew,
		Source:     source,
		AssignedTo: user.ID,
		History: []models.HistoryEntry{{
			Type:    models.HistoryNote,
			Content: note,
			Date:    time.Now(),
		}},
	}

	if err := h.leadRepo.Create(ctx, lead); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Server error processing lead",
		})
		return
	}

	cache.InvalidateOwner(ctx, h.cache, userID)

	// Plain HTML form submissions get a human-readable thank-you page.
	if strings.HasPrefix(c.ContentType(), "application/x-www-form-urlencoded") {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(thankYouPage))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Lead captured successfully",
	})
}
