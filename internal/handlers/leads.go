package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"salesor-api/internal/cache"
	"salesor-api/internal/models"
	"salesor-api/internal/repository"
	"salesor-api/internal/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LeadHandler struct {
	repo     *repository.LeadRepository
	outreach *services.OutreachService
	cache    cache.Store
}

func NewLeadHandler(repo *repository.LeadRepository, outreach *services.OutreachService, cacheStore cache.Store) *LeadHandler {
	return &LeadHandler{
		repo:     repo,
		outreach: outreach,
		cache:    cacheStore,
	}
}

// GetLeads godoc
// @Summary List the caller's leads
// @Description Cache-first: a cached list within its TTL is served as-is.
// @Tags leads
// @Security CookieAuth
// @Produce json
// @Success 200 {array} models.Lead
// @Failure 500 {object} models.ErrorResponse
// @Router /leads [get]
func (h *LeadHandler) GetLeads(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := cache.LeadListKey(userID)
	if cached, ok, err := h.cache.Get(ctx, key); err != nil {
		log.Printf("leads: cache read failed for user %s: %v", userID, err)
	} else if ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	leads, err := h.repo.FindAllByOwner(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to fetch leads",
		})
		return
	}

	if payload, err := json.Marshal(leads); err == nil {
		if err := h.cache.Set(ctx, key, string(payload), cache.LeadListTTL); err != nil {
			log.Printf("leads: cache write failed for user %s: %v", userID, err)
		}
	}

	c.JSON(http.StatusOK, leads)
}

// GetLead godoc
// @Summary Get one lead
// @Tags leads
// @Security CookieAuth
// @Produce json
// @Param id path string true "lead id"
// @Success 200 {object} models.Lead
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lead, err := h.repo.FindByIDForOwner(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to fetch lead",
		})
		return
	}

	c.JSON(http.StatusOK, lead)
}

// CreateLead godoc
// @Summary Create a lead
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body models.CreateLeadRequest true "lead details"
// @Success 201 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if req.Status != "" && !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid status: " + req.Status,
		})
		return
	}

	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid user id",
		})
		return
	}

	lead := &models.Lead{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		WhatsApp:   req.WhatsApp,
		Company:    req.Company,
		Status:     req.Status,
		Source:     req.Source,
		Value:      req.Value,
		AssignedTo: owner,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.repo.Create(ctx, lead); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create lead",
		})
		return
	}

	cache.InvalidateOwner(ctx, h.cache, userID)
	c.JSON(http.StatusCreated, lead)
}

// UpdateLead godoc
// @Summary Update a lead
// @Description Partial update; a status change is recorded in the lead's history.
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param id path string true "lead id"
// @Param request body models.UpdateLeadRequest true "fields to update"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/{id} [put]
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	if req.Status != nil && !models.ValidStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid status: " + *req.Status,
		})
		return
	}
	if req.Value != nil && *req.Value < 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Value must not be negative",
		})
		return
	}

	performedBy, _ := primitive.ObjectIDFromHex(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lead, err := h.repo.Update(ctx, c.Param("id"), userID, &req, performedBy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update lead",
		})
		return
	}

	cache.InvalidateOwner(ctx, h.cache, userID)
	c.JSON(http.StatusOK, lead)
}

// DeleteLead godoc
// @Summary Delete a lead
// @Description Requires the Admin or Manager role.
// @Tags leads
// @Security CookieAuth
// @Produce json
// @Param id path string true "lead id"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/{id} [delete]
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.repo.Delete(ctx, c.Param("id"), userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Lead not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete lead",
		})
		return
	}

	cache.InvalidateOwner(ctx, h.cache, userID)
	c.JSON(http.StatusOK, gin.H{"message": "Lead removed"})
}

// ImportLeads godoc
// @Summary Import leads from a JSON array
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body []models.CreateLeadRequest true "leads to import"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/bulk [post]
func (h *LeadHandler) ImportLeads(c *gin.Context) {
	userID := c.GetString("userID")

	var reqs []models.CreateLeadRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Input data must be an array of leads",
		})
		return
	}

	owner, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid user id",
		})
		return
	}

	leads := make([]*models.Lead, 0, len(reqs))
	for _, req := range reqs {
		if req.Name == "" || req.Email == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "validation_error",
				Message: "Every lead needs a name and an email",
			})
			return
		}
		leads = append(leads, &models.Lead{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			WhatsApp:   req.WhatsApp,
			Company:    req.Company,
			Status:     req.Status,
			Source:     req.Source,
			Value:      req.Value,
			AssignedTo: owner,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.repo.InsertMany(ctx, leads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to import leads",
		})
		return
	}

	cache.InvalidateOwner(ctx, h.cache, userID)
	c.JSON(http.StatusCreated, gin.H{
		"message": "Leads imported successfully",
		"count":   count,
	})
}

// DeleteLeadsBulk godoc
// @Summary Delete a set of leads
// @Description Requires the Admin or Manager role.
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body models.BulkDeleteRequest true "lead ids"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/bulk-delete [post]
func (h *LeadHandler) DeleteLeadsBulk(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.repo.DeleteMany(ctx, req.IDs, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete leads",
		})
		return
	}

	cache.InvalidateOwner(ctx, h.cache, userID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Leads removed",
		"count":   count,
	})
}

// SendEmail godoc
// @Summary Send an email to a lead
// @Description Records the email in the lead's history; outreach to a New lead moves it to Contacted.
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param id path string true "lead id"
// @Param request body models.SendEmailRequest true "subject and body"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/{id}/email [post]
func (h *LeadHandler) SendEmail(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	performedBy, _ := primitive.ObjectIDFromHex(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := h.outreach.SendEmail(ctx, c.Param("id"), userID, req.Subject, req.Body, performedBy)
	if err != nil {
		h.respondOutreachError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email sent"})
}

// SendEmailBulk godoc
// @Summary Send an email to each listed lead
// @Description Failures are counted per lead; one failure never aborts the batch.
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body models.BulkEmailRequest true "lead ids plus subject and body"
// @Success 200 {object} models.BulkResult
// @Failure 400 {object} models.ErrorResponse
// @Router /leads/bulk-email [post]
func (h *LeadHandler) SendEmailBulk(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.BulkEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	performedBy, _ := primitive.ObjectIDFromHex(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := h.outreach.BulkEmail(ctx, userID, req.IDs, req.Subject, req.Body, performedBy)
	c.JSON(http.StatusOK, result)
}

// SendWhatsApp godoc
// @Summary Send a WhatsApp message to a lead
// @Description Records the message in the lead's history; outreach to a New lead moves it to Contacted.
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param id path string true "lead id"
// @Param request body models.SendWhatsAppRequest true "message"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /leads/{id}/whatsapp [post]
func (h *LeadHandler) SendWhatsApp(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.SendWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	performedBy, _ := primitive.ObjectIDFromHex(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := h.outreach.LogWhatsApp(ctx, c.Param("id"), userID, req.Message, performedBy)
	if err != nil {
		h.respondOutreachError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "WhatsApp message sent"})
}

// SendWhatsAppBulk godoc
// @Summary Send a WhatsApp message to each listed lead
// @Tags leads
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body models.BulkWhatsAppRequest true "lead ids plus message"
// @Success 200 {object} models.BulkResult
// @Failure 400 {object} models.ErrorResponse
// @Router /leads/bulk-whatsapp [post]
func (h *LeadHandler) SendWhatsAppBulk(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.BulkWhatsAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	performedBy, _ := primitive.ObjectIDFromHex(userID)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := h.outreach.BulkWhatsApp(ctx, userID, req.IDs, req.Message, performedBy)
	c.JSON(http.StatusOK, result)
}

func (h *LeadHandler) respondOutreachError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Lead not found",
		})
	case errors.Is(err, services.ErrNoEmailAddress), errors.Is(err, services.ErrNoPhoneNumber):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: err.Error(),
		})
	}
}
