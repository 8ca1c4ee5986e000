package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"salesor-api/internal/models"
	"salesor-api/internal/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CustomerHandler struct {
	repo *repository.CustomerRepository
}

func NewCustomerHandler(repo *repository.CustomerRepository) *CustomerHandler {
	return &CustomerHandler{repo: repo}
}

// GetCustomers godoc
// @Summary List the caller's customers
// @Tags customers
// @Security CookieAuth
// @Produce json
// @Success 200 {array} models.Customer
// @Failure 500 {object} models.ErrorResponse
// @Router /customers [get]
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customers, err := h.repo.FindAllByOwner(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to fetch customers",
		})
		return
	}

	c.JSON(http.StatusOK, customers)
}

// GetCustomer godoc
// @Summary Get one customer
// @Tags customers
// @Security CookieAuth
// @Produce json
// @Param id path string true "customer id"
// @Success 200 {object} models.Customer
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer, err := h.repo.FindByIDForOwner(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to fetch customer",
		})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// CreateCustomer godoc
// @Summary Create a customer
// @Tags customers
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body models.CreateCustomerRequest true "customer details"
// @Success 201 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
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

	customer := &models.Customer{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Company:    req.Company,
		Status:     req.Status,
		TotalSpent: req.TotalSpent,
		AssignedTo: owner,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.repo.Create(ctx, customer); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create customer",
		})
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer godoc
// @Summary Update a customer
// @Tags customers
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param id path string true "customer id"
// @Param request body models.UpdateCustomerRequest true "fields to update"
// @Success 200 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	userID := c.GetString("userID")

	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	customer, err := h.repo.Update(ctx, c.Param("id"), userID, &req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update customer",
		})
		return
	}

	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer godoc
// @Summary Delete a customer
// @Tags customers
// @Security CookieAuth
// @Produce json
// @Param id path string true "customer id"
// @Success 200 {object} map[string]string
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	userID := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.repo.Delete(ctx, c.Param("id"), userID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Customer not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete customer",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer removed"})
}

// ImportCustomers godoc
// @Summary Import customers from a JSON array
// @Tags customers
// @Security CookieAuth
// @Accept json
// @Produce json
// @Param request body []models.CreateCustomerRequest true "customers to import"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /customers/bulk [post]
func (h *CustomerHandler) ImportCustomers(c *gin.Context) {
	userID := c.GetString("userID")

	var reqs []models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Input data must be an array of customers",
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

	customers := make([]*models.Customer, 0, len(reqs))
	for _, req := range reqs {
		customers = append(customers, &models.Customer{
			Name:       req.Name,
			Email:      req.Email,
			Phone:      req.Phone,
			Company:    req.Company,
			Status:     req.Status,
			TotalSpent: req.TotalSpent,
			AssignedTo: owner,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := h.repo.InsertMany(ctx, customers)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to import customers",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Customers imported successfully",
		"count":   count,
	})
}
