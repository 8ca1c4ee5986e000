package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BillingHandler is a mock billing surface; there is no payment provider yet.
type BillingHandler struct{}

func NewBillingHandler() *BillingHandler {
	return &BillingHandler{}
}

// Subscribe godoc
// @Summary Subscribe to the Pro plan
// @Tags billing
// @Security CookieAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /billing/subscribe [post]
func (h *BillingHandler) Subscribe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Subscribed successfully (Mock)"})
}

// Status godoc
// @Summary Get the subscription status
// @Tags billing
// @Security CookieAuth
// @Produce json
// @Success 200 {object} map[string]string
// @Router /billing/status [get]
func (h *BillingHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "Active",
		"plan":   "Pro",
	})
}
