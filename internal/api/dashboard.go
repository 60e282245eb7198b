package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-engage/internal/models"
)

// DashboardHandler serves the overview counters.
type DashboardHandler struct {
	db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats returns headline counts for the dashboard landing page.
func (h *DashboardHandler) Stats(c *gin.Context) {
	var totalCustomers, pendingCustomers, totalLeads, messagesToday int64

	h.db.Model(&models.Customer{}).Count(&totalCustomers)
	h.db.Model(&models.Customer{}).Where("status = ?", "pending").Count(&pendingCustomers)
	h.db.Model(&models.Lead{}).Count(&totalLeads)

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	h.db.Model(&models.Message{}).Where("created_at >= ?", startOfDay).Count(&messagesToday)

	var leadsByStatus []struct {
		LeadStatus string `json:"lead_status"`
		Count      int64  `json:"count"`
	}
	h.db.Model(&models.Lead{}).
		Select("lead_status, count(*) as count").
		Group("lead_status").
		Scan(&leadsByStatus)

	c.JSON(http.StatusOK, gin.H{
		"total_customers":   totalCustomers,
		"pending_customers": pendingCustomers,
		"total_leads":       totalLeads,
		"messages_today":    messagesToday,
		"leads_by_status":   leadsByStatus,
	})
}
