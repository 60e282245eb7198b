package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-engage/internal/models"
)

// ReferrerHandler records and reports wa.me click attribution.
type ReferrerHandler struct {
	db *gorm.DB
}

func NewReferrerHandler(db *gorm.DB) *ReferrerHandler {
	return &ReferrerHandler{db: db}
}

type trackRequest struct {
	WaID        string `json:"wa_id"`
	UtmSource   string `json:"utm_source"`
	UtmMedium   string `json:"utm_medium"`
	UtmCampaign string `json:"utm_campaign"`
	UtmContent  string `json:"utm_content"`
	ReferrerURL string `json:"referrer_url"`
	CenterName  string `json:"center_name"`
	Location    string `json:"location"`
}

// Track stores a click-through record posted by the website widget.
func (h *ReferrerHandler) Track(c *gin.Context) {
	var req trackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tracking := models.ReferrerTracking{
		WaID:        req.WaID,
		UtmSource:   req.UtmSource,
		UtmMedium:   req.UtmMedium,
		UtmCampaign: req.UtmCampaign,
		UtmContent:  req.UtmContent,
		ReferrerURL: req.ReferrerURL,
		CenterName:  req.CenterName,
		Location:    req.Location,
	}
	if req.WaID != "" {
		var customer models.Customer
		if err := h.db.Where("wa_id = ?", req.WaID).First(&customer).Error; err == nil {
			tracking.CustomerID = &customer.ID
		}
	}
	if err := h.db.Create(&tracking).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save tracking"})
		return
	}
	c.JSON(http.StatusCreated, tracking)
}

// List returns tracking rows, optionally filtered by UTM source.
func (h *ReferrerHandler) List(c *gin.Context) {
	var rows []models.ReferrerTracking
	q := h.db.Order("created_at DESC").Limit(500)
	if source := c.Query("utm_source"); source != "" {
		q = q.Where("utm_source = ?", source)
	}
	if waID := c.Query("wa_id"); waID != "" {
		q = q.Where("wa_id = ?", waID)
	}
	if err := q.Find(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tracking"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Summary groups clicks by campaign.
func (h *ReferrerHandler) Summary(c *gin.Context) {
	var rows []struct {
		UtmCampaign string `json:"utm_campaign"`
		UtmSource   string `json:"utm_source"`
		Count       int64  `json:"count"`
	}
	err := h.db.Model(&models.ReferrerTracking{}).
		Select("utm_campaign, utm_source, count(*) as count").
		Group("utm_campaign, utm_source").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarise tracking"})
		return
	}
	c.JSON(http.StatusOK, rows)
}
