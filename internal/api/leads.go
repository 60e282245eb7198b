package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-engage/internal/models"
	"clinic-engage/internal/zoho"
)

// LeadHandler serves the local lead shadow table and Zoho-backed views.
type LeadHandler struct {
	db  *gorm.DB
	crm *zoho.Client
}

func NewLeadHandler(db *gorm.DB, crm *zoho.Client) *LeadHandler {
	return &LeadHandler{db: db, crm: crm}
}

// ListLeads returns local leads, newest first, optionally filtered.
func (h *LeadHandler) ListLeads(c *gin.Context) {
	var leads []models.Lead
	q := h.db.Order("created_at DESC")
	if status := c.Query("status"); status != "" {
		q = q.Where("lead_status = ?", status)
	}
	if city := c.Query("city"); city != "" {
		q = q.Where("city = ?", city)
	}
	if err := q.Find(&leads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
		return
	}
	c.JSON(http.StatusOK, leads)
}

// GetLead returns one lead, preferring the live Zoho record.
func (h *LeadHandler) GetLead(c *gin.Context) {
	var lead models.Lead
	if err := h.db.First(&lead, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
		return
	}

	record, err := h.crm.GetLeadByID(lead.ZohoLeadID)
	if err != nil {
		log.Printf("Zoho lookup failed for lead %s, serving local copy: %v", lead.ZohoLeadID, err)
		c.JSON(http.StatusOK, gin.H{"lead": lead})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lead": lead, "zoho": record})
}

// SyncLeads pulls every flow lead from Zoho and reconciles statuses.
func (h *LeadHandler) SyncLeads(c *gin.Context) {
	records, err := h.crm.GetWhatsAppLeads(time.Time{}, time.Time{})
	if err != nil {
		log.Printf("Failed to sync leads from zoho: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to sync leads"})
		return
	}

	updated := 0
	for _, r := range records {
		res := h.db.Model(&models.Lead{}).
			Where("zoho_lead_id = ? AND lead_status <> ?", r.ID, r.LeadStatus).
			Update("lead_status", r.LeadStatus)
		if res.Error == nil {
			updated += int(res.RowsAffected)
		}
	}
	c.JSON(http.StatusOK, gin.H{"fetched": len(records), "updated": updated})
}

// ZohoLeads lists flow leads live from Zoho, with the appointment
// details parsed back out of each description. from/to take IST dates
// as 2006-01-02; to is inclusive of the whole day.
func (h *LeadHandler) ZohoLeads(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "200"))

	opts := zoho.SearchOptions{
		Status:  c.Query("status"),
		Page:    page,
		PerPage: perPage,
	}
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, zoho.ISTZone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from date"})
			return
		}
		opts.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, zoho.ISTZone)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to date"})
			return
		}
		opts.To = t.AddDate(0, 0, 1).Add(-time.Second)
	}

	records, more, err := h.crm.SearchLeads(opts)
	if err != nil {
		log.Printf("Failed to fetch zoho leads: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch leads"})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, r := range records {
		out = append(out, gin.H{
			"record":              r,
			"appointment_details": zoho.ParseDescription(r.Description),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leads": out, "more_records": more})
}

// LeadStats returns the Zoho-derived statistics summary.
func (h *LeadHandler) LeadStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "0"))

	stats, err := h.crm.GetStatistics(days)
	if err != nil {
		log.Printf("Failed to compute lead statistics: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
