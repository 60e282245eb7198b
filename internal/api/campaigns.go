package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-engage/internal/models"
	"clinic-engage/internal/whatsapp"
)

// CampaignHandler manages broadcast campaigns.
type CampaignHandler struct {
	db     *gorm.DB
	client *whatsapp.Client
}

func NewCampaignHandler(db *gorm.DB, client *whatsapp.Client) *CampaignHandler {
	return &CampaignHandler{db: db, client: client}
}

func (h *CampaignHandler) List(c *gin.Context) {
	var campaigns []models.Campaign
	if err := h.db.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch campaigns"})
		return
	}
	c.JSON(http.StatusOK, campaigns)
}

type campaignRequest struct {
	Name         string      `json:"name" binding:"required"`
	Type         string      `json:"type" binding:"required"`
	Content      string      `json:"content"`
	TemplateName string      `json:"template_name"`
	CustomerIDs  []uuid.UUID `json:"customer_ids"`
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req campaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	campaign := models.Campaign{
		Name:         req.Name,
		Type:         req.Type,
		Content:      req.Content,
		TemplateName: req.TemplateName,
		Status:       "draft",
	}
	if len(req.CustomerIDs) > 0 {
		var customers []models.Customer
		if err := h.db.Find(&customers, "id IN ?", req.CustomerIDs).Error; err == nil {
			campaign.Customers = customers
		}
	}
	if err := h.db.Create(&campaign).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create campaign"})
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// Send delivers the campaign to its audience in the background.
func (h *CampaignHandler) Send(c *gin.Context) {
	var campaign models.Campaign
	if err := h.db.Preload("Customers").First(&campaign, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
		return
	}
	if campaign.Status == "sending" {
		c.JSON(http.StatusConflict, gin.H{"error": "Campaign is already sending"})
		return
	}
	if len(campaign.Customers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Campaign has no recipients"})
		return
	}

	h.db.Model(&campaign).Update("status", "sending")

	go func() {
		sent, failed := 0, 0
		for _, customer := range campaign.Customers {
			var err error
			switch campaign.Type {
			case "template":
				_, err = h.client.SendTemplate(customer.WaID, campaign.TemplateName, "en", nil)
			default:
				_, err = h.client.SendText(customer.WaID, campaign.Content)
			}
			if err != nil {
				failed++
				log.Printf("Campaign %s send to %s failed: %v", campaign.ID, customer.WaID, err)
				continue
			}
			sent++
		}
		status := "completed"
		if sent == 0 {
			status = "failed"
		}
		if err := h.db.Model(&campaign).Update("status", status).Error; err != nil {
			log.Printf("Failed to finalise campaign %s: %v", campaign.ID, err)
		}
		log.Printf("Campaign %s finished: %d sent, %d failed", campaign.ID, sent, failed)
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "sending", "recipients": len(campaign.Customers)})
}
