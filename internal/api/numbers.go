package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-engage/internal/models"
)

// NumberHandler manages WhatsApp numbers, flow bindings and API tokens.
type NumberHandler struct {
	db *gorm.DB
}

func NewNumberHandler(db *gorm.DB) *NumberHandler {
	return &NumberHandler{db: db}
}

func (h *NumberHandler) ListNumbers(c *gin.Context) {
	var numbers []models.WhatsAppNumber
	if err := h.db.Order("created_at DESC").Find(&numbers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch numbers"})
		return
	}
	c.JSON(http.StatusOK, numbers)
}

func (h *NumberHandler) CreateNumber(c *gin.Context) {
	var number models.WhatsAppNumber
	if err := c.ShouldBindJSON(&number); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&number).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create number"})
		return
	}
	c.JSON(http.StatusCreated, number)
}

func (h *NumberHandler) UpdateNumber(c *gin.Context) {
	var number models.WhatsAppNumber
	if err := h.db.First(&number, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Number not found"})
		return
	}

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	if err := h.db.Model(&number).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update number"})
		return
	}
	c.JSON(http.StatusOK, number)
}

// ListFlowConfigs returns flow bindings ordered by priority.
func (h *NumberHandler) ListFlowConfigs(c *gin.Context) {
	var configs []models.NumberFlowConfig
	q := h.db.Order("priority DESC, created_at DESC")
	if phoneNumberID := c.Query("phone_number_id"); phoneNumberID != "" {
		q = q.Where("phone_number_id = ?", phoneNumberID)
	}
	if err := q.Find(&configs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch flow configs"})
		return
	}
	c.JSON(http.StatusOK, configs)
}

func (h *NumberHandler) CreateFlowConfig(c *gin.Context) {
	var cfg models.NumberFlowConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&cfg).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create flow config"})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *NumberHandler) UpdateFlowConfig(c *gin.Context) {
	var cfg models.NumberFlowConfig
	if err := h.db.First(&cfg, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flow config not found"})
		return
	}

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	delete(updates, "id")
	if err := h.db.Model(&cfg).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update flow config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *NumberHandler) DeleteFlowConfig(c *gin.Context) {
	res := h.db.Delete(&models.NumberFlowConfig{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete flow config"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flow config not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type rotateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RotateToken stores a new Cloud API token; the newest row wins.
func (h *NumberHandler) RotateToken(c *gin.Context) {
	var req rotateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token := models.WhatsAppToken{Token: req.Token}
	if err := h.db.Create(&token).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": token.ID, "created_at": token.CreatedAt})
}
