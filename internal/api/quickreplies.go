package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"clinic-engage/internal/auth"
	"clinic-engage/internal/models"
)

// QuickReplyHandler manages canned responses.
type QuickReplyHandler struct {
	db *gorm.DB
}

func NewQuickReplyHandler(db *gorm.DB) *QuickReplyHandler {
	return &QuickReplyHandler{db: db}
}

type quickReplyRequest struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content" binding:"required"`
	Category string `json:"category"`
}

func (h *QuickReplyHandler) List(c *gin.Context) {
	var replies []models.QuickReply
	q := h.db.Order("created_at DESC")
	if category := c.Query("category"); category != "" {
		q = q.Where("category = ?", category)
	}
	if err := q.Find(&replies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quick replies"})
		return
	}
	c.JSON(http.StatusOK, replies)
}

func (h *QuickReplyHandler) Create(c *gin.Context) {
	var req quickReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply := models.QuickReply{Title: req.Title, Content: req.Content, Category: req.Category}
	if claims := auth.ClaimsFrom(c); claims != nil {
		if uid, err := uuid.Parse(claims.UserID); err == nil {
			reply.CreatedBy = &uid
		}
	}
	if err := h.db.Create(&reply).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create quick reply"})
		return
	}
	c.JSON(http.StatusCreated, reply)
}

func (h *QuickReplyHandler) Update(c *gin.Context) {
	var reply models.QuickReply
	if err := h.db.First(&reply, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quick reply not found"})
		return
	}

	var req quickReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]any{"title": req.Title, "content": req.Content, "category": req.Category}
	if err := h.db.Model(&reply).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quick reply"})
		return
	}
	c.JSON(http.StatusOK, reply)
}

func (h *QuickReplyHandler) Delete(c *gin.Context) {
	res := h.db.Delete(&models.QuickReply{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete quick reply"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Quick reply not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
