package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-engage/internal/cache"
	"clinic-engage/internal/models"
	"clinic-engage/internal/whatsapp"
	"clinic-engage/internal/ws"
)

// CustomerHandler serves the conversation sidebar and chat history.
type CustomerHandler struct {
	db     *gorm.DB
	client *whatsapp.Client
	hub    *ws.Hub
}

func NewCustomerHandler(db *gorm.DB, client *whatsapp.Client, hub *ws.Hub) *CustomerHandler {
	return &CustomerHandler{db: db, client: client, hub: hub}
}

// ListCustomers returns customers ordered by recency with unread counts.
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var customers []models.Customer
	q := h.db.Order("last_message_at DESC NULLS LAST")
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR wa_id LIKE ?", like, like)
	}
	if err := q.Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers"})
		return
	}

	out := make([]gin.H, 0, len(customers))
	for _, cust := range customers {
		out = append(out, gin.H{
			"customer": cust,
			"unread":   cache.GetUnread(c.Request.Context(), cust.WaID),
		})
	}
	c.JSON(http.StatusOK, out)
}

// GetCustomer returns one customer by ID.
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	c.JSON(http.StatusOK, customer)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateCustomerStatus moves a conversation between pending/active/resolved.
func (h *CustomerHandler) UpdateCustomerStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}
	if err := h.db.Model(&customer).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	h.hub.Broadcast("customer_update", customer)
	c.JSON(http.StatusOK, customer)
}

// ListMessages returns a customer's chat history, newest page first.
func (h *CustomerHandler) ListMessages(c *gin.Context) {
	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var messages []models.Message
	err := h.db.Where("customer_id = ?", customer.ID).
		Order("timestamp DESC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch messages"})
		return
	}

	cache.ResetUnread(c.Request.Context(), customer.WaID)
	c.JSON(http.StatusOK, messages)
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// SendMessage sends an agent text reply to a customer.
func (h *CustomerHandler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var customer models.Customer
	if err := h.db.First(&customer, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Customer not found"})
		return
	}

	resp, err := h.client.SendText(customer.WaID, req.Body)
	if err != nil {
		log.Printf("Failed to send agent message to %s: %v", customer.WaID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to send message"})
		return
	}

	now := time.Now()
	h.db.Model(&customer).Update("last_message_at", now)

	messageID := ""
	if len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	h.hub.Broadcast("new_message", gin.H{
		"message_id":  messageID,
		"to_wa_id":    customer.WaID,
		"body":        req.Body,
		"sender_type": "agent",
	})
	c.JSON(http.StatusOK, gin.H{"message_id": messageID})
}
