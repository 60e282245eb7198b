package payment

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"clinic-engage/internal/config"
)

// Handler exposes payment link creation and the Razorpay webhook.
type Handler struct {
	cfg    *config.Config
	client *Client
}

func NewHandler(cfg *config.Config, client *Client) *Handler {
	return &Handler{cfg: cfg, client: client}
}

type createLinkRequest struct {
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	ReferenceID   string `json:"reference_id"`
}

// ConfigStatus reports whether payments are usable, for the settings page.
func (h *Handler) ConfigStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"configured":     h.client.Configured(),
		"webhook_secret": h.cfg.RazorpayWebhookSecret != "",
	})
}

// CreateLink creates a payment link for an INR amount given in rupees.
func (h *Handler) CreateLink(c *gin.Context) {
	if !h.client.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments are not configured"})
		return
	}

	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	link, err := h.client.CreatePaymentLink(LinkRequest{
		AmountRupees:  amount,
		Description:   req.Description,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ReferenceID:   req.ReferenceID,
	})
	if err != nil {
		log.Printf("Failed to create payment link: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create payment link"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":        link.ID,
		"short_url": link.ShortURL,
		"status":    link.Status,
		"amount":    link.Amount,
	})
}

type captureRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// Capture captures an authorized payment, amount given in rupees.
func (h *Handler) Capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.IsNegative() || amount.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	if err := h.client.CapturePayment(c.Param("id"), RupeesToPaise(amount)); err != nil {
		log.Printf("Failed to capture payment %s: %v", c.Param("id"), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to capture payment"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "captured"})
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Amount int64  `json:"amount"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Webhook validates the Razorpay signature and acknowledges the event.
func (h *Handler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	signature := c.GetHeader("X-Razorpay-Signature")
	if h.cfg.RazorpayWebhookSecret != "" &&
		!VerifyWebhookSignature(body, signature, h.cfg.RazorpayWebhookSecret) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	log.Printf("Razorpay event %s for payment %s (%s)",
		event.Event, event.Payload.Payment.Entity.ID, event.Payload.Payment.Entity.Status)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
