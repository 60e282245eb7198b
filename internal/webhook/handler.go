package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-engage/internal/cache"
	"clinic-engage/internal/config"
	"clinic-engage/internal/flow"
	"clinic-engage/internal/models"
	"clinic-engage/internal/ws"
	"clinic-engage/pkg/webhookmodels"
)

// Handler receives Meta webhook callbacks.
type Handler struct {
	cfg  *config.Config
	db   *gorm.DB
	hub  *ws.Hub
	flow *flow.Controller
}

func NewHandler(cfg *config.Config, db *gorm.DB, hub *ws.Hub, flowCtrl *flow.Controller) *Handler {
	return &Handler{cfg: cfg, db: db, hub: hub, flow: flowCtrl}
}

// VerifyWebhook answers Meta's subscription handshake.
func (h *Handler) VerifyWebhook(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "" || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing parameters"})
		return
	}
	if mode == "subscribe" && token == h.cfg.VerifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "Verification failed"})
}

// validSignature checks X-Hub-Signature-256 against the app secret.
func (h *Handler) validSignature(header string, body []byte) bool {
	if h.cfg.WhatsAppAppSecret == "" {
		return true
	}
	sig := strings.TrimPrefix(header, "sha256=")
	mac := hmac.New(sha256.New, []byte(h.cfg.WhatsAppAppSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(sig), []byte(expected))
}

// HandleWebhook processes inbound messages and delivery statuses.
// Meta retries on non-200, so parse errors are answered with 200 too.
func (h *Handler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read body"})
		return
	}

	if !h.validSignature(c.GetHeader("X-Hub-Signature-256"), body) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid signature"})
		return
	}

	var payload webhookmodels.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("Failed to parse webhook payload: %v", err)
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			h.processValue(c.Request.Context(), &change.Value)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *Handler) processValue(ctx context.Context, v *webhookmodels.Value) {
	names := make(map[string]string, len(v.Contacts))
	for _, contact := range v.Contacts {
		names[contact.WaID] = contact.Profile.Name
	}

	for i := range v.Messages {
		h.processMessage(ctx, &v.Messages[i], names[v.Messages[i].From])
	}
	for i := range v.Statuses {
		h.processStatus(&v.Statuses[i])
	}
}

func (h *Handler) processMessage(ctx context.Context, msg *webhookmodels.Message, profileName string) {
	customer := h.upsertCustomer(msg.From, profileName)

	record := models.Message{
		MessageID:  msg.ID,
		FromWaID:   msg.From,
		ToWaID:     h.cfg.DisplayNumber,
		Type:       msg.Type,
		Status:     "received",
		Timestamp:  parseUnixTimestamp(msg.Timestamp),
		SenderType: "customer",
	}
	if customer != nil {
		record.CustomerID = &customer.ID
	}

	var replyID string
	switch msg.Type {
	case "text":
		if msg.Text != nil {
			record.Body = msg.Text.Body
		}
	case "interactive":
		if msg.Interactive != nil {
			if msg.Interactive.ButtonReply != nil {
				replyID = msg.Interactive.ButtonReply.ID
				record.Body = msg.Interactive.ButtonReply.Title
			} else if msg.Interactive.ListReply != nil {
				replyID = msg.Interactive.ListReply.ID
				record.Body = msg.Interactive.ListReply.Title
			}
		}
	case "button":
		if msg.Button != nil {
			record.Body = msg.Button.Text
			replyID = msg.Button.Payload
		}
	case "image", "video", "audio", "document":
		media := msg.Image
		if media == nil {
			media = msg.Video
		}
		if media == nil {
			media = msg.Audio
		}
		if media == nil {
			media = msg.Document
		}
		if media != nil {
			record.MediaID = media.ID
			record.MimeType = media.MimeType
			record.Caption = media.Caption
			record.Filename = media.Filename
			record.Body = media.Caption
		}
	}

	if err := h.db.Create(&record).Error; err != nil {
		log.Printf("Failed to save inbound message %s: %v", msg.ID, err)
	}

	if msg.Referral != nil {
		h.saveReferral(msg.From, msg.Referral, customer)
	}

	cache.IncrUnread(ctx, msg.From)
	h.hub.Broadcast("new_message", record)

	if replyID != "" {
		h.flow.HandleReply(ctx, msg.From, replyID)
	} else if msg.Type == "text" && record.Body != "" {
		h.flow.HandleText(ctx, msg.From, record.Body)
	}
}

func (h *Handler) processStatus(st *webhookmodels.Status) {
	update := map[string]any{"status": st.Status}
	if err := h.db.Model(&models.Message{}).Where("message_id = ?", st.ID).Updates(update).Error; err != nil {
		log.Printf("Failed to update message status %s: %v", st.ID, err)
		return
	}
	h.hub.Broadcast("status_update", gin.H{"message_id": st.ID, "status": st.Status})
}

func (h *Handler) upsertCustomer(waID, name string) *models.Customer {
	now := time.Now()
	var customer models.Customer
	err := h.db.Where("wa_id = ?", waID).First(&customer).Error
	if err == gorm.ErrRecordNotFound {
		customer = models.Customer{WaID: waID, Name: name, LastMessageAt: &now}
		if err := h.db.Create(&customer).Error; err != nil {
			log.Printf("Failed to create customer %s: %v", waID, err)
			return nil
		}
		h.hub.Broadcast("customer_update", customer)
		return &customer
	}
	if err != nil {
		log.Printf("Failed to look up customer %s: %v", waID, err)
		return nil
	}

	updates := map[string]any{"last_message_at": now}
	if name != "" && customer.Name == "" {
		updates["name"] = name
	}
	if err := h.db.Model(&customer).Updates(updates).Error; err != nil {
		log.Printf("Failed to update customer %s: %v", waID, err)
	}
	return &customer
}

func (h *Handler) saveReferral(waID string, ref *webhookmodels.Referral, customer *models.Customer) {
	u := ref.SourceURL
	tracking := models.ReferrerTracking{
		WaID:        waID,
		ReferrerURL: u,
		UtmSource:   queryParam(u, "utm_source"),
		UtmMedium:   queryParam(u, "utm_medium"),
		UtmCampaign: queryParam(u, "utm_campaign"),
		UtmContent:  queryParam(u, "utm_content"),
	}
	if customer != nil {
		tracking.CustomerID = &customer.ID
	}
	go func() {
		if err := h.db.Create(&tracking).Error; err != nil {
			log.Printf("Failed to save referral for %s: %v", waID, err)
		}
	}()
}

func queryParam(rawURL, key string) string {
	idx := strings.Index(rawURL, "?")
	if idx < 0 {
		return ""
	}
	for _, pair := range strings.Split(rawURL[idx+1:], "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && kv[0] == key {
			return kv[1]
		}
	}
	return ""
}

func parseUnixTimestamp(ts string) time.Time {
	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return time.Now()
	}
	return time.Unix(sec, 0)
}
