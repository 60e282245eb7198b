package whatsapp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"clinic-engage/internal/config"
	"clinic-engage/internal/models"
)

const graphAPIBase = "https://graph.facebook.com/v18.0"

// Client talks to the WhatsApp Cloud API for a single phone number ID.
type Client struct {
	cfg        *config.Config
	db         *gorm.DB
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config, db *gorm.DB) *Client {
	return &Client{
		cfg:        cfg,
		db:         db,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    graphAPIBase,
	}
}

// SetBaseURL overrides the Graph API base, used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// ActiveToken returns the newest token stored in whatsapp_tokens,
// falling back to the env-configured token when the table is empty.
func (c *Client) ActiveToken() string {
	if c.db != nil {
		var t models.WhatsAppToken
		if err := c.db.Order("created_at DESC").First(&t).Error; err == nil && t.Token != "" {
			return t.Token
		}
	}
	return c.cfg.WhatsAppToken
}

// GenericMessage is the Cloud API send envelope. Exactly one of the
// typed payload fields is set depending on Type.
type GenericMessage struct {
	MessagingProduct string          `json:"messaging_product"`
	RecipientType    string          `json:"recipient_type,omitempty"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Text             *TextObj        `json:"text,omitempty"`
	Image            *MediaObj       `json:"image,omitempty"`
	Document         *MediaObj       `json:"document,omitempty"`
	Template         *TemplateObj    `json:"template,omitempty"`
	Interactive      *InteractiveObj `json:"interactive,omitempty"`
}

type TextObj struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type MediaObj struct {
	ID       string `json:"id,omitempty"`
	Link     string `json:"link,omitempty"`
	Caption  string `json:"caption,omitempty"`
	Filename string `json:"filename,omitempty"`
}

type TemplateObj struct {
	Name       string         `json:"name"`
	Language   LanguageObj    `json:"language"`
	Components []ComponentObj `json:"components,omitempty"`
}

type LanguageObj struct {
	Code string `json:"code"`
}

type ComponentObj struct {
	Type       string         `json:"type"`
	Parameters []ParameterObj `json:"parameters,omitempty"`
}

type ParameterObj struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type InteractiveObj struct {
	Type   string            `json:"type"` // button or list
	Header *HeaderObj        `json:"header,omitempty"`
	Body   BodyObj           `json:"body"`
	Footer *FooterObj        `json:"footer,omitempty"`
	Action InteractiveAction `json:"action"`
}

type HeaderObj struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type BodyObj struct {
	Text string `json:"text"`
}

type FooterObj struct {
	Text string `json:"text"`
}

type InteractiveAction struct {
	Buttons  []ButtonObj  `json:"buttons,omitempty"`
	Button   string       `json:"button,omitempty"`
	Sections []SectionObj `json:"sections,omitempty"`
}

type ButtonObj struct {
	Type  string   `json:"type"`
	Reply ReplyObj `json:"reply"`
}

type ReplyObj struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type SectionObj struct {
	Title string   `json:"title,omitempty"`
	Rows  []RowObj `json:"rows"`
}

type RowObj struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Button is a reply button choice offered to the user.
type Button struct {
	ID    string
	Title string
}

// ListRow is one selectable row in an interactive list.
type ListRow struct {
	ID          string
	Title       string
	Description string
}

// SendResponse is the Cloud API acknowledgement for a sent message.
type SendResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// sendRequest posts the envelope to /{phone_number_id}/messages, records
// an audit row in whatsapp_api_logs, and returns the parsed response.
func (c *Client) sendRequest(msg *GenericMessage) (*SendResponse, error) {
	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.cfg.PhoneNumberID)

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.ActiveToken())
	req.Header.Set("Content-Type", "application/json")

	apiLog := models.WhatsAppAPILog{
		PhoneNumber:    msg.To,
		RequestURL:     url,
		RequestPayload: string(payload),
		RequestTime:    time.Now(),
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiLog.ErrorMessage = err.Error()
		c.saveAPILog(&apiLog)
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	now := time.Now()
	apiLog.ResponseStatus = resp.StatusCode
	apiLog.ResponseBody = string(body)
	apiLog.ResponseTime = &now
	apiLog.DurationMs = int(now.Sub(apiLog.RequestTime).Milliseconds())

	if resp.StatusCode >= 400 {
		var ae apiError
		if json.Unmarshal(body, &ae) == nil && ae.Error.Message != "" {
			apiLog.ErrorCode = fmt.Sprintf("%d", ae.Error.Code)
			apiLog.ErrorMessage = ae.Error.Message
		}
		c.saveAPILog(&apiLog)
		return nil, fmt.Errorf("whatsapp api error (status %d): %s", resp.StatusCode, string(body))
	}

	var out SendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.saveAPILog(&apiLog)
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Messages) > 0 {
		apiLog.WhatsAppMessageID = out.Messages[0].ID
	}
	c.saveAPILog(&apiLog)

	return &out, nil
}

func (c *Client) saveAPILog(l *models.WhatsAppAPILog) {
	if c.db == nil {
		return
	}
	go func() {
		if err := c.db.Create(l).Error; err != nil {
			log.Printf("Failed to save whatsapp api log: %v", err)
		}
	}()
}

// recordOutbound persists the sent message so the chat history stays complete.
func (c *Client) recordOutbound(to, msgType, body, messageID string) {
	if c.db == nil {
		return
	}
	go func() {
		var customer models.Customer
		m := models.Message{
			MessageID:  messageID,
			FromWaID:   c.cfg.DisplayNumber,
			ToWaID:     to,
			Type:       msgType,
			Body:       body,
			Status:     "sent",
			Timestamp:  time.Now(),
			SenderType: "agent",
		}
		if err := c.db.Where("wa_id = ?", to).First(&customer).Error; err == nil {
			m.CustomerID = &customer.ID
		}
		if err := c.db.Create(&m).Error; err != nil {
			log.Printf("Failed to record outbound message: %v", err)
		}
	}()
}

// SendText sends a plain text message.
func (c *Client) SendText(to, body string) (*SendResponse, error) {
	msg := &GenericMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text:             &TextObj{Body: body},
	}
	resp, err := c.sendRequest(msg)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) > 0 {
		c.recordOutbound(to, "text", body, resp.Messages[0].ID)
	}
	return resp, nil
}

// SendTemplate sends a pre-approved template message with text body params.
func (c *Client) SendTemplate(to, templateName, languageCode string, bodyParams []string) (*SendResponse, error) {
	tmpl := &TemplateObj{
		Name:     templateName,
		Language: LanguageObj{Code: languageCode},
	}
	if len(bodyParams) > 0 {
		comp := ComponentObj{Type: "body"}
		for _, p := range bodyParams {
			comp.Parameters = append(comp.Parameters, ParameterObj{Type: "text", Text: p})
		}
		tmpl.Components = []ComponentObj{comp}
	}

	msg := &GenericMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "template",
		Template:         tmpl,
	}
	resp, err := c.sendRequest(msg)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) > 0 {
		c.recordOutbound(to, "template", templateName, resp.Messages[0].ID)
	}
	return resp, nil
}

// SendInteractiveButtons sends up to 3 reply buttons. Extra buttons are
// dropped because the Cloud API rejects more.
func (c *Client) SendInteractiveButtons(to, bodyText string, buttons []Button) (*SendResponse, error) {
	if len(buttons) == 0 {
		return nil, fmt.Errorf("at least one button is required")
	}
	if len(buttons) > 3 {
		buttons = buttons[:3]
	}

	action := InteractiveAction{}
	for _, b := range buttons {
		action.Buttons = append(action.Buttons, ButtonObj{
			Type:  "reply",
			Reply: ReplyObj{ID: b.ID, Title: b.Title},
		})
	}

	msg := &GenericMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &InteractiveObj{
			Type:   "button",
			Body:   BodyObj{Text: bodyText},
			Action: action,
		},
	}
	resp, err := c.sendRequest(msg)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) > 0 {
		c.recordOutbound(to, "interactive", bodyText, resp.Messages[0].ID)
	}
	return resp, nil
}

// SendInteractiveList sends a single-section list with up to 10 rows.
func (c *Client) SendInteractiveList(to, bodyText, buttonText, sectionTitle string, rows []ListRow) (*SendResponse, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("at least one row is required")
	}
	if len(rows) > 10 {
		rows = rows[:10]
	}

	section := SectionObj{Title: sectionTitle}
	for _, r := range rows {
		section.Rows = append(section.Rows, RowObj{ID: r.ID, Title: r.Title, Description: r.Description})
	}

	msg := &GenericMessage{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "interactive",
		Interactive: &InteractiveObj{
			Type:   "list",
			Body:   BodyObj{Text: bodyText},
			Action: InteractiveAction{Button: buttonText, Sections: []SectionObj{section}},
		},
	}
	resp, err := c.sendRequest(msg)
	if err != nil {
		return nil, err
	}
	if len(resp.Messages) > 0 {
		c.recordOutbound(to, "interactive", bodyText, resp.Messages[0].ID)
	}
	return resp, nil
}
