package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Organization represents a clinic brand / tenant
type Organization struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string    `gorm:"type:varchar(255)" json:"slug"`
	Code        string    `gorm:"type:varchar(50);uniqueIndex" json:"code"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Role represents a dashboard role (org_admin, agent, super_admin)
type Role struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"name"`
	DisplayName string    `gorm:"type:varchar(100);not null" json:"display_name"`
	Description string    `gorm:"type:text" json:"description"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Role) TableName() string { return "roles" }

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// User represents a dashboard user
type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string     `gorm:"type:varchar(100);not null;uniqueIndex" json:"username"`
	Password       string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName      string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName       string     `gorm:"type:varchar(100)" json:"last_name"`
	PhoneNumber    string     `gorm:"type:varchar(20)" json:"phone_number"`
	Email          string     `gorm:"type:varchar(100);uniqueIndex" json:"email"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	RoleID         *uuid.UUID `gorm:"type:uuid" json:"role_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Customer represents a WhatsApp conversation partner, keyed by WA ID
type Customer struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	WaID           string     `gorm:"not null;uniqueIndex" json:"wa_id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Phone          string     `gorm:"type:varchar(20)" json:"phone"`
	Address        string     `json:"address"`
	Status         string     `gorm:"type:varchar(20);default:'pending'" json:"status"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastMessageAt  *time.Time `json:"last_message_at"`
}

func (Customer) TableName() string { return "customers" }

func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Message represents one WhatsApp message, inbound or outbound
type Message struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	MessageID  string     `gorm:"type:varchar(255);index" json:"message_id"`
	FromWaID   string     `gorm:"type:varchar(50);index" json:"from_wa_id"`
	ToWaID     string     `gorm:"type:varchar(50);index" json:"to_wa_id"`
	Type       string     `gorm:"type:varchar(50)" json:"type"`
	Body       string     `gorm:"type:text" json:"body"`
	Status     string     `gorm:"type:varchar(20)" json:"status"`
	Timestamp  time.Time  `json:"timestamp"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id"`
	SenderType string     `gorm:"type:varchar(20)" json:"sender_type"` // customer or agent
	MediaID    string     `gorm:"type:varchar(255)" json:"media_id,omitempty"`
	Caption    string     `json:"caption,omitempty"`
	Filename   string     `json:"filename,omitempty"`
	MimeType   string     `gorm:"type:varchar(100)" json:"mime_type,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// WhatsAppToken holds the current Cloud API access token (latest row wins)
type WhatsAppToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"token"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WhatsAppToken) TableName() string { return "whatsapp_tokens" }

func (t *WhatsAppToken) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// WhatsAppNumber maps a Cloud API phone number to an organization
type WhatsAppNumber struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumberID  string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"phone_number_id"`
	DisplayNumber  string    `gorm:"type:varchar(50)" json:"display_number"`
	AccessToken    string    `gorm:"type:varchar(500)" json:"-"`
	WebhookPath    string    `gorm:"type:varchar(255)" json:"webhook_path"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;index" json:"organization_id"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WhatsAppNumber) TableName() string { return "whatsapp_numbers" }

func (n *WhatsAppNumber) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NumberFlowConfig binds an inbound number to a conversational flow
type NumberFlowConfig struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumberID string    `gorm:"not null;index" json:"phone_number_id"`
	DisplayNumber string    `gorm:"not null" json:"display_number"`
	DisplayDigits string    `gorm:"type:varchar(20)" json:"display_digits"`
	FlowKey       string    `gorm:"type:varchar(100);not null" json:"flow_key"`
	FlowName      string    `gorm:"type:varchar(255);not null" json:"flow_name"`
	Description   string    `gorm:"type:text" json:"description"`
	Priority      int       `gorm:"default:0" json:"priority"`
	IsEnabled     bool      `gorm:"default:true" json:"is_enabled"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (NumberFlowConfig) TableName() string { return "number_flow_configs" }

func (n *NumberFlowConfig) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// QuickReply is a reusable canned chat response
type QuickReply struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Content   string     `gorm:"type:text;not null" json:"content"`
	Category  string     `gorm:"type:varchar(120);index" json:"category"`
	CreatedBy *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (QuickReply) TableName() string { return "quick_replies" }

func (q *QuickReply) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// WhatsAppAPILog is an audit record of one Graph API request/response pair
type WhatsAppAPILog struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	PhoneNumber       string     `gorm:"type:varchar(20);index" json:"phone_number"`
	RequestURL        string     `gorm:"type:varchar(500)" json:"request_url"`
	RequestPayload    string     `gorm:"type:text" json:"request_payload"`
	ResponseStatus    int        `json:"response_status"`
	ResponseBody      string     `gorm:"type:text" json:"response_body"`
	WhatsAppMessageID string     `gorm:"type:varchar(100)" json:"whatsapp_message_id"`
	ErrorCode         string     `gorm:"type:varchar(50)" json:"error_code"`
	ErrorMessage      string     `gorm:"type:text" json:"error_message"`
	RequestTime       time.Time  `json:"request_time"`
	ResponseTime      *time.Time `json:"response_time"`
	DurationMs        int        `json:"duration_ms"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (WhatsAppAPILog) TableName() string { return "whatsapp_api_logs" }

func (l *WhatsAppAPILog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ReferrerTracking records UTM attribution for a wa.me click-through
type ReferrerTracking struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	WaID        string     `gorm:"index" json:"wa_id"`
	UtmSource   string     `json:"utm_source"`
	UtmMedium   string     `json:"utm_medium"`
	UtmCampaign string     `json:"utm_campaign"`
	UtmContent  string     `json:"utm_content"`
	ReferrerURL string     `json:"referrer_url"`
	CenterName  string     `json:"center_name"`
	Location    string     `json:"location"`
	CustomerID  *uuid.UUID `gorm:"type:uuid" json:"customer_id"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (ReferrerTracking) TableName() string { return "referrer_tracking" }

// Lead is the local shadow of a Zoho CRM lead
type Lead struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ZohoLeadID         string     `gorm:"uniqueIndex;not null" json:"zoho_lead_id"`
	FirstName          string     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName           string     `gorm:"type:varchar(100)" json:"last_name"`
	Email              string     `gorm:"type:varchar(255)" json:"email"`
	Phone              string     `gorm:"type:varchar(20);not null;index" json:"phone"`
	Mobile             string     `gorm:"type:varchar(20)" json:"mobile"`
	City               string     `gorm:"type:varchar(100)" json:"city"`
	LeadSource         string     `gorm:"type:varchar(100)" json:"lead_source"`
	LeadStatus         string     `gorm:"type:varchar(50)" json:"lead_status"`
	Company            string     `gorm:"type:varchar(100)" json:"company"`
	Description        string     `gorm:"type:text" json:"description"`
	WaID               string     `gorm:"not null;index" json:"wa_id"`
	CustomerID         *uuid.UUID `gorm:"type:uuid" json:"customer_id"`
	AppointmentDetails string     `gorm:"type:text" json:"appointment_details"` // JSON snapshot of the session
	TreatmentName      string     `gorm:"type:varchar(255)" json:"treatment_name"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Campaign represents a broadcast campaign
type Campaign struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string     `gorm:"type:varchar(255);not null" json:"name"`
	Type           string     `gorm:"type:varchar(50)" json:"type"` // text, image, document, template, interactive
	Content        string     `gorm:"type:text" json:"content"`
	TemplateName   string     `gorm:"type:varchar(255)" json:"template_name"`
	Status         string     `gorm:"type:varchar(20);default:'draft'" json:"status"`
	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Customers []Customer `gorm:"many2many:campaign_customers;" json:"customers,omitempty"`
}

func (Campaign) TableName() string { return "campaigns" }

func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Category groups products for the catalog flow
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Category) TableName() string { return "categories" }

// Product is a catalog item priced in INR (synced to Shopify)
type Product struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255);not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Price            float64   `json:"price"`
	ShopifyVariantID string    `gorm:"type:varchar(50)" json:"shopify_variant_id"`
	CategoryID       *uint     `gorm:"index" json:"category_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
