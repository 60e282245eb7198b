package flow

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"clinic-engage/internal/models"
	"clinic-engage/internal/validate"
	"clinic-engage/internal/whatsapp"
	"clinic-engage/internal/zoho"
)

// Sender is the subset of the WhatsApp client the flow needs.
type Sender interface {
	SendText(to, body string) (*whatsapp.SendResponse, error)
	SendInteractiveButtons(to, bodyText string, buttons []whatsapp.Button) (*whatsapp.SendResponse, error)
	SendInteractiveList(to, bodyText, buttonText, sectionTitle string, rows []whatsapp.ListRow) (*whatsapp.SendResponse, error)
}

// LeadCreator is the subset of the Zoho client the flow needs.
type LeadCreator interface {
	CreateLead(in zoho.LeadInput) (string, error)
	UpdateLeadStatus(leadID, leadStatus string) error
}

// NameChecker validates free-text names.
type NameChecker interface {
	CheckName(ctx context.Context, name string) bool
}

// Controller drives the lead-to-appointment conversation.
type Controller struct {
	sender    Sender
	crm       LeadCreator
	validator NameChecker
	store     *Store
	db        *gorm.DB
}

func NewController(sender Sender, crm LeadCreator, validator NameChecker, store *Store, db *gorm.DB) *Controller {
	return &Controller{sender: sender, crm: crm, validator: validator, store: store, db: db}
}

// Keywords that start the flow from a plain text message.
var welcomeTriggers = []string{"book", "appointment", "inquire", "inquiry", "consultation", "visit", "schedule"}

func isWelcomeTrigger(text string) bool {
	lower := strings.ToLower(text)
	for _, t := range welcomeTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

const maxRetries = 3

// HandleText routes an inbound text message. Returns true when the
// flow consumed the message.
func (c *Controller) HandleText(ctx context.Context, waID, text string) bool {
	sess := c.store.Get(ctx, waID)

	if sess == nil || sess.Step == StepDone || sess.Step == StepNotNow {
		if !isWelcomeTrigger(text) {
			return false
		}
		c.startFlow(ctx, waID)
		return true
	}

	switch sess.Step {
	case StepName:
		c.handleName(ctx, sess, text)
		return true
	case StepPhone:
		c.handlePhone(ctx, sess, text)
		return true
	default:
		// mid-flow free text: nudge back to the pending picker
		c.sendText(waID, "Please use the options above to continue, or type *book* to start over.")
		return true
	}
}

// HandleReply routes an interactive button or list reply by its ID
// prefix. Picker IDs arriving without an active session are not
// consumed, so other flows bound to the same number can claim them.
func (c *Controller) HandleReply(ctx context.Context, waID, replyID string) bool {
	switch {
	case replyID == "yes_book_appointment":
		c.askCity(ctx, waID)
	case replyID == "not_now":
		c.handleNotNow(ctx, waID)
	case strings.HasPrefix(replyID, "city_"):
		return c.handleCity(ctx, waID, replyID)
	case strings.HasPrefix(replyID, "clinic_"):
		return c.handleClinic(ctx, waID, replyID)
	case strings.HasPrefix(replyID, "week_"):
		return c.handleWeek(ctx, waID, replyID)
	case strings.HasPrefix(replyID, "slot_"):
		return c.handleSlot(ctx, waID, replyID)
	case strings.HasPrefix(replyID, "time_"):
		return c.handleTime(ctx, waID, replyID)
	case replyID == "yes_callback":
		return c.handleCallback(ctx, waID, true)
	case replyID == "no_callback":
		return c.handleCallback(ctx, waID, false)
	default:
		return false
	}
	return true
}

func (c *Controller) sendText(waID, body string) {
	if _, err := c.sender.SendText(waID, body); err != nil {
		log.Printf("Flow send failed for %s: %v", waID, err)
	}
}

func (c *Controller) startFlow(ctx context.Context, waID string) {
	sess := &Session{WaID: waID, Step: StepWelcome, StartedAt: time.Now()}
	c.store.Save(ctx, sess)

	_, err := c.sender.SendInteractiveButtons(waID,
		"Welcome! 👋 We'd love to help you book a consultation at one of our clinics. Would you like to book an appointment?",
		[]whatsapp.Button{
			{ID: "yes_book_appointment", Title: "Yes, book now"},
			{ID: "not_now", Title: "Not now"},
		})
	if err != nil {
		log.Printf("Flow welcome failed for %s: %v", waID, err)
	}
}

func (c *Controller) handleNotNow(ctx context.Context, waID string) {
	sess := c.store.Get(ctx, waID)
	if sess != nil {
		sess.Step = StepNotNow
		c.store.Save(ctx, sess)
	}
	c.sendText(waID, "No problem! Whenever you're ready, just type *book* and we'll take it from there. 😊")
}

func (c *Controller) askCity(ctx context.Context, waID string) {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		sess = &Session{WaID: waID, StartedAt: time.Now()}
	}
	sess.Step = StepCity
	c.store.Save(ctx, sess)

	rows := make([]whatsapp.ListRow, 0, len(cityOrder))
	for _, r := range CityRows() {
		rows = append(rows, whatsapp.ListRow{ID: r.ID, Title: r.Title})
	}
	_, err := c.sender.SendInteractiveList(waID,
		"Great! Which city are you in?", "Select city", "Cities", rows)
	if err != nil {
		log.Printf("Flow city prompt failed for %s: %v", waID, err)
	}
}

func (c *Controller) handleCity(ctx context.Context, waID, replyID string) bool {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		return false
	}

	city, ok := CityFromReplyID(replyID)
	if !ok {
		c.askCity(ctx, waID)
		return true
	}

	sess.City = city
	sess.Step = StepClinic
	c.store.Save(ctx, sess)

	clinics := ClinicsForCityID(replyID)
	rows := make([]whatsapp.ListRow, 0, len(clinics))
	for _, cl := range clinics {
		rows = append(rows, whatsapp.ListRow{ID: cl.ID, Title: cl.Name})
	}
	_, err := c.sender.SendInteractiveList(waID,
		"Which clinic location works best for you?", "Select clinic", city, rows)
	if err != nil {
		log.Printf("Flow clinic prompt failed for %s: %v", waID, err)
	}
	return true
}

func (c *Controller) handleClinic(ctx context.Context, waID, replyID string) bool {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		return false
	}

	clinic, ok := ClinicNameFromReplyID(replyID)
	if !ok {
		c.sendText(waID, "That clinic is not available. Please pick one from the list.")
		return true
	}

	sess.Clinic = clinic
	sess.Step = StepWeek
	c.store.Save(ctx, sess)

	opts := WeekOptions(time.Now())
	rows := make([]whatsapp.ListRow, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, whatsapp.ListRow{ID: o.ID, Title: o.Label})
	}
	_, err := c.sender.SendInteractiveList(waID,
		"Which week would you like to visit?", "Select week", "Upcoming weeks", rows)
	if err != nil {
		log.Printf("Flow week prompt failed for %s: %v", waID, err)
	}
	return true
}

func (c *Controller) handleWeek(ctx context.Context, waID, replyID string) bool {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		return false
	}

	start, end, ok := ParseWeekReplyID(replyID)
	if !ok {
		c.sendText(waID, "Please pick a week from the list.")
		return true
	}

	sess.WeekStart = start
	sess.WeekEnd = end
	sess.Step = StepSlot
	c.store.Save(ctx, sess)

	_, err := c.sender.SendInteractiveButtons(waID,
		"What time of day suits you?",
		[]whatsapp.Button{
			{ID: "slot_morning", Title: "Morning"},
			{ID: "slot_afternoon", Title: "Afternoon"},
			{ID: "slot_evening", Title: "Evening"},
		})
	if err != nil {
		log.Printf("Flow slot prompt failed for %s: %v", waID, err)
	}
	return true
}

func (c *Controller) handleSlot(ctx context.Context, waID, replyID string) bool {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		return false
	}

	label, ok := SlotLabel(replyID)
	if !ok {
		c.sendText(waID, "Please pick a time slot from the buttons.")
		return true
	}

	sess.Slot = replyID
	sess.SlotLabel = label
	sess.Step = StepTime
	c.store.Save(ctx, sess)

	rows := make([]whatsapp.ListRow, 0, 5)
	for _, r := range TimeRows(replyID) {
		rows = append(rows, whatsapp.ListRow{ID: r.ID, Title: r.Title})
	}
	_, err := c.sender.SendInteractiveList(waID,
		"Pick a time inside "+label+":", "Select time", label, rows)
	if err != nil {
		log.Printf("Flow time prompt failed for %s: %v", waID, err)
	}
	return true
}

func (c *Controller) handleTime(ctx context.Context, waID, replyID string) bool {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		return false
	}

	label, ok := TimeFromReplyID(replyID)
	if !ok {
		c.sendText(waID, "Please pick a time from the list.")
		return true
	}

	sess.PreferredTime = label
	sess.Step = StepName
	c.store.Save(ctx, sess)

	c.sendText(waID, "Almost done! What's your name?")
	return true
}

func (c *Controller) handleName(ctx context.Context, sess *Session, text string) {
	name := strings.TrimSpace(text)
	if !c.validator.CheckName(ctx, name) {
		sess.NameRetries++
		if sess.NameRetries >= maxRetries {
			c.dropOff(ctx, sess)
			return
		}
		c.store.Save(ctx, sess)
		c.sendText(sess.WaID, "That doesn't look like a name. Could you share your full name?")
		return
	}

	sess.Name = name
	sess.Step = StepPhone
	c.store.Save(ctx, sess)
	c.sendText(sess.WaID, "Thanks, "+firstName(name)+"! And your phone number?")
}

func (c *Controller) handlePhone(ctx context.Context, sess *Session, text string) {
	phone, ok := validate.NormalizePhone(text)
	if !ok {
		sess.PhoneRetries++
		if sess.PhoneRetries >= maxRetries {
			c.dropOff(ctx, sess)
			return
		}
		c.store.Save(ctx, sess)
		c.sendText(sess.WaID, "That number looks incomplete. Please share a 10-digit mobile number.")
		return
	}

	sess.Phone = phone
	sess.Step = StepCallback
	c.store.Save(ctx, sess)

	c.createLead(ctx, sess, zoho.StatusPending, "")

	_, err := c.sender.SendInteractiveButtons(sess.WaID,
		"You're all set! 🎉 Our team will confirm your appointment at "+sess.Clinic+", "+sess.City+
			" for the week of "+sess.WeekStart+" ("+sess.PreferredTime+").\n\nWould you like a callback right away?",
		[]whatsapp.Button{
			{ID: "yes_callback", Title: "Yes, call me"},
			{ID: "no_callback", Title: "No, thanks"},
		})
	if err != nil {
		log.Printf("Flow callback prompt failed for %s: %v", sess.WaID, err)
	}
}

func (c *Controller) handleCallback(ctx context.Context, waID string, wantsCallback bool) bool {
	sess := c.store.Get(ctx, waID)
	if sess == nil {
		return false
	}

	status := zoho.StatusNoCallback
	reply := "Got it. Our team will reach out closer to your appointment. See you soon! 😊"
	if wantsCallback {
		status = zoho.StatusCallInitiated
		reply = "Perfect! One of our advisors will call you shortly. 📞"
	}

	c.updateLeadStatus(sess.WaID, status)

	sess.Step = StepDone
	c.store.Save(ctx, sess)
	c.sendText(waID, reply)
	c.store.Delete(ctx, waID)
	return true
}

// dropOff gives up after repeated invalid answers and still files a
// lead, marked with how far the conversation got, so the team can
// follow up manually.
func (c *Controller) dropOff(ctx context.Context, sess *Session) {
	step := InferStep(sess)
	log.Printf("Flow drop-off for %s at %s", sess.WaID, step)
	c.sendText(sess.WaID, "No worries, we'll have someone from our team reach out to you on WhatsApp. 😊")
	if sess.City != "" {
		c.createLead(ctx, sess, zoho.StatusNoCallback, step)
	}
	c.store.Delete(ctx, sess.WaID)
}

func (c *Controller) createLead(ctx context.Context, sess *Session, status, droppedAt string) {
	name := sess.Name
	if name == "" {
		name = "WhatsApp User"
	}
	phone := sess.Phone
	if phone == "" {
		if p, ok := validate.NormalizePhone(sess.WaID); ok {
			phone = p
		}
	}

	in := zoho.LeadInput{
		FirstName:     firstName(name),
		LastName:      lastName(name),
		Phone:         phone,
		City:          sess.City,
		Clinic:        sess.Clinic,
		PreferredDate: sess.WeekStart + " to " + sess.WeekEnd,
		PreferredTime: sess.PreferredTime,
		LeadStatus:    status,
		DroppedAt:     droppedAt,
	}

	zohoID, err := c.crm.CreateLead(in)
	if err != nil {
		log.Printf("Failed to create zoho lead for %s: %v", sess.WaID, err)
		return
	}

	if c.db == nil {
		return
	}

	desc := zoho.BuildDescription(sess.City, sess.Clinic, in.PreferredDate, sess.PreferredTime)
	if droppedAt != "" {
		desc += " | Dropped At: " + droppedAt
	}

	details, _ := json.Marshal(sess)
	lead := models.Lead{
		ZohoLeadID:         zohoID,
		FirstName:          in.FirstName,
		LastName:           in.LastName,
		Phone:              phone,
		Mobile:             phone,
		City:               sess.City,
		LeadSource:         zoho.LeadSourceWhatsApp,
		LeadStatus:         status,
		Company:            in.FirstName,
		Description:        desc,
		WaID:               sess.WaID,
		AppointmentDetails: string(details),
	}
	var customer models.Customer
	if err := c.db.Where("wa_id = ?", sess.WaID).First(&customer).Error; err == nil {
		lead.CustomerID = &customer.ID
	}
	if err := c.db.Create(&lead).Error; err != nil {
		log.Printf("Failed to save local lead for %s: %v", sess.WaID, err)
	}
}

func (c *Controller) updateLeadStatus(waID, status string) {
	if c.db == nil {
		return
	}
	var lead models.Lead
	if err := c.db.Where("wa_id = ?", waID).Order("created_at DESC").First(&lead).Error; err != nil {
		log.Printf("No local lead to update for %s: %v", waID, err)
		return
	}
	if err := c.crm.UpdateLeadStatus(lead.ZohoLeadID, status); err != nil {
		log.Printf("Failed to update zoho lead %s: %v", lead.ZohoLeadID, err)
	}
	if err := c.db.Model(&lead).Update("lead_status", status).Error; err != nil {
		log.Printf("Failed to update local lead %s: %v", lead.ID, err)
	}
}

func firstName(full string) string {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return full
	}
	return parts[0]
}

func lastName(full string) string {
	parts := strings.Fields(full)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[1:], " ")
}
