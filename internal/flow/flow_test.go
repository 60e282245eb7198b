package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-engage/internal/database"
	"clinic-engage/internal/models"
	"clinic-engage/internal/whatsapp"
	"clinic-engage/internal/zoho"
)

type sentMessage struct {
	kind string // text, buttons, list
	to   string
	body string
	ids  []string
}

type fakeSender struct {
	sent []sentMessage
}

func (f *fakeSender) SendText(to, body string) (*whatsapp.SendResponse, error) {
	f.sent = append(f.sent, sentMessage{kind: "text", to: to, body: body})
	return &whatsapp.SendResponse{}, nil
}

func (f *fakeSender) SendInteractiveButtons(to, bodyText string, buttons []whatsapp.Button) (*whatsapp.SendResponse, error) {
	ids := make([]string, 0, len(buttons))
	for _, b := range buttons {
		ids = append(ids, b.ID)
	}
	f.sent = append(f.sent, sentMessage{kind: "buttons", to: to, body: bodyText, ids: ids})
	return &whatsapp.SendResponse{}, nil
}

func (f *fakeSender) SendInteractiveList(to, bodyText, buttonText, sectionTitle string, rows []whatsapp.ListRow) (*whatsapp.SendResponse, error) {
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	f.sent = append(f.sent, sentMessage{kind: "list", to: to, body: bodyText, ids: ids})
	return &whatsapp.SendResponse{}, nil
}

func (f *fakeSender) last() sentMessage {
	return f.sent[len(f.sent)-1]
}

type fakeCRM struct {
	created []zoho.LeadInput
	updates map[string]string
}

func (f *fakeCRM) CreateLead(in zoho.LeadInput) (string, error) {
	f.created = append(f.created, in)
	return "zoho-1", nil
}

func (f *fakeCRM) UpdateLeadStatus(leadID, leadStatus string) error {
	if f.updates == nil {
		f.updates = make(map[string]string)
	}
	f.updates[leadID] = leadStatus
	return nil
}

type fakeValidator struct{ rejectAll bool }

func (f *fakeValidator) CheckName(ctx context.Context, name string) bool {
	return !f.rejectAll
}

func newTestController(t *testing.T) (*Controller, *fakeSender, *fakeCRM, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sender := &fakeSender{}
	crm := &fakeCRM{}
	ctrl := NewController(sender, crm, &fakeValidator{}, NewStore(), db)
	return ctrl, sender, crm, db
}

const waID = "919876543210"

func TestWelcomeTrigger(t *testing.T) {
	ctrl, sender, _, _ := newTestController(t)
	ctx := context.Background()

	assert.False(t, ctrl.HandleText(ctx, waID, "what are your prices"))
	assert.Empty(t, sender.sent)

	assert.True(t, ctrl.HandleText(ctx, waID, "I want to book an appointment"))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "buttons", sender.last().kind)
	assert.Equal(t, []string{"yes_book_appointment", "not_now"}, sender.last().ids)
}

func TestNotNowEndsFlow(t *testing.T) {
	ctrl, sender, _, _ := newTestController(t)
	ctx := context.Background()

	ctrl.HandleText(ctx, waID, "book")
	assert.True(t, ctrl.HandleReply(ctx, waID, "not_now"))
	assert.Equal(t, "text", sender.last().kind)

	// a later trigger restarts cleanly
	assert.True(t, ctrl.HandleText(ctx, waID, "book"))
	assert.Equal(t, "buttons", sender.last().kind)
}

func TestFullFlowCreatesLead(t *testing.T) {
	ctrl, sender, crm, db := newTestController(t)
	ctx := context.Background()

	ctrl.HandleText(ctx, waID, "book")
	ctrl.HandleReply(ctx, waID, "yes_book_appointment")
	assert.Equal(t, "list", sender.last().kind)
	assert.Contains(t, sender.last().ids, "city_mumbai")

	ctrl.HandleReply(ctx, waID, "city_mumbai")
	assert.Equal(t, "list", sender.last().kind)
	require.NotEmpty(t, sender.last().ids)
	clinicID := sender.last().ids[0]

	ctrl.HandleReply(ctx, waID, clinicID)
	assert.Equal(t, "list", sender.last().kind)
	weekID := sender.last().ids[0]

	ctrl.HandleReply(ctx, waID, weekID)
	assert.Equal(t, []string{"slot_morning", "slot_afternoon", "slot_evening"}, sender.last().ids)

	ctrl.HandleReply(ctx, waID, "slot_morning")
	assert.Contains(t, sender.last().ids, "time_10_am")

	ctrl.HandleReply(ctx, waID, "time_10_am")
	assert.Equal(t, "text", sender.last().kind)

	assert.True(t, ctrl.HandleText(ctx, waID, "Priya Sharma"))
	assert.True(t, ctrl.HandleText(ctx, waID, "98765 43210"))

	// lead filed as PENDING before the callback question
	require.Len(t, crm.created, 1)
	created := crm.created[0]
	assert.Equal(t, "Priya", created.FirstName)
	assert.Equal(t, "Sharma", created.LastName)
	assert.Equal(t, "+919876543210", created.Phone)
	assert.Equal(t, "Mumbai", created.City)
	assert.Equal(t, zoho.StatusPending, created.LeadStatus)

	var lead models.Lead
	require.NoError(t, db.Where("wa_id = ?", waID).First(&lead).Error)
	assert.Equal(t, "zoho-1", lead.ZohoLeadID)
	assert.Equal(t, zoho.StatusPending, lead.LeadStatus)

	assert.Equal(t, []string{"yes_callback", "no_callback"}, sender.last().ids)

	ctrl.HandleReply(ctx, waID, "yes_callback")
	assert.Equal(t, zoho.StatusCallInitiated, crm.updates["zoho-1"])

	require.NoError(t, db.Where("wa_id = ?", waID).First(&lead).Error)
	assert.Equal(t, zoho.StatusCallInitiated, lead.LeadStatus)
}

func TestDeclinedCallbackMarksNoCallback(t *testing.T) {
	ctrl, _, crm, _ := newTestController(t)
	ctx := context.Background()

	runToCallback(ctx, t, ctrl)
	ctrl.HandleReply(ctx, waID, "no_callback")
	assert.Equal(t, zoho.StatusNoCallback, crm.updates["zoho-1"])
}

func TestInvalidNameRetriesThenDropsOff(t *testing.T) {
	ctrl, sender, crm, db := newTestController(t)
	ctrl.validator = &fakeValidator{rejectAll: true}
	ctx := context.Background()

	ctrl.HandleText(ctx, waID, "book")
	ctrl.HandleReply(ctx, waID, "yes_book_appointment")
	ctrl.HandleReply(ctx, waID, "city_pune")
	clinicID := sender.last().ids[0]
	ctrl.HandleReply(ctx, waID, clinicID)
	weekID := sender.last().ids[0]
	ctrl.HandleReply(ctx, waID, weekID)
	ctrl.HandleReply(ctx, waID, "slot_evening")
	ctrl.HandleReply(ctx, waID, "time_5_pm")

	ctrl.HandleText(ctx, waID, "asdf")
	ctrl.HandleText(ctx, waID, "qwer")
	ctrl.HandleText(ctx, waID, "zxcv")

	// dropped off, but a lead is still filed for manual follow-up,
	// marked with how far the conversation got
	require.Len(t, crm.created, 1)
	assert.Equal(t, zoho.StatusNoCallback, crm.created[0].LeadStatus)
	assert.Equal(t, "Pune", crm.created[0].City)
	assert.Equal(t, StepName, crm.created[0].DroppedAt)

	var lead models.Lead
	require.NoError(t, db.Where("wa_id = ?", waID).First(&lead).Error)
	assert.Contains(t, lead.Description, "Dropped At: "+StepName)
}

func TestPickerRepliesOutsideSessionNotConsumed(t *testing.T) {
	ctrl, sender, _, _ := newTestController(t)
	ctx := context.Background()

	// no session: picker IDs belong to whatever flow sent them
	assert.False(t, ctrl.HandleReply(ctx, waID, "city_mumbai"))
	assert.False(t, ctrl.HandleReply(ctx, waID, "slot_morning"))
	assert.False(t, ctrl.HandleReply(ctx, waID, "time_9_am"))
	assert.False(t, ctrl.HandleReply(ctx, waID, "yes_callback"))
	assert.Empty(t, sender.sent)
}

func TestInferStep(t *testing.T) {
	assert.Equal(t, StepWelcome, InferStep(&Session{}))
	assert.Equal(t, StepClinic, InferStep(&Session{City: "Mumbai"}))
	assert.Equal(t, StepWeek, InferStep(&Session{City: "Mumbai", Clinic: "Bandra"}))
	assert.Equal(t, StepSlot, InferStep(&Session{City: "Mumbai", Clinic: "Bandra", WeekStart: "2026-08-24"}))
	assert.Equal(t, StepPhone, InferStep(&Session{Name: "Priya"}))
	assert.Equal(t, StepCallback, InferStep(&Session{Phone: "+919876543210"}))
}

func TestInvalidPhoneRetries(t *testing.T) {
	ctrl, sender, crm, _ := newTestController(t)
	ctx := context.Background()

	runToPhone(ctx, t, ctrl, sender)
	ctrl.HandleText(ctx, waID, "12345")
	assert.Empty(t, crm.created)

	ctrl.HandleText(ctx, waID, "9876543210")
	require.Len(t, crm.created, 1)
}

func runToPhone(ctx context.Context, t *testing.T, ctrl *Controller, sender *fakeSender) {
	t.Helper()
	ctrl.HandleText(ctx, waID, "book")
	ctrl.HandleReply(ctx, waID, "yes_book_appointment")
	ctrl.HandleReply(ctx, waID, "city_mumbai")
	ctrl.HandleReply(ctx, waID, sender.last().ids[0])
	ctrl.HandleReply(ctx, waID, sender.last().ids[0])
	ctrl.HandleReply(ctx, waID, "slot_morning")
	ctrl.HandleReply(ctx, waID, "time_9_am")
	ctrl.HandleText(ctx, waID, "Priya")
}

func runToCallback(ctx context.Context, t *testing.T, ctrl *Controller) {
	t.Helper()
	sender, ok := ctrl.sender.(*fakeSender)
	require.True(t, ok)
	runToPhone(ctx, t, ctrl, sender)
	ctrl.HandleText(ctx, waID, "9876543210")
}
