package whatsapp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-engage/internal/config"
	"clinic-engage/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.WhatsAppToken{}, &models.WhatsAppAPILog{}, &models.Message{}, &models.Customer{}))
	return db
}

func TestActiveTokenFallsBackToEnv(t *testing.T) {
	db := newTestDB(t)
	client := NewClient(&config.Config{WhatsAppToken: "env-token"}, db)

	assert.Equal(t, "env-token", client.ActiveToken())
}

func TestActiveTokenPrefersLatestRow(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.WhatsAppToken{Token: "old-token"}).Error)
	// later row wins
	newer := models.WhatsAppToken{Token: "new-token"}
	require.NoError(t, db.Create(&newer).Error)
	db.Model(&newer).Update("created_at", time.Now().Add(time.Hour))

	client := NewClient(&config.Config{WhatsAppToken: "env-token"}, db)
	assert.Equal(t, "new-token", client.ActiveToken())
}

func TestSendText(t *testing.T) {
	var gotPath, gotAuth string
	var gotEnvelope GenericMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		json.NewEncoder(w).Encode(map[string]any{
			"messaging_product": "whatsapp",
			"messages":          []map[string]any{{"id": "wamid.out1"}},
		})
	}))
	defer server.Close()

	client := NewClient(&config.Config{WhatsAppToken: "tok", PhoneNumberID: "pn1"}, nil)
	client.SetBaseURL(server.URL)

	resp, err := client.SendText("919876543210", "hello")
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "wamid.out1", resp.Messages[0].ID)

	assert.Equal(t, "/pn1/messages", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "whatsapp", gotEnvelope.MessagingProduct)
	assert.Equal(t, "text", gotEnvelope.Type)
	require.NotNil(t, gotEnvelope.Text)
	assert.Equal(t, "hello", gotEnvelope.Text.Body)
}

func TestSendTextAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`))
	}))
	defer server.Close()

	client := NewClient(&config.Config{WhatsAppToken: "bad", PhoneNumberID: "pn1"}, nil)
	client.SetBaseURL(server.URL)

	_, err := client.SendText("919876543210", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestSendInteractiveButtonsCapsAtThree(t *testing.T) {
	var gotEnvelope GenericMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]any{{"id": "wamid.out2"}}})
	}))
	defer server.Close()

	client := NewClient(&config.Config{WhatsAppToken: "tok", PhoneNumberID: "pn1"}, nil)
	client.SetBaseURL(server.URL)

	buttons := []Button{
		{ID: "a", Title: "A"}, {ID: "b", Title: "B"},
		{ID: "c", Title: "C"}, {ID: "d", Title: "D"},
	}
	_, err := client.SendInteractiveButtons("919876543210", "pick one", buttons)
	require.NoError(t, err)

	require.NotNil(t, gotEnvelope.Interactive)
	assert.Equal(t, "button", gotEnvelope.Interactive.Type)
	assert.Len(t, gotEnvelope.Interactive.Action.Buttons, 3)
}

func TestSendInteractiveListCapsAtTen(t *testing.T) {
	var gotEnvelope GenericMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotEnvelope))
		json.NewEncoder(w).Encode(map[string]any{"messages": []map[string]any{{"id": "wamid.out3"}}})
	}))
	defer server.Close()

	client := NewClient(&config.Config{WhatsAppToken: "tok", PhoneNumberID: "pn1"}, nil)
	client.SetBaseURL(server.URL)

	rows := make([]ListRow, 12)
	for i := range rows {
		rows[i] = ListRow{ID: string(rune('a' + i)), Title: "Row"}
	}
	_, err := client.SendInteractiveList("919876543210", "pick", "Open", "Options", rows)
	require.NoError(t, err)

	require.NotNil(t, gotEnvelope.Interactive)
	assert.Equal(t, "list", gotEnvelope.Interactive.Type)
	require.Len(t, gotEnvelope.Interactive.Action.Sections, 1)
	assert.Len(t, gotEnvelope.Interactive.Action.Sections[0].Rows, 10)
}

func TestSendButtonsRequiresButtons(t *testing.T) {
	client := NewClient(&config.Config{}, nil)
	_, err := client.SendInteractiveButtons("919876543210", "pick", nil)
	assert.Error(t, err)
}
