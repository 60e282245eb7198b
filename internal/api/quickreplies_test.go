package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clinic-engage/internal/database"
	"clinic-engage/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newQuickReplyRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	handler := NewQuickReplyHandler(db)

	router := gin.New()
	router.GET("/quick-replies", handler.List)
	router.POST("/quick-replies", handler.Create)
	router.PUT("/quick-replies/:id", handler.Update)
	router.DELETE("/quick-replies/:id", handler.Delete)
	return router, db
}

func TestQuickReplyCRUD(t *testing.T) {
	router, _ := newQuickReplyRouter(t)

	// create
	body := `{"title":"Greeting","content":"Hello! How can we help?","category":"general"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quick-replies", bytes.NewBufferString(body))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.QuickReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Greeting", created.Title)

	// list
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/quick-replies?category=general", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.QuickReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)

	// update
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/quick-replies/"+created.ID.String(),
		bytes.NewBufferString(`{"title":"Hi","content":"Hi there!","category":"general"}`))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// delete
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/quick-replies/"+created.ID.String(), nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// delete again 404s
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/quick-replies/"+created.ID.String(), nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuickReplyCreateValidation(t *testing.T) {
	router, _ := newQuickReplyRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/quick-replies", bytes.NewBufferString(`{"title":"no content"}`))
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Customer{WaID: "911111111111", Status: "pending"}).Error)
	require.NoError(t, db.Create(&models.Customer{WaID: "912222222222", Status: "active"}).Error)
	require.NoError(t, db.Create(&models.Lead{ZohoLeadID: "z1", FirstName: "A", Phone: "+911111111111", WaID: "911111111111", LeadStatus: "PENDING"}).Error)

	// yesterday's message must not count towards today, whatever the
	// local offset from UTC is
	require.NoError(t, db.Create(&models.Message{MessageID: "m-old", CreatedAt: time.Now().AddDate(0, 0, -1)}).Error)
	require.NoError(t, db.Create(&models.Message{MessageID: "m-new"}).Error)

	handler := NewDashboardHandler(db)
	router := gin.New()
	router.GET("/stats", handler.Stats)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.EqualValues(t, 2, out["total_customers"])
	assert.EqualValues(t, 1, out["pending_customers"])
	assert.EqualValues(t, 1, out["total_leads"])
	assert.EqualValues(t, 1, out["messages_today"])
}
