package flow

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"clinic-engage/internal/cache"
)

// Session steps, in conversation order.
const (
	StepWelcome  = "welcome"
	StepCity     = "city_selection"
	StepClinic   = "clinic_selection"
	StepWeek     = "week_selection"
	StepSlot     = "slot_selection"
	StepTime     = "time_selection"
	StepName     = "awaiting_name"
	StepPhone    = "awaiting_phone"
	StepCallback = "callback_prompt"
	StepDone     = "completed"
	StepNotNow   = "dropped"
)

// Session is the per-user state of the lead-to-appointment flow.
type Session struct {
	WaID          string    `json:"wa_id"`
	Step          string    `json:"step"`
	City          string    `json:"city,omitempty"`
	Clinic        string    `json:"clinic,omitempty"`
	WeekStart     string    `json:"week_start,omitempty"`
	WeekEnd       string    `json:"week_end,omitempty"`
	Slot          string    `json:"slot,omitempty"`
	SlotLabel     string    `json:"slot_label,omitempty"`
	PreferredTime string    `json:"preferred_time,omitempty"`
	Name          string    `json:"name,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	NameRetries   int       `json:"name_retries,omitempty"`
	PhoneRetries  int       `json:"phone_retries,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

const sessionTTL = 24 * time.Hour

// InferStep reports how far a session progressed from its captured
// fields, most progressed first. Used for drop-off reporting where the
// stored Step may lag the data.
func InferStep(s *Session) string {
	switch {
	case s == nil:
		return StepNotNow
	case s.Phone != "":
		return StepCallback
	case s.Name != "":
		return StepPhone
	case s.PreferredTime != "":
		return StepName
	case s.Slot != "":
		return StepTime
	case s.WeekStart != "":
		return StepSlot
	case s.Clinic != "":
		return StepWeek
	case s.City != "":
		return StepClinic
	default:
		return StepWelcome
	}
}

// Store keeps sessions in Redis when available, falling back to an
// in-process map so the flow survives a missing cache in dev.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func sessionKey(waID string) string {
	return "flow:session:" + waID
}

// Get returns the session for a WA ID, or nil when none exists.
func (s *Store) Get(ctx context.Context, waID string) *Session {
	if cache.Rdb != nil {
		raw, err := cache.Rdb.Get(ctx, sessionKey(waID)).Bytes()
		if err == nil {
			var sess Session
			if json.Unmarshal(raw, &sess) == nil {
				return &sess
			}
		}
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[waID]; ok {
		cp := *sess
		return &cp
	}
	return nil
}

// Save writes the session back, bumping UpdatedAt.
func (s *Store) Save(ctx context.Context, sess *Session) {
	sess.UpdatedAt = time.Now()

	if cache.Rdb != nil {
		raw, err := json.Marshal(sess)
		if err != nil {
			log.Printf("Failed to marshal flow session for %s: %v", sess.WaID, err)
			return
		}
		if err := cache.Rdb.Set(ctx, sessionKey(sess.WaID), raw, sessionTTL).Err(); err != nil {
			log.Printf("Failed to save flow session for %s: %v", sess.WaID, err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.WaID] = &cp
}

// Delete ends the session.
func (s *Store) Delete(ctx context.Context, waID string) {
	if cache.Rdb != nil {
		if err := cache.Rdb.Del(ctx, sessionKey(waID)).Err(); err != nil {
			log.Printf("Failed to delete flow session for %s: %v", waID, err)
		}
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, waID)
}
