package flow

import (
	"fmt"
	"strings"
	"time"
)

// Clinic is one selectable branch inside a city.
type Clinic struct {
	ID   string
	Name string
}

// cityOrder keeps the list presentation stable.
var cityOrder = []string{"mumbai", "delhi", "bangalore", "hyderabad", "chennai", "pune"}

var cityNames = map[string]string{
	"mumbai":    "Mumbai",
	"delhi":     "Delhi NCR",
	"bangalore": "Bangalore",
	"hyderabad": "Hyderabad",
	"chennai":   "Chennai",
	"pune":      "Pune",
}

var clinicsByCity = map[string][]Clinic{
	"mumbai": {
		{ID: "clinic_mumbai_andheri", Name: "Andheri West"},
		{ID: "clinic_mumbai_bandra", Name: "Bandra"},
		{ID: "clinic_mumbai_powai", Name: "Powai"},
	},
	"delhi": {
		{ID: "clinic_delhi_saket", Name: "Saket"},
		{ID: "clinic_delhi_rajouri", Name: "Rajouri Garden"},
		{ID: "clinic_delhi_gurgaon", Name: "Gurgaon Sector 14"},
		{ID: "clinic_delhi_noida", Name: "Noida Sector 18"},
	},
	"bangalore": {
		{ID: "clinic_bangalore_indiranagar", Name: "Indiranagar"},
		{ID: "clinic_bangalore_koramangala", Name: "Koramangala"},
		{ID: "clinic_bangalore_whitefield", Name: "Whitefield"},
	},
	"hyderabad": {
		{ID: "clinic_hyderabad_banjara", Name: "Banjara Hills"},
		{ID: "clinic_hyderabad_kukatpally", Name: "Kukatpally"},
	},
	"chennai": {
		{ID: "clinic_chennai_anna_nagar", Name: "Anna Nagar"},
		{ID: "clinic_chennai_adyar", Name: "Adyar"},
	},
	"pune": {
		{ID: "clinic_pune_koregaon", Name: "Koregaon Park"},
		{ID: "clinic_pune_baner", Name: "Baner"},
	},
}

// CityRows builds the interactive list rows for city selection.
func CityRows() []cityRow {
	rows := make([]cityRow, 0, len(cityOrder))
	for _, key := range cityOrder {
		rows = append(rows, cityRow{ID: "city_" + key, Title: cityNames[key]})
	}
	return rows
}

type cityRow struct {
	ID    string
	Title string
}

// CityFromReplyID resolves a city_* reply ID, second return false when unknown.
func CityFromReplyID(id string) (string, bool) {
	key := strings.TrimPrefix(id, "city_")
	name, ok := cityNames[key]
	return name, ok
}

// ClinicsForCityID returns the clinics for a city_* reply ID.
func ClinicsForCityID(id string) []Clinic {
	key := strings.TrimPrefix(id, "city_")
	return clinicsByCity[key]
}

// ClinicNameFromReplyID resolves a clinic_* reply ID to its display name.
func ClinicNameFromReplyID(id string) (string, bool) {
	for _, clinics := range clinicsByCity {
		for _, c := range clinics {
			if c.ID == id {
				return c.Name, true
			}
		}
	}
	return "", false
}

// WeekOption is one selectable week range.
type WeekOption struct {
	ID    string
	Label string
	Start time.Time
	End   time.Time
}

// WeekOptions returns the next three Monday-to-Sunday ranges starting
// from the week containing now.
func WeekOptions(now time.Time) []WeekOption {
	// back up to Monday of the current week
	offset := (int(now.Weekday()) + 6) % 7
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -offset)

	opts := make([]WeekOption, 0, 3)
	for i := 0; i < 3; i++ {
		start := monday.AddDate(0, 0, 7*i)
		end := start.AddDate(0, 0, 6)
		opts = append(opts, WeekOption{
			ID:    fmt.Sprintf("week_%s_%s", start.Format("2006_01_02"), end.Format("2006_01_02")),
			Label: fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2")),
			Start: start,
			End:   end,
		})
	}
	return opts
}

// ParseWeekReplyID extracts the start and end dates from a week_* reply ID.
func ParseWeekReplyID(id string) (start, end string, ok bool) {
	if !strings.HasPrefix(id, "week_") {
		return "", "", false
	}
	parts := strings.Split(strings.TrimPrefix(id, "week_"), "_")
	if len(parts) != 6 {
		return "", "", false
	}
	start = fmt.Sprintf("%s-%s-%s", parts[0], parts[1], parts[2])
	end = fmt.Sprintf("%s-%s-%s", parts[3], parts[4], parts[5])
	if _, err := time.Parse("2006-01-02", start); err != nil {
		return "", "", false
	}
	if _, err := time.Parse("2006-01-02", end); err != nil {
		return "", "", false
	}
	return start, end, true
}

// Slot labels shown on the slot picker buttons.
var slotLabels = map[string]string{
	"slot_morning":   "Morning (9-11 AM)",
	"slot_afternoon": "Afternoon (12-4 PM)",
	"slot_evening":   "Evening (5-7 PM)",
}

// SlotLabel resolves a slot_* reply ID to its display label.
func SlotLabel(id string) (string, bool) {
	label, ok := slotLabels[id]
	return label, ok
}

// timesBySlot lists the concrete hours offered inside each slot.
var timesBySlot = map[string][]string{
	"slot_morning":   {"9 AM", "10 AM", "11 AM"},
	"slot_afternoon": {"12 PM", "1 PM", "2 PM", "3 PM", "4 PM"},
	"slot_evening":   {"5 PM", "6 PM", "7 PM"},
}

// TimeRows builds the time picker rows for a chosen slot.
func TimeRows(slotID string) []cityRow {
	hours := timesBySlot[slotID]
	rows := make([]cityRow, 0, len(hours))
	for _, h := range hours {
		id := "time_" + strings.ToLower(strings.ReplaceAll(h, " ", "_"))
		rows = append(rows, cityRow{ID: id, Title: h})
	}
	return rows
}

// TimeFromReplyID turns a time_* reply ID back into its label, e.g.
// time_9_am into "9 AM".
func TimeFromReplyID(id string) (string, bool) {
	if !strings.HasPrefix(id, "time_") {
		return "", false
	}
	raw := strings.TrimPrefix(id, "time_")
	parts := strings.Split(raw, "_")
	if len(parts) != 2 {
		return "", false
	}
	return parts[0] + " " + strings.ToUpper(parts[1]), true
}
