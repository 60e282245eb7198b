package zoho

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clinic-engage/internal/config"
)

// LeadSourceWhatsApp tags every lead created by the conversational flow.
const LeadSourceWhatsApp = "WhatsApp Lead-to-Appointment Flow"

// ISTZone matches the +05:30 offsets Zoho stamps on Created_Time for
// the India org; date criteria must use the same offset.
var ISTZone = time.FixedZone("IST", 5*60*60+30*60)

// Lead status progression for flow-created leads.
const (
	StatusPending       = "PENDING"
	StatusCallInitiated = "CALL_INITIATED"
	StatusNoCallback    = "NO_CALLBACK"
)

// Client wraps the Zoho CRM v2.1 REST API.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	tokens     *tokenManager
	apiBase    string
}

func NewClient(cfg *config.Config) *Client {
	hc := &http.Client{Timeout: 30 * time.Second}
	return &Client{
		cfg:        cfg,
		httpClient: hc,
		tokens:     newTokenManager(cfg, hc),
		apiBase:    cfg.ZohoAPIBase,
	}
}

// SetBaseURL overrides the CRM API base, used in tests.
func (c *Client) SetBaseURL(u string) { c.apiBase = u }

// SetTokenURL overrides the OAuth token endpoint, used in tests.
func (c *Client) SetTokenURL(u string) { c.cfg.ZohoTokenURL = u }

func isExpiredTokenBody(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "invalid_token") || strings.Contains(lower, "invalid oauth token")
}

// doRequest performs an authenticated CRM call. A 401 whose body names
// an invalid token triggers exactly one token refresh and retry.
func (c *Client) doRequest(method, path string, payload []byte) (int, []byte, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := c.tokens.AccessToken()
		if err != nil {
			return 0, nil, err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequest(method, c.apiBase+path, body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("zoho request failed: %w", err)
		}
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 && isExpiredTokenBody(respBody) {
			c.tokens.Invalidate()
			continue
		}
		return resp.StatusCode, respBody, nil
	}
	return 0, nil, fmt.Errorf("zoho request retry exhausted")
}

// LeadInput carries the appointment details captured by the flow.
type LeadInput struct {
	FirstName     string
	LastName      string
	Phone         string
	City          string
	Clinic        string
	PreferredDate string
	PreferredTime string
	LeadStatus    string
	DroppedAt     string
}

// BuildDescription formats appointment details the way dashboards and
// the statistics parser expect them.
func BuildDescription(city, clinic, preferredDate, preferredTime string) string {
	parts := []string{
		"City: " + city,
		"Clinic: " + clinic,
		"Preferred Date: " + preferredDate,
		"Preferred Time: " + preferredTime,
	}
	return strings.Join(parts, " | ")
}

// ParseDescription reverses BuildDescription. Unknown segments are ignored.
func ParseDescription(desc string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(desc, " | ") {
		kv := strings.SplitN(part, ": ", 2)
		if len(kv) != 2 {
			continue
		}
		out[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return out
}

// Record is one Zoho CRM lead record.
type Record struct {
	ID          string `json:"id"`
	FirstName   string `json:"First_Name"`
	LastName    string `json:"Last_Name"`
	Phone       string `json:"Phone"`
	Mobile      string `json:"Mobile"`
	City        string `json:"City"`
	LeadSource  string `json:"Lead_Source"`
	LeadStatus  string `json:"Lead_Status"`
	Company     string `json:"Company"`
	Description string `json:"Description"`
	CreatedTime string `json:"Created_Time"`
}

type recordList struct {
	Data []Record `json:"data"`
	Info struct {
		MoreRecords bool `json:"more_records"`
		Count       int  `json:"count"`
	} `json:"info"`
}

type mutationResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
	} `json:"data"`
}

// CreateLead creates a lead in Zoho and returns its record ID.
func (c *Client) CreateLead(in LeadInput) (string, error) {
	status := in.LeadStatus
	if status == "" {
		status = StatusPending
	}

	desc := BuildDescription(in.City, in.Clinic, in.PreferredDate, in.PreferredTime)
	if in.DroppedAt != "" {
		desc += " | Dropped At: " + in.DroppedAt
	}

	record := map[string]any{
		"First_Name":  in.FirstName,
		"Phone":       in.Phone,
		"Mobile":      in.Phone,
		"City":        in.City,
		"Lead_Source": LeadSourceWhatsApp,
		"Lead_Status": status,
		"Company":     in.FirstName,
		"Description": desc,
	}
	if in.LastName != "" {
		record["Last_Name"] = in.LastName
	} else {
		// Zoho requires Last_Name; reuse the first name.
		record["Last_Name"] = in.FirstName
	}

	payload, err := json.Marshal(map[string]any{
		"data":    []any{record},
		"trigger": []string{"approval", "workflow", "blueprint"},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal lead: %w", err)
	}

	status2, body, err := c.doRequest(http.MethodPost, "/Leads", payload)
	if err != nil {
		return "", err
	}
	if status2 >= 400 {
		return "", fmt.Errorf("zoho create lead returned %d: %s", status2, string(body))
	}

	var mr mutationResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return "", fmt.Errorf("failed to parse create lead response: %w", err)
	}
	if len(mr.Data) == 0 || mr.Data[0].Details.ID == "" {
		return "", fmt.Errorf("zoho create lead gave no record id: %s", string(body))
	}
	return mr.Data[0].Details.ID, nil
}

// UpdateLeadStatus moves a lead to a new Lead_Status.
func (c *Client) UpdateLeadStatus(leadID, leadStatus string) error {
	payload, err := json.Marshal(map[string]any{
		"data": []any{map[string]any{"id": leadID, "Lead_Status": leadStatus}},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal update: %w", err)
	}

	status, body, err := c.doRequest(http.MethodPut, "/Leads", payload)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("zoho update lead returned %d: %s", status, string(body))
	}
	return nil
}

// GetLeadByID fetches a single lead record.
func (c *Client) GetLeadByID(leadID string) (*Record, error) {
	status, body, err := c.doRequest(http.MethodGet, "/Leads/"+leadID, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, fmt.Errorf("lead %s not found", leadID)
	}
	if status >= 400 {
		return nil, fmt.Errorf("zoho get lead returned %d: %s", status, string(body))
	}

	var rl recordList
	if err := json.Unmarshal(body, &rl); err != nil {
		return nil, fmt.Errorf("failed to parse lead response: %w", err)
	}
	if len(rl.Data) == 0 {
		return nil, fmt.Errorf("lead %s not found", leadID)
	}
	return &rl.Data[0], nil
}

// SearchOptions narrows a flow-lead search. Zero values mean no filter,
// first page, 200 records.
type SearchOptions struct {
	Status  string
	From    time.Time
	To      time.Time
	Page    int
	PerPage int
}

// SearchLeads fetches one page of flow leads matching the options.
func (c *Client) SearchLeads(opts SearchOptions) ([]Record, bool, error) {
	conds := []string{fmt.Sprintf("(Lead_Source:equals:%s)", LeadSourceWhatsApp)}
	if opts.Status != "" {
		conds = append(conds, fmt.Sprintf("(Lead_Status:equals:%s)", opts.Status))
	}
	if !opts.From.IsZero() {
		conds = append(conds, fmt.Sprintf("(Created_Time:greater_equal:%s)",
			opts.From.In(ISTZone).Format(time.RFC3339)))
	}
	if !opts.To.IsZero() {
		conds = append(conds, fmt.Sprintf("(Created_Time:less_equal:%s)",
			opts.To.In(ISTZone).Format(time.RFC3339)))
	}
	criteria := conds[0]
	if len(conds) > 1 {
		criteria = "(" + strings.Join(conds, "and") + ")"
	}
	page := opts.Page
	if page < 1 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage < 1 || perPage > 200 {
		perPage = 200
	}

	path := fmt.Sprintf("/Leads/search?criteria=%s&page=%d&per_page=%d&sort_by=Created_Time&sort_order=desc",
		url.QueryEscape(criteria), page, perPage)
	status, body, err := c.doRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNoContent {
		return nil, false, nil
	}
	if status >= 400 {
		return nil, false, fmt.Errorf("zoho search leads returned %d: %s", status, string(body))
	}

	var rl recordList
	if err := json.Unmarshal(body, &rl); err != nil {
		return nil, false, fmt.Errorf("failed to parse leads page %d: %w", page, err)
	}
	return rl.Data, rl.Info.MoreRecords, nil
}

// GetWhatsAppLeads pages through every lead created by the flow inside
// an optional Created_Time range. Zero times mean unbounded.
func (c *Client) GetWhatsAppLeads(from, to time.Time) ([]Record, error) {
	var all []Record
	for page := 1; ; page++ {
		records, more, err := c.SearchLeads(SearchOptions{From: from, To: to, Page: page})
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
		if !more {
			break
		}
	}
	return all, nil
}

// Statistics summarises WhatsApp leads by status, city and day.
type Statistics struct {
	TotalLeads        int            `json:"total_leads"`
	ByStatus          map[string]int `json:"by_status"`
	ByCity            map[string]int `json:"by_city"`
	Daily             map[string]int `json:"daily"`
	Q5Events          int            `json:"q5_events"`
	TerminationEvents int            `json:"termination_events"`
	PendingLeads      int            `json:"pending_leads"`
}

// GetStatistics fetches flow leads and tallies them. A positive days
// value restricts the fetch to leads created in that window, filtered
// server-side via a Created_Time criteria in IST.
func (c *Client) GetStatistics(days int) (*Statistics, error) {
	var from time.Time
	if days > 0 {
		from = time.Now().In(ISTZone).AddDate(0, 0, -days)
	}
	leads, err := c.GetWhatsAppLeads(from, time.Time{})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		ByStatus: make(map[string]int),
		ByCity:   make(map[string]int),
		Daily:    make(map[string]int),
	}
	for _, l := range leads {
		stats.TotalLeads++
		status := l.LeadStatus
		if status == "" {
			status = "UNKNOWN"
		}
		stats.ByStatus[status]++

		city := l.City
		if city == "" {
			city = ParseDescription(l.Description)["City"]
		}
		if city == "" {
			city = "Unknown"
		}
		stats.ByCity[city]++

		if t, err := time.Parse(time.RFC3339, l.CreatedTime); err == nil {
			stats.Daily[t.Format("2006-01-02")]++
		}

		switch status {
		case StatusCallInitiated:
			stats.Q5Events++
		case StatusNoCallback:
			stats.TerminationEvents++
		case StatusPending:
			stats.PendingLeads++
		}
	}
	return stats, nil
}
