package zenoti

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"clinic-engage/internal/config"
)

// Client wraps the Zenoti v1 API, authenticated with an "apikey" header.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client
	baseURL    string
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    cfg.ZenotiBaseURL,
	}
}

// SetBaseURL overrides the API base, used in tests.
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

func (c *Client) get(path string) (int, []byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "apikey "+c.cfg.ZenotiAPIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("zenoti request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, body, nil
}

// Guest is a Zenoti guest record, trimmed to the fields we read.
type Guest struct {
	ID           string `json:"id"`
	CenterID     string `json:"center_id"`
	PersonalInfo struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
		Mobile    struct {
			Number string `json:"number"`
		} `json:"mobile_phone"`
	} `json:"personal_info"`
	AddressInfo map[string]any `json:"address_info"`
}

type guestSearchResponse struct {
	Guests []Guest `json:"guests"`
}

// SearchGuestByPhone finds guests matching a phone number.
func (c *Client) SearchGuestByPhone(phone string) ([]Guest, error) {
	status, body, err := c.get("/guests/search?phone=" + url.QueryEscape(phone))
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("zenoti guest search returned %d: %s", status, string(body))
	}

	var out guestSearchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse guest search response: %w", err)
	}
	return out.Guests, nil
}

// GuestAddressByPhone returns the address of the first guest matching a
// phone number.
func (c *Client) GuestAddressByPhone(phone string) (map[string]any, error) {
	guests, err := c.SearchGuestByPhone(phone)
	if err != nil {
		return nil, err
	}
	if len(guests) == 0 {
		return nil, fmt.Errorf("no guest found for %s", phone)
	}
	return guests[0].AddressInfo, nil
}

// GuestAppointments lists a guest's appointments as raw JSON.
func (c *Client) GuestAppointments(guestID string) (json.RawMessage, error) {
	return c.passthrough("/guests/" + url.PathEscape(guestID) + "/appointments")
}

// CenterSales returns a center's sales report as raw JSON.
func (c *Client) CenterSales(centerID, startDate, endDate string) (json.RawMessage, error) {
	path := fmt.Sprintf("/centers/%s/sales?start_date=%s&end_date=%s",
		url.PathEscape(centerID), url.QueryEscape(startDate), url.QueryEscape(endDate))
	return c.passthrough(path)
}

// CenterCollections returns a center's collections report as raw JSON.
func (c *Client) CenterCollections(centerID, startDate, endDate string) (json.RawMessage, error) {
	path := fmt.Sprintf("/centers/%s/collections?start_date=%s&end_date=%s",
		url.PathEscape(centerID), url.QueryEscape(startDate), url.QueryEscape(endDate))
	return c.passthrough(path)
}

func (c *Client) passthrough(path string) (json.RawMessage, error) {
	status, body, err := c.get(path)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("zenoti returned %d: %s", status, string(body))
	}
	return json.RawMessage(body), nil
}
