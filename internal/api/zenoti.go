package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic-engage/internal/zenoti"
)

// ZenotiHandler proxies clinic-management lookups to Zenoti.
type ZenotiHandler struct {
	client *zenoti.Client
}

func NewZenotiHandler(client *zenoti.Client) *ZenotiHandler {
	return &ZenotiHandler{client: client}
}

// SearchGuest finds Zenoti guests by phone number.
func (h *ZenotiHandler) SearchGuest(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone query parameter is required"})
		return
	}

	guests, err := h.client.SearchGuestByPhone(phone)
	if err != nil {
		log.Printf("Zenoti guest search failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to search guests"})
		return
	}
	c.JSON(http.StatusOK, guests)
}

// GuestAddress returns the address of the first guest matching a phone.
func (h *ZenotiHandler) GuestAddress(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "phone query parameter is required"})
		return
	}

	address, err := h.client.GuestAddressByPhone(phone)
	if err != nil {
		log.Printf("Zenoti address lookup failed: %v", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "No guest found"})
		return
	}
	c.JSON(http.StatusOK, address)
}

// GuestAppointments lists a guest's Zenoti appointments.
func (h *ZenotiHandler) GuestAppointments(c *gin.Context) {
	raw, err := h.client.GuestAppointments(c.Param("guestId"))
	if err != nil {
		log.Printf("Zenoti appointments lookup failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch appointments"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// CenterSales returns a center's sales report.
func (h *ZenotiHandler) CenterSales(c *gin.Context) {
	raw, err := h.client.CenterSales(c.Param("centerId"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		log.Printf("Zenoti sales report failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch sales report"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

// CenterCollections returns a center's collections report.
func (h *ZenotiHandler) CenterCollections(c *gin.Context) {
	raw, err := h.client.CenterCollections(c.Param("centerId"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		log.Printf("Zenoti collections report failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch collections report"})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
