package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"clinic-engage/internal/models"
	"clinic-engage/internal/shopify"
)

// CatalogHandler manages categories and products, syncing prices to Shopify.
type CatalogHandler struct {
	db      *gorm.DB
	shopify *shopify.Client
}

func NewCatalogHandler(db *gorm.DB, shopifyClient *shopify.Client) *CatalogHandler {
	return &CatalogHandler{db: db, shopify: shopifyClient}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.db.Order("name").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var category models.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var products []models.Product
	q := h.db.Order("name")
	if categoryID := c.Query("category_id"); categoryID != "" {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

type priceRequest struct {
	Price string `json:"price" binding:"required"`
}

// UpdatePrice changes a product's price and pushes it to the linked
// Shopify variant when one is configured.
func (h *CatalogHandler) UpdatePrice(c *gin.Context) {
	var product models.Product
	if err := h.db.First(&product, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req priceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
		return
	}

	if product.ShopifyVariantID != "" {
		variantID, err := strconv.ParseInt(product.ShopifyVariantID, 10, 64)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Product has a malformed variant id"})
			return
		}
		if err := h.shopify.UpdateVariantPrice(variantID, price); err != nil {
			log.Printf("Shopify price sync failed for product %s: %v", product.ID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to sync price to Shopify"})
			return
		}
	}

	p, _ := price.Float64()
	if err := h.db.Model(&product).Update("price", p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update price"})
		return
	}
	c.JSON(http.StatusOK, product)
}
