package httpserver

import (
	"errors"
	"net/http"

	"postro/internal/domain"
	productsvc "postro/internal/service/product"
	"github.com/gin-gonic/gin"
)

type productView struct {
	domain.Product
	StockLevel string `json:"stockLevel"`
}

func toProductView(p domain.Product) productView {
	return productView{Product: p, StockLevel: domain.StockLevel(p.Stock)}
}

func listProductsHandler(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(
			c.Request.Context(),
			c.Query("search"),
			c.Query("category"),
			c.Query("subcategory"),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		views := make([]productView, 0, len(products))
		for _, p := range products {
			views = append(views, toProductView(p))
		}
		c.JSON(http.StatusOK, views)
	}
}

func getProductHandler(svc *productsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, toProductView(*product))
	}
}
