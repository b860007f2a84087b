package httpserver

import (
	"net/http"
	"time"

	salessvc "postro/internal/service/saleslog"
	"github.com/gin-gonic/gin"
)

func recentSalesHandler(svc *salessvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		sales, err := svc.Recent(c.Request.Context(), intQuery(c, "limit", 50))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, sales)
	}
}

func topProductsHandler(svc *salessvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		top, err := svc.TopProducts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, top)
	}
}

func salesStatsHandler(svc *salessvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		total, err := svc.TotalCount(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"totalSales": total})
	}
}

func querySalesHandler(svc *salessvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var from, to time.Time
		if raw := c.Query("from"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
				return
			}
			from = t
		}
		if raw := c.Query("to"); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
				return
			}
			to = t
		}

		sales, err := svc.Query(
			c.Request.Context(),
			c.Query("productId"),
			c.Query("category"),
			from, to,
			intQuery(c, "limit", 50),
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, sales)
	}
}
