package prod

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bni27/ogp-db-api/internal/rawdata"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetData(c *gin.Context) {
	rows, err := h.service.GetData(c.Request.Context(), c.Query("asset_class"))
	if err != nil {
		if errors.Is(err, rawdata.ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "production table has not been built yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(rows),
		"rows":  rows,
	})
}

func (h *Handler) Update(c *gin.Context) {
	result, err := h.service.Update(c.Request.Context())
	if err != nil {
		if errors.Is(err, ErrNoStageTables) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
