package staging

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/reference"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func verifiedParam(c *gin.Context) bool {
	verified, err := strconv.ParseBool(c.DefaultQuery("verified", "true"))
	if err != nil {
		return true
	}
	return verified
}

// --------------------------------------------------
// Stage rebuilds and reads
// --------------------------------------------------
func (h *Handler) Stage(c *gin.Context) {
	result, err := h.service.Stage(c.Request.Context(), c.Param("name"), verifiedParam(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNoRawTables):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, reference.ErrNoDeflators):
			c.JSON(http.StatusConflict, gin.H{
				"error": "reference tables are empty, update them before staging",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetData(c *gin.Context) {
	rows, err := h.service.GetData(c.Request.Context(), c.Param("name"), verifiedParam(c))
	if err != nil {
		if errors.Is(err, rawdata.ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "asset class has not been staged yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_class": c.Param("name"),
		"rows":        rows,
	})
}

func (h *Handler) GetRecord(c *gin.Context) {
	projectID := c.Query("project_id")
	sample := c.Query("sample")
	if projectID == "" || sample == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "project_id and sample query parameters are required",
		})
		return
	}

	record, err := h.service.GetRecord(
		c.Request.Context(), c.Param("name"), verifiedParam(c), projectID, sample)
	if err != nil {
		switch {
		case errors.Is(err, rawdata.ErrTableNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "asset class has not been staged yet"})
		case errors.Is(err, rawdata.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name"), verifiedParam(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "stage table successfully deleted"})
}
