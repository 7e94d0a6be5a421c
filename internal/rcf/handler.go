package rcf

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
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

func (h *Handler) AvailableFields(c *gin.Context) {
	fields, err := h.service.AvailableFields(c.Request.Context(), c.Param("name"), verifiedParam(c))
	if err != nil {
		if errors.Is(err, ErrNotStaged) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_class": c.Param("name"),
		"fields":      fields,
	})
}

func (h *Handler) Curve(c *gin.Context) {
	numIntervals, err := strconv.Atoi(c.DefaultQuery("num_intervals", "20"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "num_intervals must be an integer"})
		return
	}

	curve, err := h.service.Curve(
		c.Request.Context(), c.Param("name"), c.Param("field"), numIntervals, verifiedParam(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotStaged), errors.Is(err, ErrUnknownField), errors.Is(err, ErrNoData):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrBadIntervals):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, curve)
}
