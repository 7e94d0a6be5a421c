package rawdata

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

// --------------------------------------------------
// Load files into raw tables
// --------------------------------------------------
func (h *Handler) LoadFile(c *gin.Context) {
	assetClass := c.Param("name")
	fileName := c.Param("file")

	table, err := h.service.LoadFile(c.Request.Context(), assetClass, fileName, verifiedParam(c))
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrDuplicateHeader),
			errors.Is(err, ErrPrimaryKeyMissing),
			errors.Is(err, ErrBadColumnName):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"table": table})
}

func (h *Handler) LoadAssetClass(c *gin.Context) {
	assetClass := c.Param("name")

	loaded, failed, err := h.service.LoadAssetClass(c.Request.Context(), assetClass, verifiedParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loaded": loaded,
		"failed": failed,
	})
}

// --------------------------------------------------
// Raw table reads
// --------------------------------------------------
func (h *Handler) ListTables(c *gin.Context) {
	tables, err := h.service.ListTables(c.Request.Context(), verifiedParam(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *Handler) GetTable(c *gin.Context) {
	table, err := h.service.GetTable(c.Request.Context(), c.Param("table"), verifiedParam(c))
	if err != nil {
		if errors.Is(err, ErrTableNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": table.RowMaps()})
}

func (h *Handler) DeleteTable(c *gin.Context) {
	if err := h.service.DeleteTable(c.Request.Context(), c.Param("table"), verifiedParam(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// Record CRUD
// --------------------------------------------------
func (h *Handler) GetRecord(c *gin.Context) {
	projectID := c.Query("project_id")
	sample := c.Query("sample")
	if projectID == "" || sample == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and sample are required"})
		return
	}

	record, err := h.service.GetRecord(
		c.Request.Context(),
		c.Param("table"),
		verifiedParam(c),
		projectID,
		sample,
	)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) AddRecord(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}

	err := h.service.AddRecord(c.Request.Context(), c.Param("table"), verifiedParam(c), rec)
	if err != nil {
		if errors.Is(err, ErrRecordExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	rec, ok := bindRecord(c)
	if !ok {
		return
	}

	err := h.service.UpdateRecord(c.Request.Context(), c.Param("table"), verifiedParam(c), rec)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	projectID := c.Query("project_id")
	sample := c.Query("sample")
	if projectID == "" || sample == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and sample are required"})
		return
	}

	err := h.service.DeleteRecord(
		c.Request.Context(),
		c.Param("table"),
		verifiedParam(c),
		projectID,
		sample,
	)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func bindRecord(c *gin.Context) (*Record, bool) {
	var rec Record
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return nil, false
	}
	if rec.ProjectID == "" || rec.Sample == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "project_id and sample are required"})
		return nil, false
	}
	return &rec, true
}
