package assetclass

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bni27/ogp-db-api/internal/auth"
	"github.com/bni27/ogp-db-api/internal/rawdata"
	"github.com/bni27/ogp-db-api/internal/storage"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func verifiedParam(c *gin.Context) bool {
	return c.DefaultQuery("verified", "true") == "true"
}

// --------------------------------------------------
// GET /data/assetClasses
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	verified := verifiedParam(c)

	infos, err := h.service.List(c.Request.Context(), verified)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list asset classes"})
		return
	}

	status := "unverified"
	if verified {
		status = "verified"
	}

	c.JSON(http.StatusOK, gin.H{
		"verification_status": status,
		"asset_classes":       infos,
	})
}

// --------------------------------------------------
// POST /data/assetClasses/:name
// --------------------------------------------------
func (h *Handler) Create(c *gin.Context) {
	class, err := h.service.Create(c.Request.Context(), c.Param("name"))
	if err != nil {
		switch {
		case errors.Is(err, ErrBadClassName):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, ErrClassExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create asset class"})
		}
		return
	}

	c.JSON(http.StatusCreated, class)
}

// --------------------------------------------------
// DELETE /data/assetClasses/:name
// --------------------------------------------------
func (h *Handler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		if errors.Is(err, ErrClassNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete asset class"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "asset class successfully deleted"})
}

// --------------------------------------------------
// GET /data/assetClasses/:name/files
// --------------------------------------------------
func (h *Handler) ListFiles(c *gin.Context) {
	name := c.Param("name")
	verified := verifiedParam(c)

	files, err := h.service.ListFiles(c.Request.Context(), name, verified)
	if err != nil {
		if errors.Is(err, ErrClassNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list files"})
		return
	}

	status := "unverified"
	if verified {
		status = "verified"
	}

	c.JSON(http.StatusOK, gin.H{
		"asset_class":         name,
		"verification_status": status,
		"file_names":          files,
	})
}

// --------------------------------------------------
// POST /data/assetClasses/:name/files
// --------------------------------------------------
func (h *Handler) UploadFile(c *gin.Context) {
	verified := verifiedParam(c)
	overwrite := c.DefaultQuery("overwrite", "false") == "true"

	// Writing into the verified area, or replacing an existing file,
	// is an admin action. Fresh unverified uploads only need EDITOR.
	required := auth.RoleEditor
	if verified || overwrite {
		required = auth.RoleAdmin
	}
	if !auth.HasPrivilege(c.GetString("userRole"), required) {
		c.JSON(http.StatusForbidden, gin.H{"error": "You lack sufficient privileges for this action."})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	url, err := h.service.UploadFile(c.Request.Context(), c.Param("name"), verified, overwrite, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrClassNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, ErrFileExists):
			c.JSON(http.StatusConflict, gin.H{"error": "file already exists, set the overwrite flag if you are sure you want to replace it"})
		case errors.Is(err, storage.ErrNotCSV):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "there was an error uploading the file"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "successfully uploaded " + file.Filename,
		"url":     url,
	})
}

// --------------------------------------------------
// GET /data/assetClasses/:name/files/:file
// --------------------------------------------------
func (h *Handler) DownloadFile(c *gin.Context) {
	fileName := c.Param("file")

	body, err := h.service.DownloadFile(c.Request.Context(), c.Param("name"), fileName, verifiedParam(c))
	if err != nil {
		if errors.Is(err, rawdata.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to download file"})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "text/csv", body, map[string]string{
		"Content-Disposition": `attachment; filename="` + fileName + `"`,
	})
}

// --------------------------------------------------
// DELETE /data/assetClasses/:name/files/:file
// --------------------------------------------------
func (h *Handler) DeleteFile(c *gin.Context) {
	err := h.service.DeleteFile(c.Request.Context(), c.Param("name"), c.Param("file"), verifiedParam(c))
	if err != nil {
		if errors.Is(err, rawdata.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
