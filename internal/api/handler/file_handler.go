package handler

import (
	"fmt"
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/api/middleware"
	"hr-comparator/internal/service"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FileHandler struct {
	service service.FileService
}

func NewFileHandler(svc service.FileService) *FileHandler {
	return &FileHandler{service: svc}
}

// readUpload loads the multipart "file" field and the accompanying form
// values.
func readUpload(c *gin.Context) (service.Upload, dto.UploadForm, error) {
	var form dto.UploadForm
	if err := c.ShouldBind(&form); err != nil {
		return service.Upload{}, form, err
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return service.Upload{}, form, fmt.Errorf("file is required: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return service.Upload{}, form, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return service.Upload{}, form, fmt.Errorf("read upload: %w", err)
	}
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, form, nil
}

func (h *FileHandler) UploadResume(c *gin.Context) {
	up, form, err := readUpload(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.UploadResume(c.Request.Context(), actorFrom(c), up, form.Source)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FileHandler) UploadJD(c *gin.Context) {
	up, form, err := readUpload(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.UploadJD(c.Request.Context(), actorFrom(c), up, form.JDID, form.Designation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FileHandler) UpdateJD(c *gin.Context) {
	up, form, err := readUpload(c)
	if err != nil {
		respondBindError(c, err)
		return
	}

	resp, err := h.service.UpdateJDFile(c.Request.Context(), actorFrom(c), c.Param("id"), up, form.Designation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *FileHandler) DownloadResume(c *gin.Context) {
	dl, err := h.service.DownloadResume(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, dl)
}

func (h *FileHandler) DownloadJD(c *gin.Context) {
	dl, err := h.service.DownloadJD(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendFile(c, dl)
}

func sendFile(c *gin.Context, dl *service.Download) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dl.Filename))
	c.Data(http.StatusOK, dl.ContentType, dl.Data)
}

func (h *FileHandler) UserStats(c *gin.Context) {
	stats, err := h.service.UserStats(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *FileHandler) StorageStats(c *gin.Context) {
	stats, err := h.service.StorageStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, "", stats)
}
