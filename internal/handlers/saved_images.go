package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"art-assistant-backend/internal/apierror"
	"art-assistant-backend/internal/imaging"
	"art-assistant-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImageStore keeps saved images in object storage.
type ImageStore interface {
	UploadSavedImage(userID int64, data []byte, contentType string) (path string, publicURL string, err error)
	DeleteFile(path string) error
}

type SavedImageUploadHandler struct {
	images    ImageStore
	store     Store
	log       logrus.FieldLogger
	maxMemory int64
}

// NewSavedImageUploadHandler builds the handler. images may be nil, in which
// case uploads answer 503.
func NewSavedImageUploadHandler(images ImageStore, store Store, log logrus.FieldLogger, maxUploadMB int64) *SavedImageUploadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &SavedImageUploadHandler{images: images, store: store, log: log, maxMemory: maxUploadMB << 20}
}

// Upload godoc
// @Summary     Store an image for a user and record it as saved
// @Tags        saved_image
// @Accept      multipart/form-data
// @Produce     json
// @Param       user_id formData int true "Owner"
// @Param       image formData file true "Image"
// @Success     201 {object} models.SavedImage
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /saved_image/upload [post]
func (h *SavedImageUploadHandler) Upload(c *gin.Context) {
	if h.images == nil {
		respondError(c, h.log, apierror.Unavailable("image storage is not configured"))
		return
	}

	if err := c.Request.ParseMultipartForm(h.maxMemory); err != nil {
		respondError(c, h.log, apierror.New(apierror.KindValidation, "failed to parse multipart form", err))
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	userID, err := strconv.ParseInt(strings.TrimSpace(formValue(form, "user_id")), 10, 64)
	if err != nil {
		respondError(c, h.log, apierror.Validation("user_id must be an integer"))
		return
	}
	if authID, ok := middleware.CurrentUserID(c); ok && authID != userID {
		respondError(c, h.log, apierror.Unauthorized("user_id does not match the token"))
		return
	}

	files := form.File["image"]
	if len(files) == 0 {
		respondError(c, h.log, apierror.Validation("image is required"))
		return
	}
	src, err := files[0].Open()
	if err != nil {
		respondError(c, h.log, apierror.New(apierror.KindValidation, "failed to open image", err))
		return
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		respondError(c, h.log, apierror.New(apierror.KindValidation, "failed to read image", err))
		return
	}

	// Stored as PNG regardless of the uploaded format.
	png, _, err := imaging.ToPNG(data)
	if err != nil {
		respondError(c, h.log, apierror.New(apierror.KindValidation, "image is not a supported format", err))
		return
	}

	path, publicURL, err := h.images.UploadSavedImage(userID, png, "image/png")
	if err != nil {
		respondError(c, h.log, apierror.Adapter("failed to store image", err))
		return
	}

	record, err := h.store.CreateSavedImage(c.Request.Context(), userID, publicURL)
	if err != nil {
		if delErr := h.images.DeleteFile(path); delErr != nil {
			middleware.Logger(c, h.log).WithError(delErr).WithField("path", path).Warn("failed to remove orphaned saved image")
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}
