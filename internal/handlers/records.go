package handlers

import (
	"net/http"

	"art-assistant-backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RecordsHandler serves insert and list for search and generation history
// and saved images.
type RecordsHandler struct {
	store Store
	log   logrus.FieldLogger
}

func NewRecordsHandler(store Store, log logrus.FieldLogger) *RecordsHandler {
	return &RecordsHandler{store: store, log: log}
}

// bindJSON binds the body into req, writing a 400 on failure.
func (h *RecordsHandler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, h.log, bindingError(err))
		return false
	}
	return true
}

func (h *RecordsHandler) created(c *gin.Context, record interface{}, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *RecordsHandler) listed(c *gin.Context, records interface{}, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// InsertSearchImage godoc
// @Summary     Record an image used as a search input
// @Tags        search_image
// @Accept      json
// @Produce     json
// @Param       body body models.InsertSearchImageRequest true "Search image"
// @Success     201 {object} models.SearchImage
// @Failure     400 {object} models.ErrorResponse
// @Router      /search_image/insert [post]
func (h *RecordsHandler) InsertSearchImage(c *gin.Context) {
	var req models.InsertSearchImageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.store.CreateSearchImage(c.Request.Context(), *req.UserID, req.FilePath)
	h.created(c, record, err)
}

func (h *RecordsHandler) ListSearchImages(c *gin.Context) {
	records, err := h.store.ListSearchImages(c.Request.Context())
	h.listed(c, records, err)
}

func (h *RecordsHandler) InsertSearchText(c *gin.Context) {
	var req models.InsertSearchTextRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.store.CreateSearchText(c.Request.Context(), *req.SearchImageID, req.Query)
	h.created(c, record, err)
}

func (h *RecordsHandler) ListSearchTexts(c *gin.Context) {
	records, err := h.store.ListSearchTexts(c.Request.Context())
	h.listed(c, records, err)
}

func (h *RecordsHandler) InsertGenerateImage(c *gin.Context) {
	var req models.InsertGenerateImageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.store.CreateGenerateImage(c.Request.Context(), *req.UserID, req.FilePath)
	h.created(c, record, err)
}

func (h *RecordsHandler) ListGenerateImages(c *gin.Context) {
	records, err := h.store.ListGenerateImages(c.Request.Context())
	h.listed(c, records, err)
}

// ListGenerateImagesByUser godoc
// @Summary     List generated images of one user
// @Tags        generate_image
// @Accept      json
// @Produce     json
// @Param       body body models.UserScopedRequest true "User"
// @Success     200 {array} models.GenerateImage
// @Router      /generate_image/get/user [post]
func (h *RecordsHandler) ListGenerateImagesByUser(c *gin.Context) {
	var req models.UserScopedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	records, err := h.store.ListGenerateImagesByUser(c.Request.Context(), *req.UserID)
	h.listed(c, records, err)
}

func (h *RecordsHandler) InsertGenerateText(c *gin.Context) {
	var req models.InsertGenerateTextRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.store.CreateGenerateText(c.Request.Context(), *req.GenerateImageID, req.Query)
	h.created(c, record, err)
}

func (h *RecordsHandler) ListGenerateTexts(c *gin.Context) {
	records, err := h.store.ListGenerateTexts(c.Request.Context())
	h.listed(c, records, err)
}

func (h *RecordsHandler) InsertSavedImage(c *gin.Context) {
	var req models.InsertSavedImageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	record, err := h.store.CreateSavedImage(c.Request.Context(), *req.UserID, req.Path)
	h.created(c, record, err)
}

func (h *RecordsHandler) ListSavedImages(c *gin.Context) {
	records, err := h.store.ListSavedImages(c.Request.Context())
	h.listed(c, records, err)
}

func (h *RecordsHandler) ListSavedImagesByUser(c *gin.Context) {
	var req models.UserScopedRequest
	if !h.bindJSON(c, &req) {
		return
	}
	records, err := h.store.ListSavedImagesByUser(c.Request.Context(), *req.UserID)
	h.listed(c, records, err)
}
