package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"art-assistant-backend/internal/apierror"
	"art-assistant-backend/internal/caption"
	"art-assistant-backend/internal/imaging"
	"art-assistant-backend/internal/middleware"
	"art-assistant-backend/internal/models"
	"art-assistant-backend/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SearchHandler struct {
	captioner caption.Captioner
	searcher  search.Searcher
	log       logrus.FieldLogger
}

func NewSearchHandler(captioner caption.Captioner, searcher search.Searcher, log logrus.FieldLogger) *SearchHandler {
	return &SearchHandler{captioner: captioner, searcher: searcher, log: log}
}

// Search godoc
// @Summary     Find reference images by keyword or by example image
// @Description With "query" the keyword is searched directly. Otherwise "image"
// @Description (base64 or data URL) is captioned and the caption is searched.
// @Tags        search
// @Accept      json
// @Produce     json
// @Param       body body models.SearchRequest true "Keyword or image"
// @Success     200 {object} map[string]search.Image
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req models.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.log, bindingError(err))
		return
	}

	query, err := h.resolveQuery(c, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	images, err := h.searcher.Search(c.Request.Context(), query)
	if err != nil {
		respondError(c, h.log, apierror.Adapter("image search failed", err))
		return
	}

	response := make(map[string]search.Image, len(images))
	for i, img := range images {
		response[strconv.Itoa(i)] = img
	}
	c.JSON(http.StatusOK, response)
}

func (h *SearchHandler) resolveQuery(c *gin.Context, req models.SearchRequest) (string, error) {
	if req.Query != nil {
		query := strings.TrimSpace(*req.Query)
		if query == "" {
			return "", apierror.Validation("query must not be empty")
		}
		return query, nil
	}

	if strings.TrimSpace(req.Image) == "" {
		return "", apierror.Validation("either query or image is required")
	}

	raw, err := imaging.DecodeBase64(req.Image)
	if err != nil {
		return "", apierror.New(apierror.KindValidation, "image is not valid base64", err)
	}
	png, _, err := imaging.ToPNG(raw)
	if err != nil {
		return "", apierror.New(apierror.KindValidation, "image could not be decoded", err)
	}

	text, err := h.captioner.Caption(c.Request.Context(), png)
	if err != nil {
		message := "image captioning failed"
		if errors.Is(err, caption.ErrEmptyCaption) {
			message = "image captioning returned no text"
		}
		return "", apierror.Adapter(message, err)
	}

	middleware.Logger(c, h.log).WithField("caption", text).Debug("captioned search image")
	return text, nil
}
