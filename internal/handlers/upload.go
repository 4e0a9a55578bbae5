package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"art-assistant-backend/internal/apierror"
	"art-assistant-backend/internal/imaging"
	"art-assistant-backend/internal/middleware"
	"art-assistant-backend/internal/webui"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Generator runs a generation and owns the files it produces.
type Generator interface {
	Generate(ctx context.Context, req webui.GenerationRequest) ([]string, error)
	Discard(names []string)
}

type UploadHandler struct {
	generator Generator
	log       logrus.FieldLogger
	maxMemory int64
}

func NewUploadHandler(generator Generator, log logrus.FieldLogger, maxUploadMB int64) *UploadHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 32
	}
	return &UploadHandler{generator: generator, log: log, maxMemory: maxUploadMB << 20}
}

// Upload godoc
// @Summary     Generate images from a prompt and optional ControlNet inputs
// @Description Numbered pairs image{N}/option{N} are read from N=0 and stop at
// @Description the first missing half. canvasImage and canvasMask together
// @Description switch to inpainting. Files are deleted once the response is sent.
// @Tags        upload
// @Accept      multipart/form-data
// @Produce     json
// @Param       text formData string true "Prompt"
// @Param       image0 formData file false "Control image"
// @Param       option0 formData string false "Control module, e.g. canny"
// @Param       weight0 formData number false "Control weight"
// @Param       canvasImage formData file false "Inpaint canvas"
// @Param       canvasMask formData file false "Inpaint mask"
// @Param       keepAspectRatio formData bool false "Resize without stretching"
// @Success     200 {object} map[string]string
// @Failure     400 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(h.maxMemory); err != nil {
		respondError(c, h.log, apierror.New(apierror.KindValidation, "failed to parse multipart form", err))
		return
	}
	form := c.Request.MultipartForm
	defer form.RemoveAll()

	req, err := buildGenerationRequest(form)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	names, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, generationError(err))
		return
	}
	defer h.generator.Discard(names)

	response := make(map[string]string, len(names))
	for i, name := range names {
		response[strconv.Itoa(i)] = name
	}

	middleware.Logger(c, h.log).WithFields(logrus.Fields{
		"units":  len(req.Units),
		"images": len(names),
	}).Debug("generation response ready")

	c.JSON(http.StatusOK, response)
	c.Writer.Flush()
}

func generationError(err error) error {
	switch {
	case errors.Is(err, webui.ErrUnknownModule):
		return apierror.New(apierror.KindValidation, err.Error(), err)
	case errors.Is(err, webui.ErrBusy):
		return apierror.New(apierror.KindUnavailable, "generation backbone is busy", err)
	default:
		return apierror.Adapter("image generation failed", err)
	}
}

// buildGenerationRequest reads the prompt, the control units and the
// optional inpainting inputs from form.
func buildGenerationRequest(form *multipart.Form) (webui.GenerationRequest, error) {
	req := webui.GenerationRequest{Params: webui.DefaultParams()}

	req.Prompt = strings.TrimSpace(formValue(form, "text"))
	if req.Prompt == "" {
		return req, apierror.Validation("text is required")
	}

	units, err := ControlUnits(form)
	if err != nil {
		return req, err
	}
	req.Units = units

	if raw := formValue(form, "keepAspectRatio"); raw != "" {
		keep, err := strconv.ParseBool(raw)
		if err != nil {
			return req, apierror.Validation("keepAspectRatio must be true or false")
		}
		req.KeepAspectRatio = keep
	}

	canvas, err := formImage(form, "canvasImage")
	if err != nil {
		return req, err
	}
	mask, err := formImage(form, "canvasMask")
	if err != nil {
		return req, err
	}
	if canvas != nil && mask != nil {
		req.InpaintImage = canvas
		req.InpaintMask = mask
	}

	return req, nil
}

// ControlUnits scans image{N}/option{N} pairs from N=0 upwards and stops at
// the first index where either half is missing. Later pairs are ignored even
// if present.
func ControlUnits(form *multipart.Form) ([]webui.ControlUnit, error) {
	units := make([]webui.ControlUnit, 0)
	for idx := 0; ; idx++ {
		imageKey := fmt.Sprintf("image%d", idx)
		module := strings.TrimSpace(formValue(form, fmt.Sprintf("option%d", idx)))
		if module == "" || len(form.File[imageKey]) == 0 {
			break
		}

		if _, err := webui.ModelFor(module); err != nil {
			return nil, apierror.New(apierror.KindValidation,
				fmt.Sprintf("option%d: unknown control module %q", idx, module), err)
		}

		data, err := formImage(form, imageKey)
		if err != nil {
			return nil, err
		}

		weight := 1.0
		if raw := formValue(form, fmt.Sprintf("weight%d", idx)); raw != "" {
			weight, err = strconv.ParseFloat(raw, 64)
			if err != nil || weight <= 0 || weight > 2 {
				return nil, apierror.Validation(fmt.Sprintf("weight%d must be a number in (0, 2]", idx))
			}
		}

		units = append(units, webui.ControlUnit{Image: data, Module: module, Weight: weight})
	}
	return units, nil
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// formImage reads the first file under key and re-encodes it as PNG. It
// returns nil when the key is absent.
func formImage(form *multipart.Form, key string) ([]byte, error) {
	files := form.File[key]
	if len(files) == 0 {
		return nil, nil
	}

	src, err := files[0].Open()
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, key+": failed to open file", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, key+": failed to read file", err)
	}

	png, _, err := imaging.ToPNG(data)
	if err != nil {
		return nil, apierror.New(apierror.KindValidation, key+": not a supported image", err)
	}
	return png, nil
}
