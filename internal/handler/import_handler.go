package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-admin-api/internal/dto"
	"github.com/noah-isme/training-admin-api/internal/models"
	appErrors "github.com/noah-isme/training-admin-api/pkg/errors"
	"github.com/noah-isme/training-admin-api/pkg/response"
	"github.com/noah-isme/training-admin-api/pkg/spreadsheet"
)

const uploadField = "file"

type importService interface {
	Preview(ctx context.Context, table spreadsheet.Table) (*models.ImportPreview, error)
	Import(ctx context.Context, table spreadsheet.Table) (*models.ImportReport, error)
	ResolveDuplicates(ctx context.Context, decisions []models.DuplicateDecision) (*models.ResolutionReport, error)
}

// ImportHandler accepts trainee spreadsheets.
type ImportHandler struct {
	imports  importService
	maxBytes int64
}

// NewImportHandler constructs the handler. maxBytes caps the request body.
func NewImportHandler(imports importService, maxBytes int64) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	return &ImportHandler{imports: imports, maxBytes: maxBytes}
}

// Preview godoc
// @Summary Validate and classify a trainee spreadsheet without writing
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX with a header row"
// @Success 200 {object} response.Envelope
// @Router /imports/trainees/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	table, err := h.readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	preview, err := h.imports.Preview(c.Request.Context(), table)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

// Import godoc
// @Summary Import trainees from a spreadsheet
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX with a header row"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope "meta.report carries rows processed before the failure"
// @Router /imports/trainees [post]
func (h *ImportHandler) Import(c *gin.Context) {
	table, err := h.readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.imports.Import(c.Request.Context(), table)
	if err != nil {
		if report != nil {
			response.ErrorWithMeta(c, err, map[string]interface{}{"report": report})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil, map[string]interface{}{
		"created":    len(report.Created),
		"failed":     len(report.Failed),
		"duplicates": len(report.Duplicates),
		"rejected":   report.Rejected,
	})
}

// ResolveDuplicates godoc
// @Summary Apply update or skip decisions to reported duplicates
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body dto.DuplicateDecisionsRequest true "Decisions"
// @Success 200 {object} response.Envelope
// @Router /imports/trainees/duplicates [post]
func (h *ImportHandler) ResolveDuplicates(c *gin.Context) {
	var req dto.DuplicateDecisionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "decisions are required"))
		return
	}
	report, err := h.imports.ResolveDuplicates(c.Request.Context(), req.Decisions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

func (h *ImportHandler) readUpload(c *gin.Context) (spreadsheet.Table, error) {
	if h.imports == nil {
		return spreadsheet.Table{}, appErrors.ErrInternal
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return spreadsheet.Table{}, appErrors.ErrPayloadTooBig
		}
		return spreadsheet.Table{}, appErrors.Clone(appErrors.ErrValidation, "a spreadsheet file is required")
	}
	file, err := header.Open()
	if err != nil {
		return spreadsheet.Table{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "open upload")
	}
	defer file.Close() //nolint:errcheck
	return spreadsheet.Read(header.Filename, file)
}
