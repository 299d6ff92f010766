package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	authdelivery "billmailer/internal/auth/delivery"
	authusecase "billmailer/internal/auth/usecase"
	batchdto "billmailer/internal/batch/dto"
	"billmailer/internal/batch/usecase"

	"github.com/gin-gonic/gin"
)

// maxArchiveSize caps uploads at 100 MB. A daily billing archive is a few
// hundred PDFs at most.
const maxArchiveSize = 100 << 20

type BatchHandler struct {
	batchUsecase usecase.BatchUsecase
	authUsecase  authusecase.AuthUsecase
}

// NewBatchHandler creates a new instance of BatchHandler
func NewBatchHandler(batchUsecase usecase.BatchUsecase, authUsecase authusecase.AuthUsecase) *BatchHandler {
	return &BatchHandler{
		batchUsecase: batchUsecase,
		authUsecase:  authUsecase,
	}
}

func (h *BatchHandler) actor(c *gin.Context) usecase.Actor {
	a := h.authUsecase.CurrentActor(authdelivery.CurrentUser(c))
	if !a.Authenticated {
		return usecase.Actor{}
	}
	return usecase.Actor{
		ID:    a.User.ID,
		Email: a.User.Email,
		Admin: a.IsAdmin,
	}
}

func (h *BatchHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "archive file is required"})
		return
	}
	if fileHeader.Size > maxArchiveSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "archive exceeds the upload limit"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read uploaded file"})
		return
	}

	resp, err := h.batchUsecase.Upload(c.Request.Context(), h.actor(c), data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, usecase.ErrBulkInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BatchHandler) Rows(c *gin.Context) {
	resp, err := h.batchUsecase.Rows(h.actor(c))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *BatchHandler) SetSelection(c *gin.Context) {
	var req batchdto.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.batchUsecase.SetSelection(h.actor(c), req.Keys); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "selection updated"})
}

func (h *BatchHandler) SetFilter(c *gin.Context) {
	var req batchdto.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.batchUsecase.SetFilter(h.actor(c), req.Status, req.Search); err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "filter updated"})
}

func (h *BatchHandler) RefreshContacts(c *gin.Context) {
	var req struct {
		AccountKeys []string `json:"account_keys"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.batchUsecase.RefreshContacts(h.actor(c), req.AccountKeys)
	c.JSON(http.StatusOK, gin.H{"message": "contacts refreshed"})
}

func (h *BatchHandler) SendRow(c *gin.Context) {
	var req batchdto.SendRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.batchUsecase.SendRow(c.Request.Context(), h.actor(c), req.RowKey)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

func (h *BatchHandler) SendAllPending(c *gin.Context) {
	h.bulk(c, h.batchUsecase.SendAllPending)
}

func (h *BatchHandler) SendSelected(c *gin.Context) {
	h.bulk(c, h.batchUsecase.SendSelected)
}

func (h *BatchHandler) RetryFailed(c *gin.Context) {
	result, err := h.batchUsecase.RetryFailed(c.Request.Context(), h.actor(c))
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BatchHandler) bulk(c *gin.Context, run func(ctx context.Context, actor usecase.Actor, skipAlreadySent bool) (*batchdto.BulkResult, error)) {
	var req batchdto.BulkSendRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	skip := true
	if req.SkipAlreadySent != nil {
		skip = *req.SkipAlreadySent
	}

	result, err := run(c.Request.Context(), h.actor(c), skip)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *BatchHandler) RowPDF(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key query parameter is required"})
		return
	}

	filename, data, err := h.batchUsecase.RowPDF(h.actor(c), key)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Data(http.StatusOK, "application/pdf", data)
}

func (h *BatchHandler) SendLog(c *gin.Context) {
	limit := 200
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	entries, err := h.batchUsecase.SendLog(h.actor(c), c.Query("archive"), limit)
	if err != nil {
		h.sessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *BatchHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNoSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrBulkInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}
