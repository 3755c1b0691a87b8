package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/parsing"
)

// ParsingService is the slice of the parsing service the HTTP layer uses.
type ParsingService interface {
	Trigger(ctx context.Context, ownerID uuid.UUID) (uuid.UUID, error)
	Status(ctx context.Context, jobID, callerID uuid.UUID) (parsing.StatusView, error)
}

type ParseHandler struct {
	svc ParsingService
	log *zap.Logger
}

func NewParseHandler(svc ParsingService, log *zap.Logger) *ParseHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ParseHandler{svc: svc, log: log}
}

// Trigger starts a parsing job for the caller's uploaded resume and
// returns immediately with the job id to poll.
func (h *ParseHandler) Trigger(c *gin.Context) {
	ownerID, ok := OwnerID(c)
	if !ok {
		unauthorized(c, "missing authenticated owner")
		return
	}

	jobID, err := h.svc.Trigger(c.Request.Context(), ownerID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
		"status": "pending",
	})
}

// Status reports the state of one parsing job to its owner.
func (h *ParseHandler) Status(c *gin.Context) {
	ownerID, ok := OwnerID(c)
	if !ok {
		unauthorized(c, "missing authenticated owner")
		return
	}
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// a malformed id is as unknowable as a missing one
		c.JSON(http.StatusNotFound, gin.H{
			"error":   common.CodeNotFound,
			"message": "parsing job not found",
		})
		return
	}

	view, err := h.svc.Status(c.Request.Context(), jobID, ownerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ParseHandler) writeError(c *gin.Context, err error) {
	code := common.CodeOf(err)
	status := httpStatus(code)
	if status >= http.StatusInternalServerError {
		h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		// do not leak internals on 5xx
		c.JSON(status, gin.H{"error": code, "message": "internal server error"})
		return
	}

	message := err.Error()
	var ae *common.AppError
	if errors.As(err, &ae) {
		message = ae.Message
	}
	c.JSON(status, gin.H{"error": code, "message": message})
}

func httpStatus(code string) int {
	switch code {
	case common.CodeUnauthorized:
		return http.StatusUnauthorized
	case common.CodeNotFound:
		return http.StatusNotFound
	case common.CodeNoResumeFound, common.CodeInvalidReference:
		return http.StatusBadRequest
	case common.CodeAlreadyInProgress:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
