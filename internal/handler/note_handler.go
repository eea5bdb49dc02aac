package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"notes-service/internal/middleware"
	"notes-service/internal/model"
	"notes-service/internal/store"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NoteRequest defines the structure for note creation/update requests
type NoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNote creates a note owned by the caller and the caller's tenant. The
// free-plan quota is enforced atomically inside the store, so concurrent
// creations cannot push a tenant past the cap.
func (h *Handler) CreateNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("create")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse note creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	note := model.Note{
		Title:    req.Title,
		Content:  req.Content,
		UserID:   claims.UserID,
		TenantID: claims.TenantID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	err := h.store.CreateNote(c.Request().Context(), &note, h.cfg.Quota.FreeNoteLimit)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrQuotaExceeded):
			log.Info("Note creation rejected by quota",
				zap.Uint("tenant_id", claims.TenantID),
				zap.Int("limit", h.cfg.Quota.FreeNoteLimit))
			prometheus.QuotaRejectionCounter.Inc()
			return c.JSON(http.StatusForbidden, echo.Map{"error": "Note limit reached. Upgrade to Pro for unlimited notes."})
		case errors.Is(err, store.ErrNotFound):
			log.Warn("Tenant in token no longer exists", zap.Uint("tenant_id", claims.TenantID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		default:
			log.Error("Failed to create note", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
		}
	}

	log.Info("Note created",
		zap.Uint("note_id", note.ID),
		zap.Uint("tenant_id", note.TenantID),
		zap.Uint("user_id", note.UserID))
	return c.JSON(http.StatusCreated, note)
}

// ListNotes returns the caller tenant's notes, most recently updated first.
func (h *Handler) ListNotes(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("list")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	notes, err := h.store.ListNotes(c.Request().Context(), claims.TenantID)
	if err != nil {
		log.Error("Failed to list notes", zap.Uint("tenant_id", claims.TenantID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, notes)
}

// GetNote returns a single note if it belongs to the caller's tenant. A note
// from another tenant responds 404, identical to a note that does not exist.
func (h *Handler) GetNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("get")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	noteID, err := parseNoteID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	note, err := h.store.GetNote(c.Request().Context(), claims.TenantID, noteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to get note", zap.Uint("note_id", noteID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	return c.JSON(http.StatusOK, note)
}

// UpdateNote replaces a note's title and content within the caller's tenant
// and bumps its updated timestamp.
func (h *Handler) UpdateNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("update")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req NoteRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Failed to parse note update request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	noteID, err := parseNoteID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid note id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	note, err := h.store.UpdateNote(c.Request().Context(), claims.TenantID, noteID, req.Title, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to update note", zap.Uint("note_id", noteID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("Note updated", zap.Uint("note_id", note.ID), zap.Uint("tenant_id", note.TenantID))
	return c.JSON(http.StatusOK, note)
}

// DeleteNote removes a note within the caller's tenant. Deleting frees quota
// implicitly: the gate always recounts live notes on the next creation.
func (h *Handler) DeleteNote(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordNoteOperation("delete")

	claims := middleware.ClaimsFromContext(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	noteID, err := parseNoteID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := h.store.DeleteNote(c.Request().Context(), claims.TenantID, noteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "note not found"})
		}
		log.Error("Failed to delete note", zap.Uint("note_id", noteID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	log.Info("Note deleted", zap.Uint("note_id", noteID), zap.Uint("tenant_id", claims.TenantID))
	return c.JSON(http.StatusOK, echo.Map{"message": "Note deleted successfully"})
}

func parseNoteID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
