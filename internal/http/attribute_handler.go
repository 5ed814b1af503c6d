package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/campus-portal/internal/application"
)

type attributeService interface {
	GetAttributes(ctx context.Context, principal application.Principal, entityType, entityID string) (map[string]string, error)
	SetAttributes(ctx context.Context, principal application.Principal, entityType, entityID string, values map[string]string) (map[string]string, error)
}

// AttributeHandler serves the free-form attribute bags attached to entities.
type AttributeHandler struct {
	service   attributeService
	responder responder
	logger    *slog.Logger
}

func NewAttributeHandler(service attributeService, logger *slog.Logger) *AttributeHandler {
	base := defaultLogger(logger)
	return &AttributeHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AttributeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AttributeHandler", operation, attrs...)
}

func (h *AttributeHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entityType, entityID := pathParam(r, "entityType"), pathParam(r, "entityId")
	principal, _ := PrincipalFromContext(r.Context())

	values, err := h.service.GetAttributes(r.Context(), principal, entityType, entityID)
	if err != nil {
		h.log(r.Context(), "Get", "entity_type", entityType, "entity_id", entityID).ErrorContext(r.Context(), "attribute lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, attributesResponse{
		EntityType: entityType,
		EntityID:   entityID,
		Attributes: nonNilAttributes(values),
	})
}

func (h *AttributeHandler) Set(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entityType, entityID := pathParam(r, "entityType"), pathParam(r, "entityId")
	principal, _ := PrincipalFromContext(r.Context())

	var req attributesRequest
	if err := decodeJSON(r, &req); err != nil {
		h.log(r.Context(), "Set", "principal_id", principal.UserID, "entity_type", entityType, "entity_id", entityID, "error_kind", requestErrorKind(err)).ErrorContext(r.Context(), "failed to decode attributes", "error", err)
		h.responder.writeRequestValidation(r.Context(), w, err)
		return
	}

	logger := h.log(r.Context(), "Set", "principal_id", principal.UserID, "entity_type", entityType, "entity_id", entityID, "attribute_count", len(req.Attributes))
	values, err := h.service.SetAttributes(r.Context(), principal, entityType, entityID, req.Attributes)
	if err != nil {
		logger.ErrorContext(r.Context(), "attribute update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "attributes updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, attributesResponse{
		EntityType: entityType,
		EntityID:   entityID,
		Attributes: nonNilAttributes(values),
	})
}

type attributesRequest struct {
	Attributes map[string]string `json:"attributes" validate:"required"`
}

type attributesResponse struct {
	EntityType string            `json:"entity_type"`
	EntityID   string            `json:"entity_id"`
	Attributes map[string]string `json:"attributes"`
}

func nonNilAttributes(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}
