package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/connectedplaces/directory/modules/moderation/domain/payload"
	"github.com/connectedplaces/directory/modules/moderation/domain/proposal"
	"github.com/connectedplaces/directory/modules/moderation/services"
	"github.com/connectedplaces/directory/pkg/application"
	"github.com/connectedplaces/directory/pkg/configuration"
	"github.com/connectedplaces/directory/pkg/httpapi"
	"github.com/connectedplaces/directory/pkg/serrors"
)

type ModerationAPIController struct {
	app        application.Application
	moderation *services.ModerationService
	basePath   string
}

func NewModerationAPIController(app application.Application) application.Controller {
	return &ModerationAPIController{
		app:        app,
		moderation: app.Service(services.ModerationService{}).(*services.ModerationService),
		basePath:   "/moderation/api",
	}
}

func (c *ModerationAPIController) Key() string {
	return c.basePath
}

func (c *ModerationAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/proposals", c.List).Methods(http.MethodGet)
	router.HandleFunc("/proposals", c.Submit).Methods(http.MethodPost)
	router.HandleFunc("/proposals/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/proposals/{id}/approve", c.Approve).Methods(http.MethodPost)
	router.HandleFunc("/proposals/{id}/reject", c.Reject).Methods(http.MethodPost)
}

type submitRequest struct {
	TargetType string          `json:"target_type"`
	TargetID   *uuid.UUID      `json:"target_id"`
	Payload    json.RawMessage `json:"payload"`
}

func (c *ModerationAPIController) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MODERATION_UNAUTHENTICATED", "missing or invalid actor", nil)
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MODERATION_INVALID_JSON", "invalid json", nil)
		return
	}
	doc := payload.Document{}
	if len(req.Payload) > 0 {
		parsed, err := payload.FromJSON(req.Payload)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "MODERATION_INVALID_PAYLOAD", "payload must be a JSON object", nil)
			return
		}
		doc = parsed
	}

	created, err := c.moderation.Submit(r.Context(), services.SubmitCommand{
		TargetType:  proposal.TargetType(req.TargetType),
		TargetID:    req.TargetID,
		SubmittedBy: &actor,
		Payload:     doc,
	})
	if err != nil {
		writeModerationError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, created)
}

func (c *ModerationAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MODERATION_INVALID_ID", "invalid proposal id", nil)
		return
	}
	p, err := c.moderation.GetByID(r.Context(), id)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, p)
}

func (c *ModerationAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	params := &proposal.FindParams{
		TargetType: proposal.TargetType(r.URL.Query().Get("target_type")),
		Status:     proposal.Status(r.URL.Query().Get("status")),
		Limit:      conf.PageSize,
	}
	if v := r.URL.Query().Get("target_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "MODERATION_INVALID_ID", "invalid target id", nil)
			return
		}
		params.TargetID = &id
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= conf.MaxPageSize {
			params.Limit = parsed
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}

	items, err := c.moderation.List(r.Context(), params)
	if err != nil {
		writeModerationError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

type actionRequest struct {
	Edit    bool   `json:"edit"`
	Message string `json:"message"`
}

func (c *ModerationAPIController) Approve(w http.ResponseWriter, r *http.Request) {
	id, actor, cmd, ok := c.decodeAction(w, r)
	if !ok {
		return
	}
	p, result, err := c.moderation.Approve(r.Context(), id, services.ActionCommand{
		ActionedBy: actor,
		Edit:       cmd.Edit,
	})
	if err != nil {
		writeModerationError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{
		"proposal": p,
		"result":   result,
	})
}

func (c *ModerationAPIController) Reject(w http.ResponseWriter, r *http.Request) {
	id, actor, cmd, ok := c.decodeAction(w, r)
	if !ok {
		return
	}
	p, err := c.moderation.Reject(r.Context(), id, services.ActionCommand{
		ActionedBy: actor,
		Message:    strings.TrimSpace(cmd.Message),
	})
	if err != nil {
		writeModerationError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, p)
}

func (c *ModerationAPIController) decodeAction(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, actionRequest, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "MODERATION_INVALID_ID", "invalid proposal id", nil)
		return uuid.Nil, uuid.Nil, actionRequest{}, false
	}
	actor, ok := actorID(r)
	if !ok {
		_ = httpapi.WriteError(w, http.StatusUnauthorized, "MODERATION_UNAUTHENTICATED", "missing or invalid actor", nil)
		return uuid.Nil, uuid.Nil, actionRequest{}, false
	}
	var cmd actionRequest
	if r.Body != nil {
		// An empty body is fine; approve needs no fields.
		_ = json.NewDecoder(r.Body).Decode(&cmd)
	}
	return id, actor, cmd, true
}

// actorID resolves the acting user from the authentication gateway's header.
func actorID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func writeModerationError(w http.ResponseWriter, err error) {
	var base *serrors.BaseError
	if errors.As(err, &base) {
		_ = httpapi.WriteError(w, statusForCode(base.Code), base.Code, base.Message, nil)
		return
	}
	_ = httpapi.WriteError(w, http.StatusInternalServerError, "MODERATION_INTERNAL", "internal error", nil)
}

func statusForCode(code string) int {
	switch code {
	case "MODERATION_PROPOSAL_NOT_FOUND", "MODERATION_NOT_FOUND":
		return http.StatusNotFound
	case "MODERATION_ALREADY_ACTIONED":
		return http.StatusConflict
	case "MODERATION_FORBIDDEN":
		return http.StatusForbidden
	case "MODERATION_VALIDATION", "MODERATION_MESSAGE_REQUIRED",
		"MODERATION_UNKNOWN_TARGET_TYPE", "MODERATION_TARGET_ID_REQUIRED":
		return http.StatusUnprocessableEntity
	case "MODERATION_APPLICATION":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
