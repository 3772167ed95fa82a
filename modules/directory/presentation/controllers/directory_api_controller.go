package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/organisation"
	"github.com/connectedplaces/directory/modules/directory/domain/aggregates/service"
	"github.com/connectedplaces/directory/modules/directory/domain/entities/taxonomy"
	"github.com/connectedplaces/directory/modules/directory/infrastructure/persistence"
	"github.com/connectedplaces/directory/modules/directory/services"
	"github.com/connectedplaces/directory/pkg/application"
	"github.com/connectedplaces/directory/pkg/configuration"
	"github.com/connectedplaces/directory/pkg/httpapi"
)

type DirectoryAPIController struct {
	app       application.Application
	directory *services.DirectoryService
	basePath  string
}

func NewDirectoryAPIController(app application.Application) application.Controller {
	return &DirectoryAPIController{
		app:       app,
		directory: app.Service(services.DirectoryService{}).(*services.DirectoryService),
		basePath:  "/directory/api",
	}
}

func (c *DirectoryAPIController) Key() string {
	return c.basePath
}

func (c *DirectoryAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/organisations", c.ListOrganisations).Methods(http.MethodGet)
	router.HandleFunc("/organisations/{id}", c.GetOrganisation).Methods(http.MethodGet)
	router.HandleFunc("/services", c.ListServices).Methods(http.MethodGet)
	router.HandleFunc("/services/{id}", c.GetService).Methods(http.MethodGet)
	router.HandleFunc("/services/{id}/opening-times", c.OpeningTimes).Methods(http.MethodGet)
	router.HandleFunc("/taxonomies/{tree}", c.Taxonomy).Methods(http.MethodGet)
}

func (c *DirectoryAPIController) ListOrganisations(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	items, err := c.directory.ListOrganisations(r.Context(), &organisation.FindParams{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (c *DirectoryAPIController) GetOrganisation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	org, err := c.directory.GetOrganisation(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, org)
}

func (c *DirectoryAPIController) ListServices(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	params := &service.FindParams{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	}
	if v := r.URL.Query().Get("organisation_id"); v != "" {
		orgID, err := uuid.Parse(v)
		if err != nil {
			_ = httpapi.WriteError(w, http.StatusBadRequest, "DIRECTORY_INVALID_ID", "invalid organisation id", nil)
			return
		}
		params.OrganisationID = &orgID
	}
	items, err := c.directory.ListServices(r.Context(), params)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (c *DirectoryAPIController) GetService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	svc, err := c.directory.GetService(r.Context(), id)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, svc)
}

func (c *DirectoryAPIController) OpeningTimes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	times, err := c.directory.OpeningTimesFor(r.Context(), id, time.Now())
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": times})
}

func (c *DirectoryAPIController) Taxonomy(w http.ResponseWriter, r *http.Request) {
	tree := taxonomy.Tree(mux.Vars(r)["tree"])
	switch tree {
	case taxonomy.TreeCategory, taxonomy.TreeOrganisation, taxonomy.TreeServiceEligibility:
	default:
		_ = httpapi.WriteError(w, http.StatusNotFound, "DIRECTORY_UNKNOWN_TREE", "unknown taxonomy tree", nil)
		return
	}
	items, err := c.directory.Taxonomy(r.Context(), tree)
	if err != nil {
		writeDirectoryError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "DIRECTORY_INVALID_ID", "invalid id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) (int, int) {
	conf := configuration.Use()
	limit := conf.PageSize
	offset := 0
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= conf.MaxPageSize {
			limit = parsed
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func writeDirectoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, persistence.ErrOrganisationNotFound),
		errors.Is(err, persistence.ErrServiceNotFound),
		errors.Is(err, persistence.ErrServiceLocationNotFound),
		errors.Is(err, persistence.ErrLocationNotFound),
		errors.Is(err, persistence.ErrTaxonomyNotFound):
		_ = httpapi.WriteError(w, http.StatusNotFound, "DIRECTORY_NOT_FOUND", err.Error(), nil)
	default:
		_ = httpapi.WriteError(w, http.StatusInternalServerError, "DIRECTORY_INTERNAL", "internal error", nil)
	}
}
