package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	leadsapi "github.com/phbpx/leads-api"
	"go.uber.org/zap"
)

type LeadHandler struct {
	service *leadsapi.Service
	log     *zap.SugaredLogger
}

func NewLeadHandler(service *leadsapi.Service, log *zap.SugaredLogger) *LeadHandler {
	return &LeadHandler{
		service: service,
		log:     log,
	}
}

type registerRequest struct {
	Name     string   `json:"name" validate:"required"`
	Email    string   `json:"email" validate:"required"`
	Mobile   string   `json:"mobile" validate:"required"`
	Postcode string   `json:"postcode" validate:"required"`
	Services []string `json:"services" validate:"required"`
}

// Register handles the public lead registration form.
func (lh LeadHandler) Register(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := decode(r, &req); err != nil {
		lh.log.Errorw("Register", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	// Unknown service strings fail here, before the service layer.
	services := make([]leadsapi.ServiceType, 0, len(req.Services))
	for _, raw := range req.Services {
		serviceType, err := leadsapi.ParseServiceType(raw)
		if err != nil {
			lh.log.Errorw("Register", "error", err.Error())
			respondErr(ctx, rw, http.StatusBadRequest, err)
			return
		}
		services = append(services, serviceType)
	}

	lead, err := lh.service.CreateLead(ctx, leadsapi.CreateLeadInput{
		Name:     req.Name,
		Email:    req.Email,
		Mobile:   req.Mobile,
		Postcode: req.Postcode,
		Services: services,
	})
	if err != nil {
		lh.log.Errorw("Register", "error", err.Error())

		var validationErr *leadsapi.ValidationError
		var duplicateErr *leadsapi.DuplicateEmailError
		switch {
		case errors.As(err, &validationErr):
			respondErr(ctx, rw, http.StatusBadRequest, err)
		case errors.As(err, &duplicateErr):
			respondErr(ctx, rw, http.StatusConflict, err)
		default:
			respondErr(ctx, rw, http.StatusInternalServerError, err)
		}
		return
	}

	respond(ctx, rw, http.StatusCreated, lead)
}

// List returns one page of leads for the admin dashboard. Query parameters
// pass through to the service unmodified once parsed.
func (lh LeadHandler) List(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	opts, err := listOptions(r)
	if err != nil {
		lh.log.Errorw("List", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, err)
		return
	}

	leads, err := lh.service.GetLeads(ctx, opts)
	if err != nil {
		lh.log.Errorw("List", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, err)
		return
	}

	respond(ctx, rw, http.StatusOK, leads)
}

// GetByID returns a single lead with its services.
func (lh LeadHandler) GetByID(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		lh.log.Errorw("GetByID", "error", err.Error())
		respondErr(ctx, rw, http.StatusBadRequest, errors.New("ID is not in its proper form"))
		return
	}

	lead, err := lh.service.GetLeadByID(ctx, id.String())
	if err != nil {
		lh.log.Errorw("GetByID", "error", err.Error())

		var notFoundErr *leadsapi.NotFoundError
		switch {
		case errors.As(err, &notFoundErr):
			respondErr(ctx, rw, http.StatusNotFound, err)
		default:
			respondErr(ctx, rw, http.StatusInternalServerError, err)
		}
		return
	}

	respond(ctx, rw, http.StatusOK, lead)
}

// Count returns the total number of registered leads.
func (lh LeadHandler) Count(rw http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	count, err := lh.service.GetLeadCount(ctx)
	if err != nil {
		lh.log.Errorw("Count", "error", err.Error())
		respondErr(ctx, rw, http.StatusInternalServerError, err)
		return
	}

	respond(ctx, rw, http.StatusOK, map[string]int64{"count": count})
}

func listOptions(r *http.Request) (leadsapi.GetLeadsOptions, error) {
	var opts leadsapi.GetLeadsOptions
	query := r.URL.Query()

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return opts, errors.New("limit must be a positive integer")
		}
		opts.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return opts, errors.New("offset must be a non-negative integer")
		}
		opts.Offset = offset
	}

	switch orderBy := query.Get("orderBy"); orderBy {
	case "", leadsapi.OrderByCreatedAt, leadsapi.OrderByUpdatedAt, leadsapi.OrderByName, leadsapi.OrderByEmail:
		opts.OrderBy = orderBy
	default:
		return opts, errors.New("orderBy must be one of createdAt, updatedAt, name, email")
	}

	switch direction := query.Get("orderDirection"); direction {
	case "", leadsapi.OrderAsc, leadsapi.OrderDesc:
		opts.OrderDirection = direction
	default:
		return opts, errors.New("orderDirection must be asc or desc")
	}

	return opts, nil
}
