package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"customer-service/internal/models"

	"github.com/gorilla/mux"
)

// CreateCustomer handles customer registration requests
// POST /v1/customers
func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	// Validate content-type
	contentType := r.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "application/json") {
		h.writeErrorResponse(w, r, http.StatusUnsupportedMediaType, models.ErrorCodeBadRequest, "Content-Type must be application/json")
		return
	}

	// Parse request body
	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return
	}

	// Create customer
	customer, err := h.service.CreateCustomer(r.Context(), &req)
	if err != nil {
		h.writeServiceErrorResponse(w, r, err)
		return
	}

	slog.Info("Customer created",
		"customer_id", customer.ID,
		"correlation_id", CorrelationIDFromRequest(r))

	h.writeJSONResponse(w, http.StatusCreated, customer)
}

// GetCustomer handles customer retrieval requests
// GET /v1/customers/{customer_id}
func (h *Handlers) GetCustomer(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID := vars["customer_id"]

	customer, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.writeServiceErrorResponse(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, customer)
}

// ListCustomers handles paginated customer listing requests
// GET /v1/customers?page=&limit=&email=
func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request) {
	req := &models.ListCustomersRequest{
		Email: r.URL.Query().Get("email"),
	}

	// Parse paging parameters. Unparseable or out-of-range values fall back
	// to the defaults instead of erroring, and the service clamps the rest.
	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if parsed, err := strconv.Atoi(pageParam); err == nil {
			req.Page = parsed
		}
	}

	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		if parsed, err := strconv.Atoi(limitParam); err == nil {
			req.Limit = parsed
		}
	}

	response, err := h.service.ListCustomers(r.Context(), req)
	if err != nil {
		h.writeServiceErrorResponse(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}
