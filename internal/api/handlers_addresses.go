package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"customer-service/internal/models"

	"github.com/gorilla/mux"
)

// AddAddress handles address creation requests
// POST /v1/customers/{customer_id}/addresses
func (h *Handlers) AddAddress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID := vars["customer_id"]

	// Validate content-type
	contentType := r.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "application/json") {
		h.writeErrorResponse(w, r, http.StatusUnsupportedMediaType, models.ErrorCodeBadRequest, "Content-Type must be application/json")
		return
	}

	// Parse request body
	var req models.CreateAddressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, models.ErrorCodeBadRequest, "Invalid JSON body")
		return
	}

	// Append the address
	address, err := h.service.AddAddress(r.Context(), customerID, &req)
	if err != nil {
		h.writeServiceErrorResponse(w, r, err)
		return
	}

	slog.Info("Address added",
		"customer_id", customerID,
		"address_id", address.ID,
		"correlation_id", CorrelationIDFromRequest(r))

	h.writeJSONResponse(w, http.StatusCreated, address)
}

// ListAddresses handles address listing requests for one customer
// GET /v1/customers/{customer_id}/addresses
func (h *Handlers) ListAddresses(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	customerID := vars["customer_id"]

	addresses, err := h.service.ListAddresses(r.Context(), customerID)
	if err != nil {
		h.writeServiceErrorResponse(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, addresses)
}

// GetAddress handles cross-customer address lookups
// GET /v1/addresses/{address_id}
func (h *Handlers) GetAddress(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	addressID := vars["address_id"]

	address, err := h.service.GetAddress(r.Context(), addressID)
	if err != nil {
		h.writeServiceErrorResponse(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, address)
}
