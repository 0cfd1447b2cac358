// Package server exposes the calculator catalogue and the session budgets
// over a JSON HTTP API.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/iwvelando/build-estimator/internal/budget"
	"github.com/iwvelando/build-estimator/internal/catalog"
	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/output"
	"github.com/iwvelando/build-estimator/pkg/validation"
	"go.uber.org/zap"
)

const maxSessionIDLength = 128

type handler struct {
	logger      *zap.Logger
	catalog     *catalog.Catalog
	sessions    *budget.Sessions
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator and budget API.
func NewHandler(logger *zap.Logger, c *catalog.Catalog, sessions *budget.Sessions, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		catalog:     c,
		sessions:    sessions,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", h.handleVersion)

	// Calculator catalogue
	mux.HandleFunc("GET /api/calculators", h.handleListCalculators)
	mux.HandleFunc("GET /api/calculators/{name}", h.handleDescribeCalculator)
	mux.HandleFunc("POST /api/calculators/{name}", h.handleRunCalculator)
	mux.HandleFunc("GET /api/prices", h.handlePrices)

	// Session budget
	mux.HandleFunc("GET /api/budget", h.handleGetBudget)
	mux.HandleFunc("DELETE /api/budget", h.handleClearBudget)
	mux.HandleFunc("POST /api/budget/items", h.handleAddItem)
	mux.HandleFunc("DELETE /api/budget/items/{id}", h.handleRemoveItem)
	mux.HandleFunc("GET /api/budget/export", h.handleExportBudget)

	return mux
}

type runRequest struct {
	Inputs      map[string]interface{} `json:"inputs"`
	AddToBudget bool                   `json:"addToBudget"`
}

type runResponse struct {
	Outcome catalog.Outcome  `json:"outcome"`
	Budget  *budget.Snapshot `json:"budget,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Field string `json:"field,omitempty"`
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleListCalculators(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"calculators": h.catalog.Calculators(),
	})
}

func (h *handler) handleDescribeCalculator(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	calc, ok := h.catalog.Lookup(name)
	if !ok {
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("%v: %s", catalog.ErrUnknownCalculator, name), "server.handleDescribeCalculator")
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

func (h *handler) handlePrices(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"prices": h.catalog.Prices(),
	})
}

func (h *handler) handleRunCalculator(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRunCalculator"

	var req runRequest
	if !h.decodeBody(w, r, &req, op) {
		return
	}

	in := make(catalog.Input, len(req.Inputs))
	for key, value := range req.Inputs {
		in[key] = coerceText(value)
	}

	outcome, err := h.catalog.Run(r.PathValue("name"), in)
	if err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	resp := runResponse{Outcome: outcome}
	if req.AddToBudget && len(outcome.Items) > 0 {
		var snapshot budget.Snapshot
		err := h.sessions.Update(r.Context(), sessionID(r), func(store *budget.Store) error {
			for _, item := range outcome.Items {
				store.Add(item)
			}
			snapshot = store.Snapshot()
			return nil
		})
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
			return
		}
		resp.Budget = &snapshot
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshot(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleGetBudget")
		return
	}
	h.writeJSON(w, http.StatusOK, snapshot)
}

func (h *handler) handleClearBudget(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Forget(r.Context(), sessionID(r)); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleClearBudget")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddItem"

	var item budget.Item
	if !h.decodeBody(w, r, &item, op) {
		return
	}
	if err := budget.ValidateItem(item); err != nil {
		h.respondCalcError(w, err, op)
		return
	}

	var added budget.Item
	err := h.sessions.Update(r.Context(), sessionID(r), func(store *budget.Store) error {
		added = store.Add(item)
		return nil
	})
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusCreated, added)
}

func (h *handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemoveItem"

	id := r.PathValue("id")
	errMissing := errors.New("budget item not found")
	err := h.sessions.Update(r.Context(), sessionID(r), func(store *budget.Store) error {
		if !store.Remove(id) {
			return errMissing
		}
		return nil
	})
	switch {
	case errors.Is(err, errMissing):
		h.respondErrorWithOp(w, http.StatusNotFound, fmt.Sprintf("%v: %s", errMissing, id), op)
	case err != nil:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *handler) handleExportBudget(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportBudget"

	exportFormat := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if exportFormat == "" {
		exportFormat = constants.OutputFormatCSV
	}
	if err := validation.ValidateExportFormat(exportFormat); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	snapshot, err := h.snapshot(r)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}

	var buf bytes.Buffer
	if err := output.ExportBudget(&buf, exportFormat, snapshot); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to export budget: %v", err), op)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if exportFormat == constants.OutputFormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"budget.%s\"", exportFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write export",
			zap.String("op", op),
			zap.Error(err),
		)
	}
}

func (h *handler) snapshot(r *http.Request) (budget.Snapshot, error) {
	var snapshot budget.Snapshot
	err := h.sessions.View(r.Context(), sessionID(r), func(store *budget.Store) error {
		snapshot = store.Snapshot()
		return nil
	})
	return snapshot, err
}

// decodeBody decodes a JSON body into dst, writing the error response itself
// and returning false on failure.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		case errors.Is(err, io.EOF):
			h.respondErrorWithOp(w, http.StatusBadRequest, "request body is empty", op)
		default:
			h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		}
		return false
	}
	return true
}

// respondCalcError maps calculator errors to statuses: validation failures
// are 400 and unknown calculators 404.
func (h *handler) respondCalcError(w http.ResponseWriter, err error, op string) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		h.logger.Debug("request rejected",
			zap.String("op", op),
			zap.String("error", err.Error()),
		)
		h.writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: err.Error(),
			Kind:  string(vErr.Kind),
			Field: vErr.Field,
		})
	case errors.Is(err, catalog.ErrUnknownCalculator):
		h.respondErrorWithOp(w, http.StatusNotFound, err.Error(), op)
	default:
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
	}
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes payload before committing the status, so a payload that
// cannot be encoded becomes a 500 instead of an empty success.
func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Error("failed to encode JSON response",
			zap.Int("status", status),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// sessionID returns the budget session of a request, falling back to the
// shared default session.
func sessionID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(constants.SessionHeader))
	if id == "" {
		return constants.DefaultSessionID
	}
	if len(id) > maxSessionIDLength {
		id = id[:maxSessionIDLength]
	}
	return id
}

// coerceText turns a JSON input value into the text a calculator field expects.
func coerceText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
