package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"

	"github.com/user/listing-harvester/internal/delivery/http/request"
	"github.com/user/listing-harvester/internal/delivery/http/response"
	"github.com/user/listing-harvester/internal/usecase"
)

type Handler struct {
	linkManager usecase.LinkManager
	harvester   usecase.Harvester
	exporter    usecase.Exporter

	harvestRunning atomic.Bool
}

func NewHandler(linkManager usecase.LinkManager, harvester usecase.Harvester, exporter usecase.Exporter) *Handler {
	return &Handler{
		linkManager: linkManager,
		harvester:   harvester,
		exporter:    exporter,
	}
}

func (h *Handler) HandleSubmitLink(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := url.ParseRequestURI(req.URL); err != nil {
		h.writeJSONError(w, "Invalid URL format", http.StatusBadRequest)
		return
	}

	linkID := h.linkManager.Add(r.Context(), req.URL, req.Domain, req.Keyword)

	resp := response.SubmitLinkResponse{
		Status:  "success",
		Message: "URL submitted for harvesting",
		LinkID:  linkID,
	}
	h.writeJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) HandleSubmitLinkBatch(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitLinkBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		h.writeJSONError(w, "urls is required", http.StatusBadRequest)
		return
	}

	submitted := h.linkManager.AddBatch(r.Context(), req.URLs, req.Domain, req.Keyword)

	h.writeJSON(w, http.StatusAccepted, response.SubmitLinkBatchResponse{
		Status:    "success",
		Submitted: submitted,
	})
}

func (h *Handler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.linkManager.Stats(r.Context())
	if err != nil {
		slog.Error("Failed to read stats", "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// HandleStartHarvest kicks off a queue drain in the background. Only one
// drain runs at a time; a second request while one is active gets a 409.
func (h *Handler) HandleStartHarvest(w http.ResponseWriter, r *http.Request) {
	var req request.HarvestRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if !h.harvestRunning.CompareAndSwap(false, true) {
		h.writeJSONError(w, "A harvest run is already in progress", http.StatusConflict)
		return
	}

	go func() {
		defer h.harvestRunning.Store(false)
		if err := h.harvester.ProcessAll(context.Background(), req.Domain); err != nil {
			slog.Error("Harvest run failed", "domain", req.Domain, "error", err)
		}
	}()

	h.writeJSON(w, http.StatusAccepted, response.HarvestResponse{
		Status:  "success",
		Message: "Harvest run started",
	})
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	var req request.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var (
		file string
		err  error
	)
	switch req.Format {
	case "csv":
		file, err = h.exporter.ExportCSV(r.Context(), req.Limit)
	case "", "json":
		file, err = h.exporter.ExportJSON(r.Context(), req.Limit)
	case "xlsx":
		file, err = h.exporter.ExportXLSX(r.Context(), req.Limit)
	default:
		h.writeJSONError(w, "Unsupported export format", http.StatusBadRequest)
		return
	}
	if err != nil {
		slog.Error("Export failed", "format", req.Format, "error", err)
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.ExportResponse{Status: "success", File: file})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
