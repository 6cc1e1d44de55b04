package order

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"
)

const MaxBodyBytes = 1 << 20

// Handler exposes the engine's public operations to the order-entry and
// kitchen display clients. Mutations respond 202: acceptance is acknowledged
// by the remote store, visibility follows with the next feed delivery.
type Handler struct {
	logger  apt.Logger
	config  *apt.Config
	tlm     *telemetry.HTTP
	tracker *Tracker
}

func NewHandler(tracker *Tracker, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &Handler{
		logger:  logger,
		config:  config,
		tlm:     telemetry.NewHTTP(),
		tracker: tracker,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/queue", h.QueueOrders)
		r.Get("/{id}", h.GetOrder)
		r.Put("/{id}/status", h.UpdateOrderStatus)
		r.Post("/{id}/cancel", h.CancelOrder)
	})

	r.Route("/stats", func(r chi.Router) {
		r.Get("/counts", h.Counts)
		r.Get("/sales", h.SalesByDate)
	})

	r.Delete("/admin/data", h.ClearAllData)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()

	draft, ok := h.decodeDraftPayload(w, r, log)
	if !ok {
		return
	}

	if err := h.tracker.AddOrder(ctx, draft); err != nil {
		if IsValidation(err) {
			log.Debug("invalid order draft", "error", err)
			apt.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("cannot create order", "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not create order")
		return
	}

	w.WriteHeader(http.StatusAccepted)
	apt.RespondSuccess(w, draft)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.GetOrder")
	defer finish()

	id := chi.URLParam(r, "id")
	o, ok := h.tracker.Get(id)
	if !ok {
		apt.RespondError(w, http.StatusNotFound, "Order not found")
		return
	}

	apt.RespondSuccess(w, &o)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListOrders")
	defer finish()

	log := h.log(r)

	status := r.URL.Query().Get("status")
	if status != "" && !ValidStatus(status) {
		log.Debug("invalid status filter", "status", status)
		apt.RespondError(w, http.StatusBadRequest, "Invalid status parameter")
		return
	}

	var orders []Order
	if status != "" {
		orders = h.tracker.OrdersByStatus(status)
	} else {
		orders = h.tracker.Orders()
	}

	apt.RespondCollection(w, orders, "order")
}

func (h *Handler) QueueOrders(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.QueueOrders")
	defer finish()

	apt.RespondCollection(w, h.tracker.QueueOrders(), "order")
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.UpdateOrderStatus")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	req, ok := h.decodeStatusPayload(w, r, log)
	if !ok {
		return
	}

	if err := h.tracker.UpdateOrderStatus(ctx, id, req.Status); err != nil {
		h.respondLifecycleError(w, log, err, "Could not update order")
		return
	}

	w.WriteHeader(http.StatusAccepted)
	apt.RespondSuccess(w, req)
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CancelOrder")
	defer finish()

	log := h.log(r)
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	req, ok := h.decodeCancelPayload(w, r, log)
	if !ok {
		return
	}

	if err := h.tracker.CancelOrder(ctx, id, req.Reason, req.CancelledBy); err != nil {
		h.respondLifecycleError(w, log, err, "Could not cancel order")
		return
	}

	w.WriteHeader(http.StatusAccepted)
	apt.RespondSuccess(w, req)
}

func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.Counts")
	defer finish()

	counts := CountsResponse{
		Pending:   h.tracker.PendingCount(),
		Completed: h.tracker.CompletedCount(),
	}
	apt.RespondSuccess(w, counts)
}

func (h *Handler) SalesByDate(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.SalesByDate")
	defer finish()

	apt.RespondCollection(w, h.tracker.SalesByDate(), "sales-bucket")
}

func (h *Handler) ClearAllData(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ClearAllData")
	defer finish()

	log := h.log(r)

	if err := h.tracker.ClearAllData(r.Context()); err != nil {
		log.Error("cannot clear order data", "error", err)
		apt.RespondError(w, http.StatusInternalServerError, "Could not clear order data")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondLifecycleError(w http.ResponseWriter, log apt.Logger, err error, adapterMsg string) {
	switch {
	case IsNotFound(err):
		apt.RespondError(w, http.StatusNotFound, "Order not found")
	case IsInvalidTransition(err):
		apt.RespondError(w, http.StatusConflict, err.Error())
	default:
		log.Error("remote order store rejected write", "error", err)
		apt.RespondError(w, http.StatusBadGateway, adapterMsg)
	}
}

// Payload decoders

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type CancelRequest struct {
	Reason      string `json:"reason"`
	CancelledBy string `json:"cancelledBy"`
}

type CountsResponse struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

func (h *Handler) decodeDraftPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (Draft, bool) {
	var draft Draft
	if !h.decodeBody(w, r, log, &draft) {
		return Draft{}, false
	}
	return draft, true
}

func (h *Handler) decodeStatusPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (StatusUpdateRequest, bool) {
	var req StatusUpdateRequest
	if !h.decodeBody(w, r, log, &req) {
		return StatusUpdateRequest{}, false
	}
	if req.Status == "" {
		log.Debug("missing status in update request")
		apt.RespondError(w, http.StatusBadRequest, "status is required")
		return StatusUpdateRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeCancelPayload(w http.ResponseWriter, r *http.Request, log apt.Logger) (CancelRequest, bool) {
	var req CancelRequest
	if !h.decodeBody(w, r, log, &req) {
		return CancelRequest{}, false
	}
	return req, true
}

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, log apt.Logger, out any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Failed to read request body")
		return false
	}

	if err := json.Unmarshal(body, out); err != nil {
		log.Debug("failed to decode request body", "error", err)
		apt.RespondError(w, http.StatusBadRequest, "Invalid JSON in request body")
		return false
	}

	return true
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
