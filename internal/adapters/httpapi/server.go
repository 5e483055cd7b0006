package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/apperr"
	"github.com/example/shopfloor/internal/ctxutil"
	"github.com/example/shopfloor/internal/ports/primary"
)

// Server serves the reference order backend over REST.
type Server struct {
	manufacturing primary.ManufacturingService
	workOrders    primary.WorkOrderService
	stock         primary.StockService
	logger        *zap.Logger
	router        chi.Router
}

// NewServer creates a Server over the backend services.
func NewServer(manufacturing primary.ManufacturingService, workOrders primary.WorkOrderService, stock primary.StockService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		manufacturing: manufacturing,
		workOrders:    workOrders,
		stock:         stock,
		logger:        logger,
	}
	s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestContext)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = io.WriteString(w, "ok")
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/manufacturing-orders", func(r chi.Router) {
			r.Get("/", s.listOrders)
			r.Post("/", s.createOrder)
			r.Get("/{id}", s.getOrder)
			r.Post("/{id}/confirm", s.confirmOrder)
			r.Post("/{id}/complete", s.completeOrder)
			r.Post("/{id}/cancel", s.cancelOrder)
		})
		r.Route("/work-orders", func(r chi.Router) {
			r.Get("/", s.listWorkOrders)
			r.Get("/{id}", s.getWorkOrder)
			r.Post("/{id}/start", s.startWorkOrder)
			r.Post("/{id}/pause", s.pauseWorkOrder)
			r.Post("/{id}/resume", s.resumeWorkOrder)
			r.Post("/{id}/complete", s.completeWorkOrder)
		})
		r.Get("/stock-ledger", s.listStock)
	})

	s.router = r
}

// ============================================================================
// Manufacturing orders
// ============================================================================

// GET /api/manufacturing-orders/
func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	orders, err := s.manufacturing.ListOrders(r.Context(), primary.OrderFilters{
		Status:    q.Get("status"),
		ProductID: q.Get("product"),
		Limit:     limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, fromOrder(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/manufacturing-orders/
func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var body createOrderBody
	if !decode(w, r, &body) {
		return
	}

	order, err := s.manufacturing.CreateOrder(r.Context(), primary.CreateOrderRequest{
		ProductID:      body.ProductID,
		BOMID:          body.BOMID,
		Quantity:       body.Quantity,
		Priority:       body.Priority,
		ScheduledStart: body.ScheduledStart,
		Notes:          body.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromOrder(order))
}

// GET /api/manufacturing-orders/{id}/
func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.manufacturing.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromOrder(order))
}

// POST /api/manufacturing-orders/{id}/confirm/
func (s *Server) confirmOrder(w http.ResponseWriter, r *http.Request) {
	var body confirmBody
	if !decode(w, r, &body) {
		return
	}

	order, err := s.manufacturing.ConfirmOrder(r.Context(), primary.ConfirmOrderRequest{
		OrderID: chi.URLParam(r, "id"),
		Force:   body.Force,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderActionResponse{
		Message: fmt.Sprintf("Manufacturing order %s confirmed with %d work orders", order.ID, len(order.WorkOrders)),
		Order:   fromOrder(order),
	})
}

// POST /api/manufacturing-orders/{id}/complete/
func (s *Server) completeOrder(w http.ResponseWriter, r *http.Request) {
	var body notesBody
	if !decode(w, r, &body) {
		return
	}

	resp, err := s.manufacturing.CompleteOrder(r.Context(), primary.CompleteOrderRequest{
		OrderID: chi.URLParam(r, "id"),
		Notes:   body.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := completeOrderResponse{
		Message:            fmt.Sprintf("Manufacturing order %s completed", chi.URLParam(r, "id")),
		ConsumedComponents: make([]consumedJSON, 0, len(resp.ConsumedComponents)),
		ProducedQuantity:   resp.ProducedQuantity,
		Order:              orderRef(resp.Order),
	}
	for _, c := range resp.ConsumedComponents {
		out.ConsumedComponents = append(out.ConsumedComponents, consumedJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/manufacturing-orders/{id}/cancel/
func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	var body cancelBody
	if !decode(w, r, &body) {
		return
	}

	order, err := s.manufacturing.CancelOrder(r.Context(), primary.CancelOrderRequest{
		OrderID: chi.URLParam(r, "id"),
		Reason:  body.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orderActionResponse{
		Message: fmt.Sprintf("Manufacturing order %s canceled", order.ID),
		Order:   fromOrder(order),
	})
}

// ============================================================================
// Work orders
// ============================================================================

// GET /api/work-orders/
func (s *Server) listWorkOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	workOrders, err := s.workOrders.ListWorkOrders(r.Context(), primary.WorkOrderFilters{
		OrderID:      q.Get("mo"),
		Status:       q.Get("status"),
		WorkCenterID: q.Get("work_center"),
		OperatorID:   q.Get("operator"),
		Limit:        limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]workOrderJSON, 0, len(workOrders))
	for _, wo := range workOrders {
		out = append(out, fromWorkOrder(wo))
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/work-orders/{id}/
func (s *Server) getWorkOrder(w http.ResponseWriter, r *http.Request) {
	wo, err := s.workOrders.GetWorkOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fromWorkOrder(wo))
}

// POST /api/work-orders/{id}/start/
func (s *Server) startWorkOrder(w http.ResponseWriter, r *http.Request) {
	var body startBody
	if !decode(w, r, &body) {
		return
	}
	operator := body.OperatorID
	if operator == "" {
		operator = ctxutil.ActorFromContext(r.Context())
	}

	res, err := s.workOrders.StartWorkOrder(r.Context(), primary.StartWorkOrderRequest{
		WorkOrderID: chi.URLParam(r, "id"),
		OperatorID:  operator,
		Notes:       body.Notes,
	})
	s.writeAction(w, "started", res, err)
}

// POST /api/work-orders/{id}/pause/
func (s *Server) pauseWorkOrder(w http.ResponseWriter, r *http.Request) {
	var body notesBody
	if !decode(w, r, &body) {
		return
	}
	res, err := s.workOrders.PauseWorkOrder(r.Context(), primary.WorkOrderActionRequest{
		WorkOrderID: chi.URLParam(r, "id"),
		Notes:       body.Notes,
	})
	s.writeAction(w, "paused", res, err)
}

// POST /api/work-orders/{id}/resume/
func (s *Server) resumeWorkOrder(w http.ResponseWriter, r *http.Request) {
	var body notesBody
	if !decode(w, r, &body) {
		return
	}
	res, err := s.workOrders.ResumeWorkOrder(r.Context(), primary.WorkOrderActionRequest{
		WorkOrderID: chi.URLParam(r, "id"),
		Notes:       body.Notes,
	})
	s.writeAction(w, "resumed", res, err)
}

// POST /api/work-orders/{id}/complete/
func (s *Server) completeWorkOrder(w http.ResponseWriter, r *http.Request) {
	var body completeWorkOrderBody
	if !decode(w, r, &body) {
		return
	}
	res, err := s.workOrders.CompleteWorkOrder(r.Context(), primary.CompleteWorkOrderRequest{
		WorkOrderID:           chi.URLParam(r, "id"),
		Notes:                 body.Notes,
		ActualDurationMinutes: body.ActualDuration,
	})
	s.writeAction(w, "completed", res, err)
}

func (s *Server) writeAction(w http.ResponseWriter, verb string, res *primary.WorkOrderActionResult, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workOrderActionResponse{
		Message:   fmt.Sprintf("Work order %s %s", res.WorkOrder.ID, verb),
		WorkOrder: fromWorkOrder(res.WorkOrder),
		Order:     orderRef(res.Order),
	})
}

// ============================================================================
// Stock ledger
// ============================================================================

// GET /api/stock-ledger/
func (s *Server) listStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := queryInt(q.Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	movements, err := s.stock.ListMovements(r.Context(), primary.StockFilters{
		ProductID: q.Get("product"),
		Reference: q.Get("reference"),
		Limit:     limit,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]movementJSON, 0, len(movements))
	for _, m := range movements {
		out = append(out, fromMovement(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// Helper methods

// decode reads an optional JSON body. An empty body leaves v at its zero value.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, apperr.Validation("invalid request body: %v", err))
	return false
}

func queryInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperr.Validation("invalid limit %q", s)
	}
	return n, nil
}
