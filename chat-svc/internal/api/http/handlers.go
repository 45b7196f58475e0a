package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

type Handler struct {
	Engine service.EngineInterface
	Orders service.OrderRepository
}

func NewHandler(engine service.EngineInterface, orders service.OrderRepository) *Handler {
	return &Handler{Engine: engine, Orders: orders}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/sessions/{sessionId}/turns", h.processTurn).Methods("POST")
	r.HandleFunc("/api/sessions/{sessionId}/draft", h.getDraft).Methods("GET")
	r.HandleFunc("/api/sessions/{sessionId}", h.cancelSession).Methods("DELETE")
	r.HandleFunc("/api/orders/{orderId}", h.getOrder).Methods("GET")
	r.HandleFunc("/api/orders/{orderId}/qr", h.getOrderQR).Methods("GET")
	r.HandleFunc("/health", h.health).Methods("GET")
}

type turnRequest struct {
	MessageID string             `json:"message_id"`
	Text      string             `json:"text,omitempty"`
	Delta     *domain.OrderDelta `json:"delta,omitempty"`
}

func (h *Handler) processTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}
	if req.MessageID == "" {
		http.Error(w, "Missing message_id", http.StatusBadRequest)
		return
	}

	var input domain.TurnInput
	switch {
	case req.Delta != nil:
		input = domain.StructuredInput(*req.Delta)
	case req.Text != "":
		input = domain.TextInput(req.Text)
	default:
		http.Error(w, "Either text or delta is required", http.StatusBadRequest)
		return
	}

	result := h.Engine.ProcessTurn(r.Context(), sessionID, req.MessageID, input)

	w.Header().Set("Content-Type", "application/json")
	if result.Status == domain.TurnError {
		w.WriteHeader(http.StatusBadGateway)
	}
	json.NewEncoder(w).Encode(result)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	draft, err := h.Engine.Draft(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrNoSession) {
			http.Error(w, "No draft for this session", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(draft)
}

func (h *Handler) cancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.Engine.CancelSession(r.Context(), sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	order, err := h.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(order)
}

func (h *Handler) getOrderQR(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderId"]

	qr, err := h.Orders.GetQRCode(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			http.Error(w, "QR code not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(qr)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
