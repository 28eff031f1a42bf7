package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fundadaburda/BrokerageApi/internal/domain"
	"github.com/fundadaburda/BrokerageApi/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// errForbidden marks a caller acting outside its own customer scope.
var errForbidden = errors.New("forbidden")

// Server handles the REST API and the websocket order feed.
type Server struct {
	orders  *service.OrderService
	assets  *service.AssetService
	auth    *service.AuthService
	router  *mux.Router
	hub     *Hub
	log     *slog.Logger
	origins []string
	httpSrv *http.Server
}

// NewServer wires the services into routes. The hub must be the same
// one registered as the order service's event publisher.
func NewServer(orders *service.OrderService, assets *service.AssetService, auth *service.AuthService, hub *Hub, log *slog.Logger, allowedOrigins []string) *Server {
	s := &Server{
		orders:  orders,
		assets:  assets,
		auth:    auth,
		router:  mux.NewRouter(),
		hub:     hub,
		log:     log,
		origins: allowedOrigins,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/auth/login", s.handleLogin).Methods("POST")

	authed := s.router.PathPrefix("/api").Subrouter()
	authed.Use(s.requireAuth)
	authed.HandleFunc("/orders", s.handleCreateOrder).Methods("POST")
	authed.HandleFunc("/orders", s.handleListOrders).Methods("GET")
	authed.HandleFunc("/orders/{orderId:[0-9]+}", s.handleCancelOrder).Methods("DELETE")
	authed.HandleFunc("/assets", s.handleListAssets).Methods("GET")

	admin := s.router.PathPrefix("/api/admin").Subrouter()
	admin.Use(s.requireAuth, s.requireAdmin)
	admin.HandleFunc("/match-orders", s.handleMatchOrders).Methods("POST")

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Start runs the websocket hub and serves HTTP until Shutdown.
func (s *Server) Start(addr string) error {
	go s.hub.Run()

	c := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.httpSrv = &http.Server{Addr: addr, Handler: s.withRequestLog(c.Handler(s.router))}
	s.log.Info("api server starting", slog.String("addr", addr))
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Handler exposes the routing tree, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	token, customer, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:      token,
		Username:   customer.Username,
		Role:       customer.Role,
		CustomerID: customer.ID,
	})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := authorizeCustomer(r, req.CustomerID); err != nil {
		s.writeError(w, err)
		return
	}

	order, err := s.orders.CreateOrder(req.CustomerID, req.AssetName, domain.Side(req.Side), req.Size, req.Price)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(*order))
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := queryUint(r, "customerId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := authorizeCustomer(r, customerID); err != nil {
		s.writeError(w, err)
		return
	}

	start, err := queryTime(r, "startDate")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	end, err := queryTime(r, "endDate")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	orders, err := s.orders.ListOrders(customerID, start, end, status)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(mux.Vars(r)["orderId"], 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}
	customerID, err := queryUint(r, "customerId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := authorizeCustomer(r, customerID); err != nil {
		s.writeError(w, err)
		return
	}

	if err := s.orders.CancelOrder(uint(orderID), customerID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	customerID, err := queryUint(r, "customerId")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err := authorizeCustomer(r, customerID); err != nil {
		s.writeError(w, err)
		return
	}

	assets, err := s.assets.ListAssets(customerID, r.URL.Query().Get("assetName"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]AssetResponse, len(assets))
	for i, a := range assets {
		resp[i] = toAssetResponse(a)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMatchOrders(w http.ResponseWriter, r *http.Request) {
	var req MatchOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.orders.MatchOrders(req.OrderIDs); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ==============================
// Helpers
// ==============================

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrResourceNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidOrderStatus):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrConcurrencyConflict):
		status = http.StatusConflict
	default:
		s.log.Error("internal error", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func queryUint(r *http.Request, key string) (uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, errors.New(key + " is required")
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return uint(v), nil
}

func queryTime(r *http.Request, key string) (time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, errors.New(key + " is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + key + ", want RFC3339")
	}
	return t, nil
}
