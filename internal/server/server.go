package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"

	"github.com/gravitas-games/signshop/internal/config"
	"github.com/gravitas-games/signshop/internal/economy"
	"github.com/gravitas-games/signshop/internal/i18n"
	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/journal"
	"github.com/gravitas-games/signshop/internal/network"
	"github.com/gravitas-games/signshop/internal/permission"
	"github.com/gravitas-games/signshop/internal/shop"
	"github.com/gravitas-games/signshop/internal/trade"
	"github.com/gravitas-games/signshop/internal/world"
)

// Deps are the collaborators the server wires into the shop engine
type Deps struct {
	World      *world.Memory
	Shops      *shop.Registry
	Perms      *permission.Policy
	Bank       economy.Bank
	Catalog    *inventory.Catalog
	Translator *i18n.Translator
	// Journal receives completed operations. Bus, when set, is also
	// subscribed for broadcasting to players.
	Journal journal.Publisher
	Bus     *journal.Bus
	// Redis backs the token blacklist. Nil disables the check.
	Redis *redis.Client
}

// Server represents the game server
type Server struct {
	config       *config.Config
	session      *Session
	engine       *trade.Engine
	deps         Deps
	upgrader     websocket.Upgrader
	httpSrv      *http.Server
	jwtValidator *JWTValidator

	// Connection tracking
	connections map[*Connection]bool
	connMu      sync.RWMutex

	// Shutdown
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new server instance
func New(cfg *config.Config, deps Deps) (*Server, error) {
	log.Println("Initializing server...")

	ctx, cancel := context.WithCancel(context.Background())

	srv := &Server{
		config:      cfg,
		deps:        deps,
		connections: make(map[*Connection]bool),
		ctx:         ctx,
		cancel:      cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: Add proper origin checking in production
				return true
			},
		},
	}

	jwtValidator, err := NewJWTValidator(cfg, deps.Redis)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize JWT validator: %w", err)
	}
	srv.jwtValidator = jwtValidator

	srv.session = NewSession("main", cfg)
	if deps.Bus != nil {
		srv.session.SubscribeJournal(deps.Bus)
	}

	srv.engine = trade.New(
		engineConfig(cfg),
		deps.World, deps.Shops, deps.Perms, deps.Bank, srv.session, srv.session.Tasks(),
		trade.WithJournal(deps.Journal),
		trade.WithCatalog(deps.Catalog),
		trade.WithTranslator(deps.Translator),
		trade.WithDirectory(srv.session),
	)

	log.Println("Server initialized successfully")
	return srv, nil
}

func engineConfig(cfg *config.Config) trade.Config {
	return trade.Config{
		VirtualStock: cfg.Shop.AdminVirtualStock,
		Tags:         shop.NewTags(cfg.Shop.Tags...),
	}
}

// Reload applies the shop settings of cfg on the logic loop. It returns false
// when the loop queue is full.
func (s *Server) Reload(cfg *config.Config) bool {
	next := engineConfig(cfg)
	return s.session.Post(func(context.Context) {
		s.engine.Reconfigure(next)
		log.Printf("Shop settings reloaded: tags %v, admin virtual stock %t", cfg.Shop.Tags, next.VirtualStock)
	})
}

// Session returns the server's game session
func (s *Server) Session() *Session {
	return s.session
}

// Engine returns the shop engine
func (s *Server) Engine() *trade.Engine {
	return s.engine
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/permissions", s.handlePermissions)
	return mux
}

// Start begins listening for connections
func (s *Server) Start(addr string) error {
	log.Printf("Starting WebSocket server on %s", addr)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("WebSocket endpoint: ws://%s/ws", addr)
	log.Printf("Health endpoint: http://%s/health", addr)

	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown() error {
	log.Println("Shutting down server...")

	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpSrv != nil {
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}

	s.connMu.Lock()
	for conn := range s.connections {
		conn.Close()
	}
	s.connMu.Unlock()

	if s.deps.Bus != nil {
		s.deps.Bus.Unsubscribe("session:" + s.session.ID)
	}

	log.Println("Server shutdown complete")
	return nil
}

// handleWebSocket handles WebSocket connection requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log.Printf("New WebSocket connection request from %s", r.RemoteAddr)

	player, err := s.jwtValidator.Authenticate(r)
	if err != nil {
		log.Printf("Authentication failed for %s: %v", r.RemoteAddr, err)
		http.Error(w, fmt.Sprintf("Invalid token: %v", err), http.StatusUnauthorized)
		return
	}

	log.Printf("Authenticated user: %s (%s) from %s", player.Username, player.ID(), r.RemoteAddr)

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	conn := NewConnection(ws, s)
	conn.player = player
	conn.authenticated = true

	s.connMu.Lock()
	s.connections[conn] = true
	s.connMu.Unlock()

	log.Printf("WebSocket connection established: %s (%s)", player.Username, r.RemoteAddr)

	// Handle connection (blocking)
	conn.Handle()

	s.connMu.Lock()
	delete(s.connections, conn)
	s.connMu.Unlock()

	log.Printf("WebSocket connection closed: %s (%s)", player.Username, r.RemoteAddr)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","players":%d,"shops":%d,"tick":%d}`,
		s.session.PlayerCount(), s.deps.Shops.Len(), s.session.Tasks().Tick())
}

// handlePermissions lists the registered permission keys. With ?key= it
// describes a single key or key prefix instead.
func (s *Server) handlePermissions(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if key := r.URL.Query().Get("key"); key != "" {
		desc := s.deps.Perms.Description(permission.Key(key))
		if desc == "" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(network.ErrorPayload{Code: "unknown_permission", Message: "Unknown permission " + key})
			return
		}
		json.NewEncoder(w).Encode(network.PermissionInfo{Key: key, Description: desc})
		return
	}

	regs := s.deps.Perms.Registered()
	out := make([]network.PermissionInfo, 0, len(regs))
	for _, reg := range regs {
		out = append(out, network.PermissionInfo{
			Key:         string(reg.Key),
			Default:     reg.Level.String(),
			Description: reg.Description,
		})
	}
	json.NewEncoder(w).Encode(out)
}
