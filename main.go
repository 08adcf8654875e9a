package main

import (
	auth "Sixfoot/internal/auth"
	clearance "Sixfoot/internal/calc/clearance"
	batch "Sixfoot/internal/calc/premium/batch"
	importer "Sixfoot/internal/calc/premium/importer"
	report "Sixfoot/internal/calc/report"
	config "Sixfoot/internal/config"
	history "Sixfoot/internal/history"
	repo "Sixfoot/internal/repo"
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

// HandleList registers every route. With a nil store only the stateless
// calculator endpoints are served.
func HandleList(mux *mux.Router, cfg config.Config, store repo.Repository) {
	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	clearanceH := &clearance.Handler{}
	batchH := &batch.Handler{Limit: cfg.BatchLimit}
	importH := &importer.Handler{}
	reportH := &report.Handler{}

	api.HandleFunc("/tools/clearance/calc", clearanceH.Calc).Methods("POST")
	api.HandleFunc("/tools/clearance/categories", clearanceH.Categories).Methods("GET")
	api.HandleFunc("/tools/clearance/batch", batchH.Clearance).Methods("POST")
	api.HandleFunc("/tools/clearance/import", importH.Clearance).Methods("POST")
	api.HandleFunc("/tools/report/pdf", reportH.Generate).Methods("POST")

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		clearance.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true, "accounts": store != nil})
	}).Methods("GET")

	if store == nil {
		return
	}

	authEnv := &auth.Authenv{JWTkey: []byte(cfg.TokenKey), Repo: store, Secure: cfg.TLS()}
	historyH := &history.HistoryHandler{Repo: store}

	api.HandleFunc("/login", authEnv.AuthHandler).Methods("POST")
	api.HandleFunc("/register", authEnv.RegisterHandler).Methods("POST")
	api.HandleFunc("/logout", authEnv.LogoutHandler).Methods("POST")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/history", historyH.Save).Methods("POST")
	secureApi.HandleFunc("/history", historyH.List).Methods("GET")
	secureApi.HandleFunc("/history/{id:[0-9]+}", historyH.Get).Methods("GET")
	secureApi.HandleFunc("/history/{id:[0-9]+}", historyH.Delete).Methods("DELETE")
	secureApi.HandleFunc("/history/{id:[0-9]+}/pdf", historyH.PDF).Methods("GET")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Config error: ", err)
	}

	var store repo.Repository
	if cfg.Accounts() {
		db, err := repo.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Database error: ", err)
		}
		defer db.Close()
		pg := repo.NewPostgresUserDB(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatal("Schema error: ", err)
		}
		store = pg
	} else {
		log.Println("DATABASE_URL not set, accounts and history disabled")
	}

	mux := mux.NewRouter()
	HandleList(mux, cfg, store)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Starting server on %s (tls=%t)", cfg.Addr, cfg.TLS())
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLS() {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
