package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtchat/config"
	"rtchat/handlers"
	"rtchat/hub"
	"rtchat/repository"
	"rtchat/services"
	"rtchat/ws"
)

func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func withCORS(origin string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration", "err", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	slog.SetDefault(log)

	// --- repos (in-memory) ---
	userRepo := repository.NewInMemoryUserRepo()
	roomRepo := repository.NewInMemoryRoomRepo()
	messageRepo := repository.NewInMemoryMessageRepo()

	// --- fan-out hub ---
	fanout := hub.New(log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go fanout.Run(hubCtx)

	// --- services ---
	authSvc := services.NewAuthService(userRepo, &cfg)
	roomSvc := services.NewRoomService(roomRepo)
	msgSvc := services.NewMessageService(messageRepo, roomRepo, ws.NewPublisher(fanout, log), &cfg)

	// --- seed data: a demo user (cannot log in) owning the default room ---
	demo, err := userRepo.Create("demo@example.com", "")
	if err != nil {
		log.Warn("could not seed demo user", "err", err)
	} else if room, err := roomRepo.Create("General", demo.ID); err != nil {
		log.Warn("could not seed default room", "err", err)
	} else {
		log.Info("seeded default room", "room", room.ID, "name", room.Name)
	}

	// --- handlers ---
	authH := handlers.NewAuthHandler(authSvc)
	roomH := handlers.NewRoomHandler(roomSvc, msgSvc)
	msgH := handlers.NewMessageHandler(msgSvc)
	gateway := ws.NewGateway(fanout, authSvc, msgSvc, cfg.WSStrictErrors, log)

	// --- mux and routes ---
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	})

	mux.HandleFunc("POST /auth/signup", authH.Signup)
	mux.HandleFunc("POST /auth/login", authH.Login)
	mux.HandleFunc("POST /me/fcm", handlers.RequireAuth(authSvc, authH.UpdatePushToken))
	mux.HandleFunc("GET /rooms", handlers.RequireAuth(authSvc, roomH.List))
	mux.HandleFunc("POST /rooms", handlers.RequireAuth(authSvc, roomH.Create))
	mux.HandleFunc("GET /rooms/{id}", handlers.RequireAuth(authSvc, roomH.Get))
	mux.HandleFunc("GET /rooms/{id}/messages", handlers.RequireAuth(authSvc, msgH.List))
	mux.HandleFunc("POST /rooms/{id}/messages", handlers.RequireAuth(authSvc, msgH.Post))
	mux.HandleFunc("GET /ws", gateway.ServeWS)

	handler := withCORS(cfg.CORSOrigin, loggingMiddleware(log, mux))

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("chat server listening", "addr", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", "err", err)
	}
	stopHub()

	log.Info("server exited")
}
