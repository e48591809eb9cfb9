package cmd

import (
	"building-planner/core"
	"building-planner/handlers/api/drawings"
	"building-planner/handlers/websocket"
	"building-planner/stores"
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the drawing API and notification server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("listen") {
			cfg.ListenAddr = listenAddr
		}

		store := stores.GetStore(cfg)
		hub := websocket.NewHub(cfg.FrontendURLs)

		r := setupRouter(store, hub, cfg.FrontendURLs)
		r.Handle("/socket.io/", hub.Handler())

		srv := &http.Server{Addr: cfg.ListenAddr, Handler: r}
		logrus.WithField("addr", cfg.ListenAddr).Info("starting server")
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.WithField("event", "start server").Fatal(err)
			}
		}()

		logrus.Debug("Server is running in the background")
		waitForShutdown(srv, hub)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":3001", "Set the server listen address")
	rootCmd.AddCommand(serveCmd)
}

// allowOrigin accepts the configured frontend origins, or any localhost
// origin when none are configured.
func allowOrigin(origins []string) func(r *http.Request, origin string) bool {
	return func(r *http.Request, origin string) bool {
		if origin == "" {
			return false
		}
		if len(origins) > 0 {
			for _, o := range origins {
				if o == origin {
					return true
				}
			}
			return false
		}

		parsed, err := url.Parse(origin)
		if err != nil {
			return false
		}
		switch parsed.Scheme {
		case "http", "https":
			switch parsed.Hostname() {
			case "localhost", "127.0.0.1", "::1":
				return true
			}
		}
		return false
	}
}

func setupRouter(store core.DrawingStore, hub *websocket.Hub, origins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowOrigin(origins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/api/health", drawings.HandleHealth())
	r.Route("/api/drawings", drawings.Routes(store, hub))
	r.Get("/api/viewers", hub.HandleViewers())

	return r
}

func waitForShutdown(srv *http.Server, hub *websocket.Hub) {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	s := <-signals
	logrus.WithField("signal", s.String()).Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	hub.Close()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Warn("Server shutdown incomplete")
	}
}
