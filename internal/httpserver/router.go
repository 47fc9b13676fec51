package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Carig-G/the-bench/docs"
	"github.com/Carig-G/the-bench/internal/service"
)

// Services are the application services the HTTP surface dispatches to.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Conversations *service.ConversationService
	Messages      *service.MessageService
	Payments      *service.PaymentService
	Pairs         *service.PairService
}

type Options struct {
	AppName     string
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(opts Options, svc Services) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	errs := errorWriter{log: log}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": opts.AppName, "version": "1.0.0", "docs": "/docs"})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	requireUser := AuthMiddleware(svc.Auth, errs)
	optionalUser := OptionalAuth(svc.Auth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(svc.Auth, errs))
			r.Post("/login", handleLogin(svc.Auth, errs))

			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/me", handleMe(svc.Users, errs))
				r.Post("/shuffle-moniker", handleShuffleMoniker(svc.Users, errs))
				r.Patch("/profile", handleUpdateProfile(svc.Users, errs))
			})
		})

		r.Route("/conversations", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(optionalUser)
				r.Get("/", handleListConversations(svc.Conversations, errs))
				r.Get("/queue/browse", handleQueueBrowse(svc.Conversations, errs))
				r.Get("/trending-tags", handleTrendingTags(svc.Conversations, errs))
				r.Get("/browse", handleBrowse(svc.Conversations, errs))
				r.Get("/{conversationID}", handleGetConversation(svc.Conversations, errs))
			})
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Get("/mine", handleMyConversations(svc.Conversations, errs))
				r.Post("/", handleStartConversation(svc.Conversations, errs))
				r.Post("/{conversationID}/join", handleJoinConversation(svc.Conversations, errs))
				r.Patch("/{conversationID}", handleUpdateConversation(svc.Conversations, errs))
			})
		})

		r.Route("/messages", func(r chi.Router) {
			r.With(optionalUser).Get("/conversation/{conversationID}", handleListMessages(svc.Messages, errs))
			r.Group(func(r chi.Router) {
				r.Use(requireUser)
				r.Post("/", handleCreateMessage(svc.Messages, errs))
				r.Patch("/{messageID}", handleEditMessage(svc.Messages, errs))
				r.Delete("/{messageID}", handleDeleteMessage(svc.Messages, errs))
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/check/{conversationID}", handleCheckPayment(svc.Payments, errs))
			r.Post("/", handleCreatePayment(svc.Payments, errs))
			r.Get("/history", handlePaymentHistory(svc.Payments, errs))
			r.Get("/revenue/{conversationID}", handleRevenue(svc.Payments, errs))
		})

		r.Route("/pairs", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", handleListPairs(svc.Pairs, errs))
			r.Get("/stats", handlePairStats(svc.Pairs, errs))
			r.Get("/reveal-eligible", handleRevealEligible(svc.Pairs, errs))
			r.Get("/revealed", handleRevealedPairs(svc.Pairs, errs))
			r.Get("/{pairID}/conversations", handlePairConversations(svc.Pairs, errs))
			r.Post("/{pairID}/request-reveal", handleRequestReveal(svc.Pairs, errs))
		})
	})

	return r
}
