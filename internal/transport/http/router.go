package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/site-api/internal/application/account"
	"github.com/site-api/internal/application/auth"
	"github.com/site-api/internal/application/contact"
	"github.com/site-api/internal/application/notification"
	"github.com/site-api/internal/application/otp"
	"github.com/site-api/internal/application/session"
	"github.com/site-api/internal/application/testimonial"
	"github.com/site-api/internal/config"
	"github.com/site-api/internal/transport/http/handler"
	appmiddleware "github.com/site-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router along with a func that
// stops its background workers.
func NewRouter(cfg *config.Config, deps *Deps) (http.Handler, func()) {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, cfg.TrustedProxy)

	notifier := notification.NewService(deps.Mailer)
	otpSvc := otp.NewService(otp.ServiceDeps{OTPRepo: deps.OTPRepo})
	accountSvc := account.NewService(account.ServiceDeps{AccountRepo: deps.AccountRepo})
	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo:     deps.SessionRepo,
		AccountRepo:     deps.AccountRepo,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: cfg.RefreshTokenExpiry,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		OTPService:     otpSvc,
		AccountService: accountSvc,
		SessionService: sessionSvc,
		Notifier:       notifier,
		Logger:         deps.Logger,
	})
	contactSvc := contact.NewService(contact.ServiceDeps{
		Notifier:  notifier,
		Recipient: cfg.ContactRecipient(),
		Archive:   deps.Archive,
		Notices:   deps.Notices,
		Logger:    deps.Logger,
	})
	testimonialSvc := testimonial.NewService(deps.TestimonialRepo)

	authMw := appmiddleware.Auth(deps.JWTProvider, sessionSvc)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	sessionH := handler.NewSessionHandler(authSvc, sessionSvc)
	accountH := handler.NewAccountHandler(authSvc)
	contactH := handler.NewContactHandler(contactSvc)
	testimonialH := handler.NewTestimonialHandler(testimonialSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Get("/testimonials", testimonialH.List)
		r.Post("/sessions/refresh", sessionH.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(sensitiveRL.Limit)

			r.Post("/auth/check-email", authH.CheckEmail)
			r.Post("/auth/send-otp", authH.SendOTP)
			r.Post("/auth/verify-otp", authH.VerifyOTP)
			r.Post("/auth/register", authH.Register)
			r.Post("/auth/flow", authH.Flow)
			r.Post("/sessions/login", sessionH.Login)
			r.Post("/contact", contactH.Submit)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
			r.Post("/account/delete/request", accountH.RequestDeletion)
			r.Post("/account/delete/confirm", accountH.ConfirmDeletion)
			r.Post("/account/delete/flow", accountH.DeletionFlow)
		})
	})

	return r, sensitiveRL.Stop
}
