package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yoshiakiban-byte/bottle-amigo/api/controllers"
	"github.com/yoshiakiban-byte/bottle-amigo/api/middleware"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/amigos"
	authsvc "github.com/yoshiakiban-byte/bottle-amigo/internal/auth"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/inventory"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/memos"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/notifications"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/posts"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/sessions"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/shares"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/staff"
	"github.com/yoshiakiban-byte/bottle-amigo/internal/venues"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/config"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/db"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/enums"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/logger"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/metrics"
	"github.com/yoshiakiban-byte/bottle-amigo/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth          authsvc.Service
	Venues        venues.Service
	Inventory     inventory.Service
	Sessions      sessions.Service
	Amigos        amigos.Service
	Shares        shares.Service
	Posts         posts.Service
	Memos         memos.Service
	Staff         staff.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/staff-login", controllers.StaffLogin(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/venues/{venueId}", controllers.VenueDetail(svcs.Venues, logg))
		r.Get("/venues/{venueId}/posts", controllers.PostList(svcs.Posts, logg))

		// Patron surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireKind(enums.PrincipalKindCustomer, logg))

			r.Route("/checkins", func(r chi.Router) {
				r.Post("/", controllers.CheckIn(svcs.Sessions, logg))
				r.Get("/active", controllers.ActiveCheckIn(svcs.Sessions, logg))
			})

			r.Route("/amigos", func(r chi.Router) {
				r.Get("/", controllers.AmigoList(svcs.Amigos, logg))
				r.Post("/", controllers.AmigoRequest(svcs.Amigos, logg))
				r.Post("/{amigoId}/accept", controllers.AmigoAccept(svcs.Amigos, logg))
				r.Post("/qr", controllers.AmigoIssueQR(svcs.Amigos, logg))
				r.Post("/qr/consume", controllers.AmigoConsumeQR(svcs.Amigos, logg))
			})

			r.Route("/bottles", func(r chi.Router) {
				r.Get("/mine", controllers.MyBottles(svcs.Inventory, logg))
				r.Get("/{bottleId}/history", controllers.BottleHistory(svcs.Inventory, logg))
				r.Get("/{bottleId}/shares", controllers.ShareListForBottle(svcs.Shares, logg))
				r.Post("/{bottleId}/shares", controllers.ShareCreate(svcs.Shares, logg))
			})
			r.Route("/shares", func(r chi.Router) {
				r.Get("/granted", controllers.SharesGrantedToMe(svcs.Shares, logg))
				r.Post("/{shareId}/end", controllers.ShareEnd(svcs.Shares, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			})
		})

		// Counter surface.
		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireKind(enums.PrincipalKindStaff, logg))

			r.Route("/checkins", func(r chi.Router) {
				r.Post("/", controllers.StaffCheckIn(svcs.Sessions, logg))
				r.Post("/{checkInId}/end", controllers.EndCheckIn(svcs.Sessions, logg))
			})

			r.Route("/bottles", func(r chi.Router) {
				r.Get("/", controllers.VenueBottles(svcs.Inventory, logg))
				r.Post("/", controllers.BottleAdd(svcs.Inventory, logg))
				r.Post("/{bottleId}/quantity", controllers.BottleSetQuantity(svcs.Inventory, logg))
				r.Post("/{bottleId}/refill", controllers.BottleRefill(svcs.Inventory, logg))
				r.Post("/{bottleId}/gift", controllers.BottleGift(svcs.Inventory, logg))
				r.Get("/{bottleId}/history", controllers.BottleHistory(svcs.Inventory, logg))
				r.Get("/{bottleId}/shares", controllers.ShareListForBottle(svcs.Shares, logg))
			})

			r.Route("/posts", func(r chi.Router) {
				r.Post("/", controllers.PostCreate(svcs.Posts, logg))
				r.Patch("/{postId}", controllers.PostUpdate(svcs.Posts, logg))
				r.Delete("/{postId}", controllers.PostDelete(svcs.Posts, logg))
			})

			r.Route("/customers", func(r chi.Router) {
				r.Get("/", controllers.VenueCustomers(svcs.Venues, logg))
				r.Get("/{userId}/memos", controllers.MemoList(svcs.Memos, logg))
				r.Post("/{userId}/memos", controllers.MemoCreate(svcs.Memos, logg))
			})

			r.Put("/venue", controllers.VenueUpdateSettings(svcs.Venues, logg))

			r.Route("/accounts", func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.StaffRoleMama, logg))
				r.Get("/", controllers.StaffList(svcs.Staff, logg))
				r.Post("/", controllers.StaffCreate(svcs.Staff, logg))
				r.Patch("/{staffId}", controllers.StaffUpdate(svcs.Staff, logg))
				r.Delete("/{staffId}", controllers.StaffDelete(svcs.Staff, logg))
				r.Post("/{staffId}/active", controllers.StaffSetActive(svcs.Staff, logg))
			})
		})
	})

	return r
}
