// Package di wires repositories, services and handlers together.
package di

import (
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/venuebook/venuebook/internal/handler"
	"github.com/venuebook/venuebook/internal/repository"
	"github.com/venuebook/venuebook/internal/service"
	"github.com/venuebook/venuebook/pkg/config"
)

// ContainerConfig holds the external resources the container builds on
type ContainerConfig struct {
	Config    *config.Config
	Pool      *pgxpool.Pool
	Redis     *goredis.Client
	Publisher service.EventPublisher
}

// Container holds the fully wired application graph
type Container struct {
	AuthService    service.AuthService
	VenueService   service.VenueService
	BookingService service.BookingService
	UploadService  service.UploadService

	AuthHandler    *handler.AuthHandler
	VenueHandler   *handler.VenueHandler
	BookingHandler *handler.BookingHandler
	UploadHandler  *handler.UploadHandler
	HealthHandler  *handler.HealthHandler
}

// NewContainer builds the application graph. Optional capabilities (Google
// sign-in, SMTP delivery) are resolved here from configuration.
func NewContainer(cfg ContainerConfig) *Container {
	userRepo := repository.NewPostgresUserRepository(cfg.Pool)
	venueRepo := repository.NewPostgresVenueRepository(cfg.Pool)
	bookingRepo := repository.NewPostgresBookingRepository(cfg.Pool)
	resetRepo := repository.NewRedisResetTokenRepository(cfg.Redis)

	var mailer service.Mailer
	if cfg.Config.SMTP.Configured() {
		mailer = service.NewSMTPMailer(cfg.Config.SMTP)
	} else {
		mailer = service.NewLogMailer()
	}

	var google service.GoogleVerifier
	if cfg.Config.Google.Configured() {
		google = service.NewGoogleVerifier(cfg.Config.Google.ClientID)
	}

	authSvc := service.NewAuthService(userRepo, resetRepo, mailer, google, service.AuthServiceConfig{
		JWTSecret:     cfg.Config.JWT.Secret,
		TokenTTL:      cfg.Config.JWT.ExpiresIn,
		ResetTokenTTL: cfg.Config.Booking.ResetTokenTTL,
		AppURL:        cfg.Config.App.AppURL,
	})
	venueSvc := service.NewVenueService(venueRepo, service.VenueServiceConfig{
		MaxVideoMB:  cfg.Config.Booking.MaxVideoMB,
		SearchLimit: cfg.Config.Booking.SearchLimit,
	})
	bookingSvc := service.NewBookingService(bookingRepo, venueRepo, cfg.Publisher)
	uploadSvc := service.NewUploadService(cfg.Config.Cloudinary)

	return &Container{
		AuthService:    authSvc,
		VenueService:   venueSvc,
		BookingService: bookingSvc,
		UploadService:  uploadSvc,

		AuthHandler:    handler.NewAuthHandler(authSvc),
		VenueHandler:   handler.NewVenueHandler(venueSvc, bookingSvc),
		BookingHandler: handler.NewBookingHandler(bookingSvc),
		UploadHandler:  handler.NewUploadHandler(uploadSvc),
		HealthHandler:  handler.NewHealthHandler(cfg.Pool, cfg.Redis),
	}
}
