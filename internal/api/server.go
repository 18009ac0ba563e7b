package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vybr/booking-api/docs"
	v1 "github.com/vybr/booking-api/internal/api/handler/v1"
	"github.com/vybr/booking-api/internal/api/middleware"
	"github.com/vybr/booking-api/internal/config"
	"github.com/vybr/booking-api/internal/metering"
	"github.com/vybr/booking-api/internal/payment"
	"github.com/vybr/booking-api/internal/repository"
	"github.com/vybr/booking-api/internal/repository/dao"
	"github.com/vybr/booking-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db)
	bookingSvc := s.initBookingService(db)
	bookingHandler := v1.NewBookingHandler(bookingSvc)
	reservationHandler := s.initReservationHandler(db, bookingSvc)
	s.MountHandlers(authHandler, userHandler, eventHandler, bookingHandler, reservationHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewAuthService(repo)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	userDAO := dao.NewUserDAO(db)
	repo := repository.NewUserRepository(userDAO)
	svc := service.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	bookingRepo := repository.NewBookingRepository(dao.NewBookingDAO(db))
	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))

	currencySvc := service.NewCurrencyService(s.converterURL(), eventRepo)
	svc := service.NewEventService(eventRepo, bookingRepo, userRepo, currencySvc)
	rSvc := service.NewRecommendService(userRepo, eventRepo)
	handler := v1.NewEventHandler(svc, rSvc)

	return handler
}

func (s *Server) initBookingService(db *gorm.DB) *service.BookingService {
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	bookingRepo := repository.NewBookingRepository(dao.NewBookingDAO(db))
	attemptRepo := repository.NewPaymentAttemptRepository(dao.NewPaymentAttemptDAO(db))

	provider := payment.NewStripeProvider(s.Config.Stripe.SecretKey)
	paymentSvc := service.NewPaymentService(attemptRepo, provider,
		s.Config.Stripe.MerchantDisplayName, s.Config.Stripe.ReturnURL)

	var guard service.AttemptGuard
	if s.Config.Redis != nil && s.Config.Redis.URL != "" {
		opts, err := redis.ParseURL(s.Config.Redis.URL)
		if err != nil {
			zap.L().Warn("invalid redis URL, falling back to in-process attempt guard", zap.Error(err))
			guard = service.NewLocalAttemptGuard()
		} else {
			guard = service.NewRedisAttemptGuard(redis.NewClient(opts))
		}
	} else {
		guard = service.NewLocalAttemptGuard()
	}

	var reporter service.UsageReporter
	if s.Config.Metering != nil && s.Config.Metering.AMQPURL != "" {
		reporter = metering.NewPublisher(s.Config.Metering.AMQPURL, s.Config.Metering.Exchange)
	} else {
		reporter = metering.NopReporter{}
	}

	return service.NewBookingService(eventRepo, bookingRepo, paymentSvc, guard, reporter)
}

func (s *Server) initReservationHandler(db *gorm.DB, bookingSvc *service.BookingService) *v1.ReservationHandler {
	repo := repository.NewReservationRepository(dao.NewReservationDAO(db))
	eventRepo := repository.NewEventRepository(dao.NewEventDAO(db))
	currencySvc := service.NewCurrencyService(s.converterURL(), eventRepo)
	svc := service.NewReservationService(repo, bookingSvc, currencySvc)
	handler := v1.NewReservationHandler(svc)

	return handler
}

func (s *Server) converterURL() string {
	if s.Config.Currency == nil {
		return ""
	}

	return s.Config.Currency.ConverterURL
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
	s.Router.Use(middleware.CollectMetrics())
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	bookingHandler *v1.BookingHandler,
	reservationHandler *v1.ReservationHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/signup", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
	}

	// The provider redirect arrives without an Authorization header.
	s.Router.GET(basePath+"/bookings/payment-return", bookingHandler.HandlePaymentReturn)

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.GET("/users/me", userHandler.HandleGetMe)
		authenticated.GET("/users/me/music-profile", userHandler.HandleGetMusicProfile)
		authenticated.PUT("/users/me/music-profile", userHandler.HandleSaveMusicProfile)

		authenticated.GET("/events", eventHandler.HandleListEvents)
		authenticated.POST("/events", eventHandler.HandleCreateEvent)
		authenticated.GET("/events/recommended", eventHandler.HandleGetRecommendedEvents)
		authenticated.GET("/events/nearby", eventHandler.HandleGetNearbyEvents)
		authenticated.GET("/events/:eventID", eventHandler.HandleGetEvent)
		authenticated.GET("/events/:eventID/availability", eventHandler.HandleGetAvailability)

		authenticated.GET("/bookings", bookingHandler.HandleListMyBookings)
		authenticated.POST("/bookings", bookingHandler.HandleStartBooking)
		authenticated.POST("/bookings/complete-payment", bookingHandler.HandleCompletePayment)

		authenticated.GET("/reservations/:organizerID/days", reservationHandler.HandleListDays)
		authenticated.GET("/reservations/:organizerID/slots", reservationHandler.HandleListSlots)
		authenticated.POST("/reservations", reservationHandler.HandleConfirmReservation)
		authenticated.PUT("/reservations/hours", reservationHandler.HandleSaveOpeningHours)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Vybr Booking API"
	docs.SwaggerInfo.Description = "Event booking, reservations and recommendations."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
