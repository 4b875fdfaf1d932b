package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/app"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/config"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/constants"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/controllers"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/routes"
	"github.com/harshil90956/CRM-backend/backend/services/bookings-service/internal/services"
	"github.com/harshil90956/CRM-backend/backend/shared/go-middleware"
	"github.com/harshil90956/CRM-backend/backend/shared/go-repositories"
	"github.com/harshil90956/CRM-backend/backend/shared/go-seeding"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/twilio/twilio-go"
	_ "time/tzdata"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize bookings-service:", err)
	}
	defer application.Close()

	if _, err := app.Migrate(context.Background(), application.DB); err != nil {
		utils.Logger.Fatal("Failed to apply migrations:", err)
	}

	// Repositories
	txManager := repositories.NewTxManager(application.DB)

	if cfg.LDFlag_SeedDbWithTestData {
		if _, err := seeding.SeedDemoUnits(context.Background(), txManager.Repos().Units); err != nil {
			utils.Logger.Fatal("Failed to seed demo units:", err)
		}
	}

	// Side-effect adapters
	var events services.EventPublisher = services.NoopEventPublisher{}
	if application.EventProducer != nil {
		events = services.NewKafkaEventPublisher(application.EventProducer, cfg.KafkaTopic)
	}
	var cache services.BookingCache = services.NoopBookingCache{}
	var cachePinger controllers.Pinger
	if application.Redis != nil {
		cache = services.NewRedisBookingCache(application.Redis, constants.BookingCacheTTL)
		cachePinger = app.RedisPinger{Client: application.Redis}
	}
	var notifier services.Notifier = services.NoopNotifier{}
	if cfg.LDFlag_SendBookingNotifications {
		notifier = newNotifier(cfg)
	}

	// Services
	unitRegistry := services.NewUnitRegistry(txManager)
	paymentService := services.NewPaymentService(txManager, events)
	coordinator := services.NewLifecycleCoordinator(unitRegistry, paymentService)
	bookingService := services.NewBookingService(txManager, coordinator, paymentService, events, cache, notifier)
	staleHoldService := services.NewStaleHoldService(txManager.Repos().Bookings)

	// Controllers
	healthController := controllers.NewHealthController(application.DB, cachePinger)
	bookingController := controllers.NewBookingController(bookingService)
	paymentController := controllers.NewPaymentController(paymentService)
	unitController := controllers.NewUnitController(unitRegistry)

	// Router setup
	router := mux.NewRouter()

	// Public Routes
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods(http.MethodGet)

	// Secured routes for staff
	secured := router.NewRoute().Subrouter()
	if cfg.RSAPublicKey != nil {
		secured.Use(middleware.AuthMiddleware(cfg.RSAPublicKey))
	} else {
		secured.Use(middleware.TenantHeaderMiddleware)
	}
	if application.Redis != nil {
		secured.Use(middleware.RateLimit(application.Redis, constants.RateLimitKeyPrefix, constants.RateLimitRequests, constants.RateLimitWindow))
	}

	// Bookings
	secured.HandleFunc(routes.BookingsBase, bookingController.CreateBookingHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingsBase, bookingController.ListBookingsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingsStatuses, bookingController.ListStatusesHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingByID, bookingController.GetBookingHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingTimeline, bookingController.GetBookingTimelineHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingHistory, bookingController.GetBookingHistoryHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.BookingApproveHold, bookingController.ApproveHoldHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingRejectHold, bookingController.RejectHoldHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingApprove, bookingController.ApproveBookingHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingReject, bookingController.RejectBookingHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingCancel, bookingController.CancelBookingHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.BookingStatus, bookingController.UpdateStatusHandler).Methods(http.MethodPatch)

	// Payments
	secured.HandleFunc(routes.PaymentsBase, paymentController.CreatePaymentHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PaymentsBase, paymentController.ListPaymentsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PaymentsSummary, paymentController.SummaryHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PaymentByID, paymentController.GetPaymentHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.PaymentByID, paymentController.UpdatePaymentHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.PaymentMarkReceived, paymentController.MarkReceivedHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.PaymentCancel, paymentController.CancelPaymentHandler).Methods(http.MethodPost)

	// Units
	secured.HandleFunc(routes.UnitsBase, unitController.ListUnitsHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.UnitByID, unitController.GetUnitHandler).Methods(http.MethodGet)
	secured.HandleFunc(routes.AdminUnitsBase, unitController.CreateUnitHandler).Methods(http.MethodPost)
	secured.HandleFunc(routes.AdminUnitByID, unitController.UpdateUnitHandler).Methods(http.MethodPatch)
	secured.HandleFunc(routes.AdminUnitSold, unitController.MarkSoldHandler).Methods(http.MethodPost)

	// Cron job setup
	c := cron.New(cron.WithLocation(time.UTC))
	_, err = c.AddFunc(cfg.LDFlag_StaleHoldCheckCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.StaleHoldJobTimeout)
		defer cancel()
		utils.Logger.Info("Starting stale hold report cron job...")
		if _, err := staleHoldService.Report(ctx); err != nil {
			utils.Logger.WithError(err).Error("Stale hold report failed")
		}
	})
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to schedule stale hold report cron")
	}
	c.Start()
	defer c.Stop()
	utils.Logger.Infof("Scheduled stale hold report: %s", cfg.LDFlag_StaleHoldCheckCron)

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", utils.TenantHeader},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("bookings-service failed to start:", err)
	}
}

func newNotifier(cfg *config.Config) services.Notifier {
	var sendgridClient *sendgrid.Client
	if cfg.SendGridAPIKey != "" {
		sendgridClient = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	var twilioClient *twilio.RestClient
	if cfg.TwilioAccountSID != "" && cfg.TwilioAuthToken != "" {
		twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		})
	}
	if sendgridClient == nil && twilioClient == nil {
		utils.Logger.Warn("Booking notifications enabled but no SendGrid or Twilio credentials; notifications disabled")
		return services.NoopNotifier{}
	}
	return services.NewNotificationService(services.NotificationSettings{
		OrgName:         cfg.OrganizationName,
		FromEmail:       cfg.LDFlag_SendgridFromEmail,
		FromPhone:       cfg.LDFlag_TwilioFromPhone,
		SendgridSandbox: cfg.LDFlag_SendgridSandboxMode,
	}, sendgridClient, twilioClient)
}
