package bootstrap

import (
	"context"
	"log"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/config"
	"github.com/SpacksD/dulmar1-sub001/internal/controller"
	"github.com/SpacksD/dulmar1-sub001/internal/handler"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/locker"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/mailer"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/pdf"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/implementation"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/memory"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/internal/scheduler"
	"github.com/SpacksD/dulmar1-sub001/internal/service"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	"github.com/SpacksD/dulmar1-sub001/pkg/payment"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	pktNats "github.com/SpacksD/dulmar1-sub001/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	PricingController      controller.IPricingController
	PromotionController    controller.IPromotionController
	BookingController      controller.IBookingController
	PaymentController      controller.IPaymentController
	BillingController      controller.IBillingController
	SubscriptionController controller.ISubscriptionController
	NotificationHandler    *handler.NotificationHandler

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService service.INotificationService
	Scheduler           *scheduler.Scheduler

	// Used by cmd/billing_run
	BillingService service.IBillingService
	Logger         logger.ILogger

	closers []func()
}

// Close releases the broker connections.
func (c *Container) Close() {
	for _, fn := range c.closers {
		fn()
	}
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	clk := clock.Real{}
	c := &Container{Logger: sysLogger}

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	// NATS is optional: without it events are dropped and the inbox stays empty.
	var sink events.Sink
	var eventSub service.EventSubscriber
	if cfg.Nats.Enabled {
		natsPub, err := pktNats.NewPublisher(cfg.Nats.URL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			sink = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err := pktNats.NewSubscriber(cfg.Nats.URL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		} else {
			eventSub = natsSub
			c.closers = append(c.closers, natsSub.Close)
		}
	}
	publisher := events.NewNatsPublisher(sink, sysLogger)

	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// Redis backs the billing run lock; the local lock takes over when it is down.
	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.Redis.URL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	runLock := locker.NewFallbackLocker(locker.NewRedisLocker(rdb), locker.NewLocalLocker(), func(err error) {
		sysLogger.Warn("BILLING", "Redis lock unavailable, using local lock", map[string]interface{}{"error": err.Error()})
	})

	// 3. Core components
	publisherService := service.NewPublisherService(cfg.App.ItineraryTopic, pubSub)
	expander := schedule.NewExpander(uowFactory, clk, sysLogger, publisher, publisherService, cfg.Billing.HorizonMonths)
	generator := billing.NewGenerator(uowFactory, clk, sysLogger, pdf.NewFpdfRenderer(), emailService, publisher, billing.Config{
		DueDays:    cfg.Billing.DueDays,
		CenterName: cfg.Billing.CenterName,
		Currency:   cfg.Billing.Currency,
	})
	reconciler := payment.NewReconciler(uowFactory, clk, sysLogger, publisher, expander)
	runRegistry := memory.NewBillingRunRepository(time.Duration(cfg.Billing.RunRetention) * 24 * time.Hour)

	// 4. Services
	pricingService := service.NewPricingService(uowFactory)
	promotionService := service.NewPromotionService(uowFactory, clk, sysLogger)
	bookingService := service.NewBookingService(uowFactory, clk, sysLogger, publisher, expander, cfg.Billing.DueDays)
	paymentService := service.NewPaymentService(reconciler, sysLogger)
	billingService := service.NewBillingService(generator, runLock, runRegistry, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, clk, sysLogger, publisher, expander)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ItineraryTopic,
		uowFactory,
		emailService,
		clk,
		sysLogger,
	)

	// Notification Domain
	notifLogger := logger.NewIsolatedLogger(cfg.App.NotifyLogFilePath)
	notifRepo := implementation.NewNotificationRepository(db)
	notifService := service.NewNotificationService(notifRepo, eventSub, notifLogger)

	c.PricingController = controller.NewPricingController(pricingService)
	c.PromotionController = controller.NewPromotionController(promotionService)
	c.BookingController = controller.NewBookingController(bookingService)
	c.PaymentController = controller.NewPaymentController(paymentService)
	c.BillingController = controller.NewBillingController(billingService)
	c.SubscriptionController = controller.NewSubscriptionController(subscriptionService)
	c.NotificationHandler = handler.NewNotificationHandler(notifService, notifLogger)

	c.ConsumerService = consumerService
	c.NotificationService = notifService
	c.BillingService = billingService
	c.Scheduler = scheduler.New(cfg.Cron, clk, billingService, subscriptionService, sysLogger)
	return c
}
