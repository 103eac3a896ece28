package main

import (
	"context"

	calendarconfig "vistoria/internal/calendar/config"
	"vistoria/internal/calendar/decoration"
	"vistoria/internal/calendar/events"
	calendarhandler "vistoria/internal/calendar/handler"
	calendarrepo "vistoria/internal/calendar/repository"
	calendarservice "vistoria/internal/calendar/service"
	calendarvalidator "vistoria/internal/calendar/validator"
	equipmenthandler "vistoria/internal/equipment/handler"
	equipmentrepo "vistoria/internal/equipment/repository"
	equipmentservice "vistoria/internal/equipment/service"
	equipmentvalidator "vistoria/internal/equipment/validator"
	"vistoria/pkg/app"
	"vistoria/pkg/config"
	"vistoria/pkg/kafka"
	kafka_config "vistoria/pkg/kafka/config"
	kafka_middleware "vistoria/pkg/kafka/middleware"
	"vistoria/pkg/metrics"
)

const ServiceName = "calendar"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Calendar service")

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New("vistoria")
	}

	serverApp := app.NewApplication(cfg, m, cfg.Client.Mongo)

	producer, publisher := initPublisher(cfg, m)
	calendarService, equipmentService := initServices(cfg, m, publisher)

	if cfg.KafkaEnabled() {
		consumer := initListener(cfg, m, calendarService)
		serverApp.AddWorker("calendar-events", consumer)
		serverApp.OnShutdown(func() {
			if err := consumer.Close(); err != nil {
				cfg.Log.Warn("Failed to close kafka consumer", "error", err)
			}
		})
	}
	if producer != nil {
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Warn("Failed to close kafka producer", "error", err)
			}
		})
	}
	serverApp.OnShutdown(cfg.GracefulShutdown)

	serverApp.SetApp(
		calendarhandler.NewCalendarHandler(calendarService, cfg.Log),
		equipmenthandler.NewEquipmentHandler(equipmentService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, m *metrics.Metrics) (*kafka.Producer, events.Publisher) {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka disabled, lifecycle events will not be published")
		return nil, events.NopPublisher{}
	}

	kcfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	cfg.Log.Info("Kafka configured", kcfg.LogArgs()...)
	producer, err := kafka.NewProducer(kcfg, cfg.KafkaTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	if m != nil {
		producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	}
	return producer, events.NewKafkaPublisher(producer, cfg.InstanceID)
}

func initListener(cfg *config.Config, m *metrics.Metrics, refresher events.Refresher) *kafka.Consumer {
	kcfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid kafka configuration", "error", err)
	}
	listener := events.NewListener(cfg.InstanceID, refresher, cfg.Log)
	consumer, err := kafka.NewConsumer(kcfg, cfg.KafkaTopic, cfg.KafkaGroupID, listener.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	if m != nil {
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	}
	return consumer
}

func initServices(cfg *config.Config, m *metrics.Metrics, publisher events.Publisher) (calendarservice.CalendarService, equipmentservice.EquipmentService) {
	rules, err := calendarconfig.LoadRules(cfg.RulesFile, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to load calendar rules", "error", err, "path", cfg.RulesFile)
	}

	equipmentRepo := equipmentrepo.NewMongoEquipmentRepository(cfg)
	calendarService := calendarservice.NewCalendarService(
		equipmentRepo,
		calendarrepo.NewMongoBookingRepository(cfg),
		calendarrepo.NewMongoTransitionRepository(cfg),
		calendarvalidator.NewBookingValidator(cfg.Log, cfg.Location, rules.DailyCapSeconds()),
		decoration.NewDecorator(rules.Colors.Palette, rules.Colors.Default),
		publisher,
		m,
		cfg,
	)

	ctx := context.Background()
	if err := calendarService.Load(ctx); err != nil {
		cfg.Log.Fatal("Failed to load calendar snapshot", "error", err)
	}
	report, err := calendarService.Audit(ctx)
	switch {
	case err != nil:
		cfg.Log.Warn("Startup reconciliation audit failed", "error", err)
	case report.Clean():
		cfg.Log.Info("Startup reconciliation audit clean")
	default:
		cfg.Log.Error("Startup reconciliation audit found inconsistencies", "findings", len(report.Findings))
	}

	equipmentService := equipmentservice.NewEquipmentService(
		equipmentRepo,
		equipmentvalidator.NewEquipmentValidator(cfg.Log),
		calendarService,
		publisher,
		cfg,
	)

	cfg.Log.Info("Calendar service initialized", "database", cfg.MongoDatabaseName, "daily_cap_hours", rules.DailyCapHours)
	return calendarService, equipmentService
}
