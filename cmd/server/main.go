package main

import (
	reservationshandler "github.com/timschopinski/hotel-management-system/internal/reservations/handler"
	reservationsrepo "github.com/timschopinski/hotel-management-system/internal/reservations/repository"
	reservationsservice "github.com/timschopinski/hotel-management-system/internal/reservations/service"
	reservationsvalidator "github.com/timschopinski/hotel-management-system/internal/reservations/validator"
	roomshandler "github.com/timschopinski/hotel-management-system/internal/rooms/handler"
	roomsrepo "github.com/timschopinski/hotel-management-system/internal/rooms/repository"
	roomsservice "github.com/timschopinski/hotel-management-system/internal/rooms/service"
	roomsvalidator "github.com/timschopinski/hotel-management-system/internal/rooms/validator"
	usershandler "github.com/timschopinski/hotel-management-system/internal/users/handler"
	usersrepo "github.com/timschopinski/hotel-management-system/internal/users/repository"
	usersservice "github.com/timschopinski/hotel-management-system/internal/users/service"
	usersvalidator "github.com/timschopinski/hotel-management-system/internal/users/validator"
	"github.com/timschopinski/hotel-management-system/pkg/app"
	"github.com/timschopinski/hotel-management-system/pkg/config"
	"github.com/timschopinski/hotel-management-system/pkg/kafka"
	"github.com/timschopinski/hotel-management-system/pkg/middleware"
	"github.com/timschopinski/hotel-management-system/pkg/token"
)

const ServiceName = "reservations-api"

const (
	eventsTopic    = "reservation-events"
	eventsDLQTopic = "reservation-events-dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting reservations API")

	producer := initProducer(cfg)
	if producer != nil {
		defer func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close event producer", "error", err)
			}
		}()
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenExpiry)
	auth := middleware.RequireAuth(tokens, cfg.Log)

	roomRepo := roomsrepo.NewMongoRoomRepository(cfg)

	reservationService := reservationsservice.NewReservationService(
		reservationsrepo.NewMongoReservationRepository(cfg),
		reservationsrepo.NewMongoLockRepository(cfg),
		roomRepo,
		reservationsvalidator.NewReservationValidator(cfg.Log),
		reservationEvents(producer),
		cfg,
	)

	roomService := roomsservice.NewRoomService(
		roomRepo,
		reservationService,
		roomsvalidator.NewRoomValidator(cfg.Log),
		roomEvents(producer),
		cfg,
	)

	userService := usersservice.NewUserService(
		usersrepo.NewMongoUserRepository(cfg),
		usersvalidator.NewUserValidator(cfg.Log),
		tokens,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		reservationshandler.NewReservationHandler(reservationService, cfg.Log, auth),
		roomshandler.NewRoomHandler(roomService, cfg.Log, auth),
		usershandler.NewUserHandler(userService, cfg.Log, auth),
	)
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka.LoadConfig()
	if !kafkaCfg.Enabled() {
		cfg.Log.Info("Kafka brokers not configured, domain events disabled")
		return nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, eventsTopic, eventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create event producer", "error", err)
	}

	cfg.Log.Info("Domain events enabled", "topic", eventsTopic, "brokers", kafkaCfg.Brokers)
	return producer
}

// The services check their publisher against nil, so a nil producer must
// become an untyped nil interface rather than a typed one.

func reservationEvents(producer *kafka.Producer) reservationsservice.EventPublisher {
	if producer == nil {
		return nil
	}
	return producer
}

func roomEvents(producer *kafka.Producer) roomsservice.EventPublisher {
	if producer == nil {
		return nil
	}
	return producer
}
