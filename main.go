package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/VariaSlu/js-project-api/internal/handlers"
	"github.com/VariaSlu/js-project-api/internal/middleware"
	"github.com/VariaSlu/js-project-api/internal/models"
	"github.com/VariaSlu/js-project-api/internal/repositories"
	"github.com/VariaSlu/js-project-api/internal/services"
	"github.com/VariaSlu/js-project-api/pkg/rabbitmq"
)

// Config is the process-wide configuration, loaded once at startup and passed
// into whatever needs it.
type Config struct {
	AppPort     string
	DatabaseURL string
	JWTSecret   string
	RabbitMQURL string
}

func loadConfig() Config {
	viper.SetDefault("APP_PORT", ":8080")
	viper.AutomaticEnv()

	cfg := Config{
		AppPort:     viper.GetString("APP_PORT"),
		DatabaseURL: viper.GetString("DATABASE_URL"),
		JWTSecret:   viper.GetString("JWT_SECRET"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	return cfg
}

// openDatabase picks the driver from the DSN scheme: postgres URLs go to the
// postgres driver, anything else is treated as a sqlite file path.
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}

// buildApp wires repositories, services and handlers into a Fiber app.
// mqClient may be nil when no broker is configured.
func buildApp(db *gorm.DB, jwtSecret string, mqClient *rabbitmq.Client) (*fiber.App, error) {
	if err := db.AutoMigrate(&models.User{}, &models.Thought{}); err != nil {
		return nil, err
	}

	userRepo := repositories.NewGORMUserRepository(db)
	thoughtRepo := repositories.NewGORMThoughtRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	thoughtService := services.NewThoughtService(thoughtRepo, mqClient)

	authHandler := handlers.NewAuthHandler(authService)
	thoughtHandler := handlers.NewThoughtHandler(thoughtService)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	authHandler.RegisterRoutes(app)
	thoughtHandler.RegisterRoutes(app, middleware.AuthRequired(authService))

	return app, nil
}

func main() {
	cfg := loadConfig()

	db, err := openDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// The broker is optional: without it the API runs fine and just skips
	// event publication.
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, events disabled: %v", err)
			mqClient = nil
		} else {
			defer mqClient.Close()
		}
	}

	app, err := buildApp(db, cfg.JWTSecret, mqClient)
	if err != nil {
		log.Fatalf("Failed to build app: %v", err)
	}

	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for thought events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received thought event (tag %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeThoughtEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}
