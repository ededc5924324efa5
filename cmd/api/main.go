package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/matheusmosca/order-fulfillment-api/internal/catalog"
	"github.com/matheusmosca/order-fulfillment-api/internal/checkout"
	"github.com/matheusmosca/order-fulfillment-api/internal/identity"
	"github.com/matheusmosca/order-fulfillment-api/internal/orders"
)

// config agrupa a configuração do processo, carregada uma única vez na
// inicialização
type config struct {
	Port           string
	ServiceName    string
	DatabaseUser   string
	DatabasePass   string
	DatabaseHost   string
	DatabasePort   string
	DatabaseName   string
	MigrationsPath string
	RedisAddr      string
	TokenSecret    string
}

// readConfig lê a configuração do ambiente. O segredo de assinatura das
// credenciais não tem default: sem ele o processo não sobe.
func readConfig() (config, error) {
	secret := os.Getenv("TOKEN_SECRET")
	if secret == "" {
		return config{}, errors.New("TOKEN_SECRET environment variable is required")
	}

	return config{
		Port:           getEnv("PORT", "8080"),
		ServiceName:    getEnv("SERVICE_NAME", "order-fulfillment-api"),
		DatabaseUser:   getEnv("DATABASE_USER", "root"),
		DatabasePass:   getEnv("DATABASE_PASSWORD", "pass"),
		DatabaseHost:   getEnv("DATABASE_HOST", "localhost"),
		DatabasePort:   getEnv("DATABASE_PORT", "5432"),
		DatabaseName:   getEnv("DATABASE_NAME", "fulfillment_db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		TokenSecret:    secret,
	}, nil
}

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize OpenTelemetry
	tp, err := initTracer(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := initMetrics(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	// Initialize database
	dbPool, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbPool.Close()

	// Apply schema migrations before accepting traffic
	if err := runMigrations(cfg); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis client para o cache de leitura do catálogo
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	issuer, err := identity.NewTokenIssuer(cfg.TokenSecret)
	if err != nil {
		log.Fatalf("Failed to create token issuer: %v", err)
	}

	tracer := tp.Tracer(cfg.ServiceName)

	// Initialize dependencies
	userRepository := identity.NewPostgresRepository(dbPool)
	userUseCase := identity.NewUserUseCase(userRepository, issuer)
	identityHandler := identity.NewHandler(userUseCase, tracer)

	catalogRepository := catalog.NewPostgresRepository(dbPool)
	catalogCache := catalog.NewRedisCache(redisClient)
	catalogUseCase := catalog.NewCatalogUseCase(catalogRepository, catalogCache)
	catalogHandler := catalog.NewHandler(catalogUseCase, tracer)

	checkoutRepository := checkout.NewPostgresRepository(dbPool)
	checkoutUseCase := checkout.NewCheckoutUseCase(checkoutRepository)
	checkoutHandler := checkout.NewHandler(checkoutUseCase, tracer)

	ordersRepository := orders.NewPostgresRepository(dbPool)
	ordersUseCase := orders.NewOrderQueryUseCase(ordersRepository)
	ordersHandler := orders.NewHandler(ordersUseCase, tracer)

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware(cfg.ServiceName))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": cfg.ServiceName})
	})

	// Public routes
	r.POST("/signup", identityHandler.Signup)
	r.POST("/login", identityHandler.Login)
	r.GET("/products", catalogHandler.ListProducts)
	r.GET("/products/:id", catalogHandler.GetProduct)

	// Protected routes: exigem credencial portadora válida
	authorized := r.Group("/", identity.AuthRequired(issuer))
	authorized.POST("/checkout", checkoutHandler.Checkout)
	authorized.GET("/orders", ordersHandler.ListOrders)
	authorized.GET("/orders/:id", ordersHandler.GetOrder)

	log.Printf("🚀 Order Fulfillment API listening on port %s", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB(cfg config) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DatabaseUser,
		cfg.DatabasePass,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	// Configure connection pool
	poolConfig.MaxConns = 30
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Println("✅ Connected to database with connection pool")
			return pool, nil
		}
		log.Printf("⏳ Waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

// runMigrations aplica as migrações de esquema. Usa database/sql com lib/pq
// porque é o driver que o golang-migrate espera.
func runMigrations(cfg config) error {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.DatabaseUser,
		cfg.DatabasePass,
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseName,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cfg.MigrationsPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	log.Println("✅ Schema migrations applied")
	return nil
}

func initTracer(cfg config) (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics(cfg config) (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
