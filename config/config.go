package config

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"

	PolicyReject  = "reject"
	PolicyCorrect = "correct"
)

const (
	defaultLogLevel       = "info"
	defaultOrderStore     = StorePostgres
	defaultCurrency       = "eur"
	defaultPublicBaseURL  = "http://localhost:3000"
	defaultOrderSvcURL    = "http://localhost:8081"
	defaultStatsSvcURL    = "http://localhost:8084"
	defaultMongoURI       = "mongodb://localhost:27017"
	defaultMongoDB        = "kebab"
	defaultRedisHost      = "localhost"
	defaultRedisPort      = "6379"
	defaultKafkaBroker    = "localhost:9092"
	defaultDatabasePort   = "5432"
	defaultDatabaseHost   = "localhost"
	defaultDatabaseName   = "orders"
	defaultDatabaseUser   = "postgres"
	defaultSkipPreparing  = true
	defaultTotalPolicy    = PolicyReject
	defaultPaymentPolicy  = PolicyReject
	defaultRequestTimeout = 10 * time.Second
)

type Config struct {
	RunAddress string
	LogLevel   string

	OrderStore string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	MongoURI   string
	MongoDB    string

	RedisHost   string
	RedisPort   string
	KafkaBroker string

	StripeSecretKey     string
	PaymentCurrency     string
	PublicBaseURL       string
	TotalPolicy         string
	PaymentAmountPolicy string
	AllowSkipPreparing  bool

	OrderSvcURL    string
	StatsSvcURL    string
	RequestTimeout time.Duration
}

var (
	once      sync.Once
	singleton *Config
	loadErr   error
)

// New returns the process configuration. Command line and environment
// are parsed only once.
func New() (*Config, error) {
	once.Do(func() {
		singleton, loadErr = Load(os.Args[1:], os.Getenv)
	})
	return singleton, loadErr
}

// Load parses args and then applies environment overrides read through getenv.
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := Config{}

	fs := flag.NewFlagSet("kebab-orders", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "", "server address")
	fs.StringVar(&cfg.LogLevel, "l", defaultLogLevel, "log level")
	fs.StringVar(&cfg.OrderStore, "s", defaultOrderStore, "order store backend: postgres or mongo")
	fs.StringVar(&cfg.PublicBaseURL, "b", defaultPublicBaseURL, "public base URL of the ordering site")
	fs.StringVar(&cfg.OrderSvcURL, "order-svc", defaultOrderSvcURL, "order service URL")
	fs.StringVar(&cfg.StatsSvcURL, "stats-svc", defaultStatsSvcURL, "stats service URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", defaultRequestTimeout, "outgoing request timeout")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.DBHost = defaultDatabaseHost
	cfg.DBPort = defaultDatabasePort
	cfg.DBName = defaultDatabaseName
	cfg.DBUser = defaultDatabaseUser
	cfg.MongoURI = defaultMongoURI
	cfg.MongoDB = defaultMongoDB
	cfg.RedisHost = defaultRedisHost
	cfg.RedisPort = defaultRedisPort
	cfg.KafkaBroker = defaultKafkaBroker
	cfg.PaymentCurrency = defaultCurrency
	cfg.TotalPolicy = defaultTotalPolicy
	cfg.PaymentAmountPolicy = defaultPaymentPolicy
	cfg.AllowSkipPreparing = defaultSkipPreparing

	// if environment variable is set, then using it
	overrides := map[string]*string{
		"RUN_ADDRESS":           &cfg.RunAddress,
		"LOG_LEVEL":             &cfg.LogLevel,
		"ORDER_STORE":           &cfg.OrderStore,
		"DB_HOST":               &cfg.DBHost,
		"DB_PORT":               &cfg.DBPort,
		"DB_NAME":               &cfg.DBName,
		"DB_USER":               &cfg.DBUser,
		"DB_PASSWORD":           &cfg.DBPassword,
		"MONGO_URI":             &cfg.MongoURI,
		"MONGO_DB":              &cfg.MongoDB,
		"REDIS_HOST":            &cfg.RedisHost,
		"REDIS_PORT":            &cfg.RedisPort,
		"KAFKA_BROKER":          &cfg.KafkaBroker,
		"STRIPE_SECRET_KEY":     &cfg.StripeSecretKey,
		"PAYMENT_CURRENCY":      &cfg.PaymentCurrency,
		"PUBLIC_BASE_URL":       &cfg.PublicBaseURL,
		"TOTAL_POLICY":          &cfg.TotalPolicy,
		"PAYMENT_AMOUNT_POLICY": &cfg.PaymentAmountPolicy,
		"ORDER_SVC_URL":         &cfg.OrderSvcURL,
		"STATS_SVC_URL":         &cfg.StatsSvcURL,
	}
	for key, target := range overrides {
		if value := getenv(key); value != "" {
			*target = value
		}
	}

	if value := getenv("ALLOW_SKIP_PREPARING"); value != "" {
		allow, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("ALLOW_SKIP_PREPARING: %w", err)
		}
		cfg.AllowSkipPreparing = allow
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.OrderStore {
	case StorePostgres, StoreMongo:
	default:
		return fmt.Errorf("unknown order store %q", c.OrderStore)
	}
	for name, policy := range map[string]string{"total": c.TotalPolicy, "payment amount": c.PaymentAmountPolicy} {
		if policy != PolicyReject && policy != PolicyCorrect {
			return fmt.Errorf("unknown %s policy %q", name, policy)
		}
	}
	if c.PaymentCurrency == "" {
		return errors.New("payment currency must not be empty")
	}
	return nil
}

// Addr returns the configured run address or fallback when none was given.
func (c *Config) Addr(fallback string) string {
	if c.RunAddress != "" {
		return c.RunAddress
	}
	return fallback
}

func (c *Config) PostgresDSN() string {
	return "host=" + c.DBHost + " port=" + c.DBPort + " user=" + c.DBUser +
		" password=" + c.DBPassword + " dbname=" + c.DBName + " sslmode=disable"
}

// NewLogger creates logger with log level
func NewLogger(level string) (*zap.Logger, error) {
	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func MustInitPostgres(cfg *Config, logger *zap.Logger) *sql.DB {
	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err = db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitMongo(ctx context.Context, cfg *Config, logger *zap.Logger) *mongo.Database {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	return client.Database(cfg.MongoDB)
}

func MustInitRedis(cfg *Config, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisHost + ":" + cfg.RedisPort,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	return client
}

func NewKafkaReader(cfg *Config, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.KafkaBroker},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(cfg *Config, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBroker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}
