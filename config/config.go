package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	MQNone     = "none"
	MQRabbitMQ = "rabbitmq"
	MQPubSub   = "pubsub"
)

type Config struct {
	ServerPort     int
	RequestTimeout time.Duration
	StoreBackend   string
	ListMaxCount   int
	Auth           AuthConfig
	Database       DatabaseConfig
	Mongo          MongoConfig
	MQ             MQConfig
}

// AuthConfig holds the signing secret and password hashing parameters.
// JWTSecret is read once at startup and never mutated afterwards.
type AuthConfig struct {
	JWTSecret       string
	TokenTTL        time.Duration
	BcryptCost      int
	HashConcurrency int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type MongoConfig struct {
	URL      string
	Database string
}

type MQConfig struct {
	Backend           string
	UserEventsChannel string
	RabbitMQ          RabbitMQConfig
	PubSub            PubSubConfig
}

type RabbitMQConfig struct {
	URL             string
	PrefetchCount   int
	QueueDurable    bool
	QueueAutoDelete bool
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "accounts"),
		Password: getEnv("DB_PASSWORD", "password"),
		DBName:   getEnv("DB_NAME", "accounts_db"),
		UseSSL:   getEnvBool("DB_USE_SSL", false),
	}

	authConfig := AuthConfig{
		JWTSecret:       strings.TrimSpace(getEnv("JWT_SECRET", "")),
		TokenTTL:        getEnvDuration("TOKEN_TTL", 0),
		BcryptCost:      getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
		HashConcurrency: getEnvInt("HASH_CONCURRENCY", runtime.GOMAXPROCS(0)),
	}

	mqConfig := MQConfig{
		Backend:           strings.ToLower(getEnv("MQ_BACKEND", MQNone)),
		UserEventsChannel: getEnv("MQ_USER_EVENTS_CHANNEL", "user-events"),
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 0),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}

	return Config{
		ServerPort:     getEnvInt("SERVER_PORT", 8080),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),
		StoreBackend:   strings.ToLower(getEnv("STORE_BACKEND", StoreMongo)),
		ListMaxCount:   getEnvInt("LIST_MAX_COUNT", 100),
		Auth:           authConfig,
		Database:       dbConfig,
		Mongo: MongoConfig{
			URL:      getEnv("MONGODB_URL", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "accounts"),
		},
		MQ: mqConfig,
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.Atoi(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}
