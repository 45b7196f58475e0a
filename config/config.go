package config

import (
	"context"
	"database/sql"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

func MustInitPostgres() *sql.DB {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")

	connStr := "host=" + dbHost + " port=" + dbPort + " user=" + dbUser +
		" password=" + dbPassword + " dbname=" + dbName + " sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("Failed to ping database:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: os.Getenv("REDIS_HOST") + ":" + os.Getenv("REDIS_PORT"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}

func NewKafkaReader(topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{os.Getenv("KAFKA_BROKER")},
		Topic:   topic,
		GroupID: groupID,
	})
}

func NewKafkaWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(os.Getenv("KAFKA_BROKER")),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

// Getenv returns the variable's value or fallback when it is unset or empty.
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MenuServiceURL is the base URL of the menu catalog service. Empty means
// run from the built-in fallback menu.
func MenuServiceURL() string {
	return os.Getenv("MENU_SERVICE_URL")
}

// WebhookURL is the dashboard bridge endpoint for order notifications.
// Empty disables the webhook channel.
func WebhookURL() string {
	return os.Getenv("NOTIFY_WEBHOOK_URL")
}

// OrderDropDir is the spool directory for the file fallback channel.
func OrderDropDir() string {
	return Getenv("ORDER_DROP_DIR", "/tmp/neocafe-orders")
}

// PublicBaseURL is what QR codes point at.
func PublicBaseURL() string {
	return Getenv("PUBLIC_BASE_URL", "http://localhost:8084")
}

// PhrasesFile is an optional YAML file overriding the built-in phrase sets.
func PhrasesFile() string {
	return os.Getenv("PHRASES_FILE")
}

func ServicePort() string {
	return Getenv("PORT", "8084")
}
