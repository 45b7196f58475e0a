package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"neocafe-assistant/chat-svc/internal/api/ws"
	"neocafe-assistant/chat-svc/internal/service"
	"neocafe-assistant/chat-svc/internal/storage"
	"neocafe-assistant/config"

	httpapi "neocafe-assistant/chat-svc/internal/api/http"
)

func ensureSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id TEXT PRIMARY KEY,
			items JSONB NOT NULL,
			delivery_type TEXT NOT NULL,
			delivery_location TEXT DEFAULT '',
			payment_method TEXT NOT NULL,
			total NUMERIC(8,2) NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			qr_code BYTEA
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}

	return nil
}

func main() {
	db := config.MustInitPostgres()
	defer db.Close()

	if err := ensureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	rdb := config.MustInitRedis()
	defer rdb.Close()

	kafkaWriter := config.NewKafkaWriter("orders")
	defer kafkaWriter.Close()

	orders := storage.NewPostgresRepository(db)
	sessions := storage.NewRedisSessionStore(rdb, 24*time.Hour)
	menu := storage.NewMenuClient(config.MenuServiceURL(), nil)

	hub := ws.NewHub()
	go hub.Run()

	channels := []service.NotificationChannel{
		storage.NewKafkaChannel(kafkaWriter),
		hub,
		storage.NewFileDropChannel(config.OrderDropDir()),
	}
	if url := config.WebhookURL(); url != "" {
		channels = append(channels, storage.NewWebhookChannel(url, nil))
	}
	broadcaster := service.NewBroadcaster(service.DefaultChannelTimeout, channels...)

	phrases := service.DefaultPhrases()
	if path := config.PhrasesFile(); path != "" {
		loaded, err := service.LoadPhraseFile(path)
		if err != nil {
			log.Fatal("Failed to load phrase file:", err)
		}
		phrases = loaded
	}

	matcher := service.NewMatcher()
	normalizer := service.NewIntentNormalizer(matcher, phrases)
	dialog := service.NewVerificationDialog(phrases)
	qr := &service.PickupQRGenerator{BaseURL: config.PublicBaseURL()}
	finalizer := service.NewOrderFinalizer(orders, qr, service.SystemClock)

	engine := service.NewEngine(sessions, menu, normalizer, matcher, dialog, finalizer, broadcaster)

	handler := httpapi.NewHandler(engine, orders)
	router := httpapi.NewRouter(handler, hub)

	port := config.ServicePort()
	log.Printf("Chat service starting on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, router))
}
