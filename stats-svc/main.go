package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"neocafe-assistant/config"
)

// OrderUpdateMessage mirrors the payload published on the orders topic.
type OrderUpdateMessage struct {
	Kind      string    `json:"kind"`
	SessionID string    `json:"session_id"`
	Order     OrderBody `json:"order"`
	Timestamp time.Time `json:"timestamp"`
}

type OrderBody struct {
	ID    string      `json:"id"`
	Items []OrderLine `json:"items"`
	Total float64     `json:"total"`
}

type OrderLine struct {
	CatalogID string `json:"catalog_id"`
	Quantity  int    `json:"quantity"`
}

var (
	rdb *redis.Client
	ctx = context.Background()
)

// updateItemCounters bumps the daily and all-time sales leaderboards per
// catalog item.
func updateItemCounters(order OrderBody) {
	day := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf("stats:daily:%s", day)
	allTimeKey := "stats:alltime"

	for _, line := range order.Items {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		rdb.ZIncrBy(ctx, dailyKey, float64(qty), line.CatalogID)
		rdb.ZIncrBy(ctx, allTimeKey, float64(qty), line.CatalogID)
	}
	rdb.Expire(ctx, dailyKey, 7*24*time.Hour)
}

// updateRevenue accumulates the day's gross revenue in cents to avoid float
// drift in the counter.
func updateRevenue(order OrderBody) {
	day := time.Now().Format("2006-01-02")
	revenueKey := fmt.Sprintf("stats:revenue:%s", day)

	cents := int64(order.Total*100 + 0.5)
	rdb.IncrBy(ctx, revenueKey, cents)
	rdb.Expire(ctx, revenueKey, 35*24*time.Hour)
}

// alreadyCounted marks the order id as seen and reports whether it was seen
// before. The broadcaster may redeliver a finalized order, and the counters
// must not move twice for the same id.
func alreadyCounted(orderID string) bool {
	ok, err := rdb.SetNX(ctx, "stats:seen:"+orderID, 1, 35*24*time.Hour).Result()
	if err != nil {
		log.Printf("Error checking seen marker for order %s: %v", orderID, err)
		return false
	}
	return !ok
}

func processOrderMessage(msg OrderUpdateMessage) {
	if msg.Order.ID == "" {
		log.Println("Skipping finalized order with empty id")
		return
	}
	if alreadyCounted(msg.Order.ID) {
		log.Printf("Order %s already recorded, skipping", msg.Order.ID)
		return
	}

	log.Printf("Processing finalized order %s: %d items, total %.2f",
		msg.Order.ID, len(msg.Order.Items), msg.Order.Total)

	updateItemCounters(msg.Order)
	updateRevenue(msg.Order)

	log.Printf("Successfully recorded stats for order %s", msg.Order.ID)
}

func startConsumer() {
	reader := config.NewKafkaReader("orders", "stats-svc-consumer")
	defer reader.Close()

	log.Println("Starting stats consumer...")
	for {
		message, err := reader.ReadMessage(context.Background())
		if err != nil {
			log.Printf("Error reading message: %v", err)
			continue
		}

		var msg OrderUpdateMessage
		if err := json.Unmarshal(message.Value, &msg); err != nil {
			log.Printf("Error unmarshaling message: %v", err)
			continue
		}

		// draft previews also flow on this topic; only count placed orders
		if msg.Kind == "order_finalized" {
			processOrderMessage(msg)
		}
	}
}

func main() {
	rdb = config.MustInitRedis()
	defer rdb.Close()

	startConsumer()
}
