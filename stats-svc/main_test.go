package main

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupRedis(t *testing.T) *miniredis.Miniredis {
	srv := miniredis.RunT(t)
	rdb = redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return srv
}

func TestProcessOrderMessage_Counters(t *testing.T) {
	srv := setupRedis(t)

	msg := OrderUpdateMessage{
		Kind:      "order_finalized",
		SessionID: "s1",
		Order: OrderBody{
			ID: "ORD-ABC12345",
			Items: []OrderLine{
				{CatalogID: "latte", Quantity: 2},
				{CatalogID: "croissant", Quantity: 1},
			},
			Total: 12.25,
		},
		Timestamp: time.Now(),
	}

	processOrderMessage(msg)

	day := time.Now().Format("2006-01-02")

	score, err := rdb.ZScore(ctx, "stats:daily:"+day, "latte").Result()
	if err != nil {
		t.Fatalf("missing daily counter: %v", err)
	}
	if score != 2 {
		t.Fatalf("expected latte daily count 2, got %v", score)
	}

	score, err = rdb.ZScore(ctx, "stats:alltime", "croissant").Result()
	if err != nil || score != 1 {
		t.Fatalf("expected croissant alltime count 1, got %v (%v)", score, err)
	}

	revenue, err := rdb.Get(ctx, "stats:revenue:"+day).Int64()
	if err != nil || revenue != 1225 {
		t.Fatalf("expected 1225 revenue cents, got %d (%v)", revenue, err)
	}

	// a redelivered message for the same order id must not count again
	processOrderMessage(msg)
	score, _ = rdb.ZScore(ctx, "stats:alltime", "latte").Result()
	if score != 2 {
		t.Fatalf("expected latte alltime count to stay 2 after redelivery, got %v", score)
	}
	revenue, _ = rdb.Get(ctx, "stats:revenue:"+day).Int64()
	if revenue != 1225 {
		t.Fatalf("expected revenue to stay 1225 after redelivery, got %d", revenue)
	}

	// a distinct order accumulates
	second := msg
	second.Order.ID = "ORD-DEF67890"
	processOrderMessage(second)
	score, _ = rdb.ZScore(ctx, "stats:alltime", "latte").Result()
	if score != 4 {
		t.Fatalf("expected latte alltime count 4 after second order, got %v", score)
	}

	if !srv.Exists("stats:daily:" + day) {
		t.Fatal("daily key should exist")
	}
	if !srv.Exists("stats:seen:ORD-ABC12345") {
		t.Fatal("seen marker should exist")
	}
}

func TestUpdateItemCounters_ZeroQuantityNormalized(t *testing.T) {
	setupRedis(t)

	updateItemCounters(OrderBody{
		ID:    "ORD-X",
		Items: []OrderLine{{CatalogID: "espresso", Quantity: 0}},
	})

	score, err := rdb.ZScore(ctx, "stats:alltime", "espresso").Result()
	if err != nil || score != 1 {
		t.Fatalf("expected espresso count 1, got %v (%v)", score, err)
	}
}
