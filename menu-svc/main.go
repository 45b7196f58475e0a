package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"neocafe-assistant/config"
)

type MenuItem struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	Category     string    `json:"category"`
	DietaryFlags []string  `json:"dietary_flags,omitempty"`
	Popular      bool      `json:"popular"`
	CreatedAt    time.Time `json:"created_at"`
}

type MenuResponse struct {
	Items []MenuItem `json:"items"`
}

const menuCacheKey = "menu:full"
const menuCacheTTL = 5 * time.Minute

var (
	db  *sql.DB
	rdb *redis.Client
	ctx = context.Background()
)

func ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS menu_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT DEFAULT '',
			price NUMERIC(8,2) NOT NULL,
			category TEXT DEFAULT '',
			dietary_flags JSONB DEFAULT '[]',
			popular BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema `%s`: %w", stmt, err)
		}
	}

	return nil
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "menu-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func loadMenu() ([]MenuItem, error) {
	rows, err := db.Query(`
		SELECT id, name, description, price, category, dietary_flags, popular, created_at
		FROM menu_items
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		var item MenuItem
		var flags []byte
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
			&item.Category, &flags, &item.Popular, &item.CreatedAt); err != nil {
			continue
		}
		json.Unmarshal(flags, &item.DietaryFlags)
		items = append(items, item)
	}
	return items, nil
}

func getMenu(w http.ResponseWriter, r *http.Request) {
	if cached, err := rdb.Get(ctx, menuCacheKey).Bytes(); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	items, err := loadMenu()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	payload, _ := json.Marshal(MenuResponse{Items: items})
	if err := rdb.Set(ctx, menuCacheKey, payload, menuCacheTTL).Err(); err != nil {
		log.Printf("Warning: failed to cache menu: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

func getMenuItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["itemId"]

	var item MenuItem
	var flags []byte
	err := db.QueryRow(`
		SELECT id, name, description, price, category, dietary_flags, popular, created_at
		FROM menu_items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.Name, &item.Description, &item.Price,
		&item.Category, &flags, &item.Popular, &item.CreatedAt)
	if err == sql.ErrNoRows {
		http.Error(w, "Menu item not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.Unmarshal(flags, &item.DietaryFlags)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func createMenuItem(w http.ResponseWriter, r *http.Request) {
	var item MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if item.ID == "" || item.Name == "" || item.Price <= 0 {
		http.Error(w, "Missing id, name or price", http.StatusBadRequest)
		return
	}

	flags, _ := json.Marshal(item.DietaryFlags)
	err := db.QueryRow(`
		INSERT INTO menu_items (id, name, description, price, category, dietary_flags, popular)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, item.ID, item.Name, item.Description, item.Price, item.Category, flags, item.Popular).
		Scan(&item.CreatedAt)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	invalidateMenuCache()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func updateMenuItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["itemId"]

	var item MenuItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flags, _ := json.Marshal(item.DietaryFlags)
	result, err := db.Exec(`
		UPDATE menu_items
		SET name = $1, description = $2, price = $3, category = $4, dietary_flags = $5, popular = $6
		WHERE id = $7
	`, item.Name, item.Description, item.Price, item.Category, flags, item.Popular, id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		http.Error(w, "Menu item not found", http.StatusNotFound)
		return
	}

	invalidateMenuCache()

	item.ID = id
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func deleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["itemId"]

	result, err := db.Exec("DELETE FROM menu_items WHERE id = $1", id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n, _ := result.RowsAffected(); n == 0 {
		http.Error(w, "Menu item not found", http.StatusNotFound)
		return
	}

	invalidateMenuCache()

	w.WriteHeader(http.StatusNoContent)
}

func invalidateMenuCache() {
	if err := rdb.Del(ctx, menuCacheKey).Err(); err != nil {
		log.Printf("Warning: failed to invalidate menu cache: %v", err)
	}
}

func main() {
	db = config.MustInitPostgres()
	rdb = config.MustInitRedis()

	if err := ensureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/api/menu", getMenu).Methods("GET")
	r.HandleFunc("/api/menu/items", createMenuItem).Methods("POST")
	r.HandleFunc("/api/menu/items/{itemId}", getMenuItem).Methods("GET")
	r.HandleFunc("/api/menu/items/{itemId}", updateMenuItem).Methods("PUT")
	r.HandleFunc("/api/menu/items/{itemId}", deleteMenuItem).Methods("DELETE")

	handler := cors.Default().Handler(r)

	log.Println("Menu service starting on port 8081")
	log.Fatal(http.ListenAndServe(":8081", handler))
}
