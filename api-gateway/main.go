package main

import (
	"log"
	"net/http"

	"neocafe-assistant/api-gateway/internal/gateway"
	"neocafe-assistant/config"

	"github.com/rs/cors"
)

func main() {
	cfg := gateway.Config{
		ChatSvcURL: config.Getenv("CHAT_SVC_URL", "http://localhost:8084"),
		MenuSvcURL: config.Getenv("MENU_SVC_URL", "http://localhost:8081"),
	}

	gw := gateway.NewGateway(cfg, &http.Client{})

	r := gw.SetupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:8080", "http://127.0.0.1:8080", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	handler := c.Handler(r)

	log.Println("API Gateway starting on port 8080")
	log.Fatal(http.ListenAndServe(":8080", handler))
}
