package main

import (
	"log"

	"clinic-backoffice-api/internal/config"
	"clinic-backoffice-api/internal/database"
	"clinic-backoffice-api/internal/liveness"
	"clinic-backoffice-api/internal/registry"
	"clinic-backoffice-api/internal/router"
	"clinic-backoffice-api/internal/routes"
	"clinic-backoffice-api/internal/waitingroom"
)

func main() {
	cfg := config.Load()

	// Init database
	database.InitDB(cfg.DatabasePath)

	// Waiting-room coordinator: store, registry, router, liveness monitor.
	// All constructed here and passed down explicitly.
	store := waitingroom.NewStore(waitingroom.DefaultGrace)
	reg := registry.New()
	rt := router.New(store, reg)

	monitor := liveness.New(reg, liveness.DefaultInterval)
	monitor.Start()
	defer monitor.Stop()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(rt, cfg.AllowedOrigin)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server starting on port %s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/employees")
	log.Println("  GET    /api/appointments")
	log.Println("  POST   /api/appointments")
	log.Println("  PUT    /api/appointments/:id")
	log.Println("  DELETE /api/appointments/:id")
	log.Println("  GET    /api/waitingroom")
	log.Println("  GET    /api/ws")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
