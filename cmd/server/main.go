package main

import (
	"context"
	"net/http"
	"os"

	webAdapter "beet-backend/internal/adapters/web"
	"beet-backend/internal/app"
	"beet-backend/internal/core"
	"beet-backend/internal/db"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	return log
}

func main() {
	_ = godotenv.Load()
	log := newLogger()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	units := core.NewUnitCatalog(pool)
	suppliers := core.NewSupplierService(pool)
	costing := core.NewCostingService(pool, suppliers, log)
	inventory := core.NewInventoryService(pool, log)
	invoices := core.NewInvoiceService(pool, inventory, log)

	svc := app.NewAppService(pool, units, suppliers, costing, inventory, invoices)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, log, allowedOrigins)

	log.Infof("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
