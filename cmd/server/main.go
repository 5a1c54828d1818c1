/*
main.go - Application entry point

Initializes the catalog and transaction stores, the checkout engine, and
the HTTP boundary, then serves with graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Open the catalog store and the transaction store
  3. Wire the checkout engine and its HTTP handler
  4. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port                HTTP server port
  -catalog-db          Catalog database path (products, promotions, shipping rates, discounts)
  -tx-db               Transaction database path (inventory, checkouts, orders, idempotency, addresses)
  -base-url            Base URL used to build order permalinks
  -server-version      ISO date this server implements, for UCP-Agent version negotiation
  -simulation-secret   Shared secret gating POST /testing/simulate-shipping
  -shop-id             Shop id substituted into the discovery document

EXIT CODES:
  1 if required configuration (db paths, port) is unset, or if the server
  fails to start.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ucp-merchant/core/internal/catalogstore"
	"github.com/ucp-merchant/core/internal/checkout"
	"github.com/ucp-merchant/core/internal/httpapi"
	"github.com/ucp-merchant/core/internal/txstore"
)

func main() {
	port := flag.Int("port", 8080, "HTTP server port")
	catalogDBPath := flag.String("catalog-db", "catalog.db", "Catalog database path")
	txDBPath := flag.String("tx-db", "transactions.db", "Transaction database path")
	baseURL := flag.String("base-url", "http://localhost:8080", "Base URL used to build order permalinks")
	serverVersion := flag.String("server-version", "2026-01-01", "ISO date this server implements")
	simulationSecret := flag.String("simulation-secret", "", "Shared secret gating the simulate-shipping test hook")
	shopID := flag.String("shop-id", "", "Shop id substituted into the discovery document")
	flag.Parse()

	if *port == 0 || *catalogDBPath == "" || *txDBPath == "" {
		log.Println("port, catalog-db, and tx-db are required")
		os.Exit(1)
	}

	catalog, err := catalogstore.Open(*catalogDBPath)
	if err != nil {
		log.Fatalf("failed to open catalog database: %v", err)
	}
	defer catalog.Close()

	tx, err := txstore.Open(*txDBPath)
	if err != nil {
		log.Fatalf("failed to open transaction database: %v", err)
	}
	defer tx.Close()

	engine := checkout.New(catalog, tx, *baseURL)

	shop := *shopID
	if shop == "" {
		shop = "default-shop"
	}
	handler := httpapi.NewHandler(engine, tx, *serverVersion, *simulationSecret, shop)
	router := httpapi.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("checkout core listening on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server stopped")
}
