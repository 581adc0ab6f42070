// Command stubgatewayd runs the local stub gateway used for development and
// integration testing of the client engine.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"votecast/internal/config"
	"votecast/internal/stubgateway"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	srv, err := stubgateway.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create stub gateway: %v", err)
	}

	app := srv.App()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down stub gateway...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Stub gateway shutdown error: %v", err)
		}
	}()

	log.Printf("Stub gateway starting on port %s...", cfg.StubPort)
	log.Fatal(app.Listen(":" + cfg.StubPort))
}
