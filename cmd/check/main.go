package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/steelproxy/twitta/internal/config"
	"github.com/steelproxy/twitta/internal/gpt"
	"github.com/steelproxy/twitta/internal/storage"
	"github.com/steelproxy/twitta/internal/xapi"
)

// Connectivity check for the configured credentials: X API lookup,
// OpenAI generation, and the optional report archive.
func main() {
	fmt.Println("twitta - API Connectivity Check")
	fmt.Println("===============================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	checkXAPI(ctx, cfg)
	checkOpenAI(ctx, cfg)
	checkArchive(cfg)

	fmt.Println("\nConnectivity check completed.")
}

func checkXAPI(ctx context.Context, cfg *config.Config) {
	fmt.Print("Testing X API... ")

	if cfg.Twitter.BearerToken == "" {
		fmt.Println("SKIPPED (missing bearer token)")
		return
	}

	client := xapi.NewClient(cfg.Twitter)
	userID, err := client.ResolveIdentity(ctx, "X")
	if errors.Is(err, xapi.ErrQuotaExceeded) {
		fmt.Println("RATE LIMITED (credentials accepted)")
		return
	}
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	fmt.Printf("OK (resolved @X to id %d)\n", userID)
}

func checkOpenAI(ctx context.Context, cfg *config.Config) {
	fmt.Print("Testing OpenAI... ")

	if cfg.OpenAI.APIKey == "" {
		fmt.Println("SKIPPED (missing API key)")
		return
	}

	reply := gpt.NewClient(cfg.OpenAI.APIKey).Generate(ctx, "Reply with the single word: ok")
	if reply == gpt.FallbackReply {
		fmt.Println("ERROR (backend returned its fallback reply, check the log)")
		return
	}

	fmt.Printf("OK (%q)\n", reply)
}

func checkArchive(cfg *config.Config) {
	fmt.Print("Testing report archive... ")

	if cfg.StorageAccount == "" {
		fmt.Println("SKIPPED (no storage account configured)")
		return
	}

	archive, err := storage.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	names, err := archive.List("report-")
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		return
	}

	fmt.Printf("OK (%d archived reports)\n", len(names))
}
