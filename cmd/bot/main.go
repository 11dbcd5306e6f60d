package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/steelproxy/twitta/internal/bot"
	"github.com/steelproxy/twitta/internal/composer"
	"github.com/steelproxy/twitta/internal/config"
	"github.com/steelproxy/twitta/internal/gpt"
	"github.com/steelproxy/twitta/internal/models"
	"github.com/steelproxy/twitta/internal/notifications"
	"github.com/steelproxy/twitta/internal/ratelimit"
	"github.com/steelproxy/twitta/internal/scheduler"
	"github.com/steelproxy/twitta/internal/storage"
	"github.com/steelproxy/twitta/internal/updater"
	"github.com/steelproxy/twitta/internal/web"
	"github.com/steelproxy/twitta/internal/xapi"
)

const logFile = "twitta.log"

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)
	logrus.Infof("Starting twitta %s...", config.Version)

	// Check for updates at startup, daemon mode repeats this daily.
	logrus.Info("Checking for updates...")
	updater.New().CheckForUpdate(config.Version)

	client := xapi.NewClient(cfg.Twitter)
	generator := gpt.NewClient(cfg.OpenAI.APIKey)

	if hasArg("-d") {
		runDaemonMode(cfg, client, generator)
		return
	}

	runInteractiveMode(cfg, client, generator)
}

func runInteractiveMode(cfg *config.Config, client *xapi.Client, generator *gpt.Client) {
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println("\nAvailable commands:")
		fmt.Println("1. add          - Add a new Twitter account to reply to")
		fmt.Println("2. run          - Run the bot with manual approval")
		fmt.Println("3. run-headless - Run the bot automatically")
		fmt.Println("4. daemon       - Start web interface")
		fmt.Println("5. exit         - Exit the program")

		fmt.Print("\nEnter command: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			logrus.Info("Exiting program...")
			return
		}

		switch strings.TrimSpace(strings.ToLower(line)) {
		case "add":
			addAccount(cfg, reader)
		case "run":
			runBot(cfg, client, generator, true)
		case "run-headless":
			runBot(cfg, client, generator, false)
		case "daemon":
			runDaemonMode(cfg, client, generator)
		case "exit":
			logrus.Info("Exiting program...")
			return
		default:
			fmt.Println("Invalid command.")
		}
	}
}

// runBot drives the agent from the terminal. It blocks until the
// process is interrupted; the supervisor loop has no other exit.
func runBot(cfg *config.Config, client *xapi.Client, generator *gpt.Client, interactive bool) {
	var prompter composer.Prompter
	if interactive {
		prompter = newTerminalPrompter()
	}

	b := bot.New(client, ratelimit.New(), composer.New(generator, prompter), newArchive(cfg))
	b.Run(context.Background(), cfg.Snapshot, interactive)
}

func runDaemonMode(cfg *config.Config, client *xapi.Client, generator *gpt.Client) {
	archive := newArchive(cfg)

	// Daemon-hosted agents are always headless: there is no operator
	// terminal to prompt for approval.
	factory := func() *bot.Bot {
		return bot.New(client, ratelimit.New(), composer.New(generator, nil), archive)
	}

	server := web.NewServer(cfg, factory, archive, logFile)

	notifier := notifications.NewService(cfg)
	schedulerService := scheduler.NewService(notifier, updater.New(), func() *models.Summary {
		return server.Summary()
	})
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("Web interface available at http://localhost:%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down web interface...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	logrus.Info("Server exited")
}

func addAccount(cfg *config.Config, reader *bufio.Reader) {
	read := func(prompt string) string {
		fmt.Print(prompt)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	account := models.Account{
		Username: strings.TrimPrefix(read("Enter the account username: "), "@"),
		UseGPT:   read("Use ChatGPT to generate replies? (y/n): ") == "y",
	}

	if account.UseGPT {
		account.CustomPrompt = read("Enter a custom prompt using {tweet_text} as a placeholder (empty for default): ")
	} else {
		replies := read("Enter predefined replies separated by '|' (empty for none): ")
		if replies != "" {
			account.PredefinedReplies = strings.Split(replies, "|")
		}
	}

	if err := cfg.AddAccount(account); err != nil {
		fmt.Printf("Failed to add account: %v\n", err)
	}
}

func newArchive(cfg *config.Config) storage.ArchiveInterface {
	if cfg.StorageAccount == "" {
		return nil
	}

	archive, err := storage.NewAzureArchive(cfg.StorageAccount, cfg.StorageContainer)
	if err != nil {
		logrus.Errorf("Failed to initialize report archive: %v. Continuing without archiving...", err)
		return nil
	}

	return archive
}

func setupLogging(cfg *config.Config) {
	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logrus.Errorf("Failed to open log file: %v. Logging to stderr only...", err)
		return
	}

	logrus.SetOutput(io.MultiWriter(os.Stderr, file))
}

func hasArg(flag string) bool {
	for _, arg := range os.Args[1:] {
		if arg == flag {
			return true
		}
	}
	return false
}
