package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/lingobot/internal/ai"
	"github.com/example/lingobot/internal/bot"
	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/internal/dictionary"
	"github.com/example/lingobot/internal/excel"
	"github.com/example/lingobot/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	users := database.NewUserRepository(db)
	words := database.NewWordRepository(db)
	topics := database.NewTopicRepository(db)
	progress := database.NewProgressRepository(db)
	credentials := database.NewCredentialRepository(db)
	stats := database.NewStatisticsRepository(db)
	results := database.NewPracticeResultRepository(db)

	registry := ai.NewStatusRegistry()
	var routerOpts []ai.Option
	if minutes := os.Getenv("AI_COOLDOWN_MINUTES"); minutes != "" {
		if m, err := strconv.Atoi(minutes); err == nil && m > 0 {
			routerOpts = append(routerOpts, ai.WithCooldown(time.Duration(m)*time.Minute))
		}
	}
	router := ai.NewRouter(credentials, registry, routerOpts...)

	config, err := bot.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load bot config: %v", err)
	}

	b, err := bot.New(config, bot.Deps{
		Users:       users,
		Words:       words,
		Topics:      topics,
		Progress:    progress,
		Credentials: credentials,
		Stats:       stats,
		Results:     results,
		Router:      router,
		Registry:    registry,
		Dictionary:  dictionary.NewClient(512),
		Importer:    excel.NewImporter(topics, words),
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	var sched *scheduler.Scheduler
	if os.Getenv("ENABLE_SCHEDULER") != "false" {
		sched = scheduler.New(b, users, progress)
		sched.Start()
		defer sched.Stop()
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		sig := <-sigChan
		log.Printf("Received signal: %v, shutting down", sig)
		b.Stop()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
	log.Println("Bot stopped")
}
