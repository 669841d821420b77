package bot

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
)

// Config holds the bot settings.
type Config struct {
	Token        string
	AdminUserIDs map[int64]bool

	// ReviewBatchSize caps how many due words one /review session shows
	ReviewBatchSize int
	// QuizQuestions is the number of questions per /quiz session
	QuizQuestions int
	// StoryWords is how many vocabulary words a /story weaves in
	StoryWords int
}

// ConfigFromEnv builds the bot config from environment variables.
func ConfigFromEnv() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	config := &Config{
		Token:           token,
		AdminUserIDs:    make(map[int64]bool),
		ReviewBatchSize: envInt("REVIEW_BATCH_SIZE", 10),
		QuizQuestions:   envInt("QUIZ_QUESTIONS", 5),
		StoryWords:      envInt("STORY_WORDS", 6),
	}

	if ids := os.Getenv("ADMIN_USER_IDS"); ids != "" {
		for _, idStr := range strings.Split(ids, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				log.Printf("Warning: Invalid admin user ID: %s", idStr)
				continue
			}
			config.AdminUserIDs[id] = true
		}
	}
	return config, nil
}

func envInt(name string, fallback int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}
