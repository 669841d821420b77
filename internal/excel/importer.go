package excel

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/lingobot/internal/database"
	"github.com/example/lingobot/pkg/models"
)

// Config defines how vocabulary columns map onto a spreadsheet.
type Config struct {
	WordColumn          string
	TranslationColumn   string
	ContextColumn       string
	TopicColumn         string
	DifficultyColumn    string
	PronunciationColumn string
	ExamplesColumn      string
	SheetName           string
	StartRow            int // 1-based; rows above it are headers
}

// DefaultConfig maps columns A-G with a single header row.
func DefaultConfig() Config {
	return Config{
		WordColumn:          "A",
		TranslationColumn:   "B",
		ContextColumn:       "C",
		TopicColumn:         "D",
		DifficultyColumn:    "E",
		PronunciationColumn: "F",
		ExamplesColumn:      "G",
		SheetName:           "Sheet1",
		StartRow:            2,
	}
}

// Result summarizes an import run.
type Result struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Importer loads vocabulary from Excel and CSV files into the database.
type Importer struct {
	topics *database.TopicRepository
	words  *database.WordRepository
}

// NewImporter creates an importer over the given repositories.
func NewImporter(topics *database.TopicRepository, words *database.WordRepository) *Importer {
	return &Importer{topics: topics, words: words}
}

// ImportFile imports vocabulary from the file, dispatching on extension.
func (im *Importer) ImportFile(ctx context.Context, path string, config Config) (*Result, error) {
	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return im.importCSV(ctx, path, config)
	}
	return im.importExcel(ctx, path, config)
}

func (im *Importer) importExcel(ctx context.Context, path string, config Config) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", config.SheetName, err)
	}

	result := &Result{}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		entry := entryFromRow(row, config)
		if err := im.upsertEntry(ctx, entry, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

// importCSV reads the word,[transcription],translation CSV layout. Rows with
// a filled first field and empty second field are topic headers that apply
// to the rows below them.
func (im *Importer) importCSV(ctx context.Context, path string, config Config) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	result := &Result{}
	currentTopic := ""
	rowNum := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		rowNum++
		if rowNum < config.StartRow {
			continue
		}

		if topic, ok := csvTopicHeader(row); ok {
			currentTopic = topic
			continue
		}
		if len(row) < 3 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}

		result.TotalProcessed++
		e := entry{
			Word:        cleanWord(row[0]),
			Translation: strings.TrimSpace(row[2]),
			Topic:       currentTopic,
			Difficulty:  3,
		}
		if len(row) > 1 {
			e.Pronunciation = strings.TrimSpace(row[1])
		}
		if err := im.upsertEntry(ctx, e, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
		}
	}
	return result, nil
}

// entry is one parsed vocabulary row.
type entry struct {
	Word          string
	Translation   string
	Context       string
	Examples      string
	Topic         string
	Pronunciation string
	Difficulty    int
}

func entryFromRow(row []string, config Config) entry {
	cell := func(column string) string {
		if column == "" {
			return ""
		}
		if idx := columnToIndex(column); idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	return entry{
		Word:          cleanWord(cell(config.WordColumn)),
		Translation:   cell(config.TranslationColumn),
		Context:       cell(config.ContextColumn),
		Examples:      cell(config.ExamplesColumn),
		Topic:         cell(config.TopicColumn),
		Pronunciation: cell(config.PronunciationColumn),
		Difficulty:    parseDifficulty(cell(config.DifficultyColumn)),
	}
}

// upsertEntry creates the word or updates an existing one in the same topic.
func (im *Importer) upsertEntry(ctx context.Context, e entry, result *Result) error {
	if e.Word == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if e.Translation == "" {
		return fmt.Errorf("translation cannot be empty")
	}

	topicName := e.Topic
	if topicName == "" {
		topicName = "General"
	}
	topic, err := im.topics.GetOrCreate(ctx, topicName)
	if err != nil {
		return fmt.Errorf("failed to resolve topic: %w", err)
	}
	topicID := topic.ID

	existing, err := im.words.GetByWordAndTopic(ctx, e.Word, topicID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to look up existing word: %w", err)
	}

	if existing != nil {
		existing.Translation = e.Translation
		existing.Context = e.Context
		existing.Examples = e.Examples
		existing.Difficulty = e.Difficulty
		existing.Pronunciation = e.Pronunciation
		if err := im.words.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update word: %w", err)
		}
		result.Updated++
		return nil
	}

	word := &models.Word{
		Word:          e.Word,
		Translation:   e.Translation,
		Context:       e.Context,
		Examples:      e.Examples,
		TopicID:       topicID,
		Difficulty:    e.Difficulty,
		Pronunciation: e.Pronunciation,
	}
	if err := im.words.Create(ctx, word); err != nil {
		return fmt.Errorf("failed to create word: %w", err)
	}
	result.Created++
	return nil
}

// csvTopicHeader recognizes rows like `Движение,,` that name a topic for
// the rows that follow.
func csvTopicHeader(row []string) (string, bool) {
	if len(row) < 2 {
		return "", false
	}
	first := strings.Trim(strings.TrimSpace(row[0]), "\"")
	if first == "" || strings.TrimSpace(row[1]) != "" {
		return "", false
	}
	return first, true
}

// cleanWord strips parenthesized extras like "(went, gone)".
func cleanWord(word string) string {
	if i := strings.Index(word, "("); i > 0 {
		word = word[:i]
	}
	return strings.TrimSpace(word)
}

func parseDifficulty(s string) int {
	val, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || val < 1 || val > 5 {
		return 3
	}
	return val
}

// columnToIndex converts an Excel column letter to a zero-based index.
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
