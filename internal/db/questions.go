package db

import (
	"context"
	"encoding/csv"
	"os"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type questionRecord struct {
	Category   string
	Text       string
	Difficulty string
}

// SampleQuestions returns up to count random questions, optionally limited
// to one category.
func SampleQuestions(ctx context.Context, conn *gorm.DB, count int, category string) ([]Question, error) {
	query := conn.WithContext(ctx).Model(&Question{})
	if category != "" {
		query = query.Where("category = ?", category)
	}
	var questions []Question
	if err := query.Order("random()").Limit(count).Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func QuestionCategories(ctx context.Context, conn *gorm.DB) ([]string, error) {
	var categories []string
	err := conn.WithContext(ctx).Model(&Question{}).
		Distinct("category").
		Order("category asc").
		Pluck("category", &categories).Error
	return categories, err
}

// LoadQuestions reads category,text,difficulty rows from a CSV and upserts
// them into the questions table.
func LoadQuestions(ctx context.Context, conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := readQuestions(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		entry := Question{
			Category:   record.Category,
			Text:       record.Text,
			Difficulty: record.Difficulty,
		}
		err := conn.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category"}, {Name: "text"}},
			DoUpdates: clause.AssignmentColumns([]string{"difficulty", "updated_at"}),
		}).Create(&entry).Error
		if err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readQuestions(path string) ([]questionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []questionRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 2 {
			continue
		}
		category := strings.ToLower(strings.TrimSpace(row[0]))
		text := strings.TrimSpace(row[1])
		if category == "" || text == "" {
			continue
		}
		difficulty := "medium"
		if len(row) >= 3 {
			switch value := strings.ToLower(strings.TrimSpace(row[2])); value {
			case "easy", "medium", "hard":
				difficulty = value
			}
		}
		records = append(records, questionRecord{Category: category, Text: text, Difficulty: difficulty})
	}
	return records, nil
}
