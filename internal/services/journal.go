package services

import (
	"database/sql"
	"fmt"
	"time"

	"html-presenter/internal/models"
)

// JournalService records finished transitions
type JournalService struct {
	database *sql.DB
}

// NewJournalService creates a new journal service
func NewJournalService(database *sql.DB) *JournalService {
	return &JournalService{database: database}
}

// Record stores a finished transition and returns its id
func (js *JournalService) Record(rec models.TransitionRecord) (int64, error) {
	query := `INSERT INTO transitions
		(effect, direction, from_index, to_index, slide_id, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := js.database.Exec(query, string(rec.Effect), string(rec.Direction),
		rec.FromIndex, rec.ToIndex, rec.SlideID, rec.StartedAt.UTC(), rec.FinishedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert transition: %w", err)
	}
	return result.LastInsertId()
}

// Recent returns the latest transitions, newest first
func (js *JournalService) Recent(limit int) ([]models.TransitionRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, effect, direction, from_index, to_index, slide_id, started_at, finished_at
		FROM transitions ORDER BY id DESC LIMIT ?`

	rows, err := js.database.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	records := []models.TransitionRecord{}
	for rows.Next() {
		var (
			rec               models.TransitionRecord
			effect, direction string
			started, finished time.Time
		)
		if err := rows.Scan(&rec.ID, &effect, &direction, &rec.FromIndex, &rec.ToIndex,
			&rec.SlideID, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		rec.Effect = models.Effect(effect)
		rec.Direction = models.Direction(direction)
		rec.StartedAt = started
		rec.FinishedAt = finished
		records = append(records, rec)
	}
	return records, rows.Err()
}

// EffectCounts tallies finished transitions per effect
func (js *JournalService) EffectCounts() (map[models.Effect]int, error) {
	rows, err := js.database.Query(`SELECT effect, COUNT(*) FROM transitions GROUP BY effect`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transitions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Effect]int)
	for rows.Next() {
		var (
			effect string
			n      int
		)
		if err := rows.Scan(&effect, &n); err != nil {
			return nil, fmt.Errorf("failed to scan effect count: %w", err)
		}
		counts[models.Effect(effect)] = n
	}
	return counts, rows.Err()
}
