package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"html-presenter/internal/models"
)

var (
	ErrRemoteNotFound = errors.New("remote not found")
	ErrRemoteInactive = errors.New("remote is not active")
	ErrInvalidAction  = errors.New("invalid remote action")
)

// RemoteService manages physical presenter remotes
type RemoteService struct {
	database *sql.DB
}

// NewRemoteService creates a new remote service
func NewRemoteService(database *sql.DB) *RemoteService {
	return &RemoteService{
		database: database,
	}
}

// ParseRemoteAction validates an action, defaulting to next
func ParseRemoteAction(s string) (models.RemoteAction, error) {
	switch models.RemoteAction(strings.ToLower(s)) {
	case "", models.RemoteNext:
		return models.RemoteNext, nil
	case models.RemotePrev:
		return models.RemotePrev, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidAction, s)
}

// RegisterRemote registers a new presenter remote
func (rs *RemoteService) RegisterRemote(macAddress, name string, action models.RemoteAction) (*models.PresenterRemote, error) {
	macAddress = normalizeMAC(macAddress)
	if macAddress == "" {
		return nil, fmt.Errorf("MAC address is required")
	}
	if action == "" {
		action = models.RemoteNext
	}

	existing, err := rs.GetRemoteByMAC(macAddress)
	if err == nil && existing != nil {
		log.Printf("Remote already exists: MAC=%s", macAddress)
		return existing, nil
	}

	suffix := macAddress
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	remoteID := fmt.Sprintf("remote_%s", suffix)
	now := time.Now()

	query := `INSERT INTO presenter_remotes
		(id, mac_address, name, action, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err = rs.database.Exec(query, remoteID, macAddress, name, string(action), true, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert remote: %w", err)
	}

	log.Printf("Remote registered: MAC=%s, ID=%s, Action=%s", macAddress, remoteID, action)

	return rs.GetRemoteByMAC(macAddress)
}

// normalizeMAC normalizes MAC address format
func normalizeMAC(macAddress string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.ReplaceAll(macAddress, ":", ""), " ", ""))
}

const remoteColumns = `id, mac_address, name, action, is_active, press_count, last_press, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRemote(row scanner) (*models.PresenterRemote, error) {
	var remote models.PresenterRemote
	var action string
	var lastPress sql.NullTime

	err := row.Scan(
		&remote.ID,
		&remote.MACAddress,
		&remote.Name,
		&action,
		&remote.IsActive,
		&remote.PressCount,
		&lastPress,
		&remote.CreatedAt,
		&remote.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	remote.Action = models.RemoteAction(action)
	if lastPress.Valid {
		remote.LastPress = lastPress.Time
	}
	return &remote, nil
}

// GetRemoteByMAC returns a remote by its MAC address
func (rs *RemoteService) GetRemoteByMAC(macAddress string) (*models.PresenterRemote, error) {
	macAddress = normalizeMAC(macAddress)

	query := `SELECT ` + remoteColumns + ` FROM presenter_remotes WHERE mac_address = ?`
	remote, err := scanRemote(rs.database.QueryRow(query, macAddress))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRemoteNotFound, macAddress)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query remote: %w", err)
	}
	return remote, nil
}

// SetAction changes what a press of the remote does
func (rs *RemoteService) SetAction(macAddress string, action models.RemoteAction) error {
	macAddress = normalizeMAC(macAddress)

	query := `UPDATE presenter_remotes SET action = ?, updated_at = ? WHERE mac_address = ?`
	result, err := rs.database.Exec(query, string(action), time.Now(), macAddress)
	if err != nil {
		return fmt.Errorf("failed to update remote: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, macAddress)
	}

	log.Printf("Remote %s now sends %s", macAddress, action)
	return nil
}

// SetActive enables or disables a remote
func (rs *RemoteService) SetActive(macAddress string, active bool) error {
	macAddress = normalizeMAC(macAddress)

	query := `UPDATE presenter_remotes SET is_active = ?, updated_at = ? WHERE mac_address = ?`
	result, err := rs.database.Exec(query, active, time.Now(), macAddress)
	if err != nil {
		return fmt.Errorf("failed to update remote: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, macAddress)
	}
	return nil
}

// RecordPress records a press and returns the remote info
func (rs *RemoteService) RecordPress(macAddress string) (*models.PresenterRemote, error) {
	macAddress = normalizeMAC(macAddress)

	remote, err := rs.GetRemoteByMAC(macAddress)
	if err != nil {
		return nil, err
	}

	if !remote.IsActive {
		return nil, fmt.Errorf("%w: %s", ErrRemoteInactive, macAddress)
	}

	now := time.Now()
	query := `UPDATE presenter_remotes
		SET press_count = press_count + 1, last_press = ?, updated_at = ?
		WHERE mac_address = ?`

	_, err = rs.database.Exec(query, now, now, macAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to update remote press: %w", err)
	}

	remote.PressCount++
	remote.LastPress = now
	remote.UpdatedAt = now

	log.Printf("Remote press recorded: MAC=%s, Total presses=%d", macAddress, remote.PressCount)

	return remote, nil
}

// GetAllRemotes returns all registered remotes
func (rs *RemoteService) GetAllRemotes() ([]*models.PresenterRemote, error) {
	query := `SELECT ` + remoteColumns + ` FROM presenter_remotes ORDER BY created_at DESC`

	rows, err := rs.database.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query remotes: %w", err)
	}
	defer rows.Close()

	remotes := []*models.PresenterRemote{}
	for rows.Next() {
		remote, err := scanRemote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan remote: %w", err)
		}
		remotes = append(remotes, remote)
	}

	return remotes, rows.Err()
}

// DeleteRemote removes a remote from the system
func (rs *RemoteService) DeleteRemote(macAddress string) error {
	macAddress = normalizeMAC(macAddress)

	query := `DELETE FROM presenter_remotes WHERE mac_address = ?`
	result, err := rs.database.Exec(query, macAddress)
	if err != nil {
		return fmt.Errorf("failed to delete remote: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRemoteNotFound, macAddress)
	}

	log.Printf("Remote deleted: %s", macAddress)
	return nil
}
