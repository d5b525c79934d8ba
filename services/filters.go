package services

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"clearance/portal/database"
	"clearance/portal/models"

	"github.com/google/uuid"
)

// ErrFilterNotFound is returned for a missing filter or one owned by
// another user
var ErrFilterNotFound = errors.New("saved filter not found")

const filterColumns = "id, name, user_id, view, query, is_default, created_at, updated_at"

func validateFilter(name, view, query string) error {
	if strings.TrimSpace(name) == "" {
		return validationError("Filter name is required", map[string]string{"name": "Filter name is required"})
	}
	if !models.IsListView(view) {
		return fmt.Errorf("unknown list view %q", view)
	}
	if _, err := url.ParseQuery(query); err != nil {
		return fmt.Errorf("invalid filter query: %w", err)
	}
	return nil
}

// CreateSavedFilter creates a new saved filter
func CreateSavedFilter(userID, view, name, query string, isDefault bool) (*models.SavedFilter, error) {
	if err := validateFilter(name, view, query); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Only one default per user and view
	if isDefault {
		_, err = tx.Exec(`
			UPDATE saved_filters
			SET is_default = 0
			WHERE user_id = ? AND view = ?
		`, userID, view)
		if err != nil {
			return nil, fmt.Errorf("failed to update existing default filters: %w", err)
		}
	}

	_, err = tx.Exec(`
		INSERT INTO saved_filters (id, name, user_id, view, query, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, strings.TrimSpace(name), userID, view, query, isDefault, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			msg := fmt.Sprintf("A filter named %q already exists", strings.TrimSpace(name))
			return nil, validationError(msg, map[string]string{"name": msg})
		}
		return nil, fmt.Errorf("failed to insert saved filter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit saved filter: %w", err)
	}

	return &models.SavedFilter{
		ID:        id,
		Name:      strings.TrimSpace(name),
		UserID:    userID,
		View:      view,
		Query:     query,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func scanFilter(row interface{ Scan(...any) error }) (models.SavedFilter, error) {
	var filter models.SavedFilter
	err := row.Scan(
		&filter.ID,
		&filter.Name,
		&filter.UserID,
		&filter.View,
		&filter.Query,
		&filter.IsDefault,
		&filter.CreatedAt,
		&filter.UpdatedAt,
	)
	return filter, err
}

// GetSavedFilters retrieves a user's saved filters for one view
func GetSavedFilters(userID, view string) ([]models.SavedFilter, error) {
	rows, err := database.DB.Query(`
		SELECT `+filterColumns+`
		FROM saved_filters
		WHERE user_id = ? AND view = ?
		ORDER BY name
	`, userID, view)
	if err != nil {
		return nil, fmt.Errorf("failed to query saved filters: %w", err)
	}
	defer rows.Close()

	var filters []models.SavedFilter
	for rows.Next() {
		filter, err := scanFilter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan saved filter: %w", err)
		}
		filters = append(filters, filter)
	}

	return filters, rows.Err()
}

// GetSavedFilterByID retrieves one of a user's saved filters
func GetSavedFilterByID(userID, id string) (*models.SavedFilter, error) {
	filter, err := scanFilter(database.DB.QueryRow(`
		SELECT `+filterColumns+`
		FROM saved_filters
		WHERE id = ? AND user_id = ?
	`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFilterNotFound
		}
		return nil, fmt.Errorf("failed to query saved filter: %w", err)
	}

	return &filter, nil
}

// GetDefaultFilter retrieves the default filter for a user and view
func GetDefaultFilter(userID, view string) (*models.SavedFilter, error) {
	filter, err := scanFilter(database.DB.QueryRow(`
		SELECT `+filterColumns+`
		FROM saved_filters
		WHERE user_id = ? AND view = ? AND is_default = 1
	`, userID, view))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No default filter found
		}
		return nil, fmt.Errorf("failed to query default filter: %w", err)
	}

	return &filter, nil
}

// UpdateSavedFilter updates an existing saved filter
func UpdateSavedFilter(userID, id, name, query string, isDefault bool) (*models.SavedFilter, error) {
	filter, err := GetSavedFilterByID(userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateFilter(name, filter.View, query); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if isDefault {
		_, err = tx.Exec(`
			UPDATE saved_filters
			SET is_default = 0
			WHERE user_id = ? AND view = ? AND id != ?
		`, userID, filter.View, id)
		if err != nil {
			return nil, fmt.Errorf("failed to update existing default filters: %w", err)
		}
	}

	_, err = tx.Exec(`
		UPDATE saved_filters
		SET name = ?, query = ?, is_default = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, strings.TrimSpace(name), query, isDefault, now, id, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update saved filter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit saved filter: %w", err)
	}

	filter.Name = strings.TrimSpace(name)
	filter.Query = query
	filter.IsDefault = isDefault
	filter.UpdatedAt = now

	return filter, nil
}

// DeleteSavedFilter deletes one of a user's saved filters
func DeleteSavedFilter(userID, id string) error {
	result, err := database.DB.Exec(`
		DELETE FROM saved_filters
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete saved filter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrFilterNotFound
	}

	return nil
}
