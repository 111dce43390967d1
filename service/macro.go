package service

import (
	"database/sql"
	"encoding/json"
	"time"

	"deskcontrol/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MacroStore persists named action sequences in SQLite. The action list
// is stored as a JSON blob; macros are configuration, not action history.
type MacroStore struct {
	db *sql.DB
}

func NewMacroStore(db *sql.DB) *MacroStore {
	return &MacroStore{db: db}
}

// Init creates the macros table if it does not exist yet.
func (s *MacroStore) Init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS macros (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			actions     TEXT NOT NULL,
			created_at  INTEGER NOT NULL
		)`)
	return errors.Wrap(err, "failed to create macros table")
}

// Create stores a new macro and returns it with its generated id.
func (s *MacroStore) Create(name, description string, actions []models.Action) (models.Macro, error) {
	if name == "" {
		return models.Macro{}, errors.New("macro name cannot be empty")
	}
	if len(actions) == 0 {
		return models.Macro{}, errors.New("macro must contain at least one action")
	}

	blob, err := json.Marshal(actions)
	if err != nil {
		return models.Macro{}, errors.Wrap(err, "failed to encode actions")
	}

	macro := models.Macro{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Actions:     actions,
		CreatedAt:   time.Now().Unix(),
	}

	_, err = s.db.Exec(
		`INSERT INTO macros (id, name, description, actions, created_at) VALUES (?, ?, ?, ?, ?)`,
		macro.ID, macro.Name, macro.Description, string(blob), macro.CreatedAt)
	if err != nil {
		return models.Macro{}, errors.Wrap(err, "failed to insert macro")
	}
	return macro, nil
}

// Get fetches one macro by id, or nil when it does not exist.
func (s *MacroStore) Get(id string) (*models.Macro, error) {
	row := s.db.QueryRow(
		`SELECT id, name, description, actions, created_at FROM macros WHERE id = ?`, id)

	macro, err := scanMacro(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch macro")
	}
	return &macro, nil
}

// List returns all stored macros, newest first.
func (s *MacroStore) List() ([]models.Macro, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, actions, created_at FROM macros ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list macros")
	}
	defer rows.Close()

	macros := make([]models.Macro, 0)
	for rows.Next() {
		macro, err := scanMacro(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan macro")
		}
		macros = append(macros, macro)
	}
	return macros, rows.Err()
}

// Delete removes a macro. Deleting a missing macro is not an error.
func (s *MacroStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM macros WHERE id = ?`, id)
	return errors.Wrap(err, "failed to delete macro")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMacro(row rowScanner) (models.Macro, error) {
	var macro models.Macro
	var blob string
	if err := row.Scan(&macro.ID, &macro.Name, &macro.Description, &blob, &macro.CreatedAt); err != nil {
		return models.Macro{}, err
	}
	if err := json.Unmarshal([]byte(blob), &macro.Actions); err != nil {
		return models.Macro{}, errors.Wrap(err, "corrupt action blob")
	}
	return macro, nil
}
