package localstate

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"

	"github.com/gymflex/gymflex-cli/pkg/core/calendar"
	"github.com/gymflex/gymflex-cli/pkg/core/model"
)

const (
	stateDirName  = ".gymflex"
	tokenFile     = "token.json"
	userFile      = "user.json"
	selectionFile = "selection.json"
	filePerms     = 0600 // Read/write for owner only
	dirPerms      = 0700 // Read/write/execute for owner only
)

// Store persists client state between CLI invocations: the token pair,
// the cached current user and the per-role selected dates.
// Each environment gets its own directory.
type Store struct {
	dir string
}

// New returns the store for env under ~/.gymflex/<env>
func New(env string) (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewAt(filepath.Join(homeDir, stateDirName, env)), nil
}

// NewAt returns a store rooted at dir
func NewAt(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory holding the state files
func (s *Store) Dir() string {
	return s.dir
}

// LoadToken returns the persisted token, or nil if none has been saved
func (s *Store) LoadToken() (*oauth2.Token, error) {
	var token oauth2.Token
	ok, err := s.read(tokenFile, &token)
	if err != nil || !ok {
		return nil, err
	}
	return &token, nil
}

// SaveToken persists the token pair
func (s *Store) SaveToken(token *oauth2.Token) error {
	return s.write(tokenFile, token)
}

// LoadUser returns the cached current user, or nil if none is cached
func (s *Store) LoadUser() (*model.CurrentUser, error) {
	var user model.CurrentUser
	ok, err := s.read(userFile, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// SaveUser caches the current user
func (s *Store) SaveUser(user *model.CurrentUser) error {
	return s.write(userFile, user)
}

// LoadSelection returns the saved per-role dates; a missing file is an empty selection
func (s *Store) LoadSelection() (calendar.Selection, error) {
	var sel calendar.Selection
	if _, err := s.read(selectionFile, &sel); err != nil {
		return calendar.Selection{}, err
	}
	return sel, nil
}

// SaveSelection persists the per-role dates
func (s *Store) SaveSelection(sel calendar.Selection) error {
	return s.write(selectionFile, sel)
}

// Clear removes every state file. Called on logout.
func (s *Store) Clear() error {
	var errs []error
	for _, name := range []string{tokenFile, userFile, selectionFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// read decodes name into v. It reports false (and no error) when the file doesn't exist.
func (s *Store) read(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	return true, nil
}

func (s *Store) write(name string, v any) error {
	if err := os.MkdirAll(s.dir, dirPerms); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, filePerms); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return nil
}
