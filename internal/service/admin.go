package service

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"

	"github.com/stih/tank-insights/internal/utils"
)

var (
	// ErrAdminNotConfigured is returned when admin-settings.json is missing
	// or holds no credentials.
	ErrAdminNotConfigured = errors.New("admin account not configured")
	// ErrInvalidCredentials is returned for an unknown user or wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminAccount is the single admin identity.
type AdminAccount struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type adminSettings struct {
	Admin *AdminAccount `json:"admin"`
}

// AdminStore reads and writes the admin settings file.  The file is read on
// every login so that setup-admin takes effect without a restart.
type AdminStore struct {
	path string
}

func NewAdminStore(path string) *AdminStore {
	return &AdminStore{path: path}
}

// Path returns the settings file location.
func (s *AdminStore) Path() string { return s.path }

// Load returns the configured admin account.
func (s *AdminStore) Load() (*AdminAccount, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrAdminNotConfigured
	}
	if err != nil {
		return nil, eris.Wrap(err, "read admin settings")
	}
	var st adminSettings
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, eris.Wrap(err, "parse admin settings")
	}
	if st.Admin == nil || st.Admin.Username == "" || st.Admin.PasswordHash == "" {
		return nil, ErrAdminNotConfigured
	}
	return st.Admin, nil
}

// Save hashes password and writes the settings file, replacing any
// existing admin.
func (s *AdminStore) Save(username, password string, cost int) (*AdminAccount, error) {
	if username == "" {
		return nil, eris.New("username is required")
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	acc := &AdminAccount{Username: username, PasswordHash: hash, CreatedAt: time.Now().UTC()}
	body, err := json.MarshalIndent(adminSettings{Admin: acc}, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "marshal admin settings")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, eris.Wrap(err, "create settings dir")
	}
	if err := os.WriteFile(s.path, body, 0o600); err != nil {
		return nil, eris.Wrap(err, "write admin settings")
	}
	return acc, nil
}

// Authenticate checks username and password against the stored account.
func (s *AdminStore) Authenticate(username, password string) (*AdminAccount, error) {
	acc, err := s.Load()
	if err != nil {
		return nil, err
	}
	if acc.Username != username || !utils.VerifyPassword(acc.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return acc, nil
}
