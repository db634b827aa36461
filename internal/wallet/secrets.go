package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/zalando/go-keyring"
)

// MnemonicSecretKey is the Secret Store key holding the recovery phrase.
const MnemonicSecretKey = "wallet.mnemonic"

const (
	secretsFileName  = "secrets.json"
	secretsFilePerms = 0600 // Owner read/write only

	// DefaultKeyringService is the OS keychain service name.
	DefaultKeyringService = "ethwallet"
)

// SecretStore is a durable key-value store for secrets.
type SecretStore interface {
	Set(key, value string) error
	// Get returns ok=false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Delete is a no-op for absent keys.
	Delete(key string) error
}

// MemorySecretStore keeps secrets in process memory.
type MemorySecretStore struct {
	mu      sync.RWMutex
	secrets map[string]string
}

// NewMemorySecretStore creates an empty in-memory store.
func NewMemorySecretStore() *MemorySecretStore {
	return &MemorySecretStore{secrets: make(map[string]string)}
}

func (m *MemorySecretStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = value
	return nil
}

func (m *MemorySecretStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.secrets[key]
	return v, ok, nil
}

func (m *MemorySecretStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, key)
	return nil
}

// secretsData is the structure of secrets.json
type secretsData struct {
	Version int               `json:"version"`
	Secrets map[string]string `json:"secrets"`
}

// FileSecretStore stores secrets in <dataDir>/secrets.json with 0600
// permissions.
type FileSecretStore struct {
	mu       sync.RWMutex
	filePath string
	data     *secretsData
}

// NewFileSecretStore opens (or creates) the secrets file under dataDir.
func NewFileSecretStore(dataDir string) (*FileSecretStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &FileSecretStore{
		filePath: filepath.Join(dataDir, secretsFileName),
		data: &secretsData{
			Version: 1,
			Secrets: make(map[string]string),
		},
	}

	if err := store.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	return store, nil
}

func (s *FileSecretStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var parsed secretsData
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse secrets file: %w", err)
	}
	if parsed.Secrets == nil {
		parsed.Secrets = make(map[string]string)
	}

	s.data = &parsed
	return nil
}

// save writes the secrets file. Caller holds mu.
func (s *FileSecretStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, secretsFilePerms); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	if err := os.Rename(tmpPath, s.filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to save secrets file: %w", err)
	}

	return nil
}

func (s *FileSecretStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data.Secrets[key]
	s.data.Secrets[key] = value
	if err := s.save(); err != nil {
		if had {
			s.data.Secrets[key] = prev
		} else {
			delete(s.data.Secrets, key)
		}
		return err
	}
	return nil
}

func (s *FileSecretStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data.Secrets[key]
	return v, ok, nil
}

func (s *FileSecretStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.data.Secrets[key]
	if !ok {
		return nil
	}
	delete(s.data.Secrets, key)
	if err := s.save(); err != nil {
		s.data.Secrets[key] = prev
		return err
	}
	return nil
}

// KeyringSecretStore stores secrets in the OS keychain (macOS Keychain,
// Secret Service, Windows Credential Manager).
type KeyringSecretStore struct {
	service string
}

// NewKeyringSecretStore uses service as the keychain service name.
func NewKeyringSecretStore(service string) *KeyringSecretStore {
	if service == "" {
		service = DefaultKeyringService
	}
	return &KeyringSecretStore{service: service}
}

func (k *KeyringSecretStore) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (k *KeyringSecretStore) Get(key string) (string, bool, error) {
	v, err := keyring.Get(k.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("keyring get: %w", err)
	}
	return v, true, nil
}

func (k *KeyringSecretStore) Delete(key string) error {
	err := keyring.Delete(k.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
