package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

const (
	keystoreDirName  = "keystore"
	keystoreFileName = "key.json"
	keystoreDirPerms = 0700
	keystorePerms    = 0600 // Owner read/write only
)

// removeFile is replaced in tests.
var removeFile = os.Remove

// KeystoreFile is a parsed V3 keystore: the encrypted JSON as written to
// disk plus the address it declares. The private key stays encrypted.
type KeystoreFile struct {
	RawAddress string
	JSON       []byte
}

type keystoreHeader struct {
	Address string          `json:"address"`
	Crypto  json.RawMessage `json:"crypto"`
	Version int             `json:"version"`
}

// ParseKeystore validates the outer shape of a V3 keystore without
// decrypting it.
func ParseKeystore(data []byte) (*KeystoreFile, error) {
	var hdr keystoreHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, E(KindMalformedKeystore, "parse keystore", err)
	}
	if hdr.Address == "" {
		return nil, E(KindMalformedKeystore, "parse keystore", errors.New("missing address"))
	}
	if len(hdr.Crypto) == 0 {
		return nil, E(KindMalformedKeystore, "parse keystore", errors.New("missing crypto section"))
	}

	raw := make([]byte, len(data))
	copy(raw, data)
	return &KeystoreFile{RawAddress: hdr.Address, JSON: raw}, nil
}

// Address returns the checksummed address the keystore declares.
func (kf *KeystoreFile) Address() (common.Address, error) {
	if !common.IsHexAddress(kf.RawAddress) {
		return common.Address{}, E(KindInvalidAddress, "keystore address", fmt.Errorf("%q", kf.RawAddress))
	}
	return common.HexToAddress(kf.RawAddress), nil
}

// Store persists the single device keystore at <dataDir>/keystore/key.json
// and caches the parsed file in memory.
type Store struct {
	// mu guards cache. Load populates it under the write lock so readers
	// never observe a partially built entry.
	mu    sync.RWMutex
	dir   string
	cache *KeystoreFile
}

// NewStore creates a store rooted at dataDir. The directory is created on
// first Save.
func NewStore(dataDir string) *Store {
	return &Store{dir: filepath.Join(dataDir, keystoreDirName)}
}

// Dir returns the keystore directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the keystore file path.
func (s *Store) Path() string {
	return filepath.Join(s.dir, keystoreFileName)
}

// Save replaces the keystore on disk and in the cache. Any other file in
// the keystore directory is removed so exactly one identity remains.
func (s *Store) Save(kf *KeystoreFile) error {
	if kf == nil || len(kf.JSON) == 0 {
		return E(KindMalformedKeystore, "save keystore", errors.New("empty keystore"))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, keystoreDirPerms); err != nil {
		return E(KindInvalidPath, "save keystore", err)
	}

	// Write to temp file first, then rename (atomic)
	path := s.Path()
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, kf.JSON, keystorePerms); err != nil {
		return E(KindInvalidPath, "save keystore", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // Best-effort cleanup of temp file
		return E(KindInvalidPath, "save keystore", err)
	}

	// key.json now holds kf even if the cleanup below fails.
	s.cache = kf

	if err := s.removeOthers(); err != nil {
		return E(KindInvalidPath, "save keystore", err)
	}
	return nil
}

func (s *Store) removeOthers() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == keystoreFileName {
			continue
		}
		if err := removeFile(filepath.Join(s.dir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale keystore %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Load returns the cached keystore, reading it from disk on first use.
func (s *Store) Load() (*KeystoreFile, error) {
	s.mu.RLock()
	if kf := s.cache; kf != nil {
		s.mu.RUnlock()
		return kf, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache != nil {
		return s.cache, nil
	}

	kf, err := s.readDisk()
	if err != nil {
		return nil, err
	}
	s.cache = kf
	return kf, nil
}

// readDisk prefers key.json and falls back to the first parseable V3 file
// in the directory, which covers keystores written by geth itself.
func (s *Store) readDisk() (*KeystoreFile, error) {
	data, err := os.ReadFile(s.Path())
	if err == nil {
		return ParseKeystore(data)
	}
	if !os.IsNotExist(err) {
		return nil, E(KindMalformedKeystore, "load keystore", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, E(KindMalformedKeystore, "load keystore", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		if kf, err := ParseKeystore(data); err == nil {
			return kf, nil
		}
	}
	return nil, E(KindMalformedKeystore, "load keystore", errors.New("no keystore found"))
}

// Invalidate drops the cached keystore.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = nil
}
