// Package receipts keeps a local journal of broadcast transactions and the
// receipts they eventually produce.
package receipts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	_ "modernc.org/sqlite"
)

// Submission status values.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Submission kinds.
const (
	KindEther = "ether"
	KindToken = "token"
)

// ErrNotFound is returned by Get for unknown hashes.
var ErrNotFound = errors.New("submission not found")

// Submission is one journal row. Value is in base units.
type Submission struct {
	Chain     string
	TxHash    string
	Kind      string
	From      string
	To        string
	Token     string // empty for ether transfers
	Value     string
	Status    string
	GasUsed   uint64
	RawJSON   string // receipt JSON once mined
	CreatedAt time.Time
}

// Store is the sqlite-backed journal. Rows are keyed by chain + tx hash.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the journal at dataDir/receipts.db.
func Open(dataDir string) (*Store, error) {
	return OpenDSN(filepath.Join(dataDir, "receipts.db"))
}

// OpenDSN opens (or creates) a journal using the given sqlite DSN/path.
// Tests may pass ":memory:" to avoid touching disk.
func OpenDSN(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open receipts db: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS submissions (
	chain TEXT NOT NULL,
	tx_hash TEXT NOT NULL,
	kind TEXT NOT NULL,
	from_addr TEXT NOT NULL,
	to_addr TEXT NOT NULL,
	token TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	gas_used INTEGER NOT NULL DEFAULT 0,
	raw_json TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL,
	PRIMARY KEY (chain, tx_hash)
);
`)
	if err != nil {
		return fmt.Errorf("create submissions table: %w", err)
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ready() error {
	if s == nil || s.db == nil {
		return errors.New("receipt store not initialized")
	}
	return nil
}

// Record inserts a freshly broadcast transaction. Re-recording the same hash
// is a no-op.
func (s *Store) Record(ctx context.Context, sub Submission) error {
	if err := s.ready(); err != nil {
		return err
	}
	if sub.Chain == "" || sub.TxHash == "" {
		return errors.New("chain and tx hash are required")
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO submissions (chain, tx_hash, kind, from_addr, to_addr, token, value, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(chain, tx_hash) DO NOTHING
`, sub.Chain, normalizeHash(sub.TxHash), sub.Kind, sub.From, sub.To, sub.Token, sub.Value, sub.Status,
		sub.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// UpdateReceipt stores the mined receipt and derives the final status.
func (s *Store) UpdateReceipt(ctx context.Context, chain string, receipt *types.Receipt) error {
	if err := s.ready(); err != nil {
		return err
	}
	if chain == "" {
		return errors.New("chain is required")
	}
	if receipt == nil {
		return errors.New("receipt is required")
	}

	raw, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	status := StatusFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		status = StatusSuccess
	}

	res, err := s.db.ExecContext(ctx, `
UPDATE submissions SET status = ?, gas_used = ?, raw_json = ?
WHERE chain = ? AND tx_hash = ?
`, status, receipt.GasUsed, string(raw), chain, normalizeHash(receipt.TxHash.Hex()))
	if err != nil {
		return fmt.Errorf("persist receipt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, receipt.TxHash.Hex())
	}
	return nil
}

const selectColumns = `chain, tx_hash, kind, from_addr, to_addr, token, value, status, gas_used, raw_json, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row scanner) (*Submission, error) {
	var out Submission
	var created string
	if err := row.Scan(&out.Chain, &out.TxHash, &out.Kind, &out.From, &out.To, &out.Token,
		&out.Value, &out.Status, &out.GasUsed, &out.RawJSON, &created); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
		out.CreatedAt = ts
	}
	return &out, nil
}

// Get returns one submission.
func (s *Store) Get(ctx context.Context, chain, txHash string) (*Submission, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if chain == "" || txHash == "" {
		return nil, errors.New("chain and tx hash are required")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM submissions WHERE chain = ? AND tx_hash = ?`,
		chain, normalizeHash(txHash))
	out, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, txHash)
	}
	return out, err
}

// List returns the newest submissions for chain first. limit <= 0 means no
// limit.
func (s *Store) List(ctx context.Context, chain string, limit int) ([]Submission, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM submissions WHERE chain = ? ORDER BY created_at DESC LIMIT ?`,
		chain, limit)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, *sub)
	}
	return out, rows.Err()
}

// normalizeHash stores hashes as 0x-prefixed lowercase hex.
func normalizeHash(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return "0x" + strings.TrimPrefix(h, "0x")
}
