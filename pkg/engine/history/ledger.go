package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/DrSkyle/knapsack-ga/pkg/config"
	"github.com/DrSkyle/knapsack-ga/pkg/storage"
)

// RunRecord summarizes one finished run.
type RunRecord struct {
	ID         string                 `json:"id"`
	Timestamp  int64                  `json:"timestamp"`
	Input      string                 `json:"input"`
	Items      int                    `json:"items"`
	Capacity   int                    `json:"capacity"`
	Params     config.EvolutionConfig `json:"params"`
	BestValue  int                    `json:"best_value"`
	BestWeight int                    `json:"best_weight"`
	Optimum    *int                   `json:"optimum,omitempty"`
	ElapsedMS  int64                  `json:"elapsed_ms"`
}

// Time returns the record timestamp.
func (r RunRecord) Time() time.Time { return time.Unix(r.Timestamp, 0) }

// Backend defines the storage interface for run records.
type Backend interface {
	Append(ctx context.Context, r RunRecord) error
	Load(ctx context.Context, n int) ([]RunRecord, error)
}

// Client manages the run ledger.
type Client struct {
	backend Backend
}

// NewClient initializes a ledger client.
// Defaults to FileBackend at the home ledger path.
func NewClient(backend Backend) *Client {
	if backend == nil {
		backend = &FileBackend{}
	}
	return &Client{
		backend: backend,
	}
}

// Append records a finished run.
func (c *Client) Append(ctx context.Context, r RunRecord) error {
	return c.backend.Append(ctx, r)
}

// LoadWindow retrieves the n most recent runs, oldest first.
func (c *Client) LoadWindow(ctx context.Context, n int) ([]RunRecord, error) {
	return c.backend.Load(ctx, n)
}

// NewLocalBackend creates a file-based backend at the specified path.
func NewLocalBackend(path string) *FileBackend {
	return &FileBackend{Path: path}
}

// FileBackend implements local filesystem storage.
type FileBackend struct {
	Path string
}

func (b *FileBackend) Append(_ context.Context, r RunRecord) error {
	path, err := b.resolve()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(r)
	if err != nil {
		return err
	}

	_, err = f.Write(append(data, '\n'))
	return err
}

func (b *FileBackend) Load(_ context.Context, n int) ([]RunRecord, error) {
	path, err := b.resolve()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []RunRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tail(decode(data), n), nil
}

func (b *FileBackend) resolve() (string, error) {
	if b.Path != "" {
		return b.Path, nil
	}
	return GetLedgerPath()
}

// BlobBackend keeps the ledger as one JSONL object in a BlobStore.
// Appends are read-modify-write.
type BlobBackend struct {
	Store storage.BlobStore
	Key   string
}

// NewBlobBackend stores the ledger under key in store.
func NewBlobBackend(store storage.BlobStore, key string) *BlobBackend {
	return &BlobBackend{Store: store, Key: key}
}

func (b *BlobBackend) Append(ctx context.Context, r RunRecord) error {
	existing, err := b.Store.Get(ctx, b.Key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to read ledger: %w", err)
	}

	line, err := json.Marshal(r)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Write(existing)
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		buf.WriteByte('\n')
	}
	buf.Write(line)
	buf.WriteByte('\n')

	return b.Store.Put(ctx, b.Key, buf.Bytes())
}

func (b *BlobBackend) Load(ctx context.Context, n int) ([]RunRecord, error) {
	data, err := b.Store.Get(ctx, b.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return []RunRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	return tail(decode(data), n), nil
}

// decode skips lines that are not valid records.
func decode(data []byte) []RunRecord {
	var records []RunRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var r RunRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	return records
}

func tail(records []RunRecord, n int) []RunRecord {
	if records == nil {
		records = []RunRecord{}
	}
	if n > 0 && len(records) > n {
		return records[len(records)-n:]
	}
	return records
}

// GetLedgerPath provides the default local storage path.
func GetLedgerPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, config.DefaultAppDir, "ledger.jsonl"), nil
}
