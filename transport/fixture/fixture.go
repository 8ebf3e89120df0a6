// Package fixture records transport outcomes to a BoltDB file and replays
// them later, allowing hooks to run against captured traffic without a
// network.
package fixture

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pontusntengnas/httphook/transport"
)

const outcomeBucket = "outcomes"

// ErrNotRecorded is reported by the replay sender when no outcome exists for a request.
var ErrNotRecorded = errors.New("no recorded outcome")

// Store persists outcomes keyed by method, URL and body digest.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
}

type record struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header,omitempty"`
	Body       []byte      `json:"body,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// Open opens or creates the fixture database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create fixture directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(outcomeBucket))
		return err
	}); err != nil {
		return nil, errors.Join(fmt.Errorf("init bucket: %w", err), db.Close())
	}

	return &Store{db: db, logger: logger.With("component", "fixture")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Key derives the storage key for req.
func Key(req *transport.Request) string {
	sum := sha256.Sum256(req.Body)
	return req.Method + " " + req.URL.String() + " " + hex.EncodeToString(sum[:8])
}

// Put stores o under req's key. Transport failures are not stored.
func (s *Store) Put(req *transport.Request, o transport.Outcome) error {
	if o.Err != nil {
		return nil
	}

	data, err := json.Marshal(record{
		StatusCode: o.StatusCode,
		Header:     o.Header,
		Body:       o.Body,
		RecordedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}
		return bucket.Put([]byte(Key(req)), data)
	})
}

// Get loads the outcome stored for req.
func (s *Store) Get(req *transport.Request) (transport.Outcome, error) {
	key := Key(req)

	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(outcomeBucket))
		if bucket == nil {
			return fmt.Errorf("outcome bucket missing")
		}
		if v := bucket.Get([]byte(key)); v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return transport.Outcome{}, err
	}
	if data == nil {
		return transport.Outcome{}, fmt.Errorf("%w: %s", ErrNotRecorded, key)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return transport.Outcome{}, fmt.Errorf("decode record: %w", err)
	}

	return transport.Outcome{StatusCode: r.StatusCode, Header: r.Header, Body: r.Body}, nil
}

// Recorder wraps next, storing every successful outcome before passing it on.
func (s *Store) Recorder(next transport.Sender) transport.Sender {
	return transport.SenderFunc(func(ctx context.Context, req *transport.Request, done transport.Completion) {
		next.Send(ctx, req, func(o transport.Outcome) {
			if err := s.Put(req, o); err != nil {
				s.logger.Error("failed to record outcome", "key", Key(req), "error", err)
			}
			done(o)
		})
	})
}

// Replayer answers requests from the store only. Missing entries are reported
// as transport failures wrapping ErrNotRecorded.
func (s *Store) Replayer() transport.Sender {
	return transport.SenderFunc(func(_ context.Context, req *transport.Request, done transport.Completion) {
		o, err := s.Get(req)
		if err != nil {
			done(transport.Outcome{Err: err})
			return
		}
		done(o)
	})
}
