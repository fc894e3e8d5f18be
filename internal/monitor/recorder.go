package monitor

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"go.uber.org/atomic"
)

const (
	capturesPrefix = "monitor/captures/"
	devicesPrefix  = "monitor/devices/"

	// deleteBatch keeps a delete transaction under the badger size limit.
	deleteBatch = 1000
)

// Recorder persists captures and the raw interfaces the monitor has seen.
type Recorder struct {
	db  *badger.DB
	seq atomic.Uint64
	now func() time.Time
}

func NewRecorder(db *badger.DB, now func() time.Time) *Recorder {
	return &Recorder{db: db, now: now}
}

// captureKey sorts by capture time. seq keeps captures with the same
// timestamp apart.
func (r *Recorder) captureKey(c Capture) []byte {
	return []byte(fmt.Sprintf("%s%020d/%010d", capturesPrefix, c.Time.UnixNano(), r.seq.Inc()))
}

func (r *Recorder) Record(c Capture) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal capture: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(r.captureKey(c), b)
	})
	if err != nil {
		return fmt.Errorf("failed to store capture: %w", err)
	}
	return nil
}

// Captures returns the most recent captures, oldest first. limit <= 0
// returns all of them.
func (r *Recorder) Captures(limit int) ([]Capture, error) {
	var captures []Capture
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := txn.NewIterator(opts)
		defer iter.Close()
		prefix := []byte(capturesPrefix)
		// Reverse iteration starts at the last key not greater than the seek key.
		seek := append([]byte(capturesPrefix), 0xFF)
		for iter.Seek(seek); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(captures) == limit {
				break
			}
			var c Capture
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				return err
			}
			captures = append(captures, c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list captures: %w", err)
	}
	for i, j := 0, len(captures)-1; i < j; i, j = i+1, j-1 {
		captures[i], captures[j] = captures[j], captures[i]
	}
	return captures, nil
}

// ClearCaptures deletes every capture and returns how many were removed.
func (r *Recorder) ClearCaptures() (int, error) {
	var keys [][]byte
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := txn.NewIterator(opts)
		defer iter.Close()
		prefix := []byte(capturesPrefix)
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list captures: %w", err)
	}
	for start := 0; start < len(keys); start += deleteBatch {
		batch := keys[start:min(start+deleteBatch, len(keys))]
		err := r.db.Update(func(txn *badger.Txn) error {
			for _, key := range batch {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return start, fmt.Errorf("failed to delete captures: %w", err)
		}
	}
	return len(keys), nil
}

func (r *Recorder) deviceKey(path string) []byte {
	return []byte(devicesPrefix + path)
}

// TouchDevice stores dev and keeps the first time it was seen.
func (r *Recorder) TouchDevice(dev Device) (Device, error) {
	now := r.now()
	err := r.db.Update(func(txn *badger.Txn) error {
		key := r.deviceKey(dev.Path)
		var stored Device
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			err = item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return fmt.Errorf("failed to unmarshal device: %w", err)
			}
		}
		dev.FirstSeenAt = stored.FirstSeenAt
		if dev.FirstSeenAt.IsZero() {
			dev.FirstSeenAt = now
		}
		dev.LastSeenAt = now
		b, err := json.Marshal(dev)
		if err != nil {
			return fmt.Errorf("failed to marshal device: %w", err)
		}
		return txn.Set(key, b)
	})
	if err != nil {
		return Device{}, fmt.Errorf("failed to store device: %w", err)
	}
	return dev, nil
}

func (r *Recorder) Devices() ([]Device, error) {
	var devices []Device
	err := r.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()
		prefix := []byte(devicesPrefix)
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var dev Device
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &dev)
			})
			if err != nil {
				return err
			}
			devices = append(devices, dev)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}
