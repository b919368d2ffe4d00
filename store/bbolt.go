package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/synth"
	"go.etcd.io/bbolt"
)

type BBolt struct {
	db *bbolt.DB
}

const (
	bboltRootBucket = "encodersine"

	// root keys
	bboltHardwareKey = "hardware"
	bboltSynthKey    = "synth"
)

// OpenBBolt opens a BBoltDB database at the given path and creates the needed buckets
// if they don't exist.
func OpenBBolt(path string, mode os.FileMode, options *bbolt.Options) (Store, error) {
	db, err := bbolt.Open(path, mode, options)
	if err != nil {
		return nil, fmt.Errorf("unable to open bbolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(bboltRootBucket)); err != nil {
			return fmt.Errorf("unable to create bucket %q: %w", bboltRootBucket, err)
		}

		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to create bbolt buckets: %w", err)
	}

	return &BBolt{
		db: db,
	}, nil
}

func (b *BBolt) Close() error {
	return b.db.Close()
}

func (b *BBolt) HardwareConfig() (hardware.Config, error) {
	var h hardware.Config
	if err := b.get(bboltHardwareKey, &h); err != nil {
		return h, fmt.Errorf("unable to get hardware config: %w", err)
	}

	return h, nil
}

func (b *BBolt) PutHardwareConfig(h hardware.Config) error {
	if err := b.put(bboltHardwareKey, h); err != nil {
		return fmt.Errorf("unable to update hardware config: %w", err)
	}

	return nil
}

func (b *BBolt) SynthConfig() (synth.Config, error) {
	var s synth.Config
	if err := b.get(bboltSynthKey, &s); err != nil {
		return s, fmt.Errorf("unable to get synth config: %w", err)
	}

	return s, nil
}

func (b *BBolt) PutSynthConfig(s synth.Config) error {
	if err := b.put(bboltSynthKey, s); err != nil {
		return fmt.Errorf("unable to update synth config: %w", err)
	}

	return nil
}

// get unmarshals the JSON stored at key into v.
func (b *BBolt) get(key string, v interface{}) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bboltRootBucket))

		valueJSON := bucket.Get([]byte(key))
		if valueJSON == nil {
			return ErrNotFound{fmt.Errorf("%q does not exist", key)}
		}

		if err := json.Unmarshal(valueJSON, v); err != nil {
			return fmt.Errorf("unable to unmarshal %q JSON: %w", key, err)
		}

		return nil
	})
}

// put stores v as JSON at key.
func (b *BBolt) put(key string, v interface{}) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		valueJSON, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("unable to marshal %q: %w", key, err)
		}

		bucket := tx.Bucket([]byte(bboltRootBucket))
		if err := bucket.Put([]byte(key), valueJSON); err != nil {
			return fmt.Errorf("unable to put %q: %w", key, err)
		}

		return nil
	})
}
