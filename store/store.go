package store

import (
	"bytes"
	goerrors "errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/wippyai/cstruct/errors"
	"github.com/wippyai/cstruct/record"
)

// Key layout:
//
//	'd' name 0x00 ksuid   encoded record buffer
//	'm' name              format string the buffers were encoded with
const (
	dataPrefix = 'd'
	metaPrefix = 'm'
)

// Store keeps encoded record buffers in a Pebble database. Buffers are keyed
// by record name and a KSUID, so listing returns them in insertion order.
type Store struct {
	db   *pebble.DB
	sync bool
}

// Option configures Open.
type Option func(*Store)

// WithSync makes every write wait for the WAL to reach disk.
func WithSync(sync bool) Option {
	return func(s *Store) { s.sync = sync }
}

// Open opens or creates a store in dir.
func Open(dir string, opts ...Option) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", dir, err)
	}
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	Logger().Debug("store opened", zap.String("dir", dir))
	return s, nil
}

func (s *Store) writeOpts() *pebble.WriteOptions {
	if s.sync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// Put encodes inst and stores it under a new KSUID. The first buffer stored
// for a record name pins its format string; later puts with a different
// layout are rejected.
func (s *Store) Put(inst *record.Instance) (ksuid.KSUID, error) {
	buf, err := inst.Bytes()
	if err != nil {
		return ksuid.Nil, err
	}
	r := inst.Type()
	if err := s.checkFormat(r, true); err != nil {
		return ksuid.Nil, err
	}

	id := ksuid.New()
	if err := s.db.Set(dataKey(r.Name(), id), buf, s.writeOpts()); err != nil {
		return ksuid.Nil, errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "put "+r.Name())
	}
	Logger().Debug("record stored",
		zap.String("record", r.Name()),
		zap.Stringer("id", id),
		zap.Int("size", len(buf)))
	return id, nil
}

// Get decodes the buffer stored under id.
func (s *Store) Get(r *record.Record, id ksuid.KSUID) (*record.Instance, error) {
	if err := s.checkFormat(r, false); err != nil {
		return nil, err
	}
	data, closer, err := s.db.Get(dataKey(r.Name(), id))
	if goerrors.Is(err, pebble.ErrNotFound) {
		return nil, errors.NotFound(errors.PhaseStore, r.Name(), id.String())
	}
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "get "+r.Name())
	}
	defer closer.Close()
	// the decoder copies everything it returns, so data may be released after
	return r.Decode(data)
}

// Delete removes one stored buffer. Deleting a missing id is not an error.
func (s *Store) Delete(r *record.Record, id ksuid.KSUID) error {
	if err := s.db.Delete(dataKey(r.Name(), id), s.writeOpts()); err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "delete "+r.Name())
	}
	return nil
}

// List returns the ids stored for r in insertion order.
func (s *Store) List(r *record.Record) ([]ksuid.KSUID, error) {
	var ids []ksuid.KSUID
	err := s.scan(r.Name(), func(id ksuid.KSUID, _ []byte) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// Scan decodes every buffer stored for r and calls fn in insertion order.
// Returning an error from fn stops the scan and returns that error.
func (s *Store) Scan(r *record.Record, fn func(ksuid.KSUID, *record.Instance) error) error {
	if err := s.checkFormat(r, false); err != nil {
		return err
	}
	return s.scan(r.Name(), func(id ksuid.KSUID, data []byte) error {
		inst, err := r.Decode(data)
		if err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		return fn(id, inst)
	})
}

// Names returns the record names with a pinned format, in key order.
func (s *Store) Names() ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{metaPrefix},
		UpperBound: []byte{metaPrefix + 1},
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "list names")
	}
	defer iter.Close()

	var names []string
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, string(iter.Key()[1:]))
	}
	return names, iter.Error()
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) scan(name string, fn func(ksuid.KSUID, []byte) error) error {
	prefix := dataPrefixFor(name)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound(prefix),
	})
	if err != nil {
		return errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "scan "+name)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key()[len(prefix):])
		if err != nil {
			return errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "corrupt key")
		}
		if err := fn(id, iter.Value()); err != nil {
			return err
		}
	}
	return iter.Error()
}

// checkFormat compares r's format string with the one pinned in the store.
// With pin set, a missing format is recorded.
func (s *Store) checkFormat(r *record.Record, pin bool) error {
	format := r.FormatString()
	if format == "" {
		return errors.Configuration([]string{r.Name()}, "record %s is not defined", r.Name())
	}
	key := metaKey(r.Name())
	stored, closer, err := s.db.Get(key)
	switch {
	case goerrors.Is(err, pebble.ErrNotFound):
		if !pin {
			return nil
		}
		if err := s.db.Set(key, []byte(format), s.writeOpts()); err != nil {
			return errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "pin format of "+r.Name())
		}
		return nil
	case err != nil:
		return errors.Wrap(errors.PhaseStore, errors.KindInvalidInput, err, "read format of "+r.Name())
	}
	defer closer.Close()
	if !bytes.Equal(stored, []byte(format)) {
		return errors.New(errors.PhaseStore, errors.KindConfiguration).
			Path(r.Name()).
			Detail("stored buffers use layout %s, record has %s", stored, format).
			Build()
	}
	return nil
}

func dataPrefixFor(name string) []byte {
	k := make([]byte, 0, len(name)+2)
	k = append(k, dataPrefix)
	k = append(k, name...)
	return append(k, 0)
}

func dataKey(name string, id ksuid.KSUID) []byte {
	return append(dataPrefixFor(name), id.Bytes()...)
}

func metaKey(name string) []byte {
	return append([]byte{metaPrefix}, name...)
}

// upperBound returns the smallest key greater than every key with prefix.
// Prefixes here always end in 0x00, so incrementing the last byte is enough.
func upperBound(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	end[len(end)-1]++
	return end
}
