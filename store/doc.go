// Package store persists encoded record buffers in a Pebble database.
//
// Each buffer is stored under its record name and a KSUID:
//
//	s, err := store.Open(dir)
//	id, err := s.Put(inst)
//	back, err := s.Get(r, id)
//
// The first Put for a record name pins the record's format string. Reading
// or writing with a record whose layout differs fails with a configuration
// error instead of silently decoding bytes under the wrong layout.
package store
