package session

import (
	"encoding/binary"
	"errors"
	"time"
)

const (
	recordVersion = 1
	recordSize    = 1 + 8
)

// ErrRecordCorrupt is returned for values that are not a known record
// encoding.
var ErrRecordCorrupt = errors.New("session: refresh token record corrupt")

// Record is the value stored for a live refresh token.
type Record struct {
	StoredAt time.Time
}

// MarshalBinary encodes r as a version byte followed by the big-endian
// unix second it was stored at.
func (r Record) MarshalBinary() ([]byte, error) {
	buf := make([]byte, recordSize)
	buf[0] = recordVersion
	binary.BigEndian.PutUint64(buf[1:], uint64(r.StoredAt.Unix()))
	return buf, nil
}

// UnmarshalBinary decodes a value written by MarshalBinary.
func (r *Record) UnmarshalBinary(data []byte) error {
	if len(data) != recordSize || data[0] != recordVersion {
		return ErrRecordCorrupt
	}
	r.StoredAt = time.Unix(int64(binary.BigEndian.Uint64(data[1:])), 0).UTC()
	return nil
}
