package render

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// ULID-style identifiers: 26 Crockford base32 characters, a 48-bit
// millisecond timestamp followed by a per-millisecond sequence and random
// bits, so identifiers sort by creation time.

var (
	idMu    sync.Mutex
	lastTS  uint64
	lastSeq uint16
)

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// NewID returns a new job or view identifier.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()

	ts := uint64(time.Now().UnixMilli())
	if ts <= lastTS {
		ts = lastTS
		lastSeq++
	} else {
		lastTS = ts
		lastSeq = 0
	}

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ts<<16)
	rand.Read(b[8:])
	binary.BigEndian.PutUint16(b[6:8], lastSeq)

	return encode(b)
}

// encode writes 128 bits as 26 base32 digits, most significant first. The
// leading digit carries the top 3 bits.
func encode(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])

	var out [26]byte
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
