package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Run IDs are ULIDs: 48-bit millisecond timestamp then 80 random bits,
// Crockford base32, 26 characters. IDs minted in the same millisecond carry
// an increasing sequence in the first random bytes so they still sort.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var ids struct {
	mu   sync.Mutex
	last uint64
	seq  uint16
}

// NewRunID returns a new lexically sortable run ID.
func NewRunID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ts := uint64(now.UnixMilli())

	ids.mu.Lock()
	if ts == ids.last {
		ids.seq++
	} else {
		ids.last, ids.seq = ts, 0
	}
	seq := ids.seq
	ids.mu.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], ts<<16)
	rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeBase32(b)
}

// encodeBase32 writes 128 bits as 26 symbols, most significant first. The
// leading symbol carries only the top 3 bits.
func encodeBase32(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[:8])
	lo := binary.BigEndian.Uint64(b[8:])
	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
