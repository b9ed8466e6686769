package cache

import (
	"encoding/binary"
	"encoding/hex"

	"lukechampine.com/blake3"

	"github.com/matzehuels/commitgraph/pkg/core/permanent"
)

// Hash computes a BLAKE3-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Fingerprint hashes a commit stream: ids, parents and timestamps in order.
// Zero timestamps hash as missingTimestamp, the value the graph build
// substitutes for them. Streams with equal fingerprints build identical
// permanent graphs.
func Fingerprint(commits []permanent.Commit[string], missingTimestamp int64) string {
	h := blake3.New(32, nil)
	var buf [binary.MaxVarintLen64]byte
	writeString := func(s string) {
		n := binary.PutUvarint(buf[:], uint64(len(s)))
		h.Write(buf[:n])
		h.Write([]byte(s))
	}
	for _, c := range commits {
		writeString(c.ID)
		n := binary.PutUvarint(buf[:], uint64(len(c.Parents)))
		h.Write(buf[:n])
		for _, p := range c.Parents {
			writeString(p)
		}
		ts := c.Timestamp
		if ts == 0 {
			ts = missingTimestamp
		}
		n = binary.PutVarint(buf[:], ts)
		h.Write(buf[:n])
	}
	return hex.EncodeToString(h.Sum(nil))
}
