// Package cache implements the content-addressed, single-flight snapshot
// cache: a generic, bounded, TTL-aware store keyed by a deterministic
// fingerprint of actor and subsystem state.
package cache

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// fingerprintSeed distinguishes the two hash passes combined into a 128-bit
// Fingerprint; xxhash is natively 64-bit, so the fingerprint runs it twice
// over the same byte stream with different seeds.
const fingerprintSeed = 0x9E3779B97F4A7C15

// SubsystemVersion is one (system_id, version) pair folded into a
// fingerprint, supplied in registry order.
type SubsystemVersion struct {
	SystemID string
	Version  uint64
}

// Fingerprint is a 128-bit deterministic digest of an actor's id, version,
// and its attached subsystems' (system_id, version) pairs in registry order.
// It never depends on wall-clock time or process-local state, so two
// processes computing it for identical inputs agree byte-for-byte.
type Fingerprint [16]byte

// Compute builds a Fingerprint from actor id/version and the ordered
// subsystem versions seen during collection. Callers pass subsystems already
// sorted by registry order (ascending priority, then ascending system_id).
func Compute(actorID string, actorVersion uint64, subsystems []SubsystemVersion) Fingerprint {
	buf := encode(actorID, actorVersion, subsystems)

	h1 := xxhash.New()
	h1.Write(buf)
	lo := h1.Sum64()

	h2 := xxhash.NewWithSeed(fingerprintSeed)
	h2.Write(buf)
	hi := h2.Sum64()

	var fp Fingerprint
	binary.BigEndian.PutUint64(fp[:8], hi)
	binary.BigEndian.PutUint64(fp[8:], lo)
	return fp
}

func encode(actorID string, actorVersion uint64, subsystems []SubsystemVersion) []byte {
	size := 8 + len(actorID) + 8 + len(subsystems)*(8+8)
	for _, sv := range subsystems {
		size += len(sv.SystemID)
	}
	buf := make([]byte, 0, size)

	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(len(actorID)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, actorID...)

	binary.BigEndian.PutUint64(tmp[:], actorVersion)
	buf = append(buf, tmp[:]...)

	binary.BigEndian.PutUint64(tmp[:], uint64(len(subsystems)))
	buf = append(buf, tmp[:]...)

	for _, sv := range subsystems {
		binary.BigEndian.PutUint64(tmp[:], uint64(len(sv.SystemID)))
		buf = append(buf, tmp[:]...)
		buf = append(buf, sv.SystemID...)
		binary.BigEndian.PutUint64(tmp[:], sv.Version)
		buf = append(buf, tmp[:]...)
	}

	return buf
}
