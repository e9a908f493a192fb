// Trafficinator - Synthetic Matomo Traffic Generator
// Copyright 2026 Trafficinator contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/trafficinator

package backfill

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
	"time"
)

// seedBytesFrom converts the configured int64 seed into the byte string
// HMAC keys on. A fixed 8-byte big-endian encoding keeps the derivation
// stable across runs and platforms.
func seedBytesFrom(seed int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(seed))
	return buf
}

// daySeededRand derives a *rand.Rand for day D as HMAC(seed_bytes,
// day_iso_string) (spec.md §4.9 "Determinism"), so each day is
// independently reproducible: replaying just day D needs only seed_bytes
// and D's ISO date, not the whole window's draw history. Grounded on the
// stdlib crypto/hmac + crypto/sha256 pair directly; no library in the
// example pack offers a keyed-hash primitive narrower or more idiomatic
// than the standard library's for this single derivation step.
func daySeededRand(seedBytes []byte, day time.Time) *rand.Rand {
	mac := hmac.New(sha256.New, seedBytes)
	mac.Write([]byte(day.Format(dateLayout)))
	sum := mac.Sum(nil)
	seed := int64(binary.BigEndian.Uint64(sum[:8]))
	return rand.New(rand.NewSource(seed))
}
