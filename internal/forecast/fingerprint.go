package forecast

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
)

// Fingerprint derives a content-addressed cache key for one forecast call:
// a SHA-256 digest over the canonical binary encoding of every series point
// (nanosecond timestamp and raw value bits) followed by the target column,
// date column, requested periods, and confidence level. Equal inputs always
// produce equal fingerprints, so an external cache can store results under
// this key without consulting the engine.
func Fingerprint(series Series, targetColumn, dateColumn string, periods int, confidenceLevel float64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	for i := 0; i < series.Len(); i++ {
		p := series.At(i)
		binary.BigEndian.PutUint64(buf, uint64(p.Timestamp.UnixNano()))
		h.Write(buf)
		binary.BigEndian.PutUint64(buf, math.Float64bits(p.Value))
		h.Write(buf)
	}
	fmt.Fprintf(h, "|%s|%s|%d|", targetColumn, dateColumn, periods)
	binary.BigEndian.PutUint64(buf, math.Float64bits(confidenceLevel))
	h.Write(buf)
	return hex.EncodeToString(h.Sum(nil))
}
