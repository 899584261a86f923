package expirebin

import (
	"bytes"
	"encoding/gob"
	"time"
)

// expire-bin content is a two byte marker followed by a gob-encoded
// envelope. Anything that does not carry the marker, fails to decode, or
// decodes with trailing bytes is treated as a plain bin: misclassifying
// foreign content as expired would silently destroy it, so ambiguity
// always resolves to plain.
var binMarker = []byte{0xeb, 0x01}

type binEnvelope struct {
	Value     []byte
	ExpiresAt int64
}

// Encode packs a value and an absolute expiration (unix nanoseconds,
// NeverExpires for none) into expire-bin content.
func Encode(value []byte, expiresAt int64) []byte {
	var buf bytes.Buffer
	buf.Write(binMarker)
	// gob encoding of a fixed flat struct cannot fail
	_ = gob.NewEncoder(&buf).Encode(binEnvelope{Value: value, ExpiresAt: expiresAt})
	return buf.Bytes()
}

// EncodeTTL packs a value with an expiration of now+ttl, or no expiration
// when ttl is negative.
func EncodeTTL(value []byte, ttl time.Duration, now time.Time) []byte {
	return Encode(value, expiryFromTTL(ttl, now))
}

// Decode classifies bin content. Content carrying the expire-bin marker
// and a well-formed envelope decodes as tracked; everything else comes
// back as a plain bin whose value is the content itself.
func Decode(content []byte) Decoded {
	if !bytes.HasPrefix(content, binMarker) {
		return Decoded{Value: content}
	}
	r := bytes.NewReader(content[len(binMarker):])
	var env binEnvelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil || r.Len() != 0 || env.ExpiresAt < 0 {
		return Decoded{Value: content}
	}
	return Decoded{Tracked: true, Value: env.Value, ExpiresAt: env.ExpiresAt}
}

func expiryFromTTL(ttl time.Duration, now time.Time) int64 {
	if ttl < 0 {
		return NeverExpires
	}
	return now.Add(ttl).UnixNano()
}
