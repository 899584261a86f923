package expirebin

import (
	"bytes"
	"encoding/gob"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		value     []byte
		expiresAt int64
	}{
		{"future expiry", []byte("hello"), time.Now().Add(time.Hour).UnixNano()},
		{"past expiry", []byte("stale"), time.Now().Add(-time.Hour).UnixNano()},
		{"no expiry", []byte("forever"), NeverExpires},
		{"empty value", nil, time.Now().Add(time.Minute).UnixNano()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := Encode(tt.value, tt.expiresAt)
			d := Decode(content)

			require.True(t, d.Tracked)
			assert.Equal(t, tt.value, d.Value)
			assert.Equal(t, tt.expiresAt, d.ExpiresAt)
		})
	}
}

func TestCodec_EncodeTTL(t *testing.T) {
	now := time.Now()

	d := Decode(EncodeTTL([]byte("v"), 5*time.Minute, now))
	require.True(t, d.Tracked)
	assert.Equal(t, now.Add(5*time.Minute).UnixNano(), d.ExpiresAt)

	d = Decode(EncodeTTL([]byte("v"), NoExpiry, now))
	require.True(t, d.Tracked)
	assert.Equal(t, NeverExpires, d.ExpiresAt)

	// Zero TTL encodes an expiry of now, which has already passed
	d = Decode(EncodeTTL([]byte("v"), 0, now))
	require.True(t, d.Tracked)
	assert.Equal(t, now.UnixNano(), d.ExpiresAt)
}

func TestCodec_PlainContentStaysPlain(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"text", []byte("just a value")},
		{"empty", nil},
		{"single byte", []byte{0xeb}},
		{"json", []byte(`{"a":1}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decode(tt.content)
			assert.False(t, d.Tracked)
			assert.Equal(t, tt.content, d.Value)
		})
	}
}

func TestCodec_AmbiguousContentDecodesAsPlain(t *testing.T) {
	t.Run("marker with garbage body", func(t *testing.T) {
		content := append([]byte{0xeb, 0x01}, []byte("not a gob stream")...)
		d := Decode(content)
		assert.False(t, d.Tracked)
		assert.Equal(t, content, d.Value)
	})

	t.Run("marker with trailing bytes", func(t *testing.T) {
		content := append(Encode([]byte("v"), NeverExpires), 0x00)
		d := Decode(content)
		assert.False(t, d.Tracked)
		assert.Equal(t, content, d.Value)
	})

	t.Run("marker with negative expiry", func(t *testing.T) {
		var buf bytes.Buffer
		buf.Write([]byte{0xeb, 0x01})
		require.NoError(t, gob.NewEncoder(&buf).Encode(binEnvelope{Value: []byte("v"), ExpiresAt: -1}))

		d := Decode(buf.Bytes())
		assert.False(t, d.Tracked)
		assert.Equal(t, buf.Bytes(), d.Value)
	})
}
