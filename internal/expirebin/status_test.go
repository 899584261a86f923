package expirebin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEval(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		d    Decoded
		want BinStatus
	}{
		{"plain bin", Decoded{Value: []byte("v")}, NotTracked},
		{"future expiry", Decoded{Tracked: true, ExpiresAt: now.Add(time.Hour).UnixNano()}, Live},
		{"no expiry", Decoded{Tracked: true, ExpiresAt: NeverExpires}, Live},
		{"past expiry", Decoded{Tracked: true, ExpiresAt: now.Add(-time.Second).UnixNano()}, Expired},
		{"expiry exactly now", Decoded{Tracked: true, ExpiresAt: now.UnixNano()}, Expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eval(tt.d, now))
		})
	}
}

func TestBinStatus_String(t *testing.T) {
	assert.Equal(t, "not_tracked", NotTracked.String())
	assert.Equal(t, "live", Live.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "unknown", BinStatus(42).String())
}
