package h2

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello")
	require.NoError(t, WriteFrame(&buf, FrameData, FlagEndStream, 3, payload))

	f, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, FrameData, f.Type)
	assert.Equal(t, FlagEndStream, f.Flags)
	assert.Equal(t, uint32(3), f.StreamID)
	assert.Equal(t, payload, f.Payload)
}

func TestPrefaceRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePreface(&buf))
	require.NoError(t, ReadPreface(&buf))
}

func TestSettingsRoundTrip(t *testing.T) {
	want := DefaultSettings()
	want.MaxConcurrentStreams = 42
	payload := AppendSettingsFrame(nil, want)

	var got Settings
	require.NoError(t, ParseSettingsFrame(&got, payload))
	assert.Equal(t, want, got)
}
