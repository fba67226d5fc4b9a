package h2

import "encoding/binary"

// Settings identifiers, RFC 7540 §6.5.2.
const (
	SettingsHeaderTableSize      uint16 = 0x1
	SettingsEnablePush           uint16 = 0x2
	SettingsMaxConcurrentStreams uint16 = 0x3
	SettingsInitialWindowSize    uint16 = 0x4
	SettingsMaxFrameSize         uint16 = 0x5
	SettingsMaxHeaderListSize    uint16 = 0x6
)

// Settings holds one peer's negotiated connection parameters.
type Settings struct {
	HeaderTableSize      uint32
	EnablePush           bool
	MaxConcurrentStreams uint32
	InitialWindowSize    uint32
	MaxFrameSize         uint32
	MaxHeaderListSize    uint32
}

// DefaultSettings returns RFC 7540 §6.5.2's default values.
func DefaultSettings() Settings {
	return Settings{
		HeaderTableSize:      4096,
		EnablePush:           true,
		MaxConcurrentStreams: 1 << 31,
		InitialWindowSize:    1 << 16,
		MaxFrameSize:         1 << 14,
		MaxHeaderListSize:    1 << 31,
	}
}

// AppendSettingsFrame encodes s as a SETTINGS frame payload, only emitting
// fields that differ from defaults isn't required by the protocol, but
// kept minimal here: every field is always emitted.
func AppendSettingsFrame(dst []byte, s Settings) []byte {
	dst = appendSetting(dst, SettingsHeaderTableSize, s.HeaderTableSize)
	dst = appendSetting(dst, SettingsMaxConcurrentStreams, s.MaxConcurrentStreams)
	dst = appendSetting(dst, SettingsInitialWindowSize, s.InitialWindowSize)
	dst = appendSetting(dst, SettingsMaxFrameSize, s.MaxFrameSize)
	dst = appendSetting(dst, SettingsMaxHeaderListSize, s.MaxHeaderListSize)
	push := uint32(0)
	if s.EnablePush {
		push = 1
	}
	dst = appendSetting(dst, SettingsEnablePush, push)
	return dst
}

func appendSetting(dst []byte, id uint16, v uint32) []byte {
	var b [6]byte
	binary.BigEndian.PutUint16(b[0:2], id)
	binary.BigEndian.PutUint32(b[2:6], v)
	return append(dst, b[:]...)
}

// ParseSettingsFrame applies each 6-byte setting in payload onto s.
func ParseSettingsFrame(s *Settings, payload []byte) error {
	if len(payload)%6 != 0 {
		return errSettingsLength
	}
	for i := 0; i+6 <= len(payload); i += 6 {
		id := binary.BigEndian.Uint16(payload[i : i+2])
		v := binary.BigEndian.Uint32(payload[i+2 : i+6])
		switch id {
		case SettingsHeaderTableSize:
			s.HeaderTableSize = v
		case SettingsEnablePush:
			s.EnablePush = v != 0
		case SettingsMaxConcurrentStreams:
			s.MaxConcurrentStreams = v
		case SettingsInitialWindowSize:
			s.InitialWindowSize = v
		case SettingsMaxFrameSize:
			s.MaxFrameSize = v
		case SettingsMaxHeaderListSize:
			s.MaxHeaderListSize = v
		}
	}
	return nil
}
