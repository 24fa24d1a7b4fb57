package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// MsgType identifies the kind of a sync message.
type MsgType uint8

const (
	// MsgInterestBeacon is sent by a receiver to wake up a listening sender.
	MsgInterestBeacon MsgType = iota
	// MsgSend is an internal flush marker, it never appears on the wire.
	MsgSend
	// MsgSettings carries a sender's identity and configuration.
	MsgSettings
	// MsgAcDetail carries full aircraft state records.
	MsgAcDetail
	// MsgAcPosUpdate carries compact position delta records.
	MsgAcPosUpdate
	// MsgAcRemove signals that aircraft no longer exist.
	MsgAcRemove
)

// String returns the message kind's name for logging.
func (t MsgType) String() string {
	switch t {
	case MsgInterestBeacon:
		return "InterestBeacon"
	case MsgSend:
		return "Send"
	case MsgSettings:
		return "Settings"
	case MsgAcDetail:
		return "AcDetail"
	case MsgAcPosUpdate:
		return "AcPosUpdate"
	case MsgAcRemove:
		return "AcRemove"
	}
	return fmt.Sprintf("MsgType(%d)", uint8(t))
}

// Per-kind format version numbers.
const (
	VerBeacon      = 0
	VerSettings    = 0
	VerAcDetail    = 0
	VerAcPosUpdate = 0
	VerAcRemove    = 0
)

// HeaderLen is the fixed size of the message header.
const HeaderLen = 8

var (
	// ErrMsgTooShort is returned when a datagram is shorter than the
	// header or than the declared record layout.
	ErrMsgTooShort = errors.New("message too short")
	// ErrBadVersion is returned when a message carries an unsupported
	// format version.
	ErrBadVersion = errors.New("unsupported message version")
	// ErrBadLength is returned when a message's length is not consistent
	// with its record size.
	ErrBadLength = errors.New("message length does not match record layout")
)

// MsgHeader prefixes every message.
//
// Wire layout (8 bytes): kind, version, plugin id (uint16), 4 reserved bytes.
type MsgHeader struct {
	Type     MsgType
	Version  uint8
	PluginID uint16
}

// AppendTo appends the encoded header to buf and returns the result.
func (h MsgHeader) AppendTo(buf []byte) []byte {
	buf = append(buf, byte(h.Type), h.Version)
	buf = appendUint16(buf, h.PluginID)
	return append(buf, 0, 0, 0, 0)
}

// DecodeHeader reads the message header from the start of data.
func DecodeHeader(data []byte) (MsgHeader, error) {
	if len(data) < HeaderLen {
		return MsgHeader{}, fmt.Errorf("%w: %d bytes", ErrMsgTooShort, len(data))
	}
	return MsgHeader{
		Type:     MsgType(data[0]),
		Version:  data[1],
		PluginID: getUint16(data[2:]),
	}, nil
}

// EncodeBeacon builds an Interest Beacon, a header-only message whose
// arrival alone signals a sender that someone is listening.
func EncodeBeacon(pluginID uint16) []byte {
	return MsgHeader{Type: MsgInterestBeacon, Version: VerBeacon, PluginID: pluginID}.AppendTo(nil)
}

// EncodeHeading normalizes a heading into [0,360) and scales it to
// hundredths of a degree. Rounding can push values just below 360 up to
// the full circle, as can float error in the normalization itself; both
// wrap to 0 so a decoded heading always stays below 360.
func EncodeHeading(h float32) uint16 {
	d := math.Mod(float64(h), 360)
	if d < 0 {
		d += 360
	}
	u := uint16(math.Round(d * 100))
	if u >= 36000 {
		u = 0
	}
	return u
}

// DecodeHeading restores a heading in degrees from its wire value. Values
// from a foreign encoder are wrapped into [0,360) rather than trusted.
func DecodeHeading(u uint16) float32 {
	return float32(u%36000) / 100
}

// EncodeAngle100 scales pitch or roll to hundredths of a degree. The value
// is assumed to be within the representable +-327 degrees.
func EncodeAngle100(a float32) int16 {
	return int16(math.Round(float64(a) * 100))
}

// DecodeAngle100 restores a pitch or roll angle in degrees.
func DecodeAngle100(i int16) float32 {
	return float32(i) / 100
}

// Fixed-offset big-endian primitives shared by all message codecs.

func appendUint16(buf []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(buf, v)
}

func getUint16(b []byte) uint16 {
	return binary.BigEndian.Uint16(b)
}

// The aircraft id travels as 24 bits to keep records compact.

func appendUint24(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>16), byte(v>>8), byte(v))
}

func getUint24(b []byte) uint32 {
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

func appendUint32(buf []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(buf, v)
}

func getUint32(b []byte) uint32 {
	return binary.BigEndian.Uint32(b)
}

func appendFloat32(buf []byte, f float32) []byte {
	return binary.BigEndian.AppendUint32(buf, math.Float32bits(f))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(b))
}

func appendFloat64(buf []byte, f float64) []byte {
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(f))
}

func getFloat64(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// appendString copies s into a fixed-width field, truncating or
// zero-padding as needed. Strings using the full width are not
// zero-terminated on the wire.
func appendString(buf []byte, s string, width int) []byte {
	if len(s) > width {
		s = s[:width]
	}
	buf = append(buf, s...)
	for i := len(s); i < width; i++ {
		buf = append(buf, 0)
	}
	return buf
}

// getString reads a fixed-width field, dropping trailing zero padding.
func getString(b []byte, width int) string {
	b = b[:width]
	end := width
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}
