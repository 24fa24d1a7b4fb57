package wire

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := MsgHeader{Type: MsgAcDetail, Version: 3, PluginID: 0xBEEF}
	buf := h.AppendTo(nil)
	require.Len(t, buf, HeaderLen)

	got, err := DecodeHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestDecodeHeaderTooShort(t *testing.T) {
	_, err := DecodeHeader([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrMsgTooShort)
}

func TestEncodeBeacon(t *testing.T) {
	msg := EncodeBeacon(7)
	require.Len(t, msg, HeaderLen)
	hdr, err := DecodeHeader(msg)
	require.NoError(t, err)
	assert.Equal(t, MsgInterestBeacon, hdr.Type)
	assert.Equal(t, uint8(VerBeacon), hdr.Version)
	assert.Equal(t, uint16(7), hdr.PluginID)
}

// TestHeadingNormalization checks that any heading decodes back into
// [0,360) and matches the input modulo 360 within the 0.01 degree
// encoding resolution.
func TestHeadingNormalization(t *testing.T) {
	for _, h := range []float32{0, 0.004, 90, 359.99, 360, 360.5, 720, -1, -90, -359.99, -720.25, 1234.5} {
		enc := EncodeHeading(h)
		dec := DecodeHeading(enc)
		assert.GreaterOrEqual(t, dec, float32(0), "heading %v", h)
		assert.Less(t, dec, float32(360), "heading %v", h)

		want := math.Mod(float64(h), 360)
		if want < 0 {
			want += 360
		}
		// 360 and 0 are the same direction.
		diff := math.Abs(float64(dec) - want)
		if diff > 180 {
			diff = 360 - diff
		}
		assert.LessOrEqual(t, diff, 0.01, "heading %v decoded as %v", h, dec)
	}
}

// TestHeadingBoundaries pins the wrap at the full circle: neither float
// error in the normalization nor rounding may produce a decoded 360.
func TestHeadingBoundaries(t *testing.T) {
	assert.Equal(t, uint16(0), EncodeHeading(-1e-14))
	assert.Equal(t, uint16(0), EncodeHeading(359.9999))
	assert.Equal(t, uint16(0), EncodeHeading(360))
	assert.Equal(t, uint16(35999), EncodeHeading(359.99))

	// Scaling rounds, it must not truncate.
	assert.Equal(t, uint16(27431), EncodeHeading(274.31))
	assert.InDelta(t, 274.31, DecodeHeading(EncodeHeading(274.31)), 0.01)

	// Out-of-range wire values from a foreign encoder wrap too.
	assert.Equal(t, float32(0), DecodeHeading(36000))
	assert.Less(t, DecodeHeading(math.MaxUint16), float32(360))
}

func TestAngle100RoundTrip(t *testing.T) {
	for _, a := range []float32{0, 1.25, -1.25, 15.57, -89.99, 90} {
		assert.InDelta(t, a, DecodeAngle100(EncodeAngle100(a)), 0.005, "angle %v", a)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	in := &Settings{
		Name:         "LiveTraffic",
		MaxLabelDist: 5556,
		DefaultIcao:  "A320",
		CarIcaoType:  "ZZZC",
		LogLevel:     2,

		LogModelMatch:           true,
		ObjReplTextures:         true,
		LabelCutOffAtVisibility: true,
		MapLabels:               true,
	}
	msg := EncodeSettings(0x1234, in)
	require.Len(t, msg, SettingsLen)

	hdr, out, err := DecodeSettings(msg)
	require.NoError(t, err)
	assert.Equal(t, MsgSettings, hdr.Type)
	assert.Equal(t, uint16(0x1234), hdr.PluginID)
	assert.Equal(t, in, out)
}

func TestSettingsNameTruncated(t *testing.T) {
	in := &Settings{Name: "a rather long sender name", DefaultIcao: "C172", CarIcaoType: "ZZZC"}
	_, out, err := DecodeSettings(EncodeSettings(1, in))
	require.NoError(t, err)
	assert.Equal(t, "a rather long se", out.Name)
}

func TestDecodeSettingsRejects(t *testing.T) {
	good := EncodeSettings(1, &Settings{Name: "x"})

	short := good[:SettingsLen-1]
	_, _, err := DecodeSettings(short)
	assert.ErrorIs(t, err, ErrBadLength)

	bad := append([]byte(nil), good...)
	bad[1] = VerSettings + 1
	_, _, err = DecodeSettings(bad)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestFixedStringHelpers(t *testing.T) {
	buf := appendString(nil, "AB", 4)
	assert.Equal(t, []byte{'A', 'B', 0, 0}, buf)
	assert.Equal(t, "AB", getString(buf, 4))

	// A string using the full width is not zero-terminated.
	buf = appendString(nil, "ABCDE", 4)
	assert.Equal(t, []byte("ABCD"), buf)
	assert.Equal(t, "ABCD", getString(buf, 4))
}
