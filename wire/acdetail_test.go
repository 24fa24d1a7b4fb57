package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetail(id uint32) *AcDetail {
	d := &AcDetail{
		IcaoType:   "B738",
		IcaoOp:     "DLH",
		ShortID:    "B738_DLH",
		PkgHash:    PJWHash16("Bluebell"),
		ModeSID:    id,
		Valid:      true,
		Visible:    true,
		Label:      "DLH414",
		LabelColor: [3]uint8{255, 255, 0},
		AltFt:      35000,
		Lat:        50.0379,
		Lon:        8.5622,
		Pitch:      2.5,
		Heading:    274.31,
		Roll:       -1.2,
		AiPrio:     1,
	}
	for i := range d.Channels {
		d.Channels[i] = uint8(i * 5)
	}
	return d
}

func TestAcDetailRecordSize(t *testing.T) {
	buf := sampleDetail(42).AppendTo(nil)
	require.Len(t, buf, AcDetailLen)
	assert.Equal(t, 0, AcDetailLen%8, "records must stay 8-byte aligned in arrays")
}

func TestAcDetailMsgRoundTrip(t *testing.T) {
	buf := MsgHeader{Type: MsgAcDetail, Version: VerAcDetail, PluginID: 9}.AppendTo(nil)
	want := []*AcDetail{sampleDetail(42), sampleDetail(0xABCDEF), sampleDetail(7)}
	for _, d := range want {
		buf = d.AppendTo(buf)
	}

	hdr, recs, err := DecodeAcDetailMsg(buf)
	require.NoError(t, err)
	assert.Equal(t, uint16(9), hdr.PluginID)
	require.Equal(t, NumAcDetail(len(buf)), len(recs))
	require.Len(t, recs, 3)

	for i, d := range want {
		got := recs[i]
		assert.Equal(t, d.IcaoType, got.IcaoType)
		assert.Equal(t, d.IcaoOp, got.IcaoOp)
		assert.Equal(t, d.ShortID, got.ShortID)
		assert.Equal(t, d.PkgHash, got.PkgHash)
		assert.Equal(t, d.ModeSID, got.ModeSID)
		assert.Equal(t, d.Valid, got.Valid)
		assert.Equal(t, d.Visible, got.Visible)
		assert.Equal(t, d.Label, got.Label)
		assert.Equal(t, d.LabelColor, got.LabelColor)
		assert.Equal(t, d.AltFt, got.AltFt)
		assert.Equal(t, d.Lat, got.Lat) // full precision, never quantized
		assert.Equal(t, d.Lon, got.Lon)
		assert.InDelta(t, d.Pitch, got.Pitch, 0.005)
		assert.InDelta(t, d.Heading, got.Heading, 0.01)
		assert.InDelta(t, d.Roll, got.Roll, 0.005)
		assert.Equal(t, d.AiPrio, got.AiPrio)
		assert.Equal(t, d.Channels, got.Channels)
	}
}

func TestAcDetailNegativeAiPrio(t *testing.T) {
	d := sampleDetail(1)
	d.AiPrio = -1 // no TCAS display
	buf := MsgHeader{Type: MsgAcDetail, Version: VerAcDetail}.AppendTo(nil)
	buf = d.AppendTo(buf)

	_, recs, err := DecodeAcDetailMsg(buf)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), recs[0].AiPrio)
}

func TestDecodeAcDetailMsgRejects(t *testing.T) {
	buf := MsgHeader{Type: MsgAcDetail, Version: VerAcDetail}.AppendTo(nil)
	buf = sampleDetail(1).AppendTo(buf)

	_, _, err := DecodeAcDetailMsg(buf[:len(buf)-1])
	assert.ErrorIs(t, err, ErrBadLength)

	_, _, err = DecodeAcDetailMsg(buf[:HeaderLen])
	assert.ErrorIs(t, err, ErrBadLength)

	bad := append([]byte(nil), buf...)
	bad[1] = VerAcDetail + 1
	_, _, err = DecodeAcDetailMsg(bad)
	assert.ErrorIs(t, err, ErrBadVersion)
}
