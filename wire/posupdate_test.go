package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDegreeDelta(t *testing.T) {
	tests := []struct {
		name string
		diff float64
		want int16
		ok   bool
	}{
		{"zero", 0, 0, true},
		{"one unit", DegreeRes, 1, true},
		{"negative", -10 * DegreeRes, -10, true},
		{"typical move", 0.00001, 100, true},
		{"max", MaxDeltaDegree, 32767, true},
		{"overflow", MaxDeltaDegree * 1.01, 0, false},
		{"large jump", 5.0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := DegreeDelta(tt.diff)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, d)
				assert.InDelta(t, tt.diff, Degrees(d), DegreeRes/2)
			}
		})
	}
}

func TestAltFtDelta(t *testing.T) {
	d, ok := AltFtDelta(5.0)
	require.True(t, ok)
	assert.Equal(t, int16(50), d)
	assert.InDelta(t, 5.0, AltFt(d), AltFtRes/2)

	_, ok = AltFtDelta(MaxDeltaAltFt * 2)
	assert.False(t, ok)
	_, ok = AltFtDelta(-MaxDeltaAltFt * 2)
	assert.False(t, ok)
}

func TestAcPosUpdateMsgRoundTrip(t *testing.T) {
	buf := MsgHeader{Type: MsgAcPosUpdate, Version: VerAcPosUpdate, PluginID: 3}.AppendTo(nil)
	want := []AcPosUpdate{
		{ModeSID: 42, DLat: 100, DLon: -100, DAlt: 50, Pitch: 1.5, Heading: 180, Roll: -3},
		{ModeSID: 0xFFFFFF, DLat: -32768, DLon: 32767, DAlt: -1, Pitch: -2, Heading: 359.99, Roll: 0},
	}
	for i := range want {
		buf = want[i].AppendTo(buf)
	}
	require.Len(t, buf, HeaderLen+2*AcPosUpdateLen)

	hdr, recs, err := DecodeAcPosUpdateMsg(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgAcPosUpdate, hdr.Type)
	require.Equal(t, NumAcPosUpdate(len(buf)), len(recs))
	require.Len(t, recs, 2)

	for i := range want {
		assert.Equal(t, want[i].ModeSID, recs[i].ModeSID)
		assert.Equal(t, want[i].DLat, recs[i].DLat)
		assert.Equal(t, want[i].DLon, recs[i].DLon)
		assert.Equal(t, want[i].DAlt, recs[i].DAlt)
		assert.InDelta(t, want[i].Pitch, recs[i].Pitch, 0.005)
		assert.InDelta(t, want[i].Heading, recs[i].Heading, 0.01)
		assert.InDelta(t, want[i].Roll, recs[i].Roll, 0.005)
	}
}

func TestDecodeAcPosUpdateMsgRejects(t *testing.T) {
	u := AcPosUpdate{ModeSID: 1}
	buf := MsgHeader{Type: MsgAcPosUpdate, Version: VerAcPosUpdate}.AppendTo(nil)
	buf = u.AppendTo(buf)

	_, _, err := DecodeAcPosUpdateMsg(buf[:len(buf)-3])
	assert.ErrorIs(t, err, ErrBadLength)

	bad := append([]byte(nil), buf...)
	bad[1] = VerAcPosUpdate + 1
	_, _, err = DecodeAcPosUpdateMsg(bad)
	assert.ErrorIs(t, err, ErrBadVersion)
}

func TestAcRemoveMsgRoundTrip(t *testing.T) {
	buf := MsgHeader{Type: MsgAcRemove, Version: VerAcRemove}.AppendTo(nil)
	buf = AcRemove{ModeSID: 42}.AppendTo(buf)
	buf = AcRemove{ModeSID: 0xABCDEF}.AppendTo(buf)

	hdr, recs, err := DecodeAcRemoveMsg(buf)
	require.NoError(t, err)
	assert.Equal(t, MsgAcRemove, hdr.Type)
	require.Equal(t, NumAcRemove(len(buf)), len(recs))
	require.Len(t, recs, 2)
	assert.Equal(t, uint32(42), recs[0].ModeSID)
	assert.Equal(t, uint32(0xABCDEF), recs[1].ModeSID)
}

func TestDecodeAcRemoveMsgRejects(t *testing.T) {
	buf := MsgHeader{Type: MsgAcRemove, Version: VerAcRemove}.AppendTo(nil)
	_, _, err := DecodeAcRemoveMsg(buf) // header only, no record
	assert.ErrorIs(t, err, ErrBadLength)
}
