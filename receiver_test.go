package airsync

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lansim/airsync/wire"
)

// recorder captures everything the receiver hands to the callbacks.
type recorder struct {
	settings []*wire.Settings
	details  []wire.AcDetail
	posUpds  []wire.AcPosUpdate
	removes  []wire.AcRemove
	brackets int // BeforeFirstAc/AfterLastAc balance, must end at 0
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		BeforeFirstAc: func() { r.brackets++ },
		AfterLastAc:   func() { r.brackets-- },
		OnSettings: func(_ *net.UDPAddr, s *wire.Settings) {
			r.settings = append(r.settings, s)
		},
		OnAcDetail: func(_ *net.UDPAddr, _ int, recs []wire.AcDetail) {
			r.details = append(r.details, recs...)
		},
		OnAcPosUpdate: func(_ *net.UDPAddr, _ int, recs []wire.AcPosUpdate) {
			r.posUpds = append(r.posUpds, recs...)
		},
		OnAcRemove: func(_ *net.UDPAddr, recs []wire.AcRemove) {
			r.removes = append(r.removes, recs...)
		},
	}
}

func listeningSession(r *recorder) *Session {
	s := NewSession(DefaultConfig())
	s.cb = r.callbacks()
	s.setStatus(StatusRecvWaiting)
	return s
}

var testSrc = &net.UDPAddr{IP: net.IPv4(192, 168, 1, 20), Port: 49788}

func TestHandleDatagramFirstSettingsStartsReceiving(t *testing.T) {
	r := &recorder{}
	s := listeningSession(r)

	msg := wire.EncodeSettings(7, &wire.Settings{Name: "other sim"})
	s.handleDatagram(msg, testSrc, 0)

	assert.Equal(t, StatusReceiving, s.Status())
	require.Len(t, r.settings, 1)
	assert.Equal(t, "other sim", r.settings[0].Name)

	// Repeated settings keep the state and still reach the callback.
	s.handleDatagram(msg, testSrc, 0)
	assert.Equal(t, StatusReceiving, s.Status())
	assert.Len(t, r.settings, 2)
}

func TestHandleDatagramAircraftMessages(t *testing.T) {
	r := &recorder{}
	s := listeningSession(r)

	var buf []byte
	buf = wire.MsgHeader{Type: wire.MsgAcDetail, Version: wire.VerAcDetail, PluginID: 7}.AppendTo(buf)
	detail := sampleDetailRecord(42)
	buf = detail.AppendTo(buf)
	s.handleDatagram(buf, testSrc, 0)
	require.Len(t, r.details, 1)
	assert.Equal(t, uint32(42), r.details[0].ModeSID)

	buf = wire.MsgHeader{Type: wire.MsgAcPosUpdate, Version: wire.VerAcPosUpdate, PluginID: 7}.AppendTo(nil)
	pos := wire.AcPosUpdate{ModeSID: 42, DLat: 3, DLon: -3, DAlt: 10, Pitch: 1.25, Heading: 90, Roll: -2.5}
	buf = pos.AppendTo(buf)
	s.handleDatagram(buf, testSrc, 0)
	require.Len(t, r.posUpds, 1)
	assert.Equal(t, pos, r.posUpds[0])

	buf = wire.MsgHeader{Type: wire.MsgAcRemove, Version: wire.VerAcRemove, PluginID: 7}.AppendTo(nil)
	buf = wire.AcRemove{ModeSID: 42}.AppendTo(buf)
	s.handleDatagram(buf, testSrc, 0)
	require.Len(t, r.removes, 1)
	assert.Equal(t, uint32(42), r.removes[0].ModeSID)

	assert.Zero(t, r.brackets, "before/after hooks must be balanced")
}

func TestHandleDatagramDropsGarbage(t *testing.T) {
	r := &recorder{}
	s := listeningSession(r)

	// Undersized, unknown type, truncated body, wrong version: all dropped
	// without a state change or callback.
	s.handleDatagram([]byte{1, 2, 3}, testSrc, 0)
	s.handleDatagram(wire.MsgHeader{Type: wire.MsgType(200)}.AppendTo(nil), testSrc, 0)
	s.handleDatagram(wire.MsgHeader{Type: wire.MsgAcDetail, Version: wire.VerAcDetail}.AppendTo(nil), testSrc, 0)

	bad := wire.EncodeSettings(7, &wire.Settings{})
	bad[1]++ // version mismatch
	s.handleDatagram(bad, testSrc, 0)

	assert.Equal(t, StatusRecvWaiting, s.Status())
	assert.Empty(t, r.settings)
	assert.Empty(t, r.details)
	assert.Zero(t, r.brackets)
}

func TestHandleDatagramIgnoresBeacons(t *testing.T) {
	r := &recorder{}
	s := listeningSession(r)
	s.handleDatagram(wire.EncodeBeacon(9), testSrc, 0)
	assert.Equal(t, StatusRecvWaiting, s.Status())
	assert.Zero(t, r.brackets)
}

// TestHandleDatagramNilCallbacks makes sure missing callbacks are skipped,
// not called.
func TestHandleDatagramNilCallbacks(t *testing.T) {
	s := NewSession(DefaultConfig())
	s.setStatus(StatusRecvWaiting)

	s.handleDatagram(wire.EncodeSettings(7, &wire.Settings{}), testSrc, 0)
	assert.Equal(t, StatusReceiving, s.Status())

	buf := wire.MsgHeader{Type: wire.MsgAcRemove, Version: wire.VerAcRemove}.AppendTo(nil)
	buf = wire.AcRemove{ModeSID: 1}.AppendTo(buf)
	s.handleDatagram(buf, testSrc, 0)
}

func sampleDetailRecord(modeS uint32) wire.AcDetail {
	ac := testAircraft(modeS)
	return *ac.detailRecord()
}

// addrString is what ends up in log lines; nil must not crash them.
func TestAddrString(t *testing.T) {
	assert.Equal(t, "?", addrString(nil))
	assert.Equal(t, "192.168.1.20:49788", addrString(testSrc))
}
