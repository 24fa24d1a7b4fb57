package airsync

import "github.com/lansim/airsync/wire"

// AircraftState is the per-tick snapshot the simulation supplies for one
// live aircraft. It is the sender-side input of the sync subsystem; the
// session decides whether to transmit it as a full detail record or as a
// compact position delta.
type AircraftState struct {
	// ModeSID is the stable numeric aircraft identifier (24 bits used).
	ModeSID uint32

	IcaoType string
	IcaoOp   string
	ShortID  string
	// PkgHash identifies the visual-model package, see wire.PJWHash16.
	PkgHash uint16

	Valid   bool
	Visible bool

	Label      string
	LabelColor [3]uint8

	Lat   float64 // [deg]
	Lon   float64 // [deg]
	AltFt float32 // [ft]

	Pitch   float32 // [deg]
	Heading float32 // [deg]
	Roll    float32 // [deg]
	AiPrio  int16

	// Channels holds the raw float animation values; they are quantized
	// per wire.ChannelDef on transmission.
	Channels [wire.NumChannels]float32
}

// detailRecord builds the full wire record for the snapshot.
func (ac *AircraftState) detailRecord() *wire.AcDetail {
	d := &wire.AcDetail{
		IcaoType:   ac.IcaoType,
		IcaoOp:     ac.IcaoOp,
		ShortID:    ac.ShortID,
		PkgHash:    ac.PkgHash,
		ModeSID:    ac.ModeSID,
		Valid:      ac.Valid,
		Visible:    ac.Visible,
		Label:      ac.Label,
		LabelColor: ac.LabelColor,
		AltFt:      ac.AltFt,
		Lat:        ac.Lat,
		Lon:        ac.Lon,
		Pitch:      ac.Pitch,
		Heading:    ac.Heading,
		Roll:       ac.Roll,
		AiPrio:     ac.AiPrio,
	}
	for ch := wire.Channel(0); ch < wire.NumChannels; ch++ {
		d.Channels[ch] = wire.PackChannel(ch, ac.Channels[ch])
	}
	return d
}
