package wire

import (
	"fmt"
	"math"
)

// Quantization of the position deltas carried by an AcPosUpdate record.
// A delta that does not fit the 16-bit signed range forces the sender to
// fall back to a full AcDetail record.
const (
	// DegreeRes is the latitude/longitude delta resolution in degrees.
	DegreeRes = 1e-7
	// AltFtRes is the altitude delta resolution in feet.
	AltFtRes = 0.1
	// MaxDeltaDegree is the largest representable lat/lon delta.
	MaxDeltaDegree = DegreeRes * math.MaxInt16
	// MaxDeltaAltFt is the largest representable altitude delta.
	MaxDeltaAltFt = AltFtRes * math.MaxInt16
)

// AcPosUpdateLen is the on-wire size of one AcPosUpdate record.
const AcPosUpdateLen = 16

// AcPosUpdate is a compact position delta for one aircraft, relative to the
// last state the receiver is assumed to hold. Orientation is absolute, not
// a delta.
type AcPosUpdate struct {
	ModeSID uint32
	DLat    int16 // [DegreeRes degrees]
	DLon    int16 // [DegreeRes degrees]
	DAlt    int16 // [AltFtRes ft]

	Pitch   float32 // [deg]
	Heading float32 // [deg]
	Roll    float32 // [deg]
}

// DegreeDelta converts a latitude/longitude difference into delta units.
// ok is false if the difference exceeds the representable range.
func DegreeDelta(diff float64) (d int16, ok bool) {
	u := math.Round(diff / DegreeRes)
	if u < math.MinInt16 || u > math.MaxInt16 {
		return 0, false
	}
	return int16(u), true
}

// AltFtDelta converts an altitude difference in feet into delta units.
func AltFtDelta(diff float64) (d int16, ok bool) {
	u := math.Round(diff / AltFtRes)
	if u < math.MinInt16 || u > math.MaxInt16 {
		return 0, false
	}
	return int16(u), true
}

// Degrees restores a lat/lon difference from delta units.
func Degrees(d int16) float64 { return float64(d) * DegreeRes }

// AltFt restores an altitude difference in feet from delta units.
func AltFt(d int16) float64 { return float64(d) * AltFtRes }

// AppendTo appends the encoded record to buf and returns the result.
//
// Record layout: modeSID uint24, 1 reserved byte, dLat int16, dLon int16,
// dAlt int16, pitch int16, heading uint16, roll int16.
func (u *AcPosUpdate) AppendTo(buf []byte) []byte {
	buf = appendUint24(buf, u.ModeSID)
	buf = append(buf, 0)
	buf = appendUint16(buf, uint16(u.DLat))
	buf = appendUint16(buf, uint16(u.DLon))
	buf = appendUint16(buf, uint16(u.DAlt))
	buf = appendUint16(buf, uint16(EncodeAngle100(u.Pitch)))
	buf = appendUint16(buf, EncodeHeading(u.Heading))
	return appendUint16(buf, uint16(EncodeAngle100(u.Roll)))
}

func decodeAcPosUpdate(b []byte) AcPosUpdate {
	return AcPosUpdate{
		ModeSID: getUint24(b),
		DLat:    int16(getUint16(b[4:])),
		DLon:    int16(getUint16(b[6:])),
		DAlt:    int16(getUint16(b[8:])),
		Pitch:   DecodeAngle100(int16(getUint16(b[10:]))),
		Heading: DecodeHeading(getUint16(b[12:])),
		Roll:    DecodeAngle100(int16(getUint16(b[14:]))),
	}
}

// NumAcPosUpdate converts a message length into the number of records carried.
func NumAcPosUpdate(msgLen int) int {
	return (msgLen - HeaderLen) / AcPosUpdateLen
}

// DecodeAcPosUpdateMsg parses a complete AcPosUpdate message into its records.
func DecodeAcPosUpdateMsg(data []byte) (MsgHeader, []AcPosUpdate, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return hdr, nil, err
	}
	if hdr.Version != VerAcPosUpdate {
		return hdr, nil, fmt.Errorf("%w: pos update version %d", ErrBadVersion, hdr.Version)
	}
	body := len(data) - HeaderLen
	if body < AcPosUpdateLen || body%AcPosUpdateLen != 0 {
		return hdr, nil, fmt.Errorf("%w: pos update message has %d payload bytes, record size %d",
			ErrBadLength, body, AcPosUpdateLen)
	}
	recs := make([]AcPosUpdate, 0, body/AcPosUpdateLen)
	for off := HeaderLen; off < len(data); off += AcPosUpdateLen {
		recs = append(recs, decodeAcPosUpdate(data[off:]))
	}
	return hdr, recs, nil
}
