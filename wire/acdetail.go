package wire

import "fmt"

// Widths of the fixed string fields in an AcDetail record.
const (
	ShortIDLen = 20
	LabelLen   = 23
)

// AcDetailLen is the on-wire size of one AcDetail record.
const AcDetailLen = 88 + NumPackedChannels

// AcDetail is the full state of one aircraft: everything a receiver needs
// to create the aircraft from nothing, including the quantized animation
// channel bytes.
type AcDetail struct {
	IcaoType string // ICAO aircraft type designator
	IcaoOp   string // ICAO airline code
	ShortID  string // visual model's short id
	PkgHash  uint16 // PJWHash16 of the model package name
	ModeSID  uint32 // aircraft id, 24 bits on the wire
	Valid    bool
	Visible  bool
	Label    string
	LabelColor [3]uint8

	AltFt float32
	Lat   float64
	Lon   float64

	Pitch   float32 // [deg]
	Heading float32 // [deg], normalized to [0,360) on encode
	Roll    float32 // [deg]
	AiPrio  int16   // TCAS target slot priority, -1 = no TCAS display

	Channels [NumPackedChannels]uint8
}

const (
	acFlagValid   = 1 << 0
	acFlagVisible = 1 << 1
)

// AppendTo appends the encoded record to buf and returns the result.
//
// Record layout: icaoType[4], icaoOp[4], shortID[20], pkgHash uint16,
// flags, label[23], modeSID uint24, labelColor[3], altFt float32,
// lat float64, lon float64, pitch int16, heading uint16, roll int16,
// aiPrio int16, channel bytes.
func (d *AcDetail) AppendTo(buf []byte) []byte {
	buf = appendString(buf, d.IcaoType, IcaoTypeLen)
	buf = appendString(buf, d.IcaoOp, IcaoTypeLen)
	buf = appendString(buf, d.ShortID, ShortIDLen)
	buf = appendUint16(buf, d.PkgHash)
	var flags uint8
	if d.Valid {
		flags |= acFlagValid
	}
	if d.Visible {
		flags |= acFlagVisible
	}
	buf = append(buf, flags)
	buf = appendString(buf, d.Label, LabelLen)
	buf = appendUint24(buf, d.ModeSID)
	buf = append(buf, d.LabelColor[0], d.LabelColor[1], d.LabelColor[2])
	buf = appendFloat32(buf, d.AltFt)
	buf = appendFloat64(buf, d.Lat)
	buf = appendFloat64(buf, d.Lon)
	buf = appendUint16(buf, uint16(EncodeAngle100(d.Pitch)))
	buf = appendUint16(buf, EncodeHeading(d.Heading))
	buf = appendUint16(buf, uint16(EncodeAngle100(d.Roll)))
	buf = appendUint16(buf, uint16(d.AiPrio))
	return append(buf, d.Channels[:]...)
}

// decodeAcDetail reads one record from the start of b, which must hold at
// least AcDetailLen bytes.
func decodeAcDetail(b []byte) AcDetail {
	flags := b[30]
	d := AcDetail{
		IcaoType: getString(b, IcaoTypeLen),
		IcaoOp:   getString(b[4:], IcaoTypeLen),
		ShortID:  getString(b[8:], ShortIDLen),
		PkgHash:  getUint16(b[28:]),
		Valid:    flags&acFlagValid != 0,
		Visible:  flags&acFlagVisible != 0,
		Label:    getString(b[31:], LabelLen),
		ModeSID:  getUint24(b[54:]),
		LabelColor: [3]uint8{b[57], b[58], b[59]},
		AltFt:    getFloat32(b[60:]),
		Lat:      getFloat64(b[64:]),
		Lon:      getFloat64(b[72:]),
		Pitch:    DecodeAngle100(int16(getUint16(b[80:]))),
		Heading:  DecodeHeading(getUint16(b[82:])),
		Roll:     DecodeAngle100(int16(getUint16(b[84:]))),
		AiPrio:   int16(getUint16(b[86:])),
	}
	copy(d.Channels[:], b[88:])
	return d
}

// NumAcDetail converts a message length into the number of records carried.
func NumAcDetail(msgLen int) int {
	return (msgLen - HeaderLen) / AcDetailLen
}

// DecodeAcDetailMsg parses a complete AcDetail message into its records.
func DecodeAcDetailMsg(data []byte) (MsgHeader, []AcDetail, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return hdr, nil, err
	}
	if hdr.Version != VerAcDetail {
		return hdr, nil, fmt.Errorf("%w: ac detail version %d", ErrBadVersion, hdr.Version)
	}
	body := len(data) - HeaderLen
	if body < AcDetailLen || body%AcDetailLen != 0 {
		return hdr, nil, fmt.Errorf("%w: ac detail message has %d payload bytes, record size %d",
			ErrBadLength, body, AcDetailLen)
	}
	recs := make([]AcDetail, 0, body/AcDetailLen)
	for off := HeaderLen; off < len(data); off += AcDetailLen {
		recs = append(recs, decodeAcDetail(data[off:]))
	}
	return hdr, recs, nil
}
