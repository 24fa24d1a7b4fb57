package wire

import "fmt"

// Widths of the fixed string fields in a Settings message.
const (
	SettingsNameLen = 16
	IcaoTypeLen     = 4
)

// SettingsLen is the full on-wire size of a Settings message including the
// header.
const SettingsLen = HeaderLen + 40

// Settings bits packed into the flags byte.
const (
	settingsFlagLogModelMatch = 1 << iota
	settingsFlagObjReplDataRefs
	settingsFlagObjReplTextures
	settingsFlagLabelCutOff
	settingsFlagMapEnabled
	settingsFlagMapLabels
	settingsFlagTCASControl
)

// Settings identifies a sending instance and broadcasts its configuration.
// A receiver treats the first Settings message it sees as "there is a
// sender" and switches to active receiving.
type Settings struct {
	Name         string  // sender name, at most 16 bytes on the wire
	MaxLabelDist float32 // maximum label drawing distance [m]
	DefaultIcao  string  // fallback ICAO aircraft type designator
	CarIcaoType  string  // ground vehicle type identifier
	LogLevel     uint8

	LogModelMatch           bool
	ObjReplDataRefs         bool
	ObjReplTextures         bool
	LabelCutOffAtVisibility bool
	MapEnabled              bool
	MapLabels               bool
	HaveTCASControl         bool
}

// EncodeSettings builds a complete Settings message.
//
// Payload layout (40 bytes): name[16], maxLabelDist float32, defaultIcao[4],
// carIcaoType[4], logLevel, flags, 10 reserved bytes.
func EncodeSettings(pluginID uint16, s *Settings) []byte {
	buf := make([]byte, 0, SettingsLen)
	buf = MsgHeader{Type: MsgSettings, Version: VerSettings, PluginID: pluginID}.AppendTo(buf)
	buf = appendString(buf, s.Name, SettingsNameLen)
	buf = appendFloat32(buf, s.MaxLabelDist)
	buf = appendString(buf, s.DefaultIcao, IcaoTypeLen)
	buf = appendString(buf, s.CarIcaoType, IcaoTypeLen)
	buf = append(buf, s.LogLevel, s.flags())
	for len(buf) < SettingsLen {
		buf = append(buf, 0)
	}
	return buf
}

func (s *Settings) flags() uint8 {
	var f uint8
	set := func(bit uint8, on bool) {
		if on {
			f |= bit
		}
	}
	set(settingsFlagLogModelMatch, s.LogModelMatch)
	set(settingsFlagObjReplDataRefs, s.ObjReplDataRefs)
	set(settingsFlagObjReplTextures, s.ObjReplTextures)
	set(settingsFlagLabelCutOff, s.LabelCutOffAtVisibility)
	set(settingsFlagMapEnabled, s.MapEnabled)
	set(settingsFlagMapLabels, s.MapLabels)
	set(settingsFlagTCASControl, s.HaveTCASControl)
	return f
}

// DecodeSettings parses a Settings message. The header must already have
// identified data as MsgSettings.
func DecodeSettings(data []byte) (MsgHeader, *Settings, error) {
	hdr, err := DecodeHeader(data)
	if err != nil {
		return hdr, nil, err
	}
	if hdr.Version != VerSettings {
		return hdr, nil, fmt.Errorf("%w: settings version %d", ErrBadVersion, hdr.Version)
	}
	if len(data) != SettingsLen {
		return hdr, nil, fmt.Errorf("%w: settings message has %d bytes, want %d",
			ErrBadLength, len(data), SettingsLen)
	}
	p := data[HeaderLen:]
	flags := p[29]
	s := &Settings{
		Name:         getString(p, SettingsNameLen),
		MaxLabelDist: getFloat32(p[16:]),
		DefaultIcao:  getString(p[20:], IcaoTypeLen),
		CarIcaoType:  getString(p[24:], IcaoTypeLen),
		LogLevel:     p[28],

		LogModelMatch:           flags&settingsFlagLogModelMatch != 0,
		ObjReplDataRefs:         flags&settingsFlagObjReplDataRefs != 0,
		ObjReplTextures:         flags&settingsFlagObjReplTextures != 0,
		LabelCutOffAtVisibility: flags&settingsFlagLabelCutOff != 0,
		MapEnabled:              flags&settingsFlagMapEnabled != 0,
		MapLabels:               flags&settingsFlagMapLabels != 0,
		HaveTCASControl:         flags&settingsFlagTCASControl != 0,
	}
	return hdr, s, nil
}
