package wire

import "math"

// Channel indexes one of the named animation values carried for every
// aircraft (gear, flaps, lights, engine rotation and so on). The index is
// global: it is the position of the channel's packed byte inside an
// AcDetail record.
type Channel uint8

const (
	ChGearRatio Channel = iota
	ChNoseWheelAngle
	ChFlapRatio
	ChSpoilerRatio
	ChSpeedBrakeRatio
	ChSlatRatio
	ChWingSweepRatio
	ChThrustRatio
	ChYokePitchRatio
	ChYokeHeadingRatio
	ChYokeRollRatio
	ChThrustReverse

	ChTaxiLights
	ChLandingLights
	ChBeaconLights
	ChStrobeLights
	ChNavLights

	ChNoseGearDeflection
	ChTireDeflection
	ChTireRotAngle
	ChTireRotRPM
	ChTireRotRadSec

	ChEngineRotAngle
	ChEngineRotRPM
	ChEngineRotRadSec
	ChPropRotAngle
	ChPropRotRPM
	ChPropRotRadSec
	ChReverserRatio

	ChEngineRotAngle1
	ChEngineRotAngle2
	ChEngineRotAngle3
	ChEngineRotAngle4
	ChEngineRotRPM1
	ChEngineRotRPM2
	ChEngineRotRPM3
	ChEngineRotRPM4
	ChEngineRotRadSec1
	ChEngineRotRadSec2
	ChEngineRotRadSec3
	ChEngineRotRadSec4

	ChTouchDown

	// NumChannels is the number of defined animation channels.
	NumChannels
)

// NumPackedChannels is NumChannels rounded up to the next multiple of 8, so
// that the channel array keeps AcDetail records 8-byte aligned.
const NumPackedChannels = (int(NumChannels) + 7) / 8 * 8

// ChannelPack maps one animation channel's float value to a single byte and
// back using an affine range. The mapping is lossy: the worst-case error is
// Range/255.
type ChannelPack struct {
	Min   float32
	Range float32
}

// Pack quantizes v into a byte. Values outside [Min, Min+Range] are clamped.
func (p ChannelPack) Pack(v float32) uint8 {
	v -= p.Min
	if v < 0 {
		v = 0
	} else if v > p.Range {
		v = p.Range
	}
	return uint8(math.Round(float64(v) * 255.0 / float64(p.Range)))
}

// Unpack is the inverse mapping of Pack.
func (p ChannelPack) Unpack(b uint8) float32 {
	return p.Min + p.Range*float32(b)/255.0
}

// ratio01 is the packing for plain 0..1 ratio and on/off channels.
var ratio01 = ChannelPack{Min: 0, Range: 1}

// channelPacks holds the global, immutable packing definition per channel.
var channelPacks = [NumChannels]ChannelPack{
	ChGearRatio:       ratio01,
	ChNoseWheelAngle:  {Min: -60, Range: 120},
	ChFlapRatio:       ratio01,
	ChSpoilerRatio:    ratio01,
	ChSpeedBrakeRatio: ratio01,
	ChSlatRatio:       ratio01,
	ChWingSweepRatio:  ratio01,
	ChThrustRatio:     {Min: -1, Range: 2},
	ChYokePitchRatio:  {Min: -1, Range: 2},
	ChYokeHeadingRatio: {Min: -1, Range: 2},
	ChYokeRollRatio:   {Min: -1, Range: 2},
	ChThrustReverse:   ratio01,

	ChTaxiLights:    ratio01,
	ChLandingLights: ratio01,
	ChBeaconLights:  ratio01,
	ChStrobeLights:  ratio01,
	ChNavLights:     ratio01,

	ChNoseGearDeflection: {Min: 0, Range: 2},
	ChTireDeflection:     {Min: 0, Range: 2},
	ChTireRotAngle:       {Min: 0, Range: 360},
	ChTireRotRPM:         {Min: 0, Range: 2000},
	ChTireRotRadSec:      {Min: 0, Range: 210},

	ChEngineRotAngle:  {Min: 0, Range: 360},
	ChEngineRotRPM:    {Min: 0, Range: 5000},
	ChEngineRotRadSec: {Min: 0, Range: 525},
	ChPropRotAngle:    {Min: 0, Range: 360},
	ChPropRotRPM:      {Min: 0, Range: 3000},
	ChPropRotRadSec:   {Min: 0, Range: 315},
	ChReverserRatio:   ratio01,

	ChEngineRotAngle1:   {Min: 0, Range: 360},
	ChEngineRotAngle2:   {Min: 0, Range: 360},
	ChEngineRotAngle3:   {Min: 0, Range: 360},
	ChEngineRotAngle4:   {Min: 0, Range: 360},
	ChEngineRotRPM1:     {Min: 0, Range: 5000},
	ChEngineRotRPM2:     {Min: 0, Range: 5000},
	ChEngineRotRPM3:     {Min: 0, Range: 5000},
	ChEngineRotRPM4:     {Min: 0, Range: 5000},
	ChEngineRotRadSec1:  {Min: 0, Range: 525},
	ChEngineRotRadSec2:  {Min: 0, Range: 525},
	ChEngineRotRadSec3:  {Min: 0, Range: 525},
	ChEngineRotRadSec4:  {Min: 0, Range: 525},

	ChTouchDown: ratio01,
}

// ChannelDef returns the packing definition for a channel.
func ChannelDef(ch Channel) ChannelPack {
	return channelPacks[ch]
}

// PackChannel quantizes a channel value into its wire byte.
func PackChannel(ch Channel, v float32) uint8 {
	return channelPacks[ch].Pack(v)
}

// UnpackChannel restores a channel value from its wire byte.
func UnpackChannel(ch Channel, b uint8) float32 {
	return channelPacks[ch].Unpack(b)
}
