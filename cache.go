package airsync

import (
	"math"

	"github.com/lansim/airsync/wire"
)

// cacheEntry holds the last state actually transmitted for one aircraft.
// It is the sole reference for delta encoding: there is no history window.
type cacheEntry struct {
	lat      float64
	lon      float64
	altFt    float32
	pitch    float32
	heading  float32
	roll     float32
	valid    bool
	visible  bool
	channels [wire.NumChannels]float32

	// fullGroup staggers expensive full refreshes: the entry gets a full
	// record whenever its group is the one due this tick.
	fullGroup int
}

// dueFullGroup computes which full-update group must refresh during the
// tick starting at nowUnix. Two aircraft created in the same second land in
// rotation order, not uniformly; that is accepted load spreading, not a
// defect to even out.
func dueFullGroup(nowUnix int64, refreshSeconds int) int {
	return int(nowUnix%int64(refreshSeconds)) + 1
}

// needsFullUpdate is the delta-vs-full decision, evaluated in order with
// the first match winning. It is a pure function of its inputs.
func needsFullUpdate(e *cacheEntry, isNew bool, dueGroup int, ac *AircraftState) bool {
	switch {
	case isNew:
		return true
	case e.fullGroup == dueGroup:
		return true
	case e.visible != ac.Visible || e.valid != ac.Valid:
		// State transitions must never be inferred from a delta.
		return true
	case math.Abs(ac.Lat-e.lat) > wire.MaxDeltaDegree,
		math.Abs(ac.Lon-e.lon) > wire.MaxDeltaDegree,
		math.Abs(float64(ac.AltFt-e.altFt)) > wire.MaxDeltaAltFt:
		return true
	}
	return false
}

// update overwrites the entry with the state just transmitted.
func (e *cacheEntry) update(ac *AircraftState) {
	e.lat = ac.Lat
	e.lon = ac.Lon
	e.altFt = ac.AltFt
	e.pitch = ac.Pitch
	e.heading = ac.Heading
	e.roll = ac.Roll
	e.valid = ac.Valid
	e.visible = ac.Visible
	e.channels = ac.Channels
}

// posUpdateRecord builds the delta record for ac relative to the cached
// state. Callers have already established through needsFullUpdate that the
// deltas fit.
func (e *cacheEntry) posUpdateRecord(ac *AircraftState) *wire.AcPosUpdate {
	dLat, _ := wire.DegreeDelta(ac.Lat - e.lat)
	dLon, _ := wire.DegreeDelta(ac.Lon - e.lon)
	dAlt, _ := wire.AltFtDelta(float64(ac.AltFt - e.altFt))
	return &wire.AcPosUpdate{
		ModeSID: ac.ModeSID,
		DLat:    dLat,
		DLon:    dLon,
		DAlt:    dAlt,
		Pitch:   ac.Pitch,
		Heading: ac.Heading,
		Roll:    ac.Roll,
	}
}
