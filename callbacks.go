package airsync

import (
	"net"

	"github.com/lansim/airsync/wire"
)

// Callbacks are the only points where decoded data crosses from the
// receiver into the rest of the application. All of them are invoked on
// the network goroutine; nil entries are skipped.
type Callbacks struct {
	// BeforeFirstAc runs before the first aircraft record of a datagram
	// is handed over, AfterLastAc after the last one.
	BeforeFirstAc func()
	AfterLastAc   func()

	// OnSettings is invoked for every Settings broadcast.
	OnSettings func(from *net.UDPAddr, s *wire.Settings)
	// OnAcDetail receives full aircraft records. msgLen is the raw
	// datagram length.
	OnAcDetail func(from *net.UDPAddr, msgLen int, recs []wire.AcDetail)
	// OnAcPosUpdate receives position delta records.
	OnAcPosUpdate func(from *net.UDPAddr, msgLen int, recs []wire.AcPosUpdate)
	// OnAcRemove receives removal records.
	OnAcRemove func(from *net.UDPAddr, recs []wire.AcRemove)
}
