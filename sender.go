package airsync

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lansim/airsync/transport"
	"github.com/lansim/airsync/wire"
)

// msgBatch coalesces records of one message type into a single datagram.
// Its byte length never exceeds the configured maximum: an append that
// would overflow transmits the buffer first.
type msgBatch struct {
	ty     wire.MsgType
	ver    uint8
	recLen int
	max    int
	buf    []byte // nil while empty, otherwise header + records
}

func newMsgBatch(ty wire.MsgType, ver uint8, recLen, max int) *msgBatch {
	return &msgBatch{ty: ty, ver: ver, recLen: recLen, max: max}
}

func (b *msgBatch) empty() bool { return b.buf == nil }

// add appends one encoded record, transmitting the buffer first if the
// record would not fit anymore.
func (b *msgBatch) add(appendRec func([]byte) []byte, send func([]byte) error, pluginID uint16) error {
	if b.buf != nil && len(b.buf)+b.recLen > b.max {
		if err := b.flush(send); err != nil {
			return err
		}
	}
	if b.buf == nil {
		b.buf = make([]byte, 0, b.max)
		b.buf = wire.MsgHeader{Type: b.ty, Version: b.ver, PluginID: pluginID}.AppendTo(b.buf)
	}
	b.buf = appendRec(b.buf)
	return nil
}

// flush transmits the buffer, if any, and resets it.
func (b *msgBatch) flush(send func([]byte) error) error {
	if b.buf == nil {
		return nil
	}
	data := b.buf
	b.buf = nil
	return send(data)
}

// sendMain is the network goroutine in the sender role: join the group,
// wait passively for any sign of interest, then switch to the active send
// loop.
func (s *Session) sendMain() {
	defer s.finishThread()

	s.setStatus(StatusSendWaiting)
	if err := s.mc.Join(s.cfg.Group, s.cfg.Port, s.cfg.TTL, s.cfg.BufSize); err != nil {
		s.loopError("join multicast group", err)
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "Session.sendMain",
		"group":    s.cfg.Group,
		"port":     s.cfg.Port,
	}).Info("Listening on the network, waiting for someone interested in our data")

	for s.Status() == StatusSendWaiting {
		// Arrival of any datagram is the whole signal, its content is
		// irrelevant; reading just clears the buffer.
		_, src, _, err := s.mc.Recv(0, s.stop)
		if errors.Is(err, transport.ErrCancelled) {
			return
		}
		if err != nil {
			if !s.loopError("wait for interest", err) {
				return
			}
			continue
		}
		logrus.WithFields(logrus.Fields{
			"function": "Session.sendMain",
			"from":     addrString(src),
		}).Info("Received word from the network, will start sending aircraft data")
		s.setStatus(StatusSending)
	}

	s.sendLoop()
}

// sendLoop drains the cross-thread queue into batch buffers and
// rebroadcasts the Settings message on a fixed period.
func (s *Session) sendLoop() {
	details := newMsgBatch(wire.MsgAcDetail, wire.VerAcDetail, wire.AcDetailLen, s.cfg.BufSize)
	posUpds := newMsgBatch(wire.MsgAcPosUpdate, wire.VerAcPosUpdate, wire.AcPosUpdateLen, s.cfg.BufSize)
	removes := newMsgBatch(wire.MsgAcRemove, wire.VerAcRemove, wire.AcRemoveLen, s.cfg.BufSize)

	if err := s.sendSettings(); err != nil {
		if !s.loopError("send settings", err) {
			return
		}
	}
	nextSettings := time.Now().Add(s.cfg.SettingsInterval)

	for s.Status() == StatusSending {
		wait := time.Until(nextSettings)
		if wait <= 0 {
			if err := s.sendSettings(); err != nil && !s.loopError("send settings", err) {
				return
			}
			nextSettings = time.Now().Add(s.cfg.SettingsInterval)
			continue
		}
		timer := time.NewTimer(wait)
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-s.wake:
			timer.Stop()
			if err := s.drainQueue(s.transmit, details, posUpds, removes); err != nil {
				if !s.loopError("drain queue", err) {
					return
				}
			}
		case <-timer.C:
			// settings due, handled at the top of the loop
		}
	}
}

// transmit sends one finished datagram to the group.
func (s *Session) transmit(data []byte) error {
	_, err := s.mc.SendMC(data)
	return err
}

// drainQueue empties the queue completely before returning, batching
// records and honoring flush markers.
func (s *Session) drainQueue(send func([]byte) error, details, posUpds, removes *msgBatch) error {
	for _, it := range s.drainItems() {
		var err error
		switch it.kind {
		case workAcDetail:
			err = details.add(it.detail.AppendTo, send, s.cfg.PluginID)
		case workAcPosUpdate:
			err = posUpds.add(it.pos.AppendTo, send, s.cfg.PluginID)
		case workAcRemove:
			err = removes.add(it.remove.AppendTo, send, s.cfg.PluginID)
		case workFlush:
			// No tick's data waits for more data to arrive.
			for _, b := range []*msgBatch{details, posUpds, removes} {
				if err = b.flush(send); err != nil {
					break
				}
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sendSettings broadcasts this instance's identity and configuration.
func (s *Session) sendSettings() error {
	msg := wire.EncodeSettings(s.cfg.PluginID, &wire.Settings{
		Name:         s.cfg.Name,
		MaxLabelDist: s.cfg.MaxLabelDist,
		DefaultIcao:  s.cfg.DefaultIcao,
		CarIcaoType:  s.cfg.CarIcaoType,
		LogLevel:     s.cfg.LogLevel,

		LogModelMatch:           s.cfg.LogModelMatch,
		ObjReplDataRefs:         s.cfg.ObjReplDataRefs,
		ObjReplTextures:         s.cfg.ObjReplTextures,
		LabelCutOffAtVisibility: s.cfg.LabelCutOffAtVisibility,
		MapEnabled:              s.cfg.MapEnabled,
		MapLabels:               s.cfg.MapLabels,
		HaveTCASControl:         s.cfg.HaveTCASControl,
	})
	if n, err := s.mc.SendMC(msg); err != nil {
		return err
	} else if n != len(msg) {
		return fmt.Errorf("settings broadcast truncated to %d of %d bytes", n, len(msg))
	}
	return nil
}

// loopError logs a transient network-loop error and counts it against the
// give-up threshold. It returns false once the loop must terminate.
func (s *Session) loopError(op string, err error) bool {
	n := s.errCount.Add(1)
	logrus.WithFields(logrus.Fields{
		"function": "Session.loopError",
		"op":       op,
		"count":    n,
		"error":    err.Error(),
	}).Error("Error in multicast handling")
	if int(n) >= s.cfg.MaxErrors {
		logrus.WithField("function", "Session.loopError").
			Error("Too many errors, giving up on remote functionality")
		return false
	}
	return true
}

// finishThread restores a consistent Off state before the network
// goroutine exits, so the main thread can always observe the end. The
// update cache is purged with the thread: after a restart no receiver has
// the state deltas would be relative to.
func (s *Session) finishThread() {
	if err := s.mc.Close(); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Session.finishThread",
			"error":    err.Error(),
		}).Warn("Closing multicast socket failed")
	}
	s.setStatus(StatusOff)
	s.mu.Lock()
	s.cache = make(map[uint32]*cacheEntry)
	s.queue = nil
	s.nextGroup = 0
	s.mu.Unlock()
	close(s.done)
}
