package airsync

import (
	"errors"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/lansim/airsync/transport"
	"github.com/lansim/airsync/wire"
)

// recvMain is the network goroutine in the receiver role: join the group,
// beacon interest until a sender shows up, decode everything that arrives.
func (s *Session) recvMain() {
	defer s.finishThread()

	s.setStatus(StatusRecvWaiting)
	if err := s.mc.Join(s.cfg.Group, s.cfg.Port, s.cfg.TTL, s.cfg.BufSize); err != nil {
		s.loopError("join multicast group", err)
		return
	}
	if err := s.sendBeacon(); err != nil {
		if !s.loopError("send beacon", err) {
			return
		}
	}
	logrus.WithFields(logrus.Fields{
		"function": "Session.recvMain",
		"group":    s.cfg.Group,
		"port":     s.cfg.Port,
	}).Info("Receiver started listening on the network")

	for s.Status().IsListener() {
		data, src, ifIndex, err := s.mc.Recv(s.cfg.BeaconInterval, s.stop)
		switch {
		case errors.Is(err, transport.ErrCancelled):
			return
		case errors.Is(err, transport.ErrTimeout):
			// Nobody talked to us for a whole interval; maybe another
			// beacon wakes a sender up.
			if err := s.sendBeacon(); err != nil && !s.loopError("send beacon", err) {
				return
			}
		case err != nil:
			if !s.loopError("receive", err) {
				return
			}
		default:
			s.handleDatagram(data, src, ifIndex)
		}
	}
}

// sendBeacon multicasts a header-only Interest Beacon.
func (s *Session) sendBeacon() error {
	msg := wire.EncodeBeacon(s.cfg.PluginID)
	_, err := s.mc.SendMC(msg)
	return err
}

// handleDatagram demultiplexes one inbound datagram and hands decoded
// records to the registered callbacks. Malformed datagrams are logged and
// dropped without any state change.
func (s *Session) handleDatagram(data []byte, src *net.UDPAddr, ifIndex int) {
	hdr, err := wire.DecodeHeader(data)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "Session.handleDatagram",
			"from":     addrString(src),
			"bytes":    len(data),
		}).Warn("Dropping undersized datagram")
		return
	}

	switch hdr.Type {
	case wire.MsgInterestBeacon:
		// Beacons from fellow receivers carry no information for us.

	case wire.MsgSettings:
		_, settings, err := wire.DecodeSettings(data)
		if err != nil {
			s.warnBadMsg(hdr, src, len(data), err)
			return
		}
		if s.Status() == StatusRecvWaiting {
			// First settings seen: a sender exists, switch for good.
			s.setStatus(StatusReceiving)
			if ifIndex > 0 {
				// Answer beacons through the interface the sender is
				// actually reachable on.
				s.mc.SetSendMode(transport.SendModeSpecific, ifIndex)
			}
			logrus.WithFields(logrus.Fields{
				"function": "Session.handleDatagram",
				"sender":   settings.Name,
				"from":     addrString(src),
			}).Info("Receiver found a sender, will start message processing")
		}
		if s.cb.OnSettings != nil {
			s.cb.OnSettings(src, settings)
		}

	case wire.MsgAcDetail:
		_, recs, err := wire.DecodeAcDetailMsg(data)
		if err != nil {
			s.warnBadMsg(hdr, src, len(data), err)
			return
		}
		s.aroundAcCallback(func() {
			if s.cb.OnAcDetail != nil {
				s.cb.OnAcDetail(src, len(data), recs)
			}
		})

	case wire.MsgAcPosUpdate:
		_, recs, err := wire.DecodeAcPosUpdateMsg(data)
		if err != nil {
			s.warnBadMsg(hdr, src, len(data), err)
			return
		}
		s.aroundAcCallback(func() {
			if s.cb.OnAcPosUpdate != nil {
				s.cb.OnAcPosUpdate(src, len(data), recs)
			}
		})

	case wire.MsgAcRemove:
		_, recs, err := wire.DecodeAcRemoveMsg(data)
		if err != nil {
			s.warnBadMsg(hdr, src, len(data), err)
			return
		}
		s.aroundAcCallback(func() {
			if s.cb.OnAcRemove != nil {
				s.cb.OnAcRemove(src, recs)
			}
		})

	default:
		logrus.WithFields(logrus.Fields{
			"function": "Session.handleDatagram",
			"type":     hdr.Type.String(),
			"from":     addrString(src),
		}).Warn("Dropping datagram of unknown type")
	}
}

// aroundAcCallback brackets aircraft record processing with the
// before-first/after-last hooks.
func (s *Session) aroundAcCallback(deliver func()) {
	if s.cb.BeforeFirstAc != nil {
		s.cb.BeforeFirstAc()
	}
	deliver()
	if s.cb.AfterLastAc != nil {
		s.cb.AfterLastAc()
	}
}

func (s *Session) warnBadMsg(hdr wire.MsgHeader, src *net.UDPAddr, n int, err error) {
	logrus.WithFields(logrus.Fields{
		"function": "Session.handleDatagram",
		"type":     hdr.Type.String(),
		"version":  hdr.Version,
		"from":     addrString(src),
		"bytes":    n,
		"error":    err.Error(),
	}).Warn("Cannot process message, dropping")
}

func addrString(a *net.UDPAddr) string {
	if a == nil {
		return "?"
	}
	return a.String()
}
