package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"
)

// SendMode selects which local interface(s) outbound multicast datagrams
// leave from. Switching modes never rejoins the group.
type SendMode int

const (
	// SendModeDefault uses the OS default route.
	SendModeDefault SendMode = iota
	// SendModeAll loops over every known multicast-capable interface and
	// sends once per interface. Used when some receivers may only be
	// reachable via non-default routes.
	SendModeAll
	// SendModeSpecific pins sends to one interface, typically the one a
	// previously received datagram arrived on.
	SendModeSpecific
)

// recvSlice bounds how long a blocking read runs before the stop channel is
// rechecked.
const recvSlice = 250 * time.Millisecond

// UDPMulticast is a UDP socket joined to one multicast group, usable for
// both sending and receiving. The address family of the group address, not
// caller intent, decides between IPv4 and IPv6.
//
// I/O methods are meant to be called from a single network goroutine;
// Close and SetSendMode may be called from any goroutine.
type UDPMulticast struct {
	mu      sync.Mutex
	conn    net.PacketConn
	p4      *ipv4.PacketConn
	p6      *ipv6.PacketConn
	group   *net.UDPAddr
	ttl     int
	bufSize int

	sendMode    SendMode
	sendIfIndex int
}

// NewUDPMulticast returns an unjoined multicast socket.
func NewUDPMulticast() *UDPMulticast {
	return &UDPMulticast{}
}

// Join resolves groupAddr, binds the local port, joins the multicast group
// and configures the TTL. For an IPv4 group a single membership on the
// wildcard interface suffices. IPv6 has no wildcard join, so membership is
// added per multicast-capable interface; individual interface failures are
// tolerated as long as at least one join succeeds.
//
// Any error leaves the socket closed; callers must not retry I/O on it.
func (m *UDPMulticast) Join(groupAddr string, port, ttl, bufSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		m.closeLocked()
	}

	ip := net.ParseIP(groupAddr)
	if ip == nil {
		ips, err := net.LookupIP(groupAddr)
		if err != nil || len(ips) == 0 {
			return setupErr("resolve "+groupAddr, err)
		}
		ip = ips[0]
	}
	if !ip.IsMulticast() {
		return setupErr("resolve", fmt.Errorf("%s is not a multicast address", groupAddr))
	}
	isV4 := ip.To4() != nil

	network := "udp6"
	if isV4 {
		network = "udp4"
	}
	conn, err := net.ListenPacket(network, fmt.Sprintf(":%d", port))
	if err != nil {
		return setupErr("bind port "+fmt.Sprint(port), err)
	}

	m.conn = conn
	m.group = &net.UDPAddr{IP: ip, Port: port}
	m.ttl = ttl
	m.bufSize = bufSize

	if isV4 {
		err = m.joinV4Locked()
	} else {
		err = m.joinV6Locked()
	}
	if err != nil {
		m.closeLocked()
		return err
	}

	logrus.WithFields(logrus.Fields{
		"function": "UDPMulticast.Join",
		"group":    m.group.String(),
		"ipv6":     !isV4,
		"ttl":      ttl,
	}).Debug("Joined multicast group")
	return nil
}

func (m *UDPMulticast) joinV4Locked() error {
	p := ipv4.NewPacketConn(m.conn)
	if err := p.JoinGroup(nil, &net.UDPAddr{IP: m.group.IP}); err != nil {
		return setupErr("join group "+m.group.IP.String(), err)
	}
	if err := p.SetMulticastTTL(m.ttl); err != nil {
		return setupErr("set multicast TTL", err)
	}
	// Loopback lets a sender and receiver coexist on one host.
	_ = p.SetMulticastLoopback(true)
	_ = p.SetControlMessage(ipv4.FlagInterface, true)
	m.p4 = p
	return nil
}

func (m *UDPMulticast) joinV6Locked() error {
	p := ipv6.NewPacketConn(m.conn)
	ifs, err := MulticastInterfaces()
	if err != nil {
		return setupErr("enumerate interfaces", err)
	}
	joined := 0
	for i := range ifs {
		ifi := &ifs[i]
		if err := p.JoinGroup(ifi, &net.UDPAddr{IP: m.group.IP}); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":  "UDPMulticast.Join",
				"interface": ifi.Name,
				"group":     m.group.IP.String(),
				"error":     err.Error(),
			}).Warn("Could not join IPv6 multicast group on interface")
			continue
		}
		joined++
	}
	if joined == 0 {
		return setupErr("join group "+m.group.IP.String(), ErrNoInterface)
	}
	if err := p.SetMulticastHopLimit(m.ttl); err != nil {
		return setupErr("set multicast hop limit", err)
	}
	_ = p.SetMulticastLoopback(true)
	_ = p.SetControlMessage(ipv6.FlagInterface, true)
	m.p6 = p
	return nil
}

// IsOpen reports whether the socket is joined and usable.
func (m *UDPMulticast) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil
}

// Group returns the joined group address, or nil before Join.
func (m *UDPMulticast) Group() *net.UDPAddr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.group
}

// SetSendMode switches the outbound interface policy. ifIndex is only used
// with SendModeSpecific.
func (m *UDPMulticast) SetSendMode(mode SendMode, ifIndex int) {
	m.mu.Lock()
	m.sendMode = mode
	m.sendIfIndex = ifIndex
	m.mu.Unlock()
	logrus.WithFields(logrus.Fields{
		"function": "UDPMulticast.SetSendMode",
		"mode":     mode,
		"ifIndex":  ifIndex,
	}).Debug("Multicast send mode changed")
}

// Close releases the socket. A goroutine blocked in Recv returns with an
// error once the socket is gone; Close is therefore also the wait
// cancellation of last resort.
func (m *UDPMulticast) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

func (m *UDPMulticast) closeLocked() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Close()
	m.conn = nil
	m.p4 = nil
	m.p6 = nil
	return err
}

func (m *UDPMulticast) setOutboundInterface(ifi *net.Interface) error {
	if m.p4 != nil {
		return m.p4.SetMulticastInterface(ifi)
	}
	if m.p6 != nil {
		return m.p6.SetMulticastInterface(ifi)
	}
	return ErrNotOpen
}

func (m *UDPMulticast) writeToGroup(data []byte) (int, error) {
	if m.p4 != nil {
		return m.p4.WriteTo(data, nil, m.group)
	}
	if m.p6 != nil {
		return m.p6.WriteTo(data, nil, m.group)
	}
	return 0, ErrNotOpen
}

// SendMC transmits one datagram to the group, honoring the current send
// mode. In SendModeAll the datagram goes out once per multicast-capable
// interface and the call succeeds if at least one interface accepted it.
func (m *UDPMulticast) SendMC(data []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return 0, ErrNotOpen
	}

	switch m.sendMode {
	case SendModeDefault:
		if err := m.setOutboundInterface(nil); err != nil {
			return 0, err
		}
		return m.writeToGroup(data)

	case SendModeSpecific:
		ifi, err := net.InterfaceByIndex(m.sendIfIndex)
		if err != nil {
			return 0, fmt.Errorf("interface %d: %w", m.sendIfIndex, err)
		}
		if err := m.setOutboundInterface(ifi); err != nil {
			return 0, err
		}
		return m.writeToGroup(data)

	case SendModeAll:
		ifs, err := MulticastInterfaces()
		if err != nil {
			return 0, err
		}
		sent := 0
		var lastErr error
		for i := range ifs {
			if err := m.setOutboundInterface(&ifs[i]); err != nil {
				lastErr = err
				continue
			}
			n, err := m.writeToGroup(data)
			if err != nil {
				lastErr = err
				logrus.WithFields(logrus.Fields{
					"function":  "UDPMulticast.SendMC",
					"interface": ifs[i].Name,
					"error":     err.Error(),
				}).Debug("Send on interface failed")
				continue
			}
			sent = n
		}
		if sent == 0 {
			if lastErr == nil {
				lastErr = ErrNoInterface
			}
			return 0, fmt.Errorf("send on all interfaces: %w", lastErr)
		}
		return sent, nil
	}
	return 0, fmt.Errorf("unknown send mode %d", m.sendMode)
}

// Recv waits for one datagram. A zero timeout waits indefinitely. The wait
// is interruptible: a close of stop makes Recv return ErrCancelled without
// disturbing the socket. On expiry ErrTimeout is returned.
//
// ifIndex is the index of the interface the datagram arrived on, or 0 if
// the platform did not report it.
func (m *UDPMulticast) Recv(timeout time.Duration, stop <-chan struct{}) (data []byte, src *net.UDPAddr, ifIndex int, err error) {
	m.mu.Lock()
	conn, p4, p6, bufSize := m.conn, m.p4, m.p6, m.bufSize
	m.mu.Unlock()
	if conn == nil {
		return nil, nil, 0, ErrNotOpen
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	buf := make([]byte, bufSize)
	for {
		select {
		case <-stop:
			return nil, nil, 0, ErrCancelled
		default:
		}
		slice := recvSlice
		if !deadline.IsZero() {
			remain := time.Until(deadline)
			if remain <= 0 {
				return nil, nil, 0, ErrTimeout
			}
			if remain < slice {
				slice = remain
			}
		}
		if err := conn.SetReadDeadline(time.Now().Add(slice)); err != nil {
			return nil, nil, 0, fmt.Errorf("set read deadline: %w", err)
		}

		var (
			n    int
			from net.Addr
			idx  int
		)
		switch {
		case p4 != nil:
			var cm *ipv4.ControlMessage
			n, cm, from, err = p4.ReadFrom(buf)
			if cm != nil {
				idx = cm.IfIndex
			}
		case p6 != nil:
			var cm *ipv6.ControlMessage
			n, cm, from, err = p6.ReadFrom(buf)
			if cm != nil {
				idx = cm.IfIndex
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue // slice expired, recheck stop/deadline
			}
			return nil, nil, 0, err
		}
		udp, _ := from.(*net.UDPAddr)
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, udp, idx, nil
	}
}
