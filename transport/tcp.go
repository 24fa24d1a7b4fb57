package transport

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"
)

// ConnHandler processes one accepted connection. It runs on its own
// goroutine and owns the connection's lifetime.
type ConnHandler func(conn net.Conn)

// TCPListener is a cancellable accept loop. It is not on the sync hot path;
// it completes the transport layer for collaborators that need a
// stream-oriented side channel.
type TCPListener struct {
	ln      net.Listener
	handler ConnHandler
	stop    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// ListenTCP binds addr and starts accepting connections, passing each to
// handler. Closing the listener from another goroutine unblocks a pending
// accept; the loop tolerates that and terminates cleanly.
func ListenTCP(addr string, handler ConnHandler) (*TCPListener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, setupErr("listen "+addr, err)
	}
	l := &TCPListener{
		ln:      ln,
		handler: handler,
		stop:    make(chan struct{}),
	}
	l.wg.Add(1)
	go l.acceptLoop()
	logrus.WithFields(logrus.Fields{
		"function": "ListenTCP",
		"addr":     ln.Addr().String(),
	}).Debug("TCP listener started")
	return l, nil
}

// Addr returns the listener's bound address.
func (l *TCPListener) Addr() net.Addr { return l.ln.Addr() }

func (l *TCPListener) acceptLoop() {
	defer l.wg.Done()
	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-l.stop:
				return // closed on purpose
			default:
			}
			logrus.WithFields(logrus.Fields{
				"function": "TCPListener.acceptLoop",
				"error":    err.Error(),
			}).Error("Accept failed")
			return
		}
		if l.handler != nil {
			go l.handler(conn)
		} else {
			conn.Close()
		}
	}
}

// Close stops the accept loop and waits for it to exit.
func (l *TCPListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.stop)
	l.mu.Unlock()

	err := l.ln.Close()
	l.wg.Wait()
	return err
}
