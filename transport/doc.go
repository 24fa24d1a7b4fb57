// Package transport provides the socket primitives used to exchange sync
// datagrams between simulator instances: a UDP multicast joiner/sender/
// receiver with per-interface control for both IPv4 and IPv6, local
// interface enumeration, and a cancellable TCP listener.
//
// All blocking receives are interruptible from another goroutine through a
// stop channel without closing the socket out from under a concurrent
// reader.
package transport
