// Package airsync keeps multiple simulator instances on a LAN in sync
// about a shared set of simulated aircraft without a central server.
//
// One instance, the sender, owns the authoritative aircraft state and
// multicasts it; any number of receivers reconstruct that state for local
// rendering. A sender stays silent until any datagram arrives on the
// multicast group, the cheapest possible "someone is listening" signal;
// receivers beacon their interest until the first Settings broadcast
// arrives.
//
// All state lives in a Session, created once per process. The simulation
// thread feeds the session once per tick through BeginTick, EnqueueAircraft
// and EndTick; a single background goroutine performs all blocking network
// I/O. Delivery is best effort: datagrams may be lost or reordered, which
// periodic full-detail refreshes bound to a few seconds of staleness.
package airsync
