// Package wire defines the byte-exact message formats exchanged between
// simulator instances synchronizing remote aircraft over multicast.
//
// Every message starts with an 8-byte header identifying the message kind,
// its format version and the sending plugin. Aircraft records are packed
// edge-to-edge behind a single header, so one datagram carries as many
// records as the configured buffer size allows.
//
// All multi-byte fields are encoded in network byte order (big-endian) at
// fixed offsets. No struct layout or platform ABI assumptions are made, so
// messages interoperate across OS and architecture boundaries.
package wire
