// Package weather implements a small request/response weather lookup
// over UDP.
//
// A request is one measurement-type byte followed by the city name, with
// no length prefix: the datagram boundary ends the city. A response is
// always ResponseSize bytes: a big-endian status, the echoed type and the
// big-endian IEEE-754 bits of a float32 value.
//
// The Server answers one datagram at a time and keeps no state between
// them. The Client sends one request, waits for one reply and checks that
// the reply came from the address the request was sent to.
package weather
