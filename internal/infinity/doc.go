// Package infinity decodes the Carrier Infinity / Bryant Evolution "ABCD"
// RS-485 serial bus.
//
// Frame layout on the wire:
//
//	dest(2) source(2) datalen(1) reserved(2) func(1) data[datalen] crc(2)
//
// Addresses and multi-byte register fields are big-endian; the trailing
// CRC-16/ARC checksum is little-endian. The bus is a free-running
// broadcast medium: readers join mid-stream and must resynchronise by
// sliding a byte at a time until a checksum validates.
//
// The package provides:
//   - OpenStream: path → byte stream (serial device or TCP bridge)
//   - Bus: blocking frame reader with CRC validation and a CRC-error hook
//   - Frame.ParseRegister: register table decoding into named values
//
// Register tables are ported from the community-documented Infinity
// register map (see the infinitive and infinitude projects).
package infinity
