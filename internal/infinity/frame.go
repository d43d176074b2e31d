package infinity

import (
	"encoding/binary"
	"fmt"
)

// Function identifies the operation a frame carries.
type Function byte

// Function codes observed on the ABCD bus.
const (
	// FuncReply is a data-bearing reply to a register read ("ACK06").
	// These are the only frames that carry register state.
	FuncReply Function = 0x06

	// FuncRead requests a register's contents.
	FuncRead Function = 0x0B

	// FuncWrite writes a register's contents.
	FuncWrite Function = 0x0C

	// FuncNack is a negative acknowledgement.
	FuncNack Function = 0x15
)

// String returns a short mnemonic for the function code.
func (f Function) String() string {
	switch f {
	case FuncReply:
		return "reply"
	case FuncRead:
		return "read"
	case FuncWrite:
		return "write"
	case FuncNack:
		return "nack"
	default:
		return fmt.Sprintf("func(0x%02x)", byte(f))
	}
}

// Frame is one validated unit of data read from the bus.
//
// Frames are immutable once returned by Bus.ReadFrame; Data and Raw must
// not be modified by callers.
type Frame struct {
	// Dest and Source are the bus addresses, e.g. 0x2001 (thermostat)
	// or 0x4001 (air handler).
	Dest   uint16
	Source uint16

	// Func is the frame's function code.
	Func Function

	// Data is the payload after the function byte, excluding the CRC.
	// For FuncReply frames the first three bytes identify the register.
	// It serves as the content key for frame deduplication.
	Data []byte

	// Raw is the complete frame as read from the wire, header and CRC
	// included.
	Raw []byte
}

// Length returns the payload length in bytes.
func (f *Frame) Length() int {
	return len(f.Data)
}

// PrintableAddress renders a bus address the way installers write them,
// e.g. "2001" for the thermostat.
func PrintableAddress(addr uint16) string {
	return fmt.Sprintf("%04x", addr)
}

// Encode serialises a frame to wire format, computing the CRC.
// Used by tests and diagnostic tooling; finitude itself never writes to
// the bus.
func Encode(dest, source uint16, fn Function, data []byte) []byte {
	buf := make([]byte, 0, headerSize+len(data)+crcSize)
	buf = binary.BigEndian.AppendUint16(buf, dest)
	buf = binary.BigEndian.AppendUint16(buf, source)
	buf = append(buf, byte(len(data)), 0x00, 0x00, byte(fn))
	buf = append(buf, data...)
	buf = binary.LittleEndian.AppendUint16(buf, Checksum(buf))
	return buf
}
