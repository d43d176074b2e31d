package infinity

import (
	"encoding/binary"
	"io"
)

// Wire format sizes.
const (
	headerSize   = 8 // dest(2) + source(2) + datalen(1) + reserved(2) + func(1)
	crcSize      = 2
	minFrameSize = headerSize + crcSize

	// maxEmptyReads bounds consecutive (0, nil) results from the stream,
	// which io.Reader permits, before ReadFrame gives up with
	// io.ErrNoProgress instead of spinning.
	maxEmptyReads = 100
)

// CRCErrorFunc is called each time a candidate frame fails checksum
// validation during resynchronisation. It runs on the goroutine calling
// ReadFrame and must not block.
type CRCErrorFunc func()

// Bus reads validated frames from a byte stream.
//
// It is not safe for concurrent use; each device owns exactly one Bus on
// exactly one goroutine.
type Bus struct {
	r          io.Reader
	onCRCError CRCErrorFunc

	window  []byte
	readBuf []byte
}

// NewBus creates a frame reader over the stream. onCRCError may be nil.
func NewBus(stream io.Reader, onCRCError CRCErrorFunc) *Bus {
	return &Bus{
		r:          stream,
		onCRCError: onCRCError,
		readBuf:    make([]byte, 512),
	}
}

// ReadFrame blocks until a validated frame is available or the stream
// fails. Bytes that cannot be framed are discarded one at a time, firing
// the CRC-error callback for each rejected candidate.
func (b *Bus) ReadFrame() (*Frame, error) {
	emptyReads := 0
	for {
		if f := b.scan(false); f != nil {
			return f, nil
		}

		n, err := b.r.Read(b.readBuf)
		if n > 0 {
			b.window = append(b.window, b.readBuf[:n]...)
			emptyReads = 0
			continue
		}
		if err != nil {
			// The stream is over; salvage any complete frame still
			// buffered before surfacing the transport error. The error
			// resurfaces on the next read.
			if f := b.scan(true); f != nil {
				return f, nil
			}
			return nil, err
		}
		emptyReads++
		if emptyReads >= maxEmptyReads {
			return nil, io.ErrNoProgress
		}
	}
}

// scan attempts to decode a frame at successive alignments of the buffered
// window. With flush set, candidates extending past the buffered bytes are
// rejected instead of waiting for more data.
func (b *Bus) scan(flush bool) *Frame {
	for len(b.window) >= minFrameSize {
		total := headerSize + int(b.window[4]) + crcSize
		if len(b.window) < total {
			if !flush {
				return nil
			}
			b.reject()
			continue
		}
		if f := b.decode(total); f != nil {
			b.window = b.window[total:]
			return f
		}
		b.reject()
	}
	return nil
}

// decode validates the candidate frame of the given total size at the
// start of the window. Returns nil if the checksum does not match.
func (b *Bus) decode(total int) *Frame {
	body := b.window[:total-crcSize]
	want := binary.LittleEndian.Uint16(b.window[total-crcSize : total])
	if Checksum(body) != want {
		return nil
	}

	raw := make([]byte, total)
	copy(raw, b.window[:total])
	return &Frame{
		Dest:   binary.BigEndian.Uint16(raw[0:2]),
		Source: binary.BigEndian.Uint16(raw[2:4]),
		Func:   Function(raw[7]),
		Data:   raw[headerSize : total-crcSize],
		Raw:    raw,
	}
}

// reject reports a failed candidate and slides the window one byte.
func (b *Bus) reject() {
	if b.onCRCError != nil {
		b.onCRCError()
	}
	b.window = b.window[1:]
}
