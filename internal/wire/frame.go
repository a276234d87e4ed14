// Package wire implements the binary push-channel framing used between the
// dashboard engine and its UI client.
//
// The format is the standard one: byte 1 carries FIN plus a 4-bit opcode,
// byte 2 carries the mask bit and a 7-bit length with escape values 126/127
// for 16-bit and 64-bit extended lengths. Server frames are never masked;
// client frames are masked and are unmasked on decode. Every call is a pure
// transform; the codec holds no state.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Opcode identifies the frame kind.
type Opcode byte

const (
	OpContinuation Opcode = 0x0
	OpText         Opcode = 0x1
	OpBinary       Opcode = 0x2
	OpClose        Opcode = 0x8
	OpPing         Opcode = 0x9
	OpPong         Opcode = 0xA
)

// IsControl reports whether the opcode is a control frame. Control frames
// are never fragmented.
func (op Opcode) IsControl() bool { return op >= OpClose }

const (
	finBit  = 0x80
	maskBit = 0x80

	// Length escape values in the 7-bit length field.
	len16 = 126
	len64 = 127
)

// MaxPayload caps decoded payload sizes. Anything larger than this on a
// local dashboard channel is a protocol violation, not a real message.
const MaxPayload = 16 << 20

var (
	ErrPayloadTooLarge = errors.New("wire: payload exceeds maximum size")
	ErrBadContinuation = errors.New("wire: continuation frame without initial frame")
)

// Frame is one decoded unit of the protocol.
type Frame struct {
	Final   bool
	Opcode  Opcode
	Masked  bool
	Payload []byte
}

// Encode produces a single server-to-client frame: FIN set, unmasked, with
// the three-tier payload length encoding.
func Encode(op Opcode, payload []byte) []byte {
	n := len(payload)

	var header []byte
	switch {
	case n < len16:
		header = []byte{finBit | byte(op), byte(n)}
	case n < 1<<16:
		header = []byte{finBit | byte(op), len16, 0, 0}
		binary.BigEndian.PutUint16(header[2:], uint16(n))
	default:
		header = []byte{finBit | byte(op), len64, 0, 0, 0, 0, 0, 0, 0, 0}
		binary.BigEndian.PutUint64(header[2:], uint64(n))
	}

	frame := make([]byte, 0, len(header)+n)
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame
}

// EncodeText frames a text payload.
func EncodeText(payload []byte) []byte { return Encode(OpText, payload) }

// DecodeFrame reads exactly one frame from r, unmasking the payload when the
// mask bit is set.
func DecodeFrame(r io.Reader) (*Frame, error) {
	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, err
	}

	f := &Frame{
		Final:  head[0]&finBit != 0,
		Opcode: Opcode(head[0] & 0x0F),
		Masked: head[1]&maskBit != 0,
	}

	length := uint64(head[1] &^ maskBit)
	switch length {
	case len16:
		var ext [2]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, fmt.Errorf("wire: read 16-bit length: %w", err)
		}
		length = uint64(binary.BigEndian.Uint16(ext[:]))
	case len64:
		var ext [8]byte
		if _, err := io.ReadFull(r, ext[:]); err != nil {
			return nil, fmt.Errorf("wire: read 64-bit length: %w", err)
		}
		length = binary.BigEndian.Uint64(ext[:])
	}
	if length > MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	var key [4]byte
	if f.Masked {
		if _, err := io.ReadFull(r, key[:]); err != nil {
			return nil, fmt.Errorf("wire: read masking key: %w", err)
		}
	}

	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, fmt.Errorf("wire: read payload: %w", err)
	}
	if f.Masked {
		for i := range f.Payload {
			f.Payload[i] ^= key[i%4]
		}
	}

	return f, nil
}

// ReadMessage reads frames from r until a complete message is assembled,
// concatenating continuation-frame payloads. Control frames are returned
// on their own, even when they arrive between fragments of a data message.
func ReadMessage(r io.Reader) (Opcode, []byte, error) {
	first, err := DecodeFrame(r)
	if err != nil {
		return 0, nil, err
	}
	if first.Opcode == OpContinuation {
		return 0, nil, ErrBadContinuation
	}
	if first.Final || first.Opcode.IsControl() {
		return first.Opcode, first.Payload, nil
	}

	op := first.Opcode
	payload := append([]byte(nil), first.Payload...)
	for {
		f, err := DecodeFrame(r)
		if err != nil {
			return 0, nil, err
		}
		if f.Opcode.IsControl() {
			if f.Opcode == OpClose {
				// The peer is going away; the partial message is abandoned.
				return OpClose, f.Payload, nil
			}
			// Ping/pong interleaved with fragments; nothing for the caller.
			continue
		}
		if f.Opcode != OpContinuation {
			return 0, nil, fmt.Errorf("wire: expected continuation, got opcode %#x", byte(f.Opcode))
		}
		payload = append(payload, f.Payload...)
		if uint64(len(payload)) > MaxPayload {
			return 0, nil, ErrPayloadTooLarge
		}
		if f.Final {
			return op, payload, nil
		}
	}
}
