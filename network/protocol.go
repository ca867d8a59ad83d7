package network

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Message kinds. The kind is part of the frame header so both ends share a
// typed contract instead of guessing at opaque payloads.
const (
	// server -> client
	MsgTypeWelcome      = 1
	MsgTypePrompt       = 2
	MsgTypeRoomList     = 3
	MsgTypeNotification = 4
	MsgTypeRejection    = 5
	MsgTypeError        = 6
	MsgTypeFarewell     = 7

	// client -> server
	MsgTypeMove = 101
)

// Frame layout: 4-byte big-endian frame length, then the frame itself:
// 2-byte message kind followed by the payload. The length prefix makes the
// frame self-delimited without reserving any byte values, so payload bytes
// can never collide with a boundary marker.
const (
	lengthPrefixSize = 4
	kindSize         = 2

	// DefaultMaxFrameSize bounds a single frame. A peer announcing a larger
	// frame is violating the protocol, not sending a big word.
	DefaultMaxFrameSize = 64 * 1024
)

// ErrMalformedFrame reports a frame that cannot be parsed: truncated by a
// mid-frame peer close, shorter than its header, or over the size limit.
var ErrMalformedFrame = errors.New("malformed frame")

type Packet struct {
	MsgID uint16
	Data  []byte
}

// EncodePacket serializes a packet into a self-delimited byte frame.
// It is a pure function and safe for concurrent use.
func EncodePacket(msgID uint16, data []byte) []byte {
	frame := make([]byte, lengthPrefixSize+kindSize+len(data))
	binary.BigEndian.PutUint32(frame[0:lengthPrefixSize], uint32(kindSize+len(data)))
	binary.BigEndian.PutUint16(frame[lengthPrefixSize:lengthPrefixSize+kindSize], msgID)
	copy(frame[lengthPrefixSize+kindSize:], data)
	return frame
}

// DecodePacket parses one whole encoded frame, the inverse of EncodePacket.
func DecodePacket(frame []byte) (*Packet, error) {
	if len(frame) < lengthPrefixSize+kindSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedFrame, len(frame))
	}

	length := binary.BigEndian.Uint32(frame[0:lengthPrefixSize])
	if int(length) != len(frame)-lengthPrefixSize {
		return nil, fmt.Errorf("%w: declared %d bytes, got %d", ErrMalformedFrame, length, len(frame)-lengthPrefixSize)
	}

	return &Packet{
		MsgID: binary.BigEndian.Uint16(frame[lengthPrefixSize : lengthPrefixSize+kindSize]),
		Data:  frame[lengthPrefixSize+kindSize:],
	}, nil
}

// ReadPacketFrom reads exactly one frame from r, blocking until a whole frame
// has arrived. A clean peer close at a frame boundary returns io.EOF; a close
// mid-frame returns ErrMalformedFrame rather than partial data.
func ReadPacketFrom(r io.Reader, maxFrame uint32) (*Packet, error) {
	var header [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated length prefix", ErrMalformedFrame)
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(header[:])
	if length < kindSize || length > maxFrame {
		return nil, fmt.Errorf("%w: declared %d bytes", ErrMalformedFrame, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated frame body", ErrMalformedFrame)
		}
		return nil, err
	}

	return &Packet{
		MsgID: binary.BigEndian.Uint16(body[0:kindSize]),
		Data:  body[kindSize:],
	}, nil
}
