// Package swapwire defines the typed protocol messages exchanged
// between the two swap roles, and the length-prefixed framing used to
// write and read them off a network adapter's byte stream.
package swapwire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// MessageType identifies a protocol message's wire encoding.
type MessageType uint16

const (
	MsgSwapRequest MessageType = 1
	MsgSwapResponse MessageType = 2
	MsgTxLockProof MessageType = 3
	MsgXmrTransferProof MessageType = 4
	MsgEncSigRedeem MessageType = 5
	MsgEncSigRefund MessageType = 6
	MsgSigCancel MessageType = 7
	MsgSigPunish MessageType = 8
	MsgSwapAck MessageType = 9
	MsgSwapFail MessageType = 10
)

func (t MessageType) String() string {
	switch t {
	case MsgSwapRequest:
		return "SwapRequest"
	case MsgSwapResponse:
		return "SwapResponse"
	case MsgTxLockProof:
		return "TxLockProof"
	case MsgXmrTransferProof:
		return "XmrTransferProof"
	case MsgEncSigRedeem:
		return "EncSigRedeem"
	case MsgEncSigRefund:
		return "EncSigRefund"
	case MsgSigCancel:
		return "SigCancel"
	case MsgSigPunish:
		return "SigPunish"
	case MsgSwapAck:
		return "SwapAck"
	case MsgSwapFail:
		return "SwapFail"
	default:
		return fmt.Sprintf("unknown message type %d", uint16(t))
	}
}

// MaxMessagePayload bounds a single message's encoded payload. It is
// sized well above a marshaled DLEQProof (~57KB), the largest field any
// message carries.
const MaxMessagePayload = 1 << 20

// Message is the interface every protocol message implements: one
// variant per handshake step and per in-flight signature/proof
// exchange listed in the wire schema.
type Message interface {
	Decode(r io.Reader, pver uint32) error
	Encode(w io.Writer, pver uint32) error
	MsgType() MessageType
}

// makeEmptyMessage returns a zero-valued Message for msgType, ready to
// have Decode called on it.
func makeEmptyMessage(msgType MessageType) (Message, error) {
	switch msgType {
	case MsgSwapRequest:
		return &SwapRequest{}, nil
	case MsgSwapResponse:
		return &SwapResponse{}, nil
	case MsgTxLockProof:
		return &TxLockProof{}, nil
	case MsgXmrTransferProof:
		return &XmrTransferProof{}, nil
	case MsgEncSigRedeem:
		return &EncSigRedeem{}, nil
	case MsgEncSigRefund:
		return &EncSigRefund{}, nil
	case MsgSigCancel:
		return &SigCancel{}, nil
	case MsgSigPunish:
		return &SigPunish{}, nil
	case MsgSwapAck:
		return &SwapAck{}, nil
	case MsgSwapFail:
		return &SwapFail{}, nil
	default:
		return nil, fmt.Errorf("unknown message type %v", msgType)
	}
}

// WriteMessage serializes msg with a 2-byte type prefix and a 4-byte
// payload-length prefix, then writes it to w.
func WriteMessage(w io.Writer, msg Message, pver uint32) (int, error) {
	var payloadBuf bytes.Buffer
	if err := msg.Encode(&payloadBuf, pver); err != nil {
		return 0, fmt.Errorf("encoding %v: %w", msg.MsgType(), err)
	}
	payload := payloadBuf.Bytes()
	if len(payload) > MaxMessagePayload {
		return 0, fmt.Errorf("%v payload of %d bytes exceeds maximum %d",
			msg.MsgType(), len(payload), MaxMessagePayload)
	}

	var header [6]byte
	binary.BigEndian.PutUint16(header[0:2], uint16(msg.MsgType()))
	binary.BigEndian.PutUint32(header[2:6], uint32(len(payload)))

	n1, err := w.Write(header[:])
	if err != nil {
		return n1, err
	}
	n2, err := w.Write(payload)
	return n1 + n2, err
}

// ReadMessage reads one length-prefixed message from r and decodes it
// into its concrete type.
func ReadMessage(r io.Reader, pver uint32) (Message, error) {
	var header [6]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	msgType := MessageType(binary.BigEndian.Uint16(header[0:2]))
	payloadLen := binary.BigEndian.Uint32(header[2:6])
	if payloadLen > MaxMessagePayload {
		return nil, fmt.Errorf("declared payload length %d exceeds maximum %d",
			payloadLen, MaxMessagePayload)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}

	msg, err := makeEmptyMessage(msgType)
	if err != nil {
		return nil, err
	}
	if err := msg.Decode(bytes.NewReader(payload), pver); err != nil {
		return nil, fmt.Errorf("decoding %v: %w", msgType, err)
	}
	return msg, nil
}
