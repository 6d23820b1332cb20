package swapwire

import (
	"bytes"
	"testing"

	"github.com/btcxmr/swapcore/swapid"
)

func mustSwapID(t *testing.T) swapid.ID {
	t.Helper()
	id, err := swapid.New()
	if err != nil {
		t.Fatalf("swapid.New: %v", err)
	}
	return id
}

// roundTrip writes msg through WriteMessage and reads it back through
// ReadMessage, returning the decoded message.
func roundTrip(t *testing.T, msg Message) Message {
	t.Helper()

	var buf bytes.Buffer
	if _, err := WriteMessage(&buf, msg, 0); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}

	got, err := ReadMessage(&buf, 0)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if got.MsgType() != msg.MsgType() {
		t.Fatalf("message type mismatch: got %v want %v", got.MsgType(), msg.MsgType())
	}
	return got
}

func TestSwapRequestRoundTrip(t *testing.T) {
	want := &SwapRequest{
		SwapID:          mustSwapID(t),
		BtcAmount:       100_000,
		XmrAmount:       1_500_000_000_000,
		DLEQProofA:      bytes.Repeat([]byte{0xab}, 57000),
		AliceRedeemAddr: "bcrt1qexampleaddressaliceredeem",
		AlicePunishAddr: "bcrt1qexampleaddressalicepunish",
		TCancel:         144,
		TPunish:         288,
	}
	want.A[0] = 0x02
	want.SaBtc[0] = 0x03
	want.SaEd[0] = 0x11

	got := roundTrip(t, want).(*SwapRequest)

	if got.SwapID != want.SwapID {
		t.Errorf("SwapID mismatch")
	}
	if got.BtcAmount != want.BtcAmount || got.XmrAmount != want.XmrAmount {
		t.Errorf("amount mismatch: got %+v", got)
	}
	if !bytes.Equal(got.DLEQProofA, want.DLEQProofA) {
		t.Errorf("DLEQProofA mismatch")
	}
	if got.AliceRedeemAddr != want.AliceRedeemAddr || got.AlicePunishAddr != want.AlicePunishAddr {
		t.Errorf("address mismatch: got %+v", got)
	}
	if got.TCancel != want.TCancel || got.TPunish != want.TPunish {
		t.Errorf("timelock mismatch: got %+v", got)
	}
	if got.A != want.A || got.SaBtc != want.SaBtc || got.SaEd != want.SaEd {
		t.Errorf("key field mismatch")
	}
}

func TestSwapResponseRoundTrip(t *testing.T) {
	want := &SwapResponse{
		SwapID:            mustSwapID(t),
		BobRefundAddr:     "bcrt1qexampleaddressbobrefund",
		LockOutputIndex:   1,
		LockValue:         250_000,
		LockWitnessScript: []byte{0x52, 0x21, 0x02, 0xae},
	}
	want.LockTxID[5] = 0x7f

	got := roundTrip(t, want).(*SwapResponse)

	if got.SwapID != want.SwapID {
		t.Errorf("SwapID mismatch")
	}
	if got.BobRefundAddr != want.BobRefundAddr {
		t.Errorf("BobRefundAddr mismatch")
	}
	if got.LockOutputIndex != want.LockOutputIndex || got.LockValue != want.LockValue {
		t.Errorf("lock output mismatch: got %+v", got)
	}
	if !bytes.Equal(got.LockWitnessScript, want.LockWitnessScript) {
		t.Errorf("witness script mismatch")
	}
	if got.LockTxID != want.LockTxID {
		t.Errorf("LockTxID mismatch")
	}
}

func TestSigMessagesRoundTrip(t *testing.T) {
	id := mustSwapID(t)
	sig := []byte{0x30, 0x44, 0x02, 0x20}

	cancel := roundTrip(t, &SigCancel{SwapID: id, Sig: sig}).(*SigCancel)
	if !bytes.Equal(cancel.Sig, sig) || cancel.SwapID != id {
		t.Errorf("SigCancel mismatch: got %+v", cancel)
	}

	punish := roundTrip(t, &SigPunish{SwapID: id, Sig: sig}).(*SigPunish)
	if !bytes.Equal(punish.Sig, sig) || punish.SwapID != id {
		t.Errorf("SigPunish mismatch: got %+v", punish)
	}
}

func TestSwapAckAndFailRoundTrip(t *testing.T) {
	id := mustSwapID(t)

	ack := roundTrip(t, &SwapAck{SwapID: id}).(*SwapAck)
	if ack.SwapID != id {
		t.Errorf("SwapAck mismatch")
	}

	fail := roundTrip(t, &SwapFail{SwapID: id, Reason: "counterparty timeout"}).(*SwapFail)
	if fail.SwapID != id || fail.Reason != "counterparty timeout" {
		t.Errorf("SwapFail mismatch: got %+v", fail)
	}
}

func TestReadMessageRejectsOversizedPayload(t *testing.T) {
	var buf bytes.Buffer
	// Header claims a payload far larger than MaxMessagePayload; the
	// reader must reject it before attempting to allocate or read.
	header := []byte{0x00, byte(MsgSwapFail), 0x7f, 0xff, 0xff, 0xff}
	buf.Write(header)

	if _, err := ReadMessage(&buf, 0); err == nil {
		t.Fatal("expected ReadMessage to reject an oversized declared payload length")
	}
}

func TestMakeEmptyMessageUnknownType(t *testing.T) {
	if _, err := makeEmptyMessage(MessageType(0xffff)); err == nil {
		t.Fatal("expected an error for an unknown message type")
	}
}
