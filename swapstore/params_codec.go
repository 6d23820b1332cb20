package swapstore

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/btcxmr/swapcore/swapstate"
)

func writeParams(w io.Writer, p swapstate.Params) error {
	if err := writeSwapID(w, p.SwapID); err != nil {
		return err
	}
	if err := writePubKey(w, p.A); err != nil {
		return err
	}
	if err := writePubKey(w, p.B); err != nil {
		return err
	}
	if err := writePubKey(w, p.SaBtc); err != nil {
		return err
	}
	if err := writePubKey(w, p.SbBtc); err != nil {
		return err
	}
	if err := writeEdPoint(w, p.SaEd); err != nil {
		return err
	}
	if err := writeEdPoint(w, p.SbEd); err != nil {
		return err
	}
	if err := writeAddress(w, p.AliceRedeemAddr); err != nil {
		return err
	}
	if err := writeAddress(w, p.AlicePunishAddr); err != nil {
		return err
	}
	if err := writeAddress(w, p.BobRefundAddr); err != nil {
		return err
	}
	if err := writeUint32(w, p.TCancel); err != nil {
		return err
	}
	if err := writeUint32(w, p.TPunish); err != nil {
		return err
	}
	if err := writeAmount(w, p.BtcAmount); err != nil {
		return err
	}
	if err := writeUint64(w, p.XmrAmount); err != nil {
		return err
	}
	if err := writeString(w, p.XmrLockAddress); err != nil {
		return err
	}
	if _, err := w.Write(p.XmrViewKeyShared[:]); err != nil {
		return err
	}
	return writeLockOutput(w, p.LockOut)
}

func readParams(r io.Reader, params *chaincfg.Params) (swapstate.Params, error) {
	var p swapstate.Params
	var err error

	if p.SwapID, err = readSwapID(r); err != nil {
		return p, err
	}
	if p.A, err = readPubKey(r); err != nil {
		return p, err
	}
	if p.B, err = readPubKey(r); err != nil {
		return p, err
	}
	if p.SaBtc, err = readPubKey(r); err != nil {
		return p, err
	}
	if p.SbBtc, err = readPubKey(r); err != nil {
		return p, err
	}
	if p.SaEd, err = readEdPoint(r); err != nil {
		return p, err
	}
	if p.SbEd, err = readEdPoint(r); err != nil {
		return p, err
	}
	if p.AliceRedeemAddr, err = readAddress(r, params); err != nil {
		return p, err
	}
	if p.AlicePunishAddr, err = readAddress(r, params); err != nil {
		return p, err
	}
	if p.BobRefundAddr, err = readAddress(r, params); err != nil {
		return p, err
	}
	if p.TCancel, err = readUint32(r); err != nil {
		return p, err
	}
	if p.TPunish, err = readUint32(r); err != nil {
		return p, err
	}
	if p.BtcAmount, err = readAmount(r); err != nil {
		return p, err
	}
	if p.XmrAmount, err = readUint64(r); err != nil {
		return p, err
	}
	if p.XmrLockAddress, err = readString(r); err != nil {
		return p, err
	}
	if _, err = io.ReadFull(r, p.XmrViewKeyShared[:]); err != nil {
		return p, err
	}
	p.LockOut, err = readLockOutput(r)
	return p, err
}
