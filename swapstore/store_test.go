package swapstore

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/wire"

	"github.com/btcxmr/swapcore/swapid"
	"github.com/btcxmr/swapcore/swapstate"
	"github.com/btcxmr/swapcore/txbuilder"
	"github.com/btcxmr/swapcore/xmrbtccrypto"
)

func mustPubKey(t *testing.T) *btcec.PublicKey {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	return priv.PubKey()
}

func testParams(t *testing.T) swapstate.Params {
	t.Helper()

	id, err := swapid.New()
	if err != nil {
		t.Fatalf("swapid.New: %v", err)
	}

	_, saEd, saBtc, _, err := xmrbtccrypto.KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}
	_, sbEd, sbBtc, _, err := xmrbtccrypto.KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}

	redeemAddr, err := btcutil.NewAddressWitnessPubKeyHash(make([]byte, 20), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatalf("redeem address: %v", err)
	}
	punishAddr, err := btcutil.NewAddressWitnessPubKeyHash(append(make([]byte, 19), 0x01), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatalf("punish address: %v", err)
	}
	refundAddr, err := btcutil.NewAddressWitnessPubKeyHash(append(make([]byte, 19), 0x02), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatalf("refund address: %v", err)
	}

	return swapstate.Params{
		SwapID:          id,
		A:               mustPubKey(t),
		B:               mustPubKey(t),
		SaBtc:           saBtc,
		SbBtc:           sbBtc,
		SaEd:            saEd,
		SbEd:            sbEd,
		AliceRedeemAddr: redeemAddr,
		AlicePunishAddr: punishAddr,
		BobRefundAddr:   refundAddr,
		TCancel:         144,
		TPunish:         288,
		BtcAmount:       100_000,
		XmrAmount:       1_500_000_000_000,
		LockOut: &txbuilder.LockOutput{
			OutPoint:      wire.OutPoint{Index: 0},
			Value:         100_000,
			WitnessScript: []byte{0x52, 0x21},
			PkScript:      []byte{0x00, 0x20},
		},
	}
}

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir(), &chaincfg.RegressionNetParams)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPutGetAliceStarted(t *testing.T) {
	db := openTestDB(t)
	params := testParams(t)

	spendScalar, _, _, _, err := xmrbtccrypto.KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}
	myKey, _, err := xmrbtccrypto.KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1: %v", err)
	}

	rec := Record{
		SwapID: params.SwapID,
		Role:   RoleAlice,
		State: swapstate.AliceStarted{
			Params:      params,
			SpendScalar: spendScalar,
			MyKey:       myKey,
		},
	}

	if err := db.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := db.Get(params.SwapID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Role != RoleAlice {
		t.Errorf("got role %v, want RoleAlice", got.Role)
	}
	state, ok := got.State.(swapstate.AliceStarted)
	if !ok {
		t.Fatalf("got state type %T, want swapstate.AliceStarted", got.State)
	}
	if state.Params.SwapID != params.SwapID {
		t.Errorf("swap id mismatch after round trip")
	}
	if state.Params.BtcAmount != params.BtcAmount || state.Params.XmrAmount != params.XmrAmount {
		t.Errorf("amount mismatch after round trip: got %+v", state.Params)
	}
	if state.Params.AliceRedeemAddr.EncodeAddress() != params.AliceRedeemAddr.EncodeAddress() {
		t.Errorf("address mismatch after round trip")
	}
	if state.SpendScalar.Bytes() != spendScalar.Bytes() {
		t.Errorf("spend scalar mismatch after round trip")
	}
	if state.MyKey.Bytes() != myKey.Bytes() {
		t.Errorf("multisig key mismatch after round trip")
	}
}

func TestPutGetBobXmrRedeemed(t *testing.T) {
	db := openTestDB(t)
	params := testParams(t)

	rec := Record{
		SwapID: params.SwapID,
		Role:   RoleBob,
		State: swapstate.BobXmrRedeemed{
			Params:      params,
			SweepTxID:   "sweep-tx-id",
			XmrLockTxID: "xmr-lock-tx-id",
		},
	}

	if err := db.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := db.Get(params.SwapID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	state, ok := got.State.(swapstate.BobXmrRedeemed)
	if !ok {
		t.Fatalf("got state type %T, want swapstate.BobXmrRedeemed", got.State)
	}
	if state.SweepTxID != "sweep-tx-id" || state.XmrLockTxID != "xmr-lock-tx-id" {
		t.Errorf("field mismatch after round trip: got %+v", state)
	}
}

func TestGetUnknownSwapReturnsNotFound(t *testing.T) {
	db := openTestDB(t)
	id, _ := swapid.New()

	_, err := db.Get(id)
	if err == nil {
		t.Fatal("expected an error for an unknown swap id")
	}
	if _, ok := err.(*ErrSwapNotFound); !ok {
		t.Fatalf("got error type %T, want *ErrSwapNotFound", err)
	}
}

func TestListAndDelete(t *testing.T) {
	db := openTestDB(t)

	params1 := testParams(t)
	params2 := testParams(t)

	for _, p := range []swapstate.Params{params1, params2} {
		scalar, _, _, _, err := xmrbtccrypto.KeypairEd()
		if err != nil {
			t.Fatalf("KeypairEd: %v", err)
		}
		myKey, _, err := xmrbtccrypto.KeypairK1()
		if err != nil {
			t.Fatalf("KeypairK1: %v", err)
		}
		rec := Record{
			SwapID: p.SwapID,
			Role:   RoleAlice,
			State:  swapstate.AliceStarted{Params: p, SpendScalar: scalar, MyKey: myKey},
		}
		if err := db.Put(rec); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	all, err := db.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d records, want 2", len(all))
	}

	if err := db.Delete(params1.SwapID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	remaining, err := db.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("got %d records after delete, want 1", len(remaining))
	}
	if remaining[0].SwapID != params2.SwapID {
		t.Errorf("remaining record has wrong swap id")
	}
}

func TestWipe(t *testing.T) {
	db := openTestDB(t)
	params := testParams(t)
	scalar, _, _, _, err := xmrbtccrypto.KeypairEd()
	if err != nil {
		t.Fatalf("KeypairEd: %v", err)
	}
	myKey, _, err := xmrbtccrypto.KeypairK1()
	if err != nil {
		t.Fatalf("KeypairK1: %v", err)
	}

	rec := Record{
		SwapID: params.SwapID,
		Role:   RoleAlice,
		State:  swapstate.AliceStarted{Params: params, SpendScalar: scalar, MyKey: myKey},
	}
	if err := db.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := db.Wipe(); err != nil {
		t.Fatalf("Wipe: %v", err)
	}

	all, err := db.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("got %d records after wipe, want 0", len(all))
	}
}
