package psbtengine

import (
	"strings"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldwatch/wallet/internal/explorer"
	"github.com/coldwatch/wallet/internal/walletkey"
)

func testKeys(t *testing.T) *walletkey.NetworkKeys {
	t.Helper()
	mnemonic, err := walletkey.RandomMnemonic()
	if err != nil {
		t.Fatalf("RandomMnemonic: %v", err)
	}
	seed, err := walletkey.Seed(mnemonic)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	keys, err := walletkey.DeriveNetwork(seed, walletkey.Test)
	if err != nil {
		t.Fatalf("DeriveNetwork: %v", err)
	}
	return keys
}

func TestBuildSignFinalizeExtractVerifyRoundTrip(t *testing.T) {
	keys := testKeys(t)
	script, err := walletkey.ScriptPubKey(keys.AccountPublicKey)
	if err != nil {
		t.Fatalf("ScriptPubKey: %v", err)
	}

	utxoTxID := strings.Repeat("11", 32)
	utxo := explorer.UTXO{TxID: utxoTxID, Vout: 0, Value: 20000}

	watch := &Watch{
		Network:           walletkey.Test,
		AccountPublicKey:  keys.AccountPublicKey,
		MasterFingerprint: keys.MasterFingerprint,
	}
	cold := &Cold{AccountPrivateKey: keys.AccountPrivateKey}

	packet, err := watch.Create([]explorer.UTXO{utxo}, script, 10000, script, 9000)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hash, err := chainhash.NewHashFromStr(utxoTxID)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}
	outPoint := wire.NewOutPoint(hash, 0)
	prevOuts := PrevOutputs{
		outPoint: {Value: utxo.Value, PkScript: script},
	}

	if err := watch.Update(packet, prevOuts); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := cold.Sign(packet); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := watch.Finalize(packet); err != nil {
		t.Fatalf("Finalize: %v", err)
	}

	detail, err := ExtractAndVerify(packet, prevOuts)
	if err != nil {
		t.Fatalf("ExtractAndVerify: %v", err)
	}
	if detail.TxHex == "" || detail.TxID == "" {
		t.Fatalf("expected populated tx detail, got %+v", detail)
	}
	if detail.FeeAmount != 1000 {
		t.Fatalf("expected fee 1000, got %d", detail.FeeAmount)
	}
}

func TestSessionRejectsBackwardTransition(t *testing.T) {
	session := NewSession()
	if err := session.Advance(StatePolicyOK); err != nil {
		t.Fatalf("Advance(PolicyOK): %v", err)
	}
	if err := session.Advance(StateCoinsSelected); err != nil {
		t.Fatalf("Advance(CoinsSelected): %v", err)
	}
	if err := session.Advance(StateIdle); err == nil {
		t.Fatalf("expected backward transition to be rejected")
	}
}

func TestSessionAllowsForwardSequence(t *testing.T) {
	session := NewSession()
	states := []SessionState{
		StatePolicyOK, StateCoinsSelected, StatePSBTCreated, StateUpdated,
		StateSigned, StateFinalized, StateVerified, StateReady, StateBroadcasting, StateBroadcastOK,
	}
	for _, s := range states {
		if err := session.Advance(s); err != nil {
			t.Fatalf("Advance(%v): %v", s, err)
		}
	}
}
