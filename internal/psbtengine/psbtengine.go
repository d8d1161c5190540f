// Package psbtengine implements the Cold/Watch PSBT pipeline: an online
// Watch side that builds, updates, and finalizes a transaction, and an
// offline Cold side whose only job is to sign. Cold never touches the
// network; Watch never touches the master private key.
package psbtengine

import (
	"bytes"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/coldwatch/wallet/internal/explorer"
	"github.com/coldwatch/wallet/internal/walleterrors"
	"github.com/coldwatch/wallet/internal/walletkey"
)

// SessionState is one step of a single send session's forward-only state
// machine.
type SessionState int

const (
	StateIdle SessionState = iota
	StatePolicyOK
	StateCoinsSelected
	StatePSBTCreated
	StateUpdated
	StateSigned
	StateFinalized
	StateVerified
	StateReady
	StateBroadcasting
	StateBroadcastOK
	StateBroadcastFail
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePolicyOK:
		return "POLICY_OK"
	case StateCoinsSelected:
		return "COINS_SELECTED"
	case StatePSBTCreated:
		return "PSBT_CREATED"
	case StateUpdated:
		return "UPDATED"
	case StateSigned:
		return "SIGNED"
	case StateFinalized:
		return "FINALIZED"
	case StateVerified:
		return "VERIFIED"
	case StateReady:
		return "READY"
	case StateBroadcasting:
		return "BROADCASTING"
	case StateBroadcastOK:
		return "BROADCAST_OK"
	case StateBroadcastFail:
		return "BROADCAST_FAIL"
	default:
		return "UNKNOWN"
	}
}

// Session tracks a single send's progress through the state machine and
// rejects any transition that is not strictly forward.
type Session struct {
	state    SessionState
	Packet   *psbt.Packet
	TxDetail *TxDetail
}

// NewSession starts a session in the IDLE state.
func NewSession() *Session {
	return &Session{state: StateIdle}
}

// State returns the session's current state.
func (s *Session) State() SessionState {
	return s.state
}

// Advance moves the session to next, rejecting any transition that is not
// strictly forward (no skip is enforced beyond strict ordering; callers
// drive the pipeline one step at a time).
func (s *Session) Advance(next SessionState) error {
	if next <= s.state {
		return walleterrors.New(walleterrors.KindInvalidTransition, s.state.String()+" -> "+next.String())
	}
	s.state = next
	return nil
}

// TxDetail is the final, user-facing summary of a built transaction.
type TxDetail struct {
	TxHex     string
	TxID      string
	FeeAmount int64
}

// Watch holds only the account extended public key: it builds, updates,
// and finalizes a PSBT but never sees the private key.
type Watch struct {
	Network           walletkey.Network
	AccountPublicKey  *hdkeychain.ExtendedKey
	MasterFingerprint uint32
}

// Cold holds the account extended private key. Signing is the only
// operation it performs, and it never performs I/O.
type Cold struct {
	AccountPrivateKey *hdkeychain.ExtendedKey
}

// Create builds the version-2, locktime-0 unsigned transaction: one input
// per selected UTXO in order, followed by the recipient output and (if
// present) the change output, paid back to the wallet's own address.
func (w *Watch) Create(utxos []explorer.UTXO, recipientScript []byte, recipientAmount int64, changeScript []byte, changeAmount int64) (*psbt.Packet, error) {
	tx := wire.NewMsgTx(2)
	tx.LockTime = 0

	for _, u := range utxos {
		hash, err := chainhash.NewHashFromStr(u.TxID)
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindBadInput, "invalid utxo txid", err)
		}
		outPoint := wire.NewOutPoint(hash, u.Vout)
		txIn := wire.NewTxIn(outPoint, nil, nil)
		txIn.Sequence = wire.MaxTxInSequenceNum - 2 // RBF-signaling sequence
		tx.AddTxIn(txIn)
	}

	tx.AddTxOut(wire.NewTxOut(recipientAmount, recipientScript))
	if changeAmount > 0 {
		tx.AddTxOut(wire.NewTxOut(changeAmount, changeScript))
	}

	packet, err := psbt.NewFromUnsignedTx(tx)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "creating psbt", err)
	}
	return packet, nil
}

// PrevOutputs maps each spent OutPoint to the TxOut it actually spends, as
// known from the UTXO set the coins were selected from.
type PrevOutputs map[wire.OutPoint]*wire.TxOut

// Update populates witness_utxo, redeem_script, bip32_derivation, and
// sighash_type for every input.
func (w *Watch) Update(packet *psbt.Packet, prevOuts PrevOutputs) error {
	accountPub, err := w.AccountPublicKey.ECPubKey()
	if err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "reading account public key", err)
	}
	pubKeyBytes := accountPub.SerializeCompressed()

	script, err := walletkey.ScriptPubKey(w.AccountPublicKey)
	if err != nil {
		return err
	}

	bip32Path := []uint32{
		hdkeychain.HardenedKeyStart,
		hdkeychain.HardenedKeyStart,
	}

	for i, txIn := range packet.UnsignedTx.TxIn {
		prevOut, ok := prevOuts[txIn.PreviousOutPoint]
		if !ok {
			return walleterrors.New(walleterrors.KindBadInput, "missing previous output for input "+txIn.PreviousOutPoint.String())
		}

		packet.Inputs[i].WitnessUtxo = prevOut
		packet.Inputs[i].RedeemScript = script
		packet.Inputs[i].SighashType = txscript.SigHashAll
		packet.Inputs[i].Bip32Derivation = []*psbt.Bip32Derivation{
			{
				PubKey:               pubKeyBytes,
				MasterKeyFingerprint: w.MasterFingerprint,
				Bip32Path:            bip32Path,
			},
		}
	}
	return nil
}

// Sign signs every input whose witness_utxo and derivation this key
// resolves under. A signing failure on any input aborts the whole
// session: no partial signature set survives.
func (c *Cold) Sign(packet *psbt.Packet) error {
	privKey, err := c.AccountPrivateKey.ECPrivKey()
	if err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "reading account private key", err)
	}
	pubKey, err := c.AccountPrivateKey.ECPubKey()
	if err != nil {
		return walleterrors.Wrap(walleterrors.KindStorageError, "reading account public key", err)
	}

	prevOuts := make(map[wire.OutPoint]*wire.TxOut, len(packet.Inputs))
	for i, in := range packet.Inputs {
		if in.WitnessUtxo != nil {
			prevOuts[packet.UnsignedTx.TxIn[i].PreviousOutPoint] = in.WitnessUtxo
		}
	}
	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)
	pubKeyBytes := pubKey.SerializeCompressed()
	sigs := make([]*psbt.PartialSig, len(packet.Inputs))

	for i, input := range packet.Inputs {
		ours := false
		for _, d := range input.Bip32Derivation {
			if bytes.Equal(d.PubKey, pubKeyBytes) {
				ours = true
				break
			}
		}
		if !ours {
			continue
		}
		if input.WitnessUtxo == nil {
			return walleterrors.New(walleterrors.KindBadInput, "input missing witness_utxo, cannot sign")
		}

		witness, err := txscript.WitnessSignature(
			packet.UnsignedTx, sigHashes, i,
			input.WitnessUtxo.Value,
			input.WitnessUtxo.PkScript,
			txscript.SigHashAll,
			privKey, true,
		)
		if err != nil {
			return walleterrors.Wrap(walleterrors.KindStorageError, "signing input", err)
		}

		sigs[i] = &psbt.PartialSig{PubKey: pubKeyBytes, Signature: witness[0]}
	}
	for i, sig := range sigs {
		if sig != nil {
			packet.Inputs[i].PartialSigs = append(packet.Inputs[i].PartialSigs, sig)
		}
	}
	return nil
}

// Finalize constructs the witness stack for every input and clears the
// now-superseded partial-signing metadata, per BIP-174 Finalizer rules.
func (w *Watch) Finalize(packet *psbt.Packet) error {
	for i := range packet.Inputs {
		if err := psbt.Finalize(packet, i); err != nil {
			return walleterrors.Wrap(walleterrors.KindStorageError, "finalizing input", err)
		}
	}
	return nil
}

// ExtractAndVerify extracts the raw transaction and runs full consensus
// verification against the known previous outputs. A verification
// failure here is fatal and never recovered: nothing is sent to the
// network until every input checks out.
func ExtractAndVerify(packet *psbt.Packet, prevOuts PrevOutputs) (*TxDetail, error) {
	tx, err := psbt.Extract(packet)
	if err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "extracting transaction", err)
	}

	fetcher := txscript.NewMultiPrevOutFetcher(prevOuts)
	for i, txIn := range tx.TxIn {
		prevOut, ok := prevOuts[txIn.PreviousOutPoint]
		if !ok {
			return nil, walleterrors.New(walleterrors.KindBadInput, "missing previous output during verification")
		}

		engine, err := txscript.NewEngine(
			prevOut.PkScript, tx, i,
			txscript.StandardVerifyFlags,
			nil, nil, prevOut.Value, fetcher,
		)
		if err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindStorageError, "building verification engine", err)
		}
		if err := engine.Execute(); err != nil {
			return nil, walleterrors.Wrap(walleterrors.KindStorageError, "consensus verification failed", err)
		}
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, walleterrors.Wrap(walleterrors.KindStorageError, "serializing transaction", err)
	}

	var inputTotal int64
	for _, txIn := range tx.TxIn {
		inputTotal += prevOuts[txIn.PreviousOutPoint].Value
	}
	var outputTotal int64
	for _, out := range tx.TxOut {
		outputTotal += out.Value
	}

	return &TxDetail{
		TxHex:     hex.EncodeToString(buf.Bytes()),
		TxID:      tx.TxHash().String(),
		FeeAmount: inputTotal - outputTotal,
	}, nil
}
