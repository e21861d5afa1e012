package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MoonshotMechanics/gateway/internal/gwerr"
)

func newKeyBase58(t *testing.T) (string, solana.PublicKey) {
	t.Helper()
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	return key.String(), key.PublicKey()
}

func writeKeyFile(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallets.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,PrivateKeyBase58\n"+rows), 0o600))
	return path
}

func TestNewRejectsMalformedKeys(t *testing.T) {
	_, err := New("bad", "not-base58-!!!")
	assert.Error(t, err)

	_, err = New("short", "3QJmV3qfvL9SuYo3") // valid base58, wrong length
	assert.Error(t, err)
}

func TestLoadResolverAndGetWallet(t *testing.T) {
	keyB58, pub := newKeyBase58(t)
	path := writeKeyFile(t, "trader,"+keyB58+"\n")

	resolver, err := LoadResolver(path)
	require.NoError(t, err)

	byAddr, err := resolver.GetWallet(pub.String())
	require.NoError(t, err)
	assert.Equal(t, pub, byAddr.PublicKey)

	byName, err := resolver.GetWallet("trader")
	require.NoError(t, err)
	assert.Equal(t, byAddr, byName)
}

func TestGetWalletUnknownAddress(t *testing.T) {
	keyB58, _ := newKeyBase58(t)
	resolver, err := LoadResolver(writeKeyFile(t, "trader,"+keyB58+"\n"))
	require.NoError(t, err)

	_, err = resolver.GetWallet("missing")
	require.Error(t, err)
	assert.True(t, gwerr.Is(err, gwerr.CodeLoadWallet))
}

func TestLoadResolverMissingFile(t *testing.T) {
	_, err := LoadResolver(filepath.Join(t.TempDir(), "absent.csv"))
	require.Error(t, err)
	assert.True(t, gwerr.Is(err, gwerr.CodeLoadWallet))
}

func TestLoadResolverCorruptKeyFails(t *testing.T) {
	_, err := LoadResolver(writeKeyFile(t, "trader,garbage-key\n"))
	require.Error(t, err)
	assert.True(t, gwerr.Is(err, gwerr.CodeLoadWallet))
}

func TestSignTransaction(t *testing.T) {
	keyB58, pub := newKeyBase58(t)
	w, err := New("trader", keyB58)
	require.NoError(t, err)

	recent := solana.Hash{7}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.SystemProgramID,
			[]*solana.AccountMeta{{PublicKey: pub, IsSigner: true, IsWritable: true}},
			[]byte{0},
		)},
		recent,
		solana.TransactionPayer(pub),
	)
	require.NoError(t, err)

	require.NoError(t, w.SignTransaction(tx))
	assert.Len(t, tx.Signatures, 1)
	assert.NoError(t, tx.VerifySignatures())
}
