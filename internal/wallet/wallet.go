// Package wallet loads and resolves Solana signing keypairs. Key material
// protection (encryption scheme and parameters) belongs to the operator's
// key store; this package only surfaces its failure modes unchanged as
// LOAD_WALLET_ERROR.
package wallet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/MoonshotMechanics/gateway/internal/gwerr"
)

// Wallet holds one Solana keypair.
type Wallet struct {
	Name       string
	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// New builds a wallet from a base58-encoded 64-byte private key.
func New(name, privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Wallet{
		Name:       name,
		PrivateKey: privateKey,
		PublicKey:  privateKey.PublicKey(),
	}, nil
}

// SignTransaction signs every signature slot owned by this wallet's key.
func (w *Wallet) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey) {
			return &w.PrivateKey
		}
		return nil
	})
	return err
}

func (w *Wallet) String() string {
	return w.PublicKey.String()
}

// Resolver maps wallet addresses (and operator-given names) to loaded
// keypairs.
type Resolver struct {
	byAddress map[string]*Wallet
	byName    map[string]*Wallet
}

// LoadResolver reads a CSV key file with [Name, PrivateKeyBase58] columns.
// Any defect in the file (missing, unreadable, malformed rows only)
// surfaces as a LOAD_WALLET_ERROR so callers cannot mistake a key-store
// problem for a market condition.
func LoadResolver(path string) (*Resolver, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, gwerr.LoadWallet(err, path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, gwerr.LoadWallet(err, path)
	}
	if len(records) < 2 {
		return nil, gwerr.LoadWallet(errors.New("key file is empty or missing data rows"), path)
	}

	r := &Resolver{
		byAddress: make(map[string]*Wallet),
		byName:    make(map[string]*Wallet),
	}
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		w, err := New(record[0], record[1])
		if err != nil {
			return nil, gwerr.LoadWallet(err, record[0])
		}
		r.byAddress[w.PublicKey.String()] = w
		r.byName[w.Name] = w
	}
	if len(r.byAddress) == 0 {
		return nil, gwerr.LoadWallet(errors.New("no usable keypairs in key file"), path)
	}

	return r, nil
}

// GetWallet resolves an address or operator name to its keypair.
func (r *Resolver) GetWallet(addressOrName string) (*Wallet, error) {
	if w, ok := r.byAddress[addressOrName]; ok {
		return w, nil
	}
	if w, ok := r.byName[addressOrName]; ok {
		return w, nil
	}
	return nil, gwerr.LoadWallet(errors.New("no keypair for address"), addressOrName)
}
