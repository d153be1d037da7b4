package keys

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/venuemint/venuemint/pkg/types"
)

// identityFile is the on-disk JSON format for an encrypted identity.
type identityFile struct {
	Version       int       `json:"version"`
	CreatedAt     time.Time `json:"created_at"`
	EncryptedSeed []byte    `json:"encrypted_seed"`
	Address       string    `json:"address"`
	Account       uint32    `json:"account"` // BIP-44 account index.
}

// Identity is the public metadata of a stored identity.
type Identity struct {
	Name      string
	Address   types.Address
	Account   uint32
	CreatedAt time.Time
}

// Keystore manages encrypted identity files in a directory.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore rooted at the given directory,
// creating it if needed.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) identityPath(name string) string {
	return filepath.Join(ks.path, name+".key")
}

// Create encrypts a seed under password and stores it as a named identity.
// The address is derived at m/44'/7155'/account'/0/0 and recorded in the
// file so listing does not require the password.
func (ks *Keystore) Create(name string, seed, password []byte, account uint32, params EncryptionParams) (*Identity, error) {
	path := ks.identityPath(name)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("identity %q already exists", name)
	}

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	key, err := master.DeriveIdentity(account)
	if err != nil {
		return nil, err
	}
	addr := key.Address()

	encrypted, err := Encrypt(seed, password, params)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed: %w", err)
	}

	f := identityFile{
		Version:       1,
		CreatedAt:     time.Now().UTC(),
		EncryptedSeed: encrypted,
		Address:       addr.String(),
		Account:       account,
	}
	if err := ks.writeFile(path, &f); err != nil {
		return nil, err
	}
	return &Identity{Name: name, Address: addr, Account: account, CreatedAt: f.CreatedAt}, nil
}

// Load decrypts an identity and returns its derived key.
func (ks *Keystore) Load(name string, password []byte) (*HDKey, error) {
	f, err := ks.readFile(ks.identityPath(name))
	if err != nil {
		return nil, err
	}

	seed, err := Decrypt(f.EncryptedSeed, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt identity: %w", err)
	}
	defer zeroBytes(seed)

	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	return master.DeriveIdentity(f.Account)
}

// Get returns the public metadata of a named identity.
func (ks *Keystore) Get(name string) (*Identity, error) {
	f, err := ks.readFile(ks.identityPath(name))
	if err != nil {
		return nil, err
	}
	addr, err := types.ParseAddress(f.Address)
	if err != nil {
		return nil, fmt.Errorf("identity %q has bad address: %w", name, err)
	}
	return &Identity{Name: name, Address: addr, Account: f.Account, CreatedAt: f.CreatedAt}, nil
}

// List returns the metadata of all stored identities.
func (ks *Keystore) List() ([]Identity, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}

	var ids []Identity
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := filepath.Ext(name)
		if ext != ".key" {
			continue
		}
		id, err := ks.Get(name[:len(name)-len(ext)])
		if err != nil {
			continue // Skip unreadable files.
		}
		ids = append(ids, *id)
	}
	return ids, nil
}

// Delete removes an identity file.
func (ks *Keystore) Delete(name string) error {
	path := ks.identityPath(name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("identity %q not found", name)
	}
	return os.Remove(path)
}

func (ks *Keystore) writeFile(path string, f *identityFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

func (ks *Keystore) readFile(path string) (*identityFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read identity: %w", err)
	}
	var f identityFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse identity: %w", err)
	}
	if f.Version != 1 {
		return nil, fmt.Errorf("unsupported identity version: %d", f.Version)
	}
	return &f, nil
}
