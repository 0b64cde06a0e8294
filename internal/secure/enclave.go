// Package secure keeps passwords encrypted in memory between the moment
// they are read (environment, Key Vault) and the moment they are written
// into a connection string. Call memguard.Purge() in a defer at the top of
// main for final cleanup.
package secure

import (
	"github.com/awnumar/memguard"
)

// Enclave holds one secret, encrypted at rest in process memory.
type Enclave struct {
	inner *memguard.Enclave
}

// FromString seals a secret string. The caller's copy of the string is
// unaffected; prefer passing values straight from their source.
func FromString(value string) *Enclave {
	return &Enclave{inner: memguard.NewEnclave([]byte(value))}
}

// FromBytes seals a secret byte slice. The input slice is wiped by memguard.
func FromBytes(value []byte) *Enclave {
	return &Enclave{inner: memguard.NewEnclave(value)}
}

// WithString decrypts the secret into a locked buffer, invokes fn with a
// copy of the plaintext, and wipes the buffer before returning. The copy is
// ordinary Go memory and stays valid after fn returns; keep its lifetime
// short. buf.String() would alias the locked buffer and dangle once it is
// destroyed.
func (e *Enclave) WithString(fn func(secret string) error) error {
	buf, err := e.inner.Open()
	if err != nil {
		return err
	}
	defer buf.Destroy()
	return fn(string(buf.Bytes()))
}
