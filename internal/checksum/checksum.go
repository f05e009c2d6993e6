// Package checksum implements the streaming digest pipeline and sidecar
// verification described in spec.md sections 4.3 (VERIFY) and 4.5.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"encoding/hex"
	"hash"
)

// Digester computes SHA-1 and MD5 over every byte written to it, so a
// single streaming pass through a response body can be checked against
// whichever sidecar digest the remote happens to publish.
type Digester struct {
	sha1 hash.Hash
	md5  hash.Hash
}

// NewDigester returns a digester ready to receive bytes.
func NewDigester() *Digester {
	return &Digester{sha1: sha1.New(), md5: md5.New()}
}

// Write feeds bytes into both digesters. Implements io.Writer so a
// Digester can be used as an io.MultiWriter target alongside the partial
// file and any progress sink.
func (d *Digester) Write(p []byte) (int, error) {
	d.sha1.Write(p)
	d.md5.Write(p)
	return len(p), nil
}

// SHA1Hex returns the lowercase hex SHA-1 digest of everything written so far.
func (d *Digester) SHA1Hex() string { return hex.EncodeToString(d.sha1.Sum(nil)) }

// MD5Hex returns the lowercase hex MD5 digest of everything written so far.
func (d *Digester) MD5Hex() string { return hex.EncodeToString(d.md5.Sum(nil)) }
