package wxwork

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"strconv"
)

// Auth identifies an enterprise (corp id), an application secret and the
// application's agent id. All three are required to send.
type Auth struct {
	CorpID string
	Secret string
	// AgentID is the application id; zero means unset.
	AgentID int
}

// Merge returns a copy of a with every non-zero field of o applied.
func (a Auth) Merge(o Auth) Auth {
	if o.CorpID != "" {
		a.CorpID = o.CorpID
	}
	if o.Secret != "" {
		a.Secret = o.Secret
	}
	if o.AgentID != 0 {
		a.AgentID = o.AgentID
	}
	return a
}

// Validate reports the first missing field as ErrConfig.
func (a Auth) Validate() error {
	switch {
	case a.CorpID == "":
		return configError("corp id is required")
	case a.Secret == "":
		return configError("secret is required")
	case a.AgentID <= 0:
		return configError("agent id is required")
	}
	return nil
}

// String masks the secret.
func (a Auth) String() string {
	secret := ""
	if a.Secret != "" {
		secret = "*****"
	}
	return "{CorpID:" + a.CorpID + " Secret:" + secret + " AgentID:" + strconv.Itoa(a.AgentID) + "}"
}

// CacheKey derives the credential cache key for a. Equal triples share a
// key; a difference in any field yields a different key. The key is a
// digest so the secret is never stored in clear text as a map key.
func CacheKey(a Auth) string {
	h := sha256.New()
	writeField(h, a.CorpID)
	writeField(h, a.Secret)
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], uint64(int64(a.AgentID)))
	h.Write(id[:])
	return "wxwork:token:" + hex.EncodeToString(h.Sum(nil))
}

// writeField length-prefixes s so that ("ab","c") and ("a","bc") differ.
func writeField(h hash.Hash, s string) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(s)))
	h.Write(n[:])
	h.Write([]byte(s))
}
