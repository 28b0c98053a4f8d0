package codes

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// Alphabet for invite codes. Uppercase letters and digits only so the code
// survives being read aloud or typed by a child.
const inviteCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateInviteCode returns a random invite code of the given length
func GenerateInviteCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid invite code length: %d", length)
	}
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		if err != nil {
			return "", err
		}
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code), nil
}

const idSuffixChars = "abcdefghijklmnopqrstuvwxyz0123456789"

// newID builds a prefixed id of the form "<prefix>_<unix-millis>_<rand6>",
// the id shape the mobile clients already store.
func newID(prefix string) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(idSuffixChars))))
		if err != nil {
			// crypto/rand failing means the platform is broken; an id built
			// from the clock alone is still unique enough to not lose writes
			suffix[i] = idSuffixChars[time.Now().UnixNano()%int64(len(idSuffixChars))]
			continue
		}
		suffix[i] = idSuffixChars[n.Int64()]
	}
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// NewRequestID returns an id for a child link request
func NewRequestID() string { return newID("req") }

// NewChildID returns an id for a child profile
func NewChildID() string { return newID("child") }

// NewVaultID returns an id for a parent vault item
func NewVaultID() string { return newID("vault") }
