package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// CardHash fingerprints a question/answer pair. The NUL separator keeps
// ("ab", "c") and ("a", "bc") apart.
func CardHash(question, answer string) string {
	hasher := sha256.New()
	hasher.Write([]byte(question))
	hasher.Write([]byte{0})
	hasher.Write([]byte(answer))
	return hex.EncodeToString(hasher.Sum(nil))
}
