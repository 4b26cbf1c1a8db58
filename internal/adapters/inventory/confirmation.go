package inventory

import (
	"hash/fnv"
	"math/rand/v2"
	"strings"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// confirmationCode returns n random characters from codeAlphabet.
func confirmationCode(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// queryHash folds parts case-insensitively into a stable 64-bit key.
func queryHash(parts ...string) uint64 {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// seededRand returns a generator that always yields the same sequence for the same parts.
func seededRand(parts ...string) *rand.Rand {
	return randFromSeed(queryHash(parts...))
}

func randFromSeed(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed>>1|1))
}
