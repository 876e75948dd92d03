package simulator

import (
	"crypto/sha512"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// seedStore holds the device's BIP39 seed and wipes it on Clear.
type seedStore struct {
	mu   sync.RWMutex
	seed []byte
}

// load derives the seed from a mnemonic: PBKDF2(mnemonic, "mnemonic"+password, 2048, 64, SHA512).
func (s *seedStore) load(mnemonic string, password string) {
	const (
		pbkdf2Iterations = 2048
		pbkdf2KeyLength  = 64
	)

	seed := pbkdf2.Key([]byte(mnemonic), []byte("mnemonic"+password), pbkdf2Iterations, pbkdf2KeyLength, sha512.New)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.wipe()
	s.seed = seed
}

// get returns a copy; nil once cleared.
func (s *seedStore) get() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.seed == nil {
		return nil
	}

	cpy := make([]byte, len(s.seed))
	copy(cpy, s.seed)

	return cpy
}

func (s *seedStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.wipe()
}

func (s *seedStore) wipe() {
	for i := range s.seed {
		s.seed[i] = 0
	}
	s.seed = nil
}
