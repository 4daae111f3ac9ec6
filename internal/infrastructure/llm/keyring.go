package llm

import "errors"

// ErrKeysExhausted signals that every configured credential has failed.
// Callers treat it as fatal for the run.
var ErrKeysExhausted = errors.New("all API keys exhausted")

// KeyRing holds an ordered list of credentials and the index of the one in
// use. Rotation is strictly forward; there is no wrap-around.
type KeyRing struct {
	keys  []string
	index int
}

// NewKeyRing builds a ring from the ordered credential list.
func NewKeyRing(keys []string) (*KeyRing, error) {
	if len(keys) == 0 {
		return nil, errors.New("key ring requires at least one key")
	}
	return &KeyRing{keys: keys}, nil
}

// Current returns the credential in use.
func (k *KeyRing) Current() string {
	return k.keys[k.index]
}

// Advance moves to the next credential, or returns ErrKeysExhausted when
// none remain. The index never moves past the last key.
func (k *KeyRing) Advance() error {
	if k.index+1 >= len(k.keys) {
		return ErrKeysExhausted
	}
	k.index++
	return nil
}

// Index reports the zero-based position of the credential in use.
func (k *KeyRing) Index() int {
	return k.index
}
