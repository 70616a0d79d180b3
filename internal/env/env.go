package env

import (
	"errors"
	"os"
	"strings"

	"golang.org/x/xerrors"
)

// ErrEmptyValue is returned when a variable is explicitly set to the
// empty string. Git treats an explicitly-empty GIT_DIR/GIT_OBJECT_DIRECTORY
// as a configuration error rather than as "unset".
var ErrEmptyValue = errors.New("environment variable is set to an empty value")

// Env represents the environment
type Env struct {
	env map[string]string
}

// NewFromOs builds and returns an Env using os.Environ
func NewFromOs() *Env {
	return NewFromKVList(os.Environ())
}

// NewFromKVList builds and returns an Env using a provided list of
// string in the form "key=value"
func NewFromKVList(env []string) *Env {
	e := &Env{
		make(map[string]string, len(env)),
	}
	for _, kv := range env {
		data := strings.SplitN(kv, "=", 2)
		if len(data) != 2 {
			continue
		}
		e.env[data[0]] = data[1]
	}
	return e
}

// Has returns whether the given key has a value set.
// Has is case-sensitive.
func (e *Env) Has(key string) bool {
	_, ok := e.env[key]
	return ok
}

// Get returns the value of the given key, or an empty string if the key
// has no values set.
// Get is case-sensitive.
func (e *Env) Get(key string) string {
	return e.env[key]
}

// GetNonEmpty returns the value of the given key. It returns ("", nil) if
// the key is unset, and (value, nil) if the key is set to a non-empty
// value. If the key is explicitly set to the empty string, it returns
// ("", ErrEmptyValue).
func (e *Env) GetNonEmpty(key string) (string, error) {
	v, ok := e.env[key]
	if !ok {
		return "", nil
	}
	if v == "" {
		return "", xerrors.Errorf("%s: %w", key, ErrEmptyValue)
	}
	return v, nil
}
