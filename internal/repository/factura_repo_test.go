package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiguienteNumero(t *testing.T) {
	prefix := "FAC-20260901"
	s := func(v string) *string { return &v }

	// Empty day starts the counter.
	assert.Equal(t, "FAC-20260901-0001", siguienteNumero(prefix, nil))

	// Normal increments keep the zero-padded width.
	assert.Equal(t, "FAC-20260901-0002", siguienteNumero(prefix, s("FAC-20260901-0001")))
	assert.Equal(t, "FAC-20260901-0010", siguienteNumero(prefix, s("FAC-20260901-0009")))
	assert.Equal(t, "FAC-20260901-1000", siguienteNumero(prefix, s("FAC-20260901-0999")))

	// Past 9999 the suffix widens instead of wrapping.
	assert.Equal(t, "FAC-20260901-10000", siguienteNumero(prefix, s("FAC-20260901-9999")))

	// A timestamp fallback number that sorted last does not match the
	// pattern: the counter restarts and the unique index on numero catches
	// any real collision.
	assert.Equal(t, "FAC-20260901-0001", siguienteNumero(prefix, s("FAC-1756700000000")))
	assert.Equal(t, "FAC-20260901-0001", siguienteNumero(prefix, s("FAC-20260901-abcd")))
}
