package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	k, err := DeriveKey("")
	require.NoError(t, err)
	assert.Nil(t, k)

	a, err := DeriveKey("secret")
	require.NoError(t, err)
	b, err := DeriveKey("secret")
	require.NoError(t, err)
	c, err := DeriveKey("other")
	require.NoError(t, err)

	assert.Equal(t, *a, *b)
	assert.NotEqual(t, *a, *c)
}

func TestSealOpen(t *testing.T) {
	key, err := DeriveKey("secret")
	require.NoError(t, err)
	wrong, err := DeriveKey("nope")
	require.NoError(t, err)

	sealed, err := Seal([]byte(`{"type":"STATUS"}`), key)
	require.NoError(t, err)

	plain, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"STATUS"}`, string(plain))

	_, err = Open(sealed, wrong)
	assert.ErrorIs(t, err, ErrDecrypt)

	_, err = Open(sealed[:10], key)
	assert.ErrorIs(t, err, ErrDecrypt)
}
