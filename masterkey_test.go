package passcheck

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/passverify/passcheck/internal/crypto"
)

func TestParseMasterKey(t *testing.T) {
	t.Run("symmetric", func(t *testing.T) {
		mk, err := ParseMasterKey(crypto.ToBase64(testSecret) + "\n")
		require.NoError(t, err)
		assert.IsType(t, &crypto.SymmetricMasterKey{}, mk)
	})

	t.Run("kem", func(t *testing.T) {
		kp, err := crypto.GenerateKeypair()
		require.NoError(t, err)

		mk, err := ParseMasterKey(crypto.ToBase64URL(kp.SecretKey))
		require.NoError(t, err)
		assert.IsType(t, &crypto.KEMMasterKey{}, mk)
	})

	t.Run("too short", func(t *testing.T) {
		mk, err := ParseMasterKey(crypto.ToBase64([]byte("short")))
		assert.ErrorIs(t, err, crypto.ErrInvalidKeySize)
		assert.Nil(t, mk)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := ParseMasterKey("!!!")
		assert.Error(t, err)
	})
}

func TestLoadMasterKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "master.key")
	require.NoError(t, os.WriteFile(path, []byte(crypto.ToBase64(testSecret)), 0o600))

	mk, err := LoadMasterKey(path)
	require.NoError(t, err)

	wrap, err := SymmetricWrapper(testSecret)
	require.NoError(t, err)
	sessionKey := bytes.Repeat([]byte{7}, crypto.SessionKeySize)
	wrapped, err := wrap(sessionKey)
	require.NoError(t, err)

	got, err := mk.UnwrapKey(wrapped)
	require.NoError(t, err)
	assert.Equal(t, sessionKey, got)

	_, err = LoadMasterKey(filepath.Join(dir, "missing.key"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStamp_Seal(t *testing.T) {
	wrap, err := SymmetricWrapper(testSecret)
	require.NoError(t, err)

	s := validStamp([]byte("zip"))
	entries, err := s.Seal(wrap)
	require.NoError(t, err)

	for _, key := range []string{
		KeyChecksum, KeyDate, KeyVersion, KeyDueDate,
		KeyAuthor, KeySessionKey, KeyApplicationName, KeySubmissionDate,
	} {
		v, ok := entries[key]
		require.True(t, ok, key)
		_, err := crypto.DecodeText(v)
		assert.NoError(t, err, key)
	}

	s.SubmissionDate = time.Time{}
	entries, err = s.Seal(wrap)
	require.NoError(t, err)
	assert.NotContains(t, entries, KeySubmissionDate)
	assert.Len(t, entries, 7)
}

func TestAttachmentChecksum(t *testing.T) {
	// SHA-256 of the empty string.
	assert.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", AttachmentChecksum(nil))
}
