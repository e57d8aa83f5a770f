package crypto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateNumericCode_LengthAndCharset(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := GenerateNumericCode(length)
		assert.NoError(t, err)
		assert.Len(t, code, length)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "unexpected character %q in code %q", r, code)
		}
	}
}

func TestGenerateNumericCode_DefaultsLength(t *testing.T) {
	code, err := GenerateNumericCode(0)
	assert.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)

	code, err = GenerateNumericCode(-3)
	assert.NoError(t, err)
	assert.Len(t, code, DefaultCodeLength)
}

func TestGenerateNumericCode_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := GenerateNumericCode(6)
		assert.NoError(t, err)
		seen[code] = true
	}
	// 20 identical 6-digit draws would mean the generator is broken
	assert.Greater(t, len(seen), 1)
}

func TestHashAndCheckCode(t *testing.T) {
	hash, err := HashCode("123456")
	assert.NoError(t, err)
	assert.NotEqual(t, "123456", hash)

	assert.True(t, CheckCode("123456", hash))
	assert.False(t, CheckCode("654321", hash))
	assert.False(t, CheckCode("123456", "not-a-bcrypt-hash"))
}

func TestHashCode_GenerateError(t *testing.T) {
	orig := bcryptGenerateFromPassword
	defer func() { bcryptGenerateFromPassword = orig }()

	bcryptGenerateFromPassword = func(password []byte, cost int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	_, err := HashCode("123456")
	assert.Error(t, err)
}
