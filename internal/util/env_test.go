package util_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github/chapool/go-hwkeyring/internal/util"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("KEYRING_TEST_STRING", "prokey")
	assert.Equal(t, "prokey", util.GetEnv("KEYRING_TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", util.GetEnv("KEYRING_TEST_UNSET", "fallback"))
}

func TestGetEnvAsNumbers(t *testing.T) {
	t.Setenv("KEYRING_TEST_INT", "42")
	t.Setenv("KEYRING_TEST_BAD_INT", "forty-two")
	t.Setenv("KEYRING_TEST_UINT", "1000")

	assert.Equal(t, 42, util.GetEnvAsInt("KEYRING_TEST_INT", 1))
	assert.Equal(t, 1, util.GetEnvAsInt("KEYRING_TEST_BAD_INT", 1))
	assert.Equal(t, uint32(1000), util.GetEnvAsUint32("KEYRING_TEST_UINT", 5))
	assert.Equal(t, uint32(5), util.GetEnvAsUint32("KEYRING_TEST_BAD_INT", 5))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("KEYRING_TEST_BOOL", "true")
	assert.True(t, util.GetEnvAsBool("KEYRING_TEST_BOOL", false))
	assert.False(t, util.GetEnvAsBool("KEYRING_TEST_UNSET", false))
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("KEYRING_TEST_DURATION", "1500ms")
	t.Setenv("KEYRING_TEST_BAD_DURATION", "soon")

	assert.Equal(t, 1500*time.Millisecond, util.GetEnvAsDuration("KEYRING_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, util.GetEnvAsDuration("KEYRING_TEST_BAD_DURATION", time.Second))
	assert.Equal(t, time.Second, util.GetEnvAsDuration("KEYRING_TEST_UNSET", time.Second))
}

func TestGetEnvAsStringArr(t *testing.T) {
	t.Setenv("KEYRING_TEST_ARR", "http://localhost:4200, https://link.prokey.io,,")
	assert.Equal(t, []string{"http://localhost:4200", "https://link.prokey.io"}, util.GetEnvAsStringArr("KEYRING_TEST_ARR", nil))

	t.Setenv("KEYRING_TEST_ARR_SEP", "a|b")
	assert.Equal(t, []string{"a", "b"}, util.GetEnvAsStringArr("KEYRING_TEST_ARR_SEP", nil, "|"))
	assert.Equal(t, []string{"x"}, util.GetEnvAsStringArr("KEYRING_TEST_UNSET", []string{"x"}))
}
