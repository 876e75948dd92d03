package util_test

import (
	"testing"

	"github.com/kat-co/vala"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-hwkeyring/internal/util"
)

func TestValidationCheckers(t *testing.T) {
	err := vala.BeginValidation().Validate(
		util.IsHexAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94", "address"),
		util.OneOf("next", "direction", "first", "next"),
		util.AtMost(10, 10, "count"),
	).Check()
	require.NoError(t, err)

	err = vala.BeginValidation().Validate(
		util.IsHexAddress("0x1234", "address"),
		util.OneOf("sideways", "direction", "first", "next"),
		util.AtMost(11, 10, "count"),
	).Check()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address")
	assert.Contains(t, err.Error(), "direction")
	assert.Contains(t, err.Error(), "count")
}
