package util

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kat-co/vala"
)

// IsHexAddress is a vala checker for 0x-prefixed or bare 20 byte hex addresses.
func IsHexAddress(param string, paramName string) vala.Checker {
	return func() (bool, string) {
		if common.IsHexAddress(param) {
			return true, ""
		}

		return false, fmt.Sprintf("parameter %s is not a hex address: %q", paramName, param)
	}
}

// OneOf is a vala checker for enumerations.
func OneOf(param string, paramName string, allowed ...string) vala.Checker {
	return func() (bool, string) {
		for _, a := range allowed {
			if param == a {
				return true, ""
			}
		}

		return false, fmt.Sprintf("parameter %s must be one of %v, got %q", paramName, allowed, param)
	}
}

// AtMost is a vala checker for an inclusive upper bound.
func AtMost(param int, limit int, paramName string) vala.Checker {
	return func() (bool, string) {
		if param <= limit {
			return true, ""
		}

		return false, fmt.Sprintf("parameter %s must be at most %d, got %d", paramName, limit, param)
	}
}
