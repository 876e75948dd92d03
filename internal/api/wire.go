//go:build wireinject

package api

import (
	"testing"

	"github.com/google/wire"
	"github/chapool/go-hwkeyring/internal/config"
	"github/chapool/go-hwkeyring/internal/metrics"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	metrics.New,
	NewClock,
	NewBridge,
	NewStore,
	NewProtocolClient,
	NewKeyring,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NoTest)
	return new(Server), nil
}

// InitNewServerWithTest returns a new Server instance driven by a mock clock when t is given.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithTest(
	_ config.Server,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
