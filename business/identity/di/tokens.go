// Package di contains dependency injection tokens for the identity context.
package di

import (
	"github.com/fd1az/arbitrage-scanner/business/identity/app"
	"github.com/fd1az/arbitrage-scanner/business/identity/infra/postgres"
	"github.com/fd1az/arbitrage-scanner/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Resolver = di.NewToken[*app.Resolver]("identity.Resolver")
)

// Private dependency tokens - internal to identity module
var (
	Lookup   = di.NewToken[*app.LookupStrategy]("identity:lookup")
	Registry = di.NewToken[*postgres.Registry]("identity:registry")
)

// Helper functions for type-safe access
func GetResolver(c di.ServiceRegistry) *app.Resolver {
	return di.GetToken(c, Resolver)
}

// GetLookup returns nil when external lookups are disabled.
func GetLookup(c di.ServiceRegistry) *app.LookupStrategy {
	return di.GetToken(c, Lookup)
}

// GetRegistry returns nil when postgres is disabled.
func GetRegistry(c di.ServiceRegistry) *postgres.Registry {
	return di.GetToken(c, Registry)
}
