// internal/domain/upgrade/repository.go
package upgrade

import "context"

// Catalog is the read contract the resolver and aggregator consume.
// Definition returns both active and inactive definitions; purchase paths
// must check Active themselves.
type Catalog interface {
	Definition(ctx context.Context, code string) (*Definition, error)
	ListActiveDefinitions(ctx context.Context) ([]*Definition, error)
}
