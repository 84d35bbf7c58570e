// Copyright (c) 2026 Arxsub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package submission

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/arxsub/internal/platform/config"
)

// BackendDeps carries what any backend factory may need. Backends ignore the
// fields they do not use.
type BackendDeps struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// BackendFactory builds a [Repository].
type BackendFactory func(deps BackendDeps) (Repository, error)

// Backends maps configuration names to storage factories.
var Backends = map[string]BackendFactory{
	config.BackendPostgres: func(deps BackendDeps) (Repository, error) {
		if deps.Pool == nil {
			return nil, fmt.Errorf("submission: the %s backend needs a connection pool", config.BackendPostgres)
		}
		return NewPostgresRepository(deps.Pool, deps.Logger), nil
	},
	config.BackendMemory: func(BackendDeps) (Repository, error) {
		return NewMemoryRepository(), nil
	},
}

// OpenBackend resolves name in [Backends].
func OpenBackend(name string, deps BackendDeps) (Repository, error) {
	factory, ok := Backends[name]
	if !ok {
		known := make([]string, 0, len(Backends))
		for key := range Backends {
			known = append(known, key)
		}
		slices.Sort(known)
		return nil, fmt.Errorf("submission: unknown backend %q (known: %s)", name, strings.Join(known, ", "))
	}
	return factory(deps)
}
