package ports

import "github.com/aalvaropc/stockyard/internal/domain"

type WorkspaceInitializer interface {
	Init(spec domain.WorkspaceSpec, force bool) error
}
