package modkit

import (
	"equilex/internal/platform/config"
	"equilex/internal/platform/logger"
	"equilex/internal/platform/store"
)

// Deps carries the shared infrastructure a module may need.
// Modules take what they use and ignore the rest
type Deps struct {
	Log *logger.Logger
	Cfg config.Conf
	PG  store.TxRunner
}
