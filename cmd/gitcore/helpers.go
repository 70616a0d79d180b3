package main

import (
	"github.com/hollowtree/gitcore/repository"
	"github.com/spf13/afero"
)

// loadRepository discovers and opens the repository containing (or
// overridden by) cfg.C.
func loadRepository(cfg *globalFlags) (*repository.Repository, error) {
	return repository.Open(afero.NewOsFs(), cfg.C)
}
