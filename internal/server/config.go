package server

import (
	"sync"

	"gortc.io/ipsetd/internal/filter"
)

type config struct {
	lock    sync.RWMutex
	rule    *filter.List
	workers int
}

func newConfig(options Options) *config {
	return &config{
		rule:    options.Rule,
		workers: options.Workers,
	}
}

func (c *config) Workers() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.workers
}

func (c *config) Rule() *filter.List {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.rule
}

func (c *config) SetRule(r *filter.List) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.rule = r
}
