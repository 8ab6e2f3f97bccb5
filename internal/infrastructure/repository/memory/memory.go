// Package memory provides in-memory reference implementations of the
// persistence contracts. The CLI's offline mode and the composition
// tests run on these; they hold everything under one mutex per store
// and never touch the network.
package memory

import "sync"

type store struct {
	mu sync.RWMutex
}
