// SPDX-License-Identifier: MPL-2.0

package xargs

import (
	"os"
	"sync"
)

const (
	// fallbackMaxLength is assumed when the platform cannot be queried.
	fallbackMaxLength = 1 << 12
	// capMaxLength bounds the unix ceiling; larger values gain nothing.
	capMaxLength = 1 << 17
	// headroom is kept free for the kernel's own bookkeeping.
	headroom = 2048
)

// DefaultMaxLength returns the platform's command-length ceiling, computed once.
var DefaultMaxLength = sync.OnceValue(platformMaxLength)

// environSize is the space the current environment occupies in the exec block.
func environSize() int {
	size := 0
	for _, kv := range os.Environ() {
		// key=value plus the terminating NUL
		size += len(kv) + 1
	}
	return size
}
