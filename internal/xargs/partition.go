// SPDX-License-Identifier: MPL-2.0

package xargs

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unicode/utf16"
)

// minArgsPerBatch keeps concurrency from producing tiny batches.
const minArgsPerBatch = 4

// ErrArgumentTooLong is the sentinel for ArgumentTooLongError.
var ErrArgumentTooLong = errors.New("argument too long")

// ArgumentTooLongError is returned when a single file argument cannot fit
// under the length ceiling even in a batch of its own.
type ArgumentTooLongError struct {
	Arg       string
	MaxLength int
}

func (e *ArgumentTooLongError) Error() string {
	return fmt.Sprintf("command line too long: %q does not fit in %d characters", e.Arg, e.MaxLength)
}

func (e *ArgumentTooLongError) Unwrap() error { return ErrArgumentTooLong }

// CommandLength returns the serialized length of an argument vector: the
// space-joined arguments measured in bytes (UTF-16 code units on Windows).
func CommandLength(cmd ...string) int {
	full := strings.Join(cmd, " ")
	if runtime.GOOS == "windows" {
		return len(utf16.Encode([]rune(full)))
	}
	return len(full)
}

// Partition splits fileArgs into ordered batches so that cmd followed by any
// batch stays within maxLength. Each batch also holds at most
// max(4, ceil(len(fileArgs)/concurrency)) arguments so work can spread across
// workers. An empty fileArgs yields one empty batch.
func Partition(cmd, fileArgs []string, concurrency, maxLength int) ([][]string, error) {
	concurrency = max(concurrency, 1)
	maxArgs := max(minArgsPerBatch, (len(fileArgs)+concurrency-1)/concurrency)
	prefixLength := CommandLength(cmd...) + 1

	var (
		batches [][]string
		current []string
	)
	total := prefixLength
	for i := 0; i < len(fileArgs); {
		arg := fileArgs[i]
		argLength := CommandLength(arg) + 1
		switch {
		case total+argLength <= maxLength && len(current) < maxArgs:
			current = append(current, arg)
			total += argLength
			i++
		case len(current) == 0:
			return nil, &ArgumentTooLongError{Arg: arg, MaxLength: maxLength}
		default:
			batches = append(batches, current)
			current = nil
			total = prefixLength
		}
	}
	return append(batches, current), nil
}
