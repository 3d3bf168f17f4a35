// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of a hook run:
//   - argument partitioning
//   - configuration loading (CUE validation and viper decoding)
//   - image tag derivation
//   - end-to-end system hook execution
//
// To generate a profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
