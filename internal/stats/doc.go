// Package stats tallies passenger outcomes outside the process transcript.
//
// Recorders receive one Outcome per settled passenger. MemoryRecorder is
// for tests and single runs; RedisRecorder accumulates across runs.
package stats
