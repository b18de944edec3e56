// Package sim provides the tick-stepped simulation engine for queuesim.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - release.go: Release lifecycle (waiting → compiling → testing → done) state machine
//   - scheduler.go: the Scheduler interface and the serial/pipelined policies
//   - simulator.go: the driver that admits arriving changesets and advances the clock
//
// # Architecture
//
// The sim package defines the data model and the scheduler contract;
// collaborators live in sub-packages:
//   - sim/workload/: changeset sources (random generation, YAML/HCL workload files)
//   - sim/trace/: structured event recording for one run
//
// # Key Interfaces
//
//   - Source: changesets keyed by arrival tick (Draw, Empty)
//   - Scheduler: admission, tick processing, idle check, completed releases
//
// Both schedulers release strictly in admission order. The pipelined policy
// lets every queued release progress each tick and rebases each new changeset
// over everything queued ahead of it.
package sim
