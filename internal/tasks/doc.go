// Package tasks runs the loop that mirrors Spotify playback into a profile bio.
//
// # Cycle
//
// A [Scheduler] repeats a fixed cycle until stopped:
//
//  1. Poll playback with [services.Player] (CyclePolls times)
//     - Format the state with the configured [Formatter]
//     - Write the bio only when the text differs from the last write
//     - Sleep Interval between polls
//  2. Refresh the access token with a [Refresher]
//     - Persist the new token through an optional [TokenSaver]
//
// The first poll always writes, so the bio is known after one iteration.
//
// # Failures
//
// A malformed playback payload is logged and skipped. A rejected access token triggers an early
// refresh followed by one retry of the poll. Every other failure of a poll, refresh, or write is
// retried once and then ends the loop.
//
// # Shutdown
//
// [Scheduler.Stop] is cooperative: the poll in flight completes and the pending sleep is cut
// short. Whether the loop ends by Stop, by cancellation, or by a fatal error, the idle text is
// written before [Scheduler.Run] returns.
//
// # Progress Reporting
//
// [Update] values are sent on an optional channel with select/default, so they never block the loop.
package tasks
