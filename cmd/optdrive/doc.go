// Command optdrive is an adjust driver: it lets an external optimization
// backend describe and mutate the tunable parameters of a managed
// application without knowing their on-disk or command-line representation.
//
// Protocol I/O (requests, responses, heartbeats, error envelopes) uses
// stdin/stdout as line-oriented JSON; human diagnostics and logs go to
// stderr.
package main
