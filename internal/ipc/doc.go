// Package ipc exposes a running dbglog host over JSON-RPC on a Unix socket
// and ships the matching client used by the CLI.
//
// The wire types here are the protocol: category toggles and reports,
// spatial recording control, remote event emission and host status. The
// server depends only on the Backend interface so the host can be swapped
// for a fake in tests.
package ipc
