// Command dbglog runs the dbglog host and talks to it over its control
// socket.
//
// `dbglog serve` owns the category registry and every sink; the remaining
// commands connect to it to toggle categories, arm the spatial recorder or
// emit events. `emit --local`, `messages` and `config` work without a host.
package main
