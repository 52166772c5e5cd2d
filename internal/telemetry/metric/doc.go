// Package metric holds the Prometheus instruments of the CLI.
//
// Every API call made through the request pipeline is counted by method
// and outcome kind and timed by method. The session collector reports
// whether a session is currently held. Instruments live on a private
// registry, so tests and multiple runtimes never collide; the shell's
// "metrics" command prints a snapshot of it.
package metric
