// Usage:
//
//	delivtrack login -u demo
//	delivtrack clients list --all -o json
//	delivtrack logs create --client-id 1 --driver-id 2 ...
//	delivtrack                       # interactive shell
//
// The session is kept in ~/.delivtrack/session between runs.
package main
