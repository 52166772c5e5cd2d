// Package confloader layers configuration sources with koanf.
//
// Priority (highest to lowest):
//
//  1. Overrides loaded with LoadMap (command-line flags)
//  2. Environment variables
//  3. The YAML configuration file
//  4. Defaults
//
// Watcher reports changes to a configuration file through fsnotify so
// long-running sessions can pick up edits.
package confloader
