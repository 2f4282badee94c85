// Package daemon hosts the long-running storyreel process: the workflow
// manager that advances segment generation and the HTTP review API. A file
// lock under the log directory keeps a single instance per machine.
package daemon
