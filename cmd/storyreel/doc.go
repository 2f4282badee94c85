// Command storyreel is the operator CLI for the narrated video generator. It
// manages configuration, creates projects, and drives segment review against
// a running daemon's HTTP API.
package main
