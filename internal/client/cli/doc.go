// Package cli provides the interactive authkeeper command-line client.
//
// The REPL supports register, login, refresh, logout and status. Passwords
// are read from the terminal without echo and wiped after use.
package cli
