// Command smithc compiles schema documents, transcodes values between JSON
// and the smith binary wire format, and serves a Language Server Protocol
// endpoint for editor integration.
package main

func main() {
	Execute()
}
