// Command twofactor is an operator tool for the two-factor authentication
// module: it generates keys, prints current codes and provisioning QR codes,
// and applies the PostgreSQL schema.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
