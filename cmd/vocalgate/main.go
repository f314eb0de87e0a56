// Command vocalgate is the terminal front end of the voice gate.
//
// Usage:
//
//	vocalgate enroll --user alice --passphrase "open sesame" --wav alice.wav
//	arecord -q -f S16_LE -r 16000 -c 1 -t raw | vocalgate auth --user alice --stdin
//	vocalgate users
//	vocalgate audit -n 5
//	vocalgate hash-password
//	vocalgate totp-secret --account operator
//
// Settings come from the environment (and an optional .env file); see
// internal/config for the keys.
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errAccessDenied) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
