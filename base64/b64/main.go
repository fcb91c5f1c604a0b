// Command b64 encodes and decodes RFC 4648 base64 and can serve the codec
// over HTTP.
//
//	b64 encode [file]     encode a file or stdin
//	b64 decode [file]     decode a file or stdin
//	b64 serve             run the HTTP service
//
// Settings come from defaults, an optional --config file (YAML, TOML or
// JSON), .env files in the working directory or its parents, B64_*
// environment variables and finally command line flags.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
