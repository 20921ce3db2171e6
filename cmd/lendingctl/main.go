// Command lendingctl runs maintenance tasks against the lending service's
// stores: schema migrations, mirror resync and token minting.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
