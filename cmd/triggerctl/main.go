// triggerctl retrieves forecast-trigger data from the IRI fbfmaproom API,
// builds annotated trigger tables, and computes decision-value metrics.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
