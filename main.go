// SPDX-License-Identifier: MPL-2.0

// Command hostprobe finds executables and classifies machines.
package main

import cmd "github.com/hostprobe/hostprobe/cmd/hostprobe"

func main() {
	cmd.Execute()
}
