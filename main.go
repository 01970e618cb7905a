// SPDX-License-Identifier: MPL-2.0

package main

import cmd "driving-cli/cmd/driving"

func main() {
	cmd.Execute()
}
