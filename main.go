// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/precommit/cmd/pre-commit"

func main() {
	cmd.Execute()
}
