package main

import "github.com/LegacyCodeHQ/portgraph/cmd"

func main() {
	cmd.Execute()
}
