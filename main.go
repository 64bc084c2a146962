package main

import "github.com/KaramelBytes/enrich-cli/cmd"

func main() {
	cmd.Execute()
}
