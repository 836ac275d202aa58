package main

import "aero-importer/cmd"

func main() {
	cmd.Execute()
}
