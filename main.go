package main

import "github.com/AkashSundaramoorthi/Haven/cmd"

func main() {
	cmd.Execute()
}
