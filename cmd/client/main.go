package main

import "fieldreport/cmd/client/cmd"

func main() {
	cmd.Execute()
}
