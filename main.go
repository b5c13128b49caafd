package main

import "github.com/Mohsinsiddi/simchain/cmd"

func main() {
	cmd.Execute()
}
