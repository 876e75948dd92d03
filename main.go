package main

import "github/chapool/go-hwkeyring/cmd"

func main() {
	cmd.Execute()
}
