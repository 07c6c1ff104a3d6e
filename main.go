package main

import "github.com/mj1618/clickaudit/cmd"

func main() {
	cmd.Execute()
}
