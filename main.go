package main

import "github.com/frahmantamala/role-assignment/cmd"

func main() {
	cmd.Execute()
}
