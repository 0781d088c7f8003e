package main

import "github.com/SaadHafeez466/qa-app/cmd"

func main() {
	cmd.Execute()
}
