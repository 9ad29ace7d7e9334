package main

import (
	"log"

	"CupBack/cmd"
)

func main() {
	cmd.Execute()
	log.Println("Application command execution finished or server started.")
}
