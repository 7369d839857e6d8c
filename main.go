package main

import "github.com/ayoubharati/dataware-chatbot/cmd"

func main() {
	cmd.Execute()
}
