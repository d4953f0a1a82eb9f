package main

import "github.com/mvp-joe/funcscrape/internal/cli"

func main() {
	cli.Execute()
}
