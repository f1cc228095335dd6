package main

import "github.com/kamilpajak/authorship/cmd/authorship"

func main() {
	authorship.Execute()
}
