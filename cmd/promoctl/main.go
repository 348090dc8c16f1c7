package main

import "github.com/Togather-Foundation/promotions-console/cmd/promoctl/cmd"

func main() {
	cmd.Execute()
}
