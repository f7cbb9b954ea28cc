package main

import (
	"github.com/studiodflori/storefront/cmd"
)

func main() {
	cmd.Start()
}
