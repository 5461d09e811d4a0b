package main

import (
	"github.com/lazypower/habits/internal/cli"
	apperr "github.com/lazypower/habits/internal/errors"
)

func main() {
	if err := cli.Execute(); err != nil {
		apperr.Exit(err)
	}
}
