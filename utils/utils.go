package utils

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli"
)

var RequiredFlagNotProvidedError = errors.New("Required flag not provided.")

func CheckRequiredArgs(c *cli.Context, requiredFlags []cli.StringFlag) error {
	for _, flag := range requiredFlags {
		if c.GlobalString(flag.Name) != "" {
			continue
		}
		if c.String(flag.Name) != "" {
			continue
		}
		log.Printf(fmt.Sprintf("Error: '%s' value required", flag.Name))
		return RequiredFlagNotProvidedError
	}
	return nil
}

func DoesPathExist(path string) bool {
	_, e := os.Stat(path)
	return e == nil
}
