package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/xyproto/env/v2"

	"github.com/Dan0xE/api/api"
	"github.com/Dan0xE/api/utils"
)

var inputFlag = cli.StringFlag{
	Name:  "input_file",
	Usage: "binary to analyze",
}

var pdbFlag = cli.StringFlag{
	Name:  "pdb_file",
	Usage: "companion PDB for the binary",
}

var apiKeyFlag = cli.StringFlag{
	Name:  "api_key",
	Usage: "CodeDefender API key (or set CODEDEFENDER_API_KEY)",
}

func check(e error) {
	if e != nil {
		panic(e)
	}
}

func doit(inputFile string, pdbFile string, apiKey string) error {
	client, e := api.New(apiKey)
	if e != nil {
		return e
	}

	binary, e := os.ReadFile(inputFile)
	if e != nil {
		return e
	}
	logrus.Infof("uploading %s", inputFile)
	fileID, e := client.Upload(binary)
	if e != nil {
		return e
	}

	pdbID := ""
	if pdbFile != "" {
		pdb, e := os.ReadFile(pdbFile)
		if e != nil {
			return e
		}
		pdbID, e = client.Upload(pdb)
		if e != nil {
			return e
		}
	}

	result, e := client.Analyze(fileID, pdbID)
	if e != nil {
		return e
	}

	fmt.Printf("environment: %s\n", result.Environment)

	fmt.Printf("\nfunctions (%d):\n", len(result.Functions))
	for _, f := range result.Functions {
		color.Green("  0x%08X %s (refs: %d)", f.RVA, f.Symbol, f.RefCount)
	}

	fmt.Printf("\nrejected (%d):\n", len(result.Rejects))
	for _, r := range result.Rejects {
		color.Red("  0x%08X %s [%s] %s", r.RVA, r.Symbol, r.Type, r.Reason)
	}

	fmt.Printf("\nmacro profiles (%d):\n", len(result.Macros))
	for _, m := range result.Macros {
		fmt.Printf("  %s:\n", m.Name)
		for _, rva := range m.RVAs {
			fmt.Printf("    0x%08X\n", rva)
		}
	}
	return nil
}

func main() {
	app := cli.NewApp()
	app.Version = "1.0.0"
	app.Name = "analyze"
	app.Usage = "Analyze a binary with CodeDefender and list protectable functions."
	app.Flags = []cli.Flag{inputFlag, pdbFlag, apiKeyFlag}
	app.Action = func(c *cli.Context) {
		if utils.CheckRequiredArgs(c, []cli.StringFlag{inputFlag}) != nil {
			return
		}

		inputFile := c.String("input_file")
		if !utils.DoesPathExist(inputFile) {
			log.Printf("Error: file %s must exist", inputFile)
			return
		}

		apiKey := c.String("api_key")
		if apiKey == "" {
			apiKey = env.Str("CODEDEFENDER_API_KEY")
		}
		if apiKey == "" {
			log.Printf("Error: 'api_key' value required")
			return
		}

		if e := doit(inputFile, c.String("pdb_file"), apiKey); e != nil {
			logrus.Errorf("%v", e)
			os.Exit(1)
		}
	}
	app.Run(os.Args)
}
