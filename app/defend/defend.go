package main

import (
	"errors"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/xyproto/env/v2"

	"github.com/Dan0xE/api/api"
	"github.com/Dan0xE/api/compile"
	"github.com/Dan0xE/api/config"
	"github.com/Dan0xE/api/poll"
	"github.com/Dan0xE/api/utils"
)

const CliDownloadLink = "https://github.com/codedefender-io/api/releases"

var configFlag = cli.StringFlag{
	Name:  "config",
	Usage: "path to the YAML configuration file",
}

var logLevelFlag = cli.StringFlag{
	Name:  "log_level",
	Value: "info",
	Usage: "log level (error, warn, info, debug, trace)",
}

var MissingAPIKeyError = errors.New("no api_key in config and CODEDEFENDER_API_KEY is not set")

func check(e error) {
	if e != nil {
		panic(e)
	}
}

func doit(configPath string) error {
	cfg, e := config.LoadFile(configPath)
	if e != nil {
		var mismatch *config.VersionMismatchError
		if errors.As(e, &mismatch) {
			logrus.Errorf("%v", mismatch)
			logrus.Errorf("latest version available at: %s", CliDownloadLink)
		}
		return e
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = env.Str("CODEDEFENDER_API_KEY")
	}
	if apiKey == "" {
		return MissingAPIKeyError
	}

	client, e := api.New(apiKey)
	if e != nil {
		return e
	}

	binary, e := os.ReadFile(cfg.InputFile)
	if e != nil {
		return e
	}
	logrus.Infof("uploading %s", cfg.InputFile)
	fileID, e := client.Upload(binary)
	if e != nil {
		return e
	}

	pdbID := ""
	if cfg.PDBFile != "" {
		pdb, e := os.ReadFile(cfg.PDBFile)
		if e != nil {
			return e
		}
		logrus.Infof("uploading %s", cfg.PDBFile)
		pdbID, e = client.Upload(pdb)
		if e != nil {
			return e
		}
	}

	logrus.Infof("analyzing...")
	result, e := client.Analyze(fileID, pdbID)
	if e != nil {
		return e
	}
	logrus.Infof("analysis found %d functions (%d rejected)", len(result.Functions), len(result.Rejects))

	compiled, e := compile.Compile(cfg, result)
	if e != nil {
		return e
	}
	e = compile.MergeMacroProfiles(compiled, result)
	if e != nil {
		return e
	}

	executionID, e := client.Defend(fileID, compiled)
	if e != nil {
		return e
	}
	logrus.Infof("job submitted: %s", executionID)

	poller, e := poll.New(client, cfg.PollIntervalDuration(), poll.DefaultDeadline)
	if e != nil {
		return e
	}
	obfuscated, e := poller.Wait(executionID)
	if e != nil {
		return e
	}

	e = os.WriteFile(cfg.OutputFile, obfuscated, 0644)
	if e != nil {
		return e
	}
	logrus.Infof("obfuscated binary written to %s", cfg.OutputFile)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Version = "1.0.0"
	app.Name = "defend"
	app.Usage = "Submit a binary to CodeDefender and download the obfuscated result."
	app.Flags = []cli.Flag{configFlag, logLevelFlag}
	app.Action = func(c *cli.Context) {
		if utils.CheckRequiredArgs(c, []cli.StringFlag{configFlag}) != nil {
			return
		}

		level, e := logrus.ParseLevel(c.String("log_level"))
		check(e)
		logrus.SetLevel(level)

		configPath := c.String("config")
		if !utils.DoesPathExist(configPath) {
			log.Printf("Error: file %s must exist", configPath)
			return
		}

		if e := doit(configPath); e != nil {
			logrus.Errorf("%v", e)
			os.Exit(1)
		}
	}
	app.Run(os.Args)
}
