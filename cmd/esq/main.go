package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-esquery/pkg/config"
)

const (
	urlFlag         = "url"
	timeoutFlag     = "timeout"
	configFlag      = "config"
	logLevelFlag    = "log-level"
	indexPrefixFlag = "index-prefix"
	apiKeyFlag      = "api-key"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "esq",
		Usage: "Compose and run typed Elasticsearch searches",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    urlFlag,
				Aliases: []string{"u"},
				Usage:   "Elasticsearch node URL, repeatable (overrides elasticsearch.addresses)",
			},
			&cli.DurationFlag{
				Name:    timeoutFlag,
				Aliases: []string{"t"},
				Usage:   "request timeout (e.g. 30s, 1m)",
			},
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "path to a YAML, JSON or TOML config file",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  indexPrefixFlag,
				Usage: "environment prefix added to every index name",
			},
			&cli.StringFlag{
				Name:  apiKeyFlag,
				Usage: "base64 encoded Elasticsearch API key",
			},
		},
		Commands: []*cli.Command{
			newQueryCommand(),
			newSearchCommand(),
		},
	}
}

// settings loads the config file and environment, then applies global flags.
func settings(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String(configFlag))
	if err != nil {
		return nil, err
	}
	if urls := cmd.StringSlice(urlFlag); len(urls) > 0 {
		cfg.Elasticsearch.Addresses = urls
	}
	if cmd.IsSet(timeoutFlag) {
		cfg.Elasticsearch.Timeout = cmd.Duration(timeoutFlag)
	}
	if v := cmd.String(logLevelFlag); v != "" {
		cfg.Log.Level = v
	}
	if v := cmd.String(indexPrefixFlag); v != "" {
		cfg.Elasticsearch.IndexPrefix = v
	}
	if v := cmd.String(apiKeyFlag); v != "" {
		cfg.Elasticsearch.APIKey = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}
