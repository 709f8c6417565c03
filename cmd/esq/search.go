package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-esquery/auth"
	esclient "github.com/robert-malhotra/go-esquery/client"
	"github.com/robert-malhotra/go-esquery/pkg/config"
)

func newSearchCommand() *cli.Command {
	return &cli.Command{
		Name:   "search",
		Usage:  "Run a search and print the matching documents",
		Flags:  searchFlags(),
		Action: searchAction,
	}
}

type resultView struct {
	Total     int64             `json:"total"`
	TookMS    int64             `json:"took_ms"`
	Documents []json.RawMessage `json:"documents"`
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	logger, err := cfg.Log.NewLogger(stderr(cmd))
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	client, err := newClient(cfg, logger.Sugar())
	if err != nil {
		return err
	}
	s, err := buildSearch(cmd, cfg, client)
	if err != nil {
		return err
	}
	res, err := s.Result(ctx)
	if err != nil {
		return err
	}

	view := resultView{
		Total:     res.Total,
		TookMS:    res.Took.Milliseconds(),
		Documents: make([]json.RawMessage, 0, len(res.Documents)),
	}
	for _, doc := range res.Documents {
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		view.Documents = append(view.Documents, data)
	}
	return printJSON(stdout(cmd), view)
}

func newClient(cfg *config.Config, logger esclient.Logger) (*esclient.Client, error) {
	es := cfg.Elasticsearch
	transport := auth.Chain(http.DefaultTransport, es.APIKey, es.BearerToken, es.Username, es.Password)

	opts := []esclient.ClientOption{
		esclient.WithAddresses(es.Addresses...),
		esclient.WithTransport(transport),
		esclient.WithLogger(logger),
		esclient.WithTimeout(es.Timeout),
		esclient.WithRetryPolicy(esclient.MaxRetries(es.MaxRetries, es.RetryDelay)),
	}
	if b := cfg.Breaker; b.Enabled {
		opts = append(opts, esclient.WithCircuitBreaker(
			esclient.BreakerSettings(b.MaxRequests, b.Interval, b.Timeout, b.FailureRatio, b.MinRequests),
		))
	}
	return esclient.New(opts...)
}
