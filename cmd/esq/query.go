package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-esquery/pkg/builder"
	"github.com/robert-malhotra/go-esquery/pkg/config"
	"github.com/robert-malhotra/go-esquery/pkg/filter"
	"github.com/robert-malhotra/go-esquery/pkg/search"
	"github.com/robert-malhotra/go-esquery/query"
)

const (
	indexFlag    = "index"
	whereFlag    = "where"
	selectFlag   = "select"
	excludeFlag  = "exclude"
	sortFlag     = "sort"
	skipFlag     = "skip"
	takeFlag     = "take"
	collapseFlag = "collapse"
)

// document is the untyped hit shape used by the command line.
type document = map[string]any

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     indexFlag,
			Aliases:  []string{"i"},
			Usage:    "target index, before prefixing",
			Required: true,
		},
		&cli.StringSliceFlag{
			Name:    whereFlag,
			Aliases: []string{"w"},
			Usage:   "where-expression, repeatable and combined with AND (e.g. \"age >= 18 AND status IN ('a', 'b')\")",
		},
		&cli.StringSliceFlag{
			Name:  selectFlag,
			Usage: "_source field to include, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  excludeFlag,
			Usage: "_source field to exclude, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  sortFlag,
			Usage: "sort key as field[:asc|desc], repeatable",
		},
		&cli.IntFlag{
			Name:  skipFlag,
			Usage: "number of hits to skip",
		},
		&cli.IntFlag{
			Name:  takeFlag,
			Usage: "page size",
		},
		&cli.StringFlag{
			Name:  collapseFlag,
			Usage: "keep one hit per distinct value of this field",
		},
	}
}

func newQueryCommand() *cli.Command {
	return &cli.Command{
		Name:   "query",
		Usage:  "Print the search request without sending it",
		Flags:  searchFlags(),
		Action: queryAction,
	}
}

type requestView struct {
	Index string          `json:"index"`
	Body  json.RawMessage `json:"body"`
}

func queryAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := settings(cmd)
	if err != nil {
		return err
	}
	s, err := buildSearch(cmd, cfg, nil)
	if err != nil {
		return err
	}
	req, err := s.Request()
	if err != nil {
		return err
	}
	body, err := req.JSON()
	if err != nil {
		return err
	}
	return printJSON(stdout(cmd), requestView{Index: req.Index, Body: body})
}

func buildSearch(cmd *cli.Command, cfg *config.Config, exec search.Executor) (*search.Search[document], error) {
	cond, err := filter.ParseAll(cmd.StringSlice(whereFlag)...)
	if err != nil {
		return nil, err
	}

	s := search.New[document](exec,
		search.WithResolver(builder.PrefixResolver(cfg.Elasticsearch.IndexPrefix)),
		search.WithDefaultTake(cfg.Search.DefaultTake),
	).
		Index(cmd.String(indexFlag)).
		Query(func(q *query.Query) { q.Where(cond) })

	if includes := cmd.StringSlice(selectFlag); len(includes) > 0 {
		s.Include(includes...)
	}
	if excludes := cmd.StringSlice(excludeFlag); len(excludes) > 0 {
		s.Exclude(excludes...)
	}
	for _, spec := range cmd.StringSlice(sortFlag) {
		name, dir, err := parseSort(spec)
		if err != nil {
			return nil, err
		}
		s.Sort(name, dir)
	}
	if cmd.IsSet(skipFlag) {
		s.Skip(int(cmd.Int(skipFlag)))
	}
	if cmd.IsSet(takeFlag) {
		s.Take(int(cmd.Int(takeFlag)))
	}
	if c := cmd.String(collapseFlag); c != "" {
		s.Collapse(c)
	}
	return s, nil
}

func parseSort(spec string) (string, builder.Direction, error) {
	name, dir, _ := strings.Cut(spec, ":")
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.Errorf("invalid sort %q: missing field", spec)
	}
	d, err := builder.ParseDirection(strings.TrimSpace(dir))
	if err != nil {
		return "", "", err
	}
	return name, d, nil
}
