// Command xpathql is a thin process boundary around the xpathql embedding
// facade (§6.3), in the spirit of teacher's own library-plus-CLI shape
// (see _examples/hemanta212-scaf's cmd/). It adds no engine semantics: it
// reads a document, dispatches it to the matching node-model adapter by
// --format, runs one query, and prints the results.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/arbortree/xpathql"
	"github.com/arbortree/xpathql/jsonnode"
	"github.com/arbortree/xpathql/xmlnode"
	"github.com/arbortree/xpathql/xpath"
)

func main() {
	cmd := &cli.Command{
		Name:      "xpathql",
		Usage:     "run an XPath 3.1 subset query against an XML or JSON document",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "document to query"},
			&cli.StringFlag{Name: "format", Value: "xml", Usage: "document format: xml or json"},
			&cli.BoolFlag{Name: "no-unwrap", Usage: "return xpath.Node results instead of host values"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn, or error"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}
	query := cmd.Args().First()

	// viper supplies environment-variable defaults (XPATHQL_FORMAT,
	// XPATHQL_LOG_LEVEL); an explicit flag on the command line always wins.
	v := viper.New()
	v.SetEnvPrefix("xpathql")
	v.AutomaticEnv()
	v.SetDefault("format", "xml")
	v.SetDefault("log_level", "warn")

	format := cmd.String("format")
	if !cmd.IsSet("format") {
		format = v.GetString("format")
	}
	logLevel := cmd.String("log-level")
	if !cmd.IsSet("log-level") {
		logLevel = v.GetString("log_level")
	}

	logger, err := newLogger(logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	data, err := os.ReadFile(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("reading %s: %w", cmd.String("file"), err)
	}

	var doc any
	switch format {
	case "xml":
		doc, err = xmlnode.Parse(data)
	case "json":
		doc, err = jsonnode.Parse(data)
	default:
		return fmt.Errorf("unsupported format %q (want xml or json)", format)
	}
	if err != nil {
		return err
	}

	sc := xpath.NewStaticContext()
	sc.Logger = logger

	results, err := xpathql.Query(doc, query, xpathql.Options{
		UnwrapNodes:   !cmd.Bool("no-unwrap"),
		StaticContext: sc,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	return cfg.Build()
}
