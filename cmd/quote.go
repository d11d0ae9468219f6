package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sig-0/remesas/aggregate"
	"github.com/sig-0/remesas/cmd/env"
	"github.com/sig-0/remesas/cmd/serve"
	"github.com/sig-0/remesas/quote"
	"github.com/sig-0/remesas/storage/types"
)

var (
	errNoAmount     = errors.New("either --cop or --amount must be set")
	errBothAmounts  = errors.New("--cop and --amount are mutually exclusive")
	errAmbiguousFee = errors.New("--fee-pct and --fee-fixed are mutually exclusive")
	errUnknownTgt   = errors.New("unknown --target")
)

// quoteCfg wraps the quote configuration
type quoteCfg struct {
	overrides map[types.Field]*float64

	adj types.AdjustmentSet

	target string
	title  string

	cop      float64
	amount   float64
	feePct   float64
	feeFixed float64

	sheet   bool
	asJSON  bool
	verbose bool
}

// newQuoteCmd creates the quote command
func newQuoteCmd() *ffcli.Command {
	cfg := &quoteCfg{
		overrides: make(map[types.Field]*float64),
		adj:       types.DefaultAdjustments(),
	}

	fs := flag.NewFlagSet("quote", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "quote",
		ShortUsage: "quote [flags]",
		LongHelp:   "Fetches the live rates and prints a forward (--cop) or inverse (--amount, --target) quote",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *quoteCfg) registerFlags(fs *flag.FlagSet) {
	fs.Float64Var(&c.cop, "cop", 0, "the COP amount to send (forward quote)")
	fs.Float64Var(&c.amount, "amount", 0, "the amount the beneficiary should receive (inverse quote)")
	fs.StringVar(
		&c.target,
		"target",
		string(quote.TargetVES),
		"the inverse target (VES, USD_OFFICIAL, USD_PARALLEL, USD_EUR, EUR)",
	)

	fs.Float64Var(&c.feePct, "fee-pct", -1, "the percentage fee, defaults to 10")
	fs.Float64Var(&c.feeFixed, "fee-fixed", -1, "the fixed fee, in USDT")

	fs.Float64Var(&c.adj.BCVPct, "bcv-pct", c.adj.BCVPct, "the official (BCV) rate adjustment, in percent")
	fs.Float64Var(&c.adj.ParallelPct, "parallel-pct", c.adj.ParallelPct, "the parallel rate adjustment, in percent")
	fs.Float64Var(&c.adj.USDTCOPPct, "usdt-cop-pct", c.adj.USDTCOPPct, "the USDT/COP rate adjustment, in percent")
	fs.Float64Var(&c.adj.USDTVESPct, "usdt-ves-pct", c.adj.USDTVESPct, "the USDT/VES rate adjustment, in percent")

	// Manual rate overrides, one flag per rate
	for _, field := range types.Fields {
		name := strings.ReplaceAll(field.String(), "_", "-")

		fs.Func(name, "manual "+field.Label()+" rate, overriding the live one", func(raw string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}

			c.overrides[field] = &v

			return nil
		})
	}

	fs.StringVar(&c.title, "title", "", "the summary title, if any")
	fs.BoolVar(&c.sheet, "sheet", false, "print the rate poster ladder instead of a single quote")
	fs.BoolVar(&c.asJSON, "json", false, "print the quote as JSON")
	fs.BoolVar(&c.verbose, "verbose", false, "log the upstream fetches")
}

func (c *quoteCfg) fee() (quote.Fee, error) {
	switch {
	case c.feePct >= 0 && c.feeFixed >= 0:
		return quote.Fee{}, errAmbiguousFee
	case c.feeFixed >= 0:
		return quote.FixedFee(c.feeFixed), nil
	case c.feePct >= 0:
		return quote.PercentageFee(c.feePct / 100), nil
	default:
		return quote.PercentageFee(0.1), nil
	}
}

func (c *quoteCfg) exec(ctx context.Context, _ []string) error {
	if !c.sheet {
		switch {
		case c.cop > 0 && c.amount > 0:
			return errBothAmounts
		case c.cop <= 0 && c.amount <= 0:
			return errNoAmount
		}
	}

	fee, err := c.fee()
	if err != nil {
		return err
	}

	target, ok := quote.ParseTarget(strings.ToUpper(c.target))
	if !ok {
		return fmt.Errorf("%w %q", errUnknownTgt, c.target)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if c.verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}

	agg, err := serve.NewAggregator(aggregate.DefaultSourceTimeout, aggregate.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("unable to create aggregator: %w", err)
	}

	params := types.FetchParams{COPAmount: c.cop}
	if target == quote.TargetVES {
		params.VESAmount = c.amount
	}

	rates := agg.Fetch(ctx, params)

	for _, field := range types.Fields {
		if v := c.overrides[field]; v != nil {
			rates = rates.With(field, *v)
		}
	}

	for _, warning := range rates.Warnings {
		_, _ = fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	if c.sheet {
		return c.printSheet(quote.Sheet(quote.DefaultSheetAmounts, rates, c.adj, fee))
	}

	var q *quote.Quote

	if c.cop > 0 {
		q, err = quote.Forward(c.cop, rates, c.adj, fee)
	} else {
		q, err = quote.Inverse(c.amount, target, rates, c.adj, fee)
	}

	if err != nil {
		return fmt.Errorf("unable to quote: %w", err)
	}

	if c.asJSON {
		return printJSON(q)
	}

	fmt.Println(quote.Summary(q, c.title))

	return nil
}

func (c *quoteCfg) printSheet(rows []quote.SheetRow) error {
	if c.asJSON {
		return printJSON(rows)
	}

	p := message.NewPrinter(language.Spanish)

	if title := strings.TrimSpace(c.title); title != "" {
		fmt.Println(title)
	}

	for _, row := range rows {
		if row.Quote == nil || row.Quote.DeliveredVES == nil {
			p.Printf("COP %.0f: —\n", row.COP)

			continue
		}

		p.Printf("COP %.0f: VES %.2f\n", row.COP, *row.Quote.DeliveredVES)
	}

	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
