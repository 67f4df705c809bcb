package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"fixer-service/internal/app"
	"fixer-service/internal/config"
	"fixer-service/internal/domain/model"
	"fixer-service/internal/domain/ports"
	"fixer-service/pkg/logger"
	"fixer-service/pkg/utils"
)

// serviceFactory builds the rate service for a command. Tests replace it.
type serviceFactory func(ctx context.Context) (ports.RateService, func() error, error)

func defaultServiceFactory(ctx context.Context) (ports.RateService, func() error, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level)

	a, err := app.New(ctx, cfg, log, nil)
	if err != nil {
		return nil, nil, err
	}
	return a.Dispatcher, a.Close, nil
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(defaultServiceFactory)
}

func newRootCmdWith(factory serviceFactory) *cobra.Command {
	root := &cobra.Command{
		Use:          "fixerctl",
		Short:        "Query exchange rates and conversions from the Fixer provider",
		SilenceUsage: true,
	}

	root.AddCommand(
		newRateCmd(factory),
		newConvertCmd(factory),
		newSupportsCmd(factory),
	)
	return root
}

func newRateCmd(factory serviceFactory) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "rate BASE QUOTE",
		Short: "Print the current or historical rate of QUOTE against BASE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := rateRequest(args[0], args[1], date)
			if err != nil {
				return err
			}
			return run(cmd, factory, request)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "historical date (YYYY-MM-DD)")
	return cmd
}

func newConvertCmd(factory serviceFactory) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "convert AMOUNT BASE QUOTE",
		Short: "Convert AMOUNT of BASE into QUOTE (subscription keys only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			request, err := conversionRequest(args[0], args[1], args[2], date)
			if err != nil {
				return err
			}
			return run(cmd, factory, request)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "historical date (YYYY-MM-DD)")
	return cmd
}

func newSupportsCmd(factory serviceFactory) *cobra.Command {
	var date, amount string

	cmd := &cobra.Command{
		Use:   "supports BASE QUOTE",
		Short: "Report whether a rate (or, with --amount, a conversion) request would be attempted",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var request model.Request
			var err error
			if amount != "" {
				request, err = conversionRequest(amount, args[0], args[1], date)
			} else {
				request, err = rateRequest(args[0], args[1], date)
			}
			if err != nil {
				return err
			}

			svc, closeFn, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintln(cmd.OutOrStdout(), svc.Supports(request))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "historical date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&amount, "amount", "", "check a conversion of this amount instead of a rate")
	return cmd
}

func rateRequest(base, quote, date string) (model.Request, error) {
	b, q := currency(base), currency(quote)
	if date == "" {
		return model.CurrentRateRequest{BaseCurrency: b, QuoteCurrency: q}, nil
	}
	d, err := utils.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q, use YYYY-MM-DD", date)
	}
	return model.HistoricalRateRequest{BaseCurrency: b, QuoteCurrency: q, Date: d}, nil
}

func conversionRequest(amount, base, quote, date string) (model.Request, error) {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}
	b, q := currency(base), currency(quote)
	if date == "" {
		return model.CurrentConversionRequest{BaseAmount: a, BaseCurrency: b, QuoteCurrency: q}, nil
	}
	d, err := utils.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("invalid --date %q, use YYYY-MM-DD", date)
	}
	return model.HistoricalConversionRequest{BaseAmount: a, BaseCurrency: b, QuoteCurrency: q, Date: d}, nil
}

func currency(s string) model.Currency {
	return model.Currency(strings.ToUpper(strings.TrimSpace(s)))
}

func run(cmd *cobra.Command, factory serviceFactory, request model.Request) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	svc, closeFn, err := factory(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	outcome, err := svc.Dispatch(ctx, request)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch o := outcome.(type) {
	case model.RateResult:
		fmt.Fprintf(out, "%s %s\n", model.FormatDecimal(o.Rate), utils.FormatDate(o.Date))
	case model.ConversionResult:
		fmt.Fprintf(out, "%s %s\n", model.FormatDecimal(o.Amount), utils.FormatDate(o.Date))
	case *model.Failure:
		return fmt.Errorf("%s: %w", o.Kind, o)
	default:
		return errors.New("unexpected outcome")
	}
	return nil
}
