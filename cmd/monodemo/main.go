// Command monodemo runs a batch of fraction-arithmetic pipelines through
// a barrier, demonstrating background dispatch, transformation, blocking
// awaits, and error recovery.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/b97tsk/mono"
	"github.com/b97tsk/mono/barrier"
	"github.com/b97tsk/mono/fraction"
)

type config struct {
	PoolSize     int        `env:"MONODEMO_POOL_SIZE" envDefault:"1"`
	LogLevel     slog.Level `env:"MONODEMO_LOG_LEVEL" envDefault:"info"`
	ScenarioFile string     `env:"MONODEMO_SCENARIOS"`
}

// scenarios are the fraction inputs the pipelines chew on. The defaults
// can be overridden by a YAML file named in MONODEMO_SCENARIOS.
type scenarios struct {
	Unreduced string `yaml:"unreduced"`
	Multiply  struct {
		A string `yaml:"a"`
		B string `yaml:"b"`
	} `yaml:"multiply"`
	Divide struct {
		A string `yaml:"a"`
		B string `yaml:"b"`
	} `yaml:"divide"`
}

func defaultScenarios() scenarios {
	var s scenarios
	s.Unreduced = "6/8"
	s.Multiply.A, s.Multiply.B = "1/2", "2/3"
	s.Divide.A, s.Divide.B = "1/2", "0"
	return s
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "monodemo:", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	sc := defaultScenarios()
	if cfg.ScenarioFile != "" {
		data, err := os.ReadFile(cfg.ScenarioFile)
		if err != nil {
			return fmt.Errorf("read scenarios: %w", err)
		}
		if err := yaml.Unmarshal(data, &sc); err != nil {
			return fmt.Errorf("parse scenarios: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})).With("run_id", uuid.NewString())

	var sched mono.Scheduler = mono.Single()
	if cfg.PoolSize > 1 {
		sched = mono.NewPool(cfg.PoolSize)
	}

	b := barrier.New()
	b.SetLogger(logger)
	register(b, sched, sc, logger)

	done, err := b.Run()
	logger.Info("batch finished", "completed", done)
	return err
}

func register(b *barrier.Barrier, sched mono.Scheduler, sc scenarios, logger *slog.Logger) {
	b.Register("reduction", func() *mono.Mono[mono.Void] {
		unreduced := fraction.MustParse(sc.Unreduced)
		reduced := mono.FromFunc(func() (fraction.Fraction, error) {
			return unreduced.Reduce(), nil
		}).
			SubscribeOn(sched).
			DoOnSuccess(func(f fraction.Fraction) {
				logger.Info("reduced", "from", unreduced.String(), "to", f.String())
			})
		return mono.Map(reduced, fraction.Fraction.MixedString).
			DoOnSuccess(func(s string) {
				logger.Info("mixed form", "value", s)
			}).
			Then()
	})

	b.Register("multiply-blocking", func() *mono.Mono[mono.Void] {
		result, ok := mono.FromFunc(func() (fraction.Fraction, error) {
			a := fraction.MustParse(sc.Multiply.A)
			return a.Mul(fraction.MustParse(sc.Multiply.B)), nil
		}).
			SubscribeOn(sched).
			DoOnSuccess(func(f fraction.Fraction) {
				logger.Info("product ready", "value", f.MixedString())
			}).
			BlockOptional()
		if !ok {
			logger.Warn("product absent")
		} else {
			logger.Info("blocked for product", "value", result.MixedString())
		}
		return mono.Just(mono.Void{})
	})

	b.Register("multiply-async", func() *mono.Mono[mono.Void] {
		return mono.FromFunc(func() (fraction.Fraction, error) {
			a := fraction.MustParse(sc.Multiply.A)
			return a.Mul(fraction.MustParse(sc.Multiply.B)), nil
		}).
			SubscribeOn(sched).
			DoOnSuccess(func(f fraction.Fraction) {
				logger.Info("product ready", "value", f.MixedString())
			}).
			Then()
	})

	b.Register("divide-recovered", func() *mono.Mono[mono.Void] {
		return mono.FromFunc(func() (fraction.Fraction, error) {
			a := fraction.MustParse(sc.Divide.A)
			return a.Div(fraction.MustParse(sc.Divide.B))
		}).
			SubscribeOn(sched).
			OnErrorResume(func(err error) *mono.Mono[fraction.Fraction] {
				if !errors.Is(err, fraction.ErrDivisionByZero) {
					return mono.Error[fraction.Fraction](err)
				}
				logger.Warn("substituting zero", "error", err)
				return mono.Just(fraction.Zero())
			}).
			DoOnSuccess(func(f fraction.Fraction) {
				logger.Info("quotient", "value", f.MixedString())
			}).
			Then()
	})
}
