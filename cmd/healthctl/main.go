// Package main provides healthctl, a command line client for the triage
// engines and the operational tasks around them.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dorost/consult-engine/internal/app"
	"github.com/dorost/consult-engine/internal/confidence"
	"github.com/dorost/consult-engine/internal/config"
	"github.com/dorost/consult-engine/internal/consultation"
	"github.com/dorost/consult-engine/internal/patterns"
	"github.com/dorost/consult-engine/internal/routing"
	"github.com/dorost/consult-engine/internal/triage"
	"github.com/dorost/consult-engine/pkg/circuitbreaker"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// cli carries what every subcommand needs, filled in by the root's
// PersistentPreRunE.
type cli struct {
	in     io.Reader
	out    io.Writer
	cfg    *config.Config
	logger *zap.Logger
	engine *app.Engine
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out}

	root := &cobra.Command{
		Use:           "healthctl",
		Short:         "Run the consultation triage engines from the command line",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.logger = zap.NewNop()
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				if c.logger, err = app.NewLogger(cfg); err != nil {
					return err
				}
			}
			c.engine, err = app.NewEngine(cfg)
			return err
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.PersistentFlags().BoolP("verbose", "v", false, "log to stderr")

	root.AddCommand(
		c.triageCmd(),
		c.routeCmd(),
		c.matchCmd(),
		c.confidenceCmd(),
		c.consultCmd(),
		c.specialtiesCmd(),
		c.patternsCmd(),
		c.migrateCmd(),
		c.escalationsCmd(),
		c.outboxCmd(),
		c.topicsCmd(),
	)
	return root
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) triageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "triage SYMPTOM...",
		Short: "Screen symptoms for red flags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := triage.NewDetector(c.engine.KB).Detect(args)
			if err := c.print(res); err != nil {
				return err
			}
			if res.Terminal {
				return fmt.Errorf("red flag: %s", res.MaxUrgency)
			}
			return nil
		},
	}
}

func (c *cli) routeCmd() *cobra.Command {
	var req routing.Request
	cmd := &cobra.Command{
		Use:   "route SYMPTOM...",
		Short: "Rank specialists for a symptom list",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Symptoms = args
			return c.print(c.engine.Router.Route(req))
		},
	}
	cmd.Flags().StringVar(&req.BodySystem, "system", "", "affected body system")
	cmd.Flags().StringVar(&req.Duration, "duration", "", "how long symptoms have lasted")
	cmd.Flags().StringVar(&req.Severity, "severity", "", "reported severity")
	return cmd
}

func (c *cli) matchCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a health profile (JSON) against the pattern table",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := c.in
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			var p patterns.Profile
			dec := json.NewDecoder(r)
			dec.DisallowUnknownFields()
			if err := dec.Decode(&p); err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}

			matches := c.engine.Matcher.Match(&p)
			return c.print(map[string]any{
				"matches":                matches,
				"pattern_match_strength": patterns.Strength(matches),
				"correlations":           patterns.Correlations(&p),
				"severity":               patterns.Score(&p),
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "profile file, - for stdin")
	return cmd
}

func (c *cli) confidenceCmd() *cobra.Command {
	var in confidence.Input
	cmd := &cobra.Command{
		Use:   "confidence",
		Short: "Score confidence and decide escalation",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := c.engine.Policy.Assess(in)
			return c.print(map[string]any{
				"assessment": a,
				"guidance":   confidence.Guidance(a.Score),
			})
		},
	}
	f := cmd.Flags()
	f.Float64Var(&in.SymptomClarity, "clarity", 0.5, "symptom clarity in [0,1]")
	f.Float64Var(&in.PatternMatchStrength, "strength", 0, "pattern match strength in [0,1]")
	f.BoolVar(&in.RedFlagsPresent, "red-flags", false, "red flags were detected")
	f.IntVar(&in.DurationWeeks, "weeks", 0, "symptom duration in weeks")
	f.Float64Var(&in.Complexity, "complexity", 0, "patient complexity in [0,1]")
	return cmd
}

func (c *cli) consultCmd() *cobra.Command {
	var req consultation.Request
	cmd := &cobra.Command{
		Use:   "consult [SYMPTOM...]",
		Short: "Run a full consultation locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Symptoms = args
			svc, err := c.engine.NewService(c.cfg, circuitbreaker.NewManager(c.logger, nil), c.logger)
			if err != nil {
				return err
			}
			res, err := svc.Consult(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.Query, "query", "q", "", "free-text description")
	f.StringVar(&req.BodySystem, "system", "", "affected body system")
	f.IntVar(&req.DurationWeeks, "weeks", 0, "symptom duration in weeks")
	f.Float64Var(&req.Complexity, "complexity", 0, "patient complexity in [0,1]")
	return cmd
}

func (c *cli) specialtiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "specialties",
		Short: "List specialties and body systems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.print(map[string]any{
				"specialties":  c.engine.KB.Specialties(),
				"body_systems": c.engine.KB.BodySystems(),
			})
		},
	}
}

func (c *cli) patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List health patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			names, _ := cmd.Flags().GetBool("names")
			if !names {
				return c.print(c.engine.KB.Patterns())
			}
			var b strings.Builder
			for _, p := range c.engine.KB.Patterns() {
				fmt.Fprintf(&b, "%3d  %s\n", p.ID, p.Name)
			}
			_, err := io.WriteString(c.out, b.String())
			return err
		},
	}
	cmd.Flags().Bool("names", false, "print only ids and names")
	return cmd
}
