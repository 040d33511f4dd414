package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/storm-relief-allocator/internal/adapter/allocator"
	"github.com/couchcryptid/storm-relief-allocator/internal/config"
	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/couchcryptid/storm-relief-allocator/internal/observability"
	"github.com/couchcryptid/storm-relief-allocator/internal/pipeline"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
	"github.com/couchcryptid/storm-relief-allocator/internal/tui"
)

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "regions",
			Aliases: []string{"r"},
			Usage:   "Regions as a JSON array of {name, need, urgency}",
		},
		&cli.PathFlag{
			Name:    "regions-file",
			Aliases: []string{"f"},
			Usage:   "Read regions from a .json, .yaml or .yml file",
		},
		&cli.StringFlag{
			Name:    "supplies",
			Aliases: []string{"s"},
			Value:   "50",
			Usage:   "Total supplies to allocate",
			EnvVars: []string{"DEFAULT_SUPPLIES"},
		},
		&cli.StringFlag{
			Name:  "capacity",
			Usage: "Optional capacity forwarded to the allocation service",
		},
	}
}

func allocatorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "endpoint",
			Value:   config.DefaultAllocatorURL,
			Usage:   "Allocation service URL",
			EnvVars: []string{"ALLOCATOR_URL"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Usage:   "Request timeout (0 waits indefinitely)",
			EnvVars: []string{"ALLOCATOR_TIMEOUT"},
		},
	}
}

// =============================================================================
// SUBMIT COMMAND
// =============================================================================

func submitCommand(metrics *observability.Metrics) *cli.Command {
	return &cli.Command{
		Name:  "submit",
		Usage: "Send regions and supplies to the allocation service and print the result",
		Flags: append(inputFlags(), allocatorFlags()...),
		Action: func(c *cli.Context) error {
			in, err := readInputs(c)
			if err != nil {
				return err
			}
			p, err := newPipeline(c, metrics, newLogger(c, c.App.ErrWriter), in)
			if err != nil {
				return err
			}

			outcome := p.Submit(c.Context, in)
			if !outcome.OK() {
				return fmt.Errorf("submission failed (%s): %w", outcome.Category(), outcome.Err.Err)
			}

			if code := outcome.Result.StatusCode; code >= http.StatusBadRequest {
				fmt.Fprintf(c.App.ErrWriter, "allocation service returned status %d\n", code)
			}
			if rendered, ok := domain.RenderResult(outcome.Result); ok {
				fmt.Fprintln(c.App.Writer, rendered)
			}
			return nil
		},
	}
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:  "validate",
		Usage: "Parse regions and supplies and print the request body without sending it",
		Flags: inputFlags(),
		Action: func(c *cli.Context) error {
			in, err := readInputs(c)
			if err != nil {
				return err
			}
			req, err := domain.ParseAllocationRequest(in.Regions, in.Supplies)
			if err != nil {
				return err
			}
			capacity, err := domain.ParseCapacity(in.Capacity)
			if err != nil {
				return err
			}
			if capacity != nil {
				req = req.WithCapacity(*capacity)
			}

			rendered, err := domain.RenderRequest(req)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, rendered)
			return nil
		},
	}
}

// =============================================================================
// TUI COMMAND
// =============================================================================

func tuiCommand(metrics *observability.Metrics) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Run the allocation form in the terminal",
		Flags: append(inputFlags(), allocatorFlags()...),
		Action: func(c *cli.Context) error {
			in, err := readInputs(c)
			if err != nil {
				return err
			}
			// Log lines would corrupt the alternate screen.
			p, err := newPipeline(c, metrics, slog.New(slog.NewTextHandler(io.Discard, nil)), in)
			if err != nil {
				return err
			}
			return tui.Run(c.Context, p, p.Store())
		},
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func newLogger(c *cli.Context, w io.Writer) *slog.Logger {
	return observability.NewLogger(w, c.String("log-level"), c.String("log-format"))
}

func newPipeline(c *cli.Context, metrics *observability.Metrics, logger *slog.Logger, initial session.Inputs) (*pipeline.Pipeline, error) {
	endpoint := c.String("endpoint")
	if err := config.ValidateAllocatorURL(endpoint); err != nil {
		return nil, err
	}
	if c.Duration("timeout") < 0 {
		return nil, errors.New("timeout must not be negative")
	}
	client := allocator.NewClient(endpoint, c.Duration("timeout"), metrics, logger)
	store := session.NewStore(initial)
	return pipeline.New(client, store, nil, logger, metrics), nil
}

func readInputs(c *cli.Context) (session.Inputs, error) {
	in := session.Inputs{
		Regions:  c.String("regions"),
		Supplies: c.String("supplies"),
		Capacity: c.String("capacity"),
	}
	path := c.Path("regions-file")
	if path == "" {
		return in, nil
	}
	if c.IsSet("regions") {
		return session.Inputs{}, errors.New("--regions and --regions-file are mutually exclusive")
	}
	regions, err := loadRegionsFile(path)
	if err != nil {
		return session.Inputs{}, err
	}
	in.Regions = regions
	return in, nil
}

// loadRegionsFile returns the file's regions as JSON text so they go through
// the same parser as typed input.
func loadRegionsFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read regions file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return string(data), nil
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidRegions, err)
		}
		text, err := json.Marshal(doc)
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidRegions, err)
		}
		return string(text), nil
	default:
		return "", fmt.Errorf("unsupported regions file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}
