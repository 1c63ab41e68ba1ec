package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vango-dev/catsite/internal/config"
	"github.com/vango-dev/catsite/internal/errors"
	"github.com/vango-dev/catsite/pkg/assets"
)

// pageFiles are the files every page source must provide.
var pageFiles = []string{assets.IndexFile, "client.js", "site.css"}

func checkCmd(configPath *string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the config, action table and page",
		Long: `Check the config file, the action table and the page source
without starting the server. Every problem found is reported.

Examples:
  catsite check
  catsite check --config=prod.toml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			return runCheck(ctx, cmd.OutOrStdout(), *configPath)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time allowed for reading the page source")

	return cmd
}

func runCheck(ctx context.Context, out io.Writer, path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		failure(out, "config %s", path)
		return err
	}
	if err := cfg.Validate(); err != nil {
		failure(out, "config %s", path)
		return err
	}
	success(out, "config %s", cfg.Path())

	var errs []error

	table, err := actionTable(cfg)
	if err != nil {
		failure(out, "action table %s", actionsName(cfg))
		errs = append(errs, err)
	} else if err := table.Validate(); err != nil {
		failure(out, "action table %s", actionsName(cfg))
		errs = append(errs, errors.New("E130").WithDetail(actionsName(cfg)).Wrap(err))
	} else {
		success(out, "action table %s", actionsName(cfg))
		info(out, "%d labels, %d roles, %d scroll targets",
			len(table.LabelNames()), len(table.RoleNames()), len(table.Targets()))
	}

	src, err := assetSource(cfg)
	if err != nil {
		failure(out, "page source %s", cfg.Assets.Source)
		return stderrors.Join(append(errs, err)...)
	}
	var total uint64
	missing := false
	for _, name := range pageFiles {
		size, err := fileSize(ctx, src, name)
		if err != nil {
			missing = true
			warn(out, "%s: %v", name, err)
			if name == assets.IndexFile {
				errs = append(errs, errors.New("E123").WithDetail(fmt.Sprintf("source %q", cfg.Assets.Source)).Wrap(err))
			}
			continue
		}
		total += size
		info(out, "%-12s %s", name, humanize.Bytes(size))
	}
	if missing {
		failure(out, "page source %s", cfg.Assets.Source)
	} else {
		success(out, "page source %s (%s)", cfg.Assets.Source, humanize.Bytes(total))
	}

	return stderrors.Join(errs...)
}

// fileSize reads name from src and returns its length.
func fileSize(ctx context.Context, src assets.Source, name string) (uint64, error) {
	rc, info, err := src.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer rc.Close()
	if info.Size > 0 {
		return uint64(info.Size), nil
	}
	n, err := io.Copy(io.Discard, rc)
	return uint64(n), err
}
