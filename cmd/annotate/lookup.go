package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/definition"
	apperrors "github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
	"github.com/spf13/cobra"
)

type lookupOptions struct {
	definitions string
	remote      string
	timeout     time.Duration
}

func newLookupCmd() *cobra.Command {
	opts := &lookupOptions{}
	cmd := &cobra.Command{
		Use:   "lookup TERM",
		Short: "Resolve the definition of a term",
		Long: `Resolve a term exactly as a reader activating its annotation would.
A missing definition prints the fallback message and exits non-zero.

Examples:
  annotate lookup AI --definitions configs/definitions.yaml
  annotate lookup C++ --remote localhost:9100`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLookup(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.definitions, "definitions", "configs/definitions.yaml", "YAML definitions table")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "resolve on an annotation service at this RPC address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "lookup timeout")
	return cmd
}

func runLookup(cmd *cobra.Command, term string, opts *lookupOptions) error {
	ctx := cmd.Context()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	var (
		resp *proto.LookupResponse
		err  error
	)
	if opts.remote != "" {
		resp, err = lookupRemote(ctx, opts.remote, term)
	} else {
		resp, err = lookupLocal(ctx, opts.definitions, term)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrDefinitionNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), apperrors.Message(err, fmt.Sprintf("no definition found for «%s»", term)))
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", resp.Term, resp.Definition)
	if resp.Example != "" {
		fmt.Fprintf(out, "  e.g. %s\n", resp.Example)
	}
	return nil
}

func lookupLocal(ctx context.Context, path, term string) (*proto.LookupResponse, error) {
	table, err := definition.LoadStatic(path)
	if err != nil {
		return nil, err
	}
	d, err := table.Lookup(ctx, term)
	if err != nil {
		return nil, err
	}
	return &proto.LookupResponse{Term: term, Definition: d.Definition, Example: d.Example}, nil
}

func lookupRemote(ctx context.Context, addr, term string) (*proto.LookupResponse, error) {
	client, err := grpc.Dial(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	var resp proto.LookupResponse
	if err := client.Call(ctx, proto.MethodLookup, &proto.LookupRequest{Term: term}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
