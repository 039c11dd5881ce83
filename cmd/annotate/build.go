package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/document"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/internal/annotator/matcher"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/grpc"
	"github.com/Adithya-Monish-Kumar-K/News-Annotation-Platform/pkg/proto"
	"github.com/spf13/cobra"
)

type buildOptions struct {
	terms     []string
	termsFile string
	matcher   string
	format    string
	remote    string
	timeout   time.Duration
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build [FILE...]",
		Short: "Build annotated documents for text files or stdin",
		Long: `Build one document per input. Each file is its own section, named after
the file; without arguments stdin is read as a single section "stdin".

Examples:
  annotate build --term AI --term "machine learning" article.txt
  annotate build --terms-file terms.txt --format text short.txt long.txt
  annotate build --remote localhost:9100 --term AI < article.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, args, opts)
		},
	}
	cmd.Flags().StringArrayVar(&opts.terms, "term", nil, "vocabulary term (repeatable)")
	cmd.Flags().StringVar(&opts.termsFile, "terms-file", "", "file with one term per line")
	cmd.Flags().StringVar(&opts.matcher, "matcher", string(matcher.KindAutomaton), "matching strategy (pattern, automaton)")
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format (json, text)")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "build on an annotation service at this RPC address")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "remote call timeout")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string, opts *buildOptions) error {
	if opts.format != "json" && opts.format != "text" {
		return fmt.Errorf("unknown format %q", opts.format)
	}
	kind, err := matcher.ParseKind(opts.matcher)
	if err != nil {
		return err
	}
	terms, err := collectTerms(opts)
	if err != nil {
		return err
	}
	sections, err := readSections(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	var docs []*document.Document
	if opts.remote != "" {
		docs, err = buildRemote(cmd.Context(), opts, sections, terms, kind)
	} else {
		docs, err = buildLocal(cmd.Context(), sections, terms, kind)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.format == "text" {
		for i, doc := range docs {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s ==\n", doc.SectionID)
			fmt.Fprintln(out, renderText(doc))
		}
		return nil
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

func buildLocal(ctx context.Context, sections []annotator.Section, terms []string, kind matcher.Kind) ([]*document.Document, error) {
	b, err := annotator.NewFromTerms(terms, kind)
	if err != nil {
		return nil, err
	}
	return b.BuildAll(ctx, sections)
}

func buildRemote(ctx context.Context, opts *buildOptions, sections []annotator.Section, terms []string, kind matcher.Kind) ([]*document.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	client, err := grpc.Dial(ctx, opts.remote)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	req := &proto.AnnotateRequest{Terms: terms, Matcher: string(kind)}
	for _, s := range sections {
		req.Sections = append(req.Sections, proto.Section{ID: s.ID, Text: s.Text})
	}
	var resp proto.AnnotateResponse
	if err := client.Call(ctx, proto.MethodAnnotate, req, &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

func collectTerms(opts *buildOptions) ([]string, error) {
	terms := append([]string(nil), opts.terms...)
	if opts.termsFile == "" {
		return terms, nil
	}
	f, err := os.Open(opts.termsFile)
	if err != nil {
		return nil, fmt.Errorf("opening terms file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		// terms are exact strings; only the line break is dropped
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		terms = append(terms, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading terms file: %w", err)
	}
	return terms, nil
}

func readSections(stdin io.Reader, paths []string) ([]annotator.Section, error) {
	if len(paths) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return []annotator.Section{{ID: "stdin", Text: string(data)}}, nil
	}
	sections := make([]annotator.Section, 0, len(paths))
	ids := sectionIDs(paths)
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		sections = append(sections, annotator.Section{ID: ids[i], Text: string(data)})
	}
	return sections, nil
}

// sectionIDs names each file by its base name, falling back to the cleaned
// path when base names collide, and to a numeric suffix when the same path
// is given twice.
func sectionIDs(paths []string) []string {
	bases := make(map[string]int, len(paths))
	for _, p := range paths {
		bases[filepath.Base(p)]++
	}
	ids := make([]string, len(paths))
	used := make(map[string]int, len(paths))
	for i, p := range paths {
		id := filepath.Base(p)
		if bases[id] > 1 {
			id = filepath.ToSlash(filepath.Clean(p))
		}
		used[id]++
		if n := used[id]; n > 1 {
			id = fmt.Sprintf("%s#%d", id, n)
		}
		ids[i] = id
	}
	return ids
}

// renderText prints the document with annotated runs wrapped in [[ ]].
func renderText(doc *document.Document) string {
	var sb strings.Builder
	for _, p := range doc.Paragraphs {
		for i, line := range p.Lines {
			if i > 0 {
				sb.WriteByte('\n')
			}
			for _, r := range line.Runs {
				if r.IsAnnotation() {
					sb.WriteString("[[")
					sb.WriteString(r.Value)
					sb.WriteString("]]")
					continue
				}
				sb.WriteString(r.Value)
			}
		}
		sb.WriteString(p.Separator)
	}
	return sb.String()
}
