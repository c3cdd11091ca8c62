package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/agenthands/bibalign/internal/app"
	"github.com/agenthands/bibalign/internal/core/model"
	"github.com/agenthands/bibalign/internal/core/reduce"
	"github.com/agenthands/bibalign/internal/core/repr"
	"github.com/agenthands/bibalign/internal/format"
	"github.com/agenthands/bibalign/internal/server"
	"github.com/agenthands/bibalign/internal/sparql"
)

func reduceCmd(e *env) *cobra.Command {
	var (
		author     string
		sparqlJSON bool
		outFormat  string
		save       bool
	)
	cmd := &cobra.Command{
		Use:   "reduce [tuples-file]",
		Short: "Reduce relation tuples to publication records",
		Long: `Reduce reads relation tuples as JSON lines (or SPARQL JSON results with
--sparql-json) from a file or stdin, or fetches them for --author, and prints
the publication records.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := e.open(ctx, app.Options{Graph: save, NoStash: true})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			var tuples []model.RelationTuple
			if author != "" {
				id, err := model.ParseDblpAuthID(author)
				if err != nil {
					return err
				}
				tuples, err = a.Sparql.AuthorTuples(ctx, id)
				if err != nil {
					return err
				}
			} else {
				tuples, err = readTuples(args, cmd.InOrStdin(), sparqlJSON)
				if err != nil {
					return err
				}
			}

			results, err := a.Catalog.ReducePublications(ctx, tuples)
			if err != nil {
				return err
			}
			pubs := reduce.Publications(results)
			if save {
				if err := a.Catalog.SavePublications(ctx, pubs); err != nil {
					return err
				}
			}
			return writePublications(cmd.OutOrStdout(), pubs, outFormat)
		},
	}
	cmd.Flags().StringVar(&author, "author", "", "Fetch tuples for this dblp pid instead of reading them")
	cmd.Flags().BoolVar(&sparqlJSON, "sparql-json", false, "Input is a SPARQL JSON results document")
	cmd.Flags().StringVarP(&outFormat, "format", "f", "json", "Output format (json, bibtex, xml)")
	cmd.Flags().BoolVar(&save, "save", false, "Also export the records to Memgraph")
	return cmd
}

func readTuples(args []string, stdin io.Reader, sparqlJSON bool) ([]model.RelationTuple, error) {
	r := stdin
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	if sparqlJSON {
		return sparql.DecodeResults(r)
	}
	return sparql.DecodeTuples(r)
}

func writePublications(w io.Writer, pubs []*repr.Publication, outFormat string) error {
	switch outFormat {
	case "bibtex":
		return format.BibtexLibrary(w, pubs)
	case "xml":
		return format.WriteXML(w, pubs)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pubs)
	}
	return fmt.Errorf("unknown format %q", outFormat)
}

func alignCmd(e *env) *cobra.Command {
	var (
		openreviewID string
		asJSON       bool
		save         bool
	)
	cmd := &cobra.Command{
		Use:   "align <dblp-pid>",
		Short: "Align an author's dblp publications with their OpenReview notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			author, err := model.ParseDblpAuthID(args[0])
			if err != nil {
				return err
			}
			a, err := e.open(ctx, app.Options{Graph: save})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			run, err := a.Catalog.AlignAuthor(ctx, author, openreviewID)
			if err != nil {
				return err
			}
			if save {
				if err := a.Catalog.SaveAlignment(ctx, run); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(server.AlignResponse{
					RunID:        run.ID,
					Author:       run.Author,
					OpenReviewID: run.OpenReviewID,
					Summary:      format.Summarize(run.Alignments),
				})
			}
			fmt.Fprintf(out, "run %s: %s (dblp) vs %s (openreview)\n", run.ID, run.Author, run.OpenReviewID)
			return format.WriteReport(out, run.Alignments)
		},
	}
	cmd.Flags().StringVar(&openreviewID, "openreview", "", "OpenReview profile id; resolved from the dblp pid when empty")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the alignment as JSON")
	cmd.Flags().BoolVar(&save, "save", false, "Also export the alignment to Memgraph")
	return cmd
}

func notesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "notes <openreview-id>",
		Short: "Print the valid OpenReview notes of an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := e.open(ctx, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			notes, err := a.OpenReview.NotesForAuthor(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(notes)
		},
	}
}

func queryCmd(e *env) *cobra.Command {
	var run bool
	cmd := &cobra.Command{
		Use:   "query <dblp-pid>",
		Short: "Print the SPARQL query for an author, or run it and print tuples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := model.ParseDblpAuthID(args[0])
			if err != nil {
				return err
			}
			if !run {
				q, err := sparql.AuthorPublicationQuery(author.URI())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), q)
				return err
			}

			ctx := cmd.Context()
			a, err := e.open(ctx, app.Options{NoStash: true})
			if err != nil {
				return err
			}
			defer a.Close(ctx)
			tuples, err := a.Sparql.AuthorTuples(ctx, author)
			if err != nil {
				return err
			}
			return sparql.EncodeTuples(cmd.OutOrStdout(), tuples)
		},
	}
	cmd.Flags().BoolVar(&run, "run", false, "Run the query and print JSON-lines tuples")
	return cmd
}

func exportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export <dblp-pid>...",
		Short: "Fetch, reduce and export authors' publications to Memgraph",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := e.open(ctx, app.Options{Graph: true, NoStash: true})
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			if err := a.Catalog.BuildIndices(ctx); err != nil {
				return err
			}
			for _, arg := range args {
				author, err := model.ParseDblpAuthID(arg)
				if err != nil {
					return err
				}
				pubs, err := a.Catalog.AuthorPublications(ctx, author)
				if err != nil {
					return err
				}
				if err := a.Catalog.SavePublications(ctx, pubs); err != nil {
					return err
				}
				e.logger.Info("exported author", "pid", author.PID(), "publications", len(pubs))
			}
			return nil
		},
	}
}

func serveCmd(e *env) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				e.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, e)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides config)")
	return cmd
}

func serve(ctx context.Context, e *env) error {
	a, err := e.open(ctx, app.Options{Graph: true})
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	if err := a.Catalog.BuildIndices(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + e.cfg.Server.Port,
		Handler:           server.NewServer(a.Catalog, a.Metrics, e.logger).SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		e.logger.Info("starting server", "port", e.cfg.Server.Port)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	e.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
