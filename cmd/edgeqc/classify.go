package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/agenthands/edgeqc/internal/core"
	"github.com/agenthands/edgeqc/internal/driver"
	"github.com/agenthands/edgeqc/internal/jsonl"
	"github.com/agenthands/edgeqc/internal/resolution"
)

var (
	edgesPath  string
	nodesPath  string
	outputDir  string
	maxEdges   int
	batchSize  int
	toMemgraph bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify edges into good, bad and ambiguous partitions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if edgesPath == "" {
			return fmt.Errorf("%w: --edges", errMissingFlag)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output-dir") {
			cfg.Output.Dir = outputDir
		}
		if cmd.Flags().Changed("max-edges") {
			cfg.Classifier.MaxEdges = maxEdges
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.Classifier.EdgeBatchSize = batchSize
		}
		if cmd.Flags().Changed("memgraph") {
			cfg.Memgraph.Enabled = toMemgraph
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		names := map[string]string{}
		if nodesPath != "" {
			names, err = jsonl.LoadNodeNames(nodesPath)
			if err != nil {
				return err
			}
			log.Info("loaded node names", "nodes", len(names))
		}

		svc, err := resolution.NewClient(cfg.Resolution, cfg.Classifier.LookupLimit, log)
		if err != nil {
			return err
		}

		partitions, err := jsonl.NewPartitionWriter(cfg.Output.Dir)
		if err != nil {
			return err
		}
		sinks := jsonl.MultiSink{partitions}

		var graph *driver.GraphSink
		if cfg.Memgraph.Enabled {
			d, err := driver.NewMemgraphDriver(ctx, cfg.Memgraph.URI, cfg.Memgraph.User, cfg.Memgraph.Password, log.With("component", "memgraph"))
			if err != nil {
				_ = partitions.Close(ctx)
				return err
			}
			defer d.Close(context.Background())
			if err := d.BuildIndices(ctx); err != nil {
				_ = partitions.Close(ctx)
				return err
			}
			graph = driver.NewGraphSink(d, log)
			sinks = append(sinks, graph)
		}

		qc := core.NewQC(svc, cfg, log.With("component", "qc"))
		summary, runErr := qc.Run(ctx, jsonl.FileSource{Path: edgesPath}, names, sinks)
		if err := sinks.Close(context.Background()); err != nil && runErr == nil {
			runErr = fmt.Errorf("failed to close outputs: %w", err)
		}
		if runErr != nil {
			return runErr
		}

		log.Info("wrote partitions", "dir", cfg.Output.Dir, "counts", partitions.Counts(), "total", summary.Total)
		if graph != nil {
			counts, err := graph.Counts(ctx)
			if err != nil {
				log.Warn("failed to read graph counts", "error", err)
			} else {
				log.Info("graph assertions", "counts", counts)
			}
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&edgesPath, "edges", "e", "", "JSONL file of edges to classify")
	classifyCmd.Flags().StringVarP(&nodesPath, "nodes", "n", "", "JSONL file of nodes, used for display names")
	classifyCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "output", "Directory for the partition files")
	classifyCmd.Flags().IntVar(&maxEdges, "max-edges", 0, "Classify at most this many edges (0 = all)")
	classifyCmd.Flags().IntVar(&batchSize, "batch-size", 1000, "Edges per classification batch")
	classifyCmd.Flags().BoolVar(&toMemgraph, "memgraph", false, "Also write outcomes to Memgraph")
}
