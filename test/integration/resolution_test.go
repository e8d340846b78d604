//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/agenthands/edgeqc/internal/config"
	"github.com/agenthands/edgeqc/internal/core"
	"github.com/agenthands/edgeqc/internal/core/model"
	"github.com/agenthands/edgeqc/internal/jsonl"
	"github.com/agenthands/edgeqc/internal/logger"
	"github.com/agenthands/edgeqc/internal/resolution"
)

func loadConfig(t *testing.T) *config.Config {
	t.Helper()
	_ = godotenv.Load("../../.env")
	cfg, err := config.Load("../../config/config.toml")
	if err != nil {
		t.Logf("Config not found, using default: %v", err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()
	require.NoError(t, cfg.Validate())
	return cfg
}

func newService(t *testing.T, cfg *config.Config) resolution.Service {
	t.Helper()
	svc, err := resolution.NewClient(cfg.Resolution, cfg.Classifier.LookupLimit, logger.FromZap(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return svc
}

func TestNormalizeDoxorubicin(t *testing.T) {
	cfg := loadConfig(t)
	svc := newService(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	nodes, err := svc.Normalize(ctx, []string{"CHEBI:28748", "NOTAPREFIX:0"}, resolution.DefaultNormalizeOptions)
	require.NoError(t, err)
	require.Contains(t, nodes, "CHEBI:28748")
	assert.Equal(t, "CHEBI:28748", nodes["CHEBI:28748"].ID.Identifier)
	assert.NotContains(t, nodes, "NOTAPREFIX:0")

	syn, err := svc.Synonyms(ctx, []string{"CHEBI:28748"})
	require.NoError(t, err)
	assert.Contains(t, lower(syn["CHEBI:28748"].Names), "doxorubicin")
}

func TestBulkLookupFSH(t *testing.T) {
	cfg := loadConfig(t)
	svc := newService(t, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	res, err := svc.BulkLookup(ctx, []string{"FSH"}, "")
	require.NoError(t, err)
	require.Contains(t, res, "FSH")
	assert.NotEmpty(t, res["FSH"])
}

func TestClassifyDoxorubicinEdge(t *testing.T) {
	cfg := loadConfig(t)
	svc := newService(t, cfg)

	dir := t.TempDir()
	w, err := jsonl.NewPartitionWriter(dir)
	require.NoError(t, err)

	edges := jsonl.SliceSource{{
		Subject:   "CHEBI:28748",
		Predicate: "biolink:affects",
		Object:    "UniProtKB:P18887",
		Sentences: "The significant increase in CDKN1A and XRCC1 suggest a cell cycle arrest in response to doxorubicin-induced DNA breaks.|NA",
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	summary, err := core.NewQC(svc, cfg, logger.FromZap(zaptest.NewLogger(t))).Run(ctx, edges, nil, w)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))
	assert.Equal(t, 1, summary.Total)

	var all []model.ClassifiedEdge
	for _, c := range model.Classifications {
		recs, err := jsonl.ReadPartition(dir, c)
		require.NoError(t, err)
		all = append(all, recs...)
	}
	require.Len(t, all, 1)
	assert.Equal(t, model.StatusResolved, all[0].Rationale.Subject.Status)
	assert.FileExists(t, filepath.Join(dir, "good_edges.jsonl"))
}

func TestClassifyFollitropinIsNotResolved(t *testing.T) {
	cfg := loadConfig(t)
	svc := newService(t, cfg)

	dir := t.TempDir()
	w, err := jsonl.NewPartitionWriter(dir)
	require.NoError(t, err)
	defer w.Close(context.Background())

	edges := jsonl.SliceSource{{
		Subject:   "CHEBI:81569",
		Object:    "UniProtKB:P80370",
		Sentences: "FSH furthermore directly upregulated expression of the protein.",
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	_, err = core.NewQC(svc, cfg, logger.FromZap(zaptest.NewLogger(t))).Run(ctx, edges, map[string]string{"CHEBI:81569": "follitropin"}, w)
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	var all []model.ClassifiedEdge
	for _, c := range model.Classifications {
		recs, err := jsonl.ReadPartition(dir, c)
		require.NoError(t, err)
		all = append(all, recs...)
	}
	require.Len(t, all, 1)
	assert.NotEqual(t, model.ClassificationGood, all[0].Classification)
	assert.NotEqual(t, model.StatusResolved, all[0].Rationale.Subject.Status)

	if os.Getenv("EDGEQC_VERBOSE") != "" {
		t.Logf("subject rationale: %+v", all[0].Rationale.Subject)
	}
}

func lower(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}
