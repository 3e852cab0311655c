package cmd

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/config"
	"github.com/kamusis/orient-cli/internal/embeddings"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/level"
	"github.com/kamusis/orient-cli/internal/rank"
	searchindex "github.com/kamusis/orient-cli/internal/search/index"
)

const (
	modeSemantic = "semantic"
	modeKeyword  = "keyword"
)

// errUnavailableHint is shown when the index could not be queried, as
// opposed to a query that matched nothing.
const errUnavailableHint = "search is temporarily unavailable, try again"

// engine bundles what a ranking command needs.
type engine struct {
	cfg        *config.Config
	mode       string
	ranker     *rank.Ranker
	classifier *level.Classifier
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w\nRun 'orient init' first.", err)
	}
	return cfg, nil
}

// newEngine wires the searcher, static tables and ranker. The semantic
// index is used when it loads and the embeddings provider matches it;
// otherwise (or with keywordOnly) the catalog is searched by keyword.
func newEngine(cfg *config.Config, keywordOnly bool) (*engine, error) {
	tbl, err := geo.LoadRegionTable(cfg.RegionsFile)
	if err != nil {
		return nil, err
	}
	cls, err := level.LoadClassifier(cfg.DomainsFile)
	if err != nil {
		return nil, err
	}

	var (
		searcher rank.Searcher
		mode     = modeKeyword
	)
	if !keywordOnly {
		vs, err := semanticSearcher(cfg)
		if err == nil {
			searcher, mode = vs, modeSemantic
		} else {
			logger.Info("semantic search unavailable, using keyword search", zap.Error(err))
		}
	}
	if searcher == nil {
		entries, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			return nil, err
		}
		searcher = searchindex.NewKeywordSearcher(entries)
	}

	r := rank.New(searcher, geo.NewResolver(tbl), cls, logger, rank.Options{
		OverFetchFactor: cfg.OverFetchFactor,
		MetroRegion:     cfg.MetroRegion,
		Timeout:         cfg.SearchTimeout,
	})
	logger.Debug("engine ready", zap.String("mode", mode), zap.Int("overfetch", r.Options().OverFetchFactor))
	return &engine{cfg: cfg, mode: mode, ranker: r, classifier: cls}, nil
}

func semanticSearcher(cfg *config.Config) (*searchindex.VectorSearcher, error) {
	idx, err := searchindex.Load(cfg.IndexDir)
	if err != nil {
		return nil, err
	}
	prov, err := newProvider()
	if err != nil {
		return nil, err
	}
	return searchindex.NewVectorSearcher(idx, prov)
}

// newProvider builds the embeddings provider behind a circuit breaker whose
// transitions are logged.
func newProvider() (embeddings.Provider, error) {
	embCfg, err := embeddings.LoadConfig()
	if err != nil {
		return nil, err
	}
	threshold := embCfg.FailureThreshold
	embCfg.FailureThreshold = 0
	prov, err := embeddings.NewFromConfig(embCfg)
	if err != nil {
		return nil, err
	}
	if prov.ModelID() == "" {
		return nil, errors.New("embeddings model is not configured (set ORIENT_EMBEDDINGS_MODEL)")
	}
	return embeddings.WithBreaker(prov, embeddings.BreakerSettings{
		FailureThreshold: threshold,
		OnStateChange: func(from, to string) {
			logger.Warn("embeddings circuit breaker", zap.String("from", from), zap.String("to", to))
		},
	}), nil
}

// userError maps retrieval failures to the message shown to students.
func userError(err error) error {
	if errors.Is(err, rank.ErrRetrievalUnavailable) {
		return fmt.Errorf("%s: %w", errUnavailableHint, err)
	}
	return err
}

func effectiveK(cfg *config.Config, flagK int) int {
	if flagK > 0 {
		return flagK
	}
	return cfg.TopK
}
