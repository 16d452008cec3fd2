package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/config"
	"github.com/tally-dev/tally/internal/gitops"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/reconcile"
	"github.com/tally-dev/tally/internal/rules"
	"github.com/tally-dev/tally/internal/store"
)

const (
	configFile = "tally.yaml"
	rulesFile  = "rules.yaml"
)

// env wires the services a command needs from a project directory.
type env struct {
	dir     string
	cfg     *config.Config
	log     zerolog.Logger
	ledger  *ledger.Service
	pending *reconcile.Service
}

func newEnv(dir string, log zerolog.Logger) (*env, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(absDir, configFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("no %s in %s (run `tally init` first)", configFile, absDir)
		}
		return nil, err
	}

	st := store.NewFileStore(absDir, map[string]string{
		"pending": reconcile.Header,
		"ledger":  ledger.Header,
	})
	led := ledger.NewService(st)
	return &env{
		dir:     absDir,
		cfg:     cfg,
		log:     log,
		ledger:  led,
		pending: reconcile.NewService(st, led, log),
	}, nil
}

// loadRules reads rules.yaml; a missing file means no rules yet.
func (e *env) loadRules() ([]model.TransactionRule, error) {
	ruleList, err := rules.Load(filepath.Join(e.dir, rulesFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return ruleList, nil
}

// autoCommit records the data change in git when enabled. Failures are
// logged, not fatal: the data write already succeeded.
func (e *env) autoCommit(message string) {
	if !e.cfg.Git.AutoCommit || !gitops.IsRepo(e.dir) {
		return
	}
	hash, err := gitops.CommitAll(e.dir, message, e.cfg.Git.AuthorName, e.cfg.Git.AuthorEmail)
	if err != nil {
		e.log.Warn().Err(err).Msg("auto-commit failed")
		return
	}
	if hash != "" {
		e.log.Debug().Str("commit", hash).Msg("auto-committed")
	}
}

// readInput reads an import file, or stdin when path is "-".
func readInput(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
