package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/muse/pkg/cli"
	"github.com/haivivi/muse/pkg/kv"
	"github.com/haivivi/muse/pkg/muse"
	"github.com/haivivi/muse/pkg/rules"
)

// ---------------------------------------------------------------------------
// museEnv: runtime environment for agent commands
// ---------------------------------------------------------------------------

// museEnv bundles what an agent command needs: the resolved config
// context, the agent with any persisted state restored, and the badger
// store behind it.
type museEnv struct {
	cliCtx *cli.Context
	agent  *muse.Agent
	store  *kv.Badger
	key    kv.Key

	dataDir string
	fresh   bool
}

func (e *museEnv) close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// save snapshots the agent back into the store. Commands that mutate
// agent state call it before printing their report.
func (e *museEnv) save(ctx context.Context) error {
	if flagNoSave {
		return nil
	}
	raw, err := msgpack.Marshal(e.agent.Snapshot())
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := e.store.Set(ctx, e.key, raw); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// openAgent builds the environment: resolve the context, open badger
// under the data directory, construct the agent, and restore the last
// snapshot if one exists.
func openAgent(ctx context.Context) (*museEnv, error) {
	cliCtx, err := resolveCLIContext()
	if err != nil {
		return nil, err
	}

	dir, err := resolveDataDir(cliCtx)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	store, err := kv.NewBadger(kv.BadgerOptions{Dir: dir})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	mcfg := muse.Config{
		Depth:                   cliCtx.Depth,
		DisableCriticalThinking: cliCtx.NoCriticalThinking,
	}
	rulesPath := flagRules
	if rulesPath == "" {
		rulesPath = cliCtx.RulesFile
	}
	if rulesPath != "" {
		sets, err := rules.LoadSets(rulesPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("load rules: %w", err)
		}
		mcfg.Rules = sets
	}

	agent, err := muse.New(mcfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	profile := cliCtx.Name
	if profile == "" {
		profile = "default"
	}
	env := &museEnv{
		cliCtx:  cliCtx,
		agent:   agent,
		store:   store,
		key:     kv.Key{"agent", profile, "state"},
		dataDir: dir,
	}

	raw, err := store.Get(ctx, env.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		env.fresh = true
	case err != nil:
		store.Close()
		return nil, fmt.Errorf("load state: %w", err)
	default:
		var st muse.State
		if err := msgpack.Unmarshal(raw, &st); err != nil {
			store.Close()
			return nil, fmt.Errorf("decode state %s: %w", env.key, err)
		}
		agent.Restore(st)
	}
	return env, nil
}

// resolveCLIContext returns the context named by --context, then the
// current context, then zero-value defaults so a fresh install works
// without any configuration.
func resolveCLIContext() (*cli.Context, error) {
	cfg, err := GetConfig()
	if err != nil {
		if flagContext != "" {
			return nil, err
		}
		return &cli.Context{}, nil
	}
	cliCtx, err := cfg.ResolveContext(flagContext)
	if err != nil {
		if flagContext != "" {
			return nil, err
		}
		return &cli.Context{}, nil
	}
	return cliCtx, nil
}

// resolveDataDir picks the agent state directory: the --data-dir flag,
// then MUSE_DATA_DIR, then the context setting, then the default under
// the OS config directory.
func resolveDataDir(cliCtx *cli.Context) (string, error) {
	if flagDataDir != "" {
		return flagDataDir, nil
	}
	if dir := os.Getenv(cli.EnvDataDir); dir != "" {
		return dir, nil
	}
	if cliCtx.DataDir != "" {
		return cliCtx.DataDir, nil
	}
	p, err := cli.NewPaths()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return p.DataDir(), nil
}
