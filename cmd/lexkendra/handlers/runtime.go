// Package handlers implements the lexkendra commands.
//
// Every external dependency is reached through a package-level factory
// variable so tests can replace AWS access with fakes.
package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-logr/logr"

	"github.com/lexkendra/lexkendra/internal/answer"
	"github.com/lexkendra/lexkendra/internal/config"
	"github.com/lexkendra/lexkendra/internal/lifecycle"
	"github.com/lexkendra/lexkendra/internal/logging"
	"github.com/lexkendra/lexkendra/internal/platform/awsclient"
	"github.com/lexkendra/lexkendra/internal/provisioning/bot"
	"github.com/lexkendra/lexkendra/internal/provisioning/index"
	"github.com/lexkendra/lexkendra/internal/statestore"
)

// Resource graphs served by the binary.
const (
	ResourceIndex  = "index"
	ResourceBot    = "bot"
	ResourceAnswer = "answer"
)

// Factory function variables - can be replaced in tests.
var (
	loadConfig = func(path string) (*config.Config, error) {
		if path == "" {
			return config.LoadFromEnv()
		}
		return config.Load(path)
	}

	loadClients = awsclient.Load

	newLogger = logging.New

	newIndexProvisioner = func(cfg *config.Config, clients *awsclient.Clients, store statestore.Store) lifecycle.Provisioner {
		guard := lifecycle.NewUpdateGuard(clients.CloudFormation)
		return index.NewProvisioner(clients.Kendra, store, guard,
			index.WithDataSourceRetryDelay(cfg.Delays.DataSourceRetry))
	}

	newBotProvisioner = func(cfg *config.Config, clients *awsclient.Clients, _ statestore.Store) lifecycle.Provisioner {
		guard := lifecycle.NewUpdateGuard(clients.CloudFormation)
		return bot.NewDeployer(clients.Lex, clients.S3, guard, clients.Config.Region,
			bot.WithAliasName(cfg.Bot.AliasName),
			bot.WithConflictDelay(cfg.Delays.ConflictRetry))
	}

	newSearcher = func(clients *awsclient.Clients) answer.Searcher {
		return clients.Kendra
	}

	newPresigner = func(clients *awsclient.Clients) answer.Presigner {
		return clients.S3
	}

	newReporter = func() lifecycle.Reporter {
		return lifecycle.NewHTTPReporter(http.DefaultClient)
	}
)

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	cfg     *config.Config
	clients *awsclient.Clients
	logger  logr.Logger
}

func newRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, err
	}
	clients, err := loadClients(ctx, awsclient.Options{
		Region:   cfg.Region,
		Profile:  cfg.Profile,
		Endpoint: cfg.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return &runtime{cfg: cfg, clients: clients, logger: logger}, nil
}

// store returns the configured state store backend.
func (r *runtime) store() statestore.Store {
	switch r.cfg.StateStore.Backend {
	case config.BackendS3:
		return statestore.NewObjectStore(r.clients.S3, r.cfg.StateStore.Bucket, r.cfg.StateStore.KeyPrefix)
	case config.BackendMemory:
		return statestore.NewMemory()
	default:
		return statestore.NewParameterStore(r.clients.SSM, r.cfg.StateStore.ParameterPrefix)
	}
}

// scheduler returns the repoll strategy used inside Lambda.
func (r *runtime) scheduler() lifecycle.Scheduler {
	p := r.cfg.Polling
	if p.Mode == config.PollingSelfInvoke {
		return lifecycle.NewInvokeScheduler(r.clients.Lambda, p.FunctionARN, p.Interval)
	}
	return lifecycle.NewRuleScheduler(r.clients.EventBridge, r.clients.Lambda, p.FunctionARN, p.Interval)
}

func (r *runtime) provisioner(resource string, store statestore.Store) (lifecycle.Provisioner, error) {
	switch resource {
	case ResourceIndex:
		return newIndexProvisioner(r.cfg, r.clients, store), nil
	case ResourceBot:
		return newBotProvisioner(r.cfg, r.clients, store), nil
	default:
		return nil, fmt.Errorf("unknown resource %q (must be %s or %s)", resource, ResourceIndex, ResourceBot)
	}
}

// machine binds the provisioner for resource to the given reporter and scheduler.
func (r *runtime) machine(resource string, store statestore.Store, reporter lifecycle.Reporter, scheduler lifecycle.Scheduler) (*lifecycle.Machine, error) {
	p, err := r.provisioner(resource, store)
	if err != nil {
		return nil, err
	}
	return lifecycle.NewMachine(resource, p, reporter, scheduler, store,
		lifecycle.WithMaxPollAttempts(r.cfg.Polling.MaxAttempts),
		lifecycle.WithDeleteSettle(r.cfg.Delays.DeleteSettle),
	), nil
}

// answerHandler builds the fulfillment handler. The index comes from the
// configuration, or from the state store when only its key is known.
func (r *runtime) answerHandler(store statestore.Store, indexID string) *answer.Handler {
	var source answer.IndexSource
	switch {
	case indexID != "":
		source = answer.StaticIndex(indexID)
	case r.cfg.Answer.IndexID != "":
		source = answer.StaticIndex(r.cfg.Answer.IndexID)
	case r.cfg.Answer.IndexKey != "":
		source = answer.StoredIndex(store, r.cfg.Answer.IndexKey)
	}
	formatter := answer.NewFormatter(newPresigner(r.clients), r.cfg.Answer.DataBucket, r.cfg.Answer.LinkExpiry)
	return answer.NewHandler(formatter, newSearcher(r.clients), source)
}
