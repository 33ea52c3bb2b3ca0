package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	specialistx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/agents/specialist"
	supervisorx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/agents/supervisor"
	apix "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/api"
	llmx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/llm"
	memoryx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/memory"
	promptx "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/prompt"
	statex "github.com/tanpawarit/Chative-Multi-Agent-Support/agent/state"
	chinookx "github.com/tanpawarit/Chative-Multi-Agent-Support/pkg/chinook"
	configx "github.com/tanpawarit/Chative-Multi-Agent-Support/pkg/config"
	_ "github.com/tanpawarit/Chative-Multi-Agent-Support/pkg/logger/autoload"
)

const (
	storeNone    = "none"
	storeMemory  = "memory"
	storeRedis   = "redis"
	storeUpstash = "upstash"
)

type AppConfig struct {
	Port             string `envconfig:"PORT" default:"8080"`
	ProfileNamespace string `split_words:"true" default:"user_profiles"`
	ProfileMerge     bool   `split_words:"true" default:"false"`
	// ProfileStore is one of memory, redis.
	ProfileStore string `split_words:"true" default:"memory"`
	// CheckpointStore is one of none, memory, upstash.
	CheckpointStore string `split_words:"true" default:"memory"`

	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
	ReadTimeout     time.Duration `split_words:"true" default:"30s"`
	WriteTimeout    time.Duration `split_words:"true" default:"120s"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCfg := configx.MustNew[AppConfig]("APP")
	llmCfg := configx.MustNew[llmx.Config]("LLM")
	chinookCfg := configx.MustNew[chinookx.Config]("CHINOOK")

	db, err := chinookx.Open(ctx, *chinookCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open chinook database")
	}
	defer db.Close()

	data := chinookx.NewCachedService(chinookx.NewService(db), chinookCfg.CacheSize, chinookCfg.CacheTTL)

	completer, err := llmx.NewCompleter(ctx, *llmCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create completer")
	}

	profiles, closeProfiles := mustProfileStore(ctx, appCfg.ProfileStore)
	defer closeProfiles()
	checkpoints := mustCheckpointStore(appCfg.CheckpointStore)

	prompts := promptx.LoadPromptSet()
	registry, err := specialistx.NewRegistry(specialistx.Deps{
		Data:          data,
		Completer:     completer,
		Profiles:      profiles,
		Checkpoints:   checkpoints,
		Prompts:       prompts,
		Namespace:     appCfg.ProfileNamespace,
		MergeProfiles: appCfg.ProfileMerge,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agents")
	}

	supervisor, err := supervisorx.New(completer, data, prompts.Supervisor, registry.Agents()...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build supervisor")
	}

	handler := apix.NewHandler(supervisor, profiles, checkpoints, apix.WithNamespace(appCfg.ProfileNamespace))
	srv := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      apix.NewRouter(handler),
		ReadTimeout:  appCfg.ReadTimeout,
		WriteTimeout: appCfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("llm_backend", llmCfg.ResolveBackend()).
			Str("db_driver", chinookCfg.ResolveDriver()).
			Str("profile_store", appCfg.ProfileStore).
			Str("checkpoint_store", appCfg.CheckpointStore).
			Bool("profile_merge", appCfg.ProfileMerge).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	stop()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

func mustProfileStore(ctx context.Context, kind string) (memoryx.Store, func()) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", storeMemory:
		return memoryx.NewInMemoryStore(), func() {}
	case storeRedis:
		redisCfg := configx.MustNew[memoryx.RedisConfig]("REDIS")
		client, err := memoryx.NewRedisClient(ctx, *redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		store := memoryx.NewRedisStore(client, memoryx.WithRedisKeyPrefix(redisCfg.KeyPrefix))
		return store, func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("close redis client")
			}
		}
	default:
		log.Fatal().Str("profile_store", kind).Msg("unknown profile store")
		return nil, nil
	}
}

func mustCheckpointStore(kind string) statex.Store {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case storeNone:
		return nil
	case "", storeMemory:
		return statex.NewMemoryStore()
	case storeUpstash:
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH")
		store, err := statex.NewUpstashRedisStore(*upstashCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create upstash checkpoint store")
		}
		return store
	default:
		log.Fatal().Str("checkpoint_store", kind).Msg("unknown checkpoint store")
		return nil
	}
}
