package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/hexroom/internal/config"
	"github.com/KirkDiggler/hexroom/internal/handlers/httpapi"
	"github.com/KirkDiggler/hexroom/internal/handlers/ws"
	"github.com/KirkDiggler/hexroom/internal/hub"
	"github.com/KirkDiggler/hexroom/internal/orchestrators/dice"
	"github.com/KirkDiggler/hexroom/internal/orchestrators/session"
	"github.com/KirkDiggler/hexroom/internal/pkg/clock"
	"github.com/KirkDiggler/hexroom/internal/pkg/idgen"
	redisclient "github.com/KirkDiggler/hexroom/internal/redis"
	dicesession "github.com/KirkDiggler/hexroom/internal/repositories/dice_session"
	terrainlibrary "github.com/KirkDiggler/hexroom/internal/repositories/terrain_library"
	"github.com/KirkDiggler/hexroom/internal/services/room"
	"github.com/KirkDiggler/hexroom/internal/terrain"
)

// dependencies is the wired object graph of a running server
type dependencies struct {
	HTTP  http.Handler
	Rooms room.Service
	Hub   *hub.Hub

	closers []io.Closer
}

// Close releases backend connections in reverse order of creation
func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil {
			slog.Warn("Failed to close dependency", "error", err)
		}
	}
}

func buildDependencies(ctx context.Context, cfg *config.Config, clk clock.Clock) (*dependencies, error) {
	deps := &dependencies{}

	var redisClient redisclient.Client
	if cfg.UsesRedis() {
		client, err := redisclient.NewClient(cfg.RedisAddrs, &redisclient.Options{
			PoolSize: cfg.RedisPoolSize,
			UseTLS:   cfg.RedisTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis client: %w", err)
		}
		deps.closers = append(deps.closers, client)

		if err := redisclient.Ping(ctx, client); err != nil {
			deps.Close()
			return nil, err
		}
		slog.Info("Connected to redis", "addrs", cfg.RedisAddrs)
		redisClient = client
	}

	diceRepo, err := buildDiceRepository(cfg, clk, redisClient)
	if err != nil {
		deps.Close()
		return nil, err
	}

	library, err := buildTerrainLibrary(cfg, clk, redisClient, deps)
	if err != nil {
		deps.Close()
		return nil, err
	}

	diceService, err := dice.NewOrchestrator(&dice.Config{
		DiceSessionRepo: diceRepo,
		IDGenerator:     idgen.NewUUID("roll"),
		Clock:           clk,
		SessionTTL:      cfg.DiceSessionTTL,
		HistoryLimit:    cfg.DiceHistoryLimit,
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create dice service: %w", err)
	}

	rooms, err := room.NewService(&room.Config{
		IDGenerator:  idgen.NewTimeOrderedUUID(""),
		Clock:        clk,
		Generator:    buildGenerator(cfg),
		GracePeriod:  cfg.RoomGracePeriod,
		ActionPoints: cfg.Rules.ActionPoints,
		OnDelete: func(roomID string) {
			// Timers have no request context to inherit
			_, err := diceService.ClearRollSession(context.Background(), &dice.ClearRollSessionInput{RoomID: roomID})
			if err != nil {
				slog.Warn("Failed to clear dice history", "room_id", roomID, "error", err)
			}
		},
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create room service: %w", err)
	}
	deps.Rooms = rooms

	bus := events.NewBus()
	subscribeCombatLog(bus)

	deps.Hub = hub.New(cfg.SendQueueSize)

	sessions, err := session.NewService(&session.Config{
		Rooms:          rooms,
		Notifier:       deps.Hub,
		Dice:           diceService,
		TerrainLibrary: library,
		Clock:          clk,
		EventBus:       bus,
		WeatherTypes:   cfg.Rules.WeatherTypes,
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}

	wsHandler, err := ws.NewHandler(&ws.Config{
		Sessions:    sessions,
		Hub:         deps.Hub,
		IDGenerator: idgen.NewUUID("conn"),
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create websocket handler: %w", err)
	}

	httpHandler, err := httpapi.NewHandler(&httpapi.Config{
		Rooms:     rooms,
		Clock:     clk,
		WebSocket: wsHandler,
		StaticDir: cfg.StaticDir,
	})
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to create http handler: %w", err)
	}
	deps.HTTP = httpHandler

	return deps, nil
}

func buildDiceRepository(cfg *config.Config, clk clock.Clock, client redisclient.Client) (dicesession.Repository, error) {
	if cfg.DiceBackend != config.BackendRedis {
		return dicesession.NewInMemory(clk), nil
	}
	repo, err := dicesession.NewRedisRepository(&dicesession.Config{Client: client, Clock: clk})
	if err != nil {
		return nil, fmt.Errorf("failed to create dice session repository: %w", err)
	}
	return repo, nil
}

func buildTerrainLibrary(
	cfg *config.Config, clk clock.Clock, client redisclient.Client, deps *dependencies,
) (terrainlibrary.Repository, error) {
	switch cfg.LibraryBackend {
	case config.BackendRedis:
		repo, err := terrainlibrary.NewRedisRepository(&terrainlibrary.RedisConfig{Client: client, Clock: clk})
		if err != nil {
			return nil, fmt.Errorf("failed to create terrain library: %w", err)
		}
		return repo, nil
	case config.BackendSQLite:
		repo, err := terrainlibrary.OpenSQLite(cfg.SQLitePath, clk)
		if err != nil {
			return nil, fmt.Errorf("failed to open terrain library: %w", err)
		}
		deps.closers = append(deps.closers, repo)
		slog.Info("Opened terrain library", "path", cfg.SQLitePath)
		return repo, nil
	default:
		return terrainlibrary.NewInMemory(clk), nil
	}
}

func buildGenerator(cfg *config.Config) terrain.Generator {
	if cfg.TerrainGenerator == config.GeneratorSimplex {
		return terrain.NewSimplexGenerator(terrain.SimplexConfig{
			Seed:   cfg.TerrainSeed,
			Radius: cfg.TerrainRadius,
		})
	}
	return terrain.NewClassicGenerator(cfg.TerrainRadius)
}

// subscribeCombatLog records every combat transition at debug level
func subscribeCombatLog(bus events.EventBus) {
	for _, eventType := range []string{
		session.EventTypeCombatStarted,
		session.EventTypeCombatEnded,
		session.EventTypeTurnUpdated,
		session.EventTypeActionUsed,
	} {
		bus.SubscribeFunc(eventType, 0, func(ctx context.Context, e events.Event) error {
			attrs := []any{"type", e.Type()}
			if src := e.Source(); src != nil {
				attrs = append(attrs, "room_id", src.GetID())
			}
			if target := e.Target(); target != nil {
				attrs = append(attrs, "character_id", target.GetID())
			}
			slog.DebugContext(ctx, "Combat event", attrs...)
			return nil
		})
	}
}
