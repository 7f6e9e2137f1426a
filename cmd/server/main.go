package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/gravitas-games/signshop/internal/config"
	"github.com/gravitas-games/signshop/internal/economy"
	"github.com/gravitas-games/signshop/internal/i18n"
	"github.com/gravitas-games/signshop/internal/inventory"
	"github.com/gravitas-games/signshop/internal/journal"
	"github.com/gravitas-games/signshop/internal/permission"
	"github.com/gravitas-games/signshop/internal/server"
	"github.com/gravitas-games/signshop/internal/shop"
	"github.com/gravitas-games/signshop/internal/store"
	"github.com/gravitas-games/signshop/internal/world"
)

func main() {
	log.Println("Starting shop server...")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/server.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Configuration loaded from %s", configPath)
	log.Printf("Server will run on %s:%d", cfg.Server.Host, cfg.Server.Port)

	if err := run(cfg, configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

func run(cfg *config.Config, configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func()
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	catalog := inventory.NewCatalog()
	w := world.NewMemory()
	if cfg.World.Layout != "" {
		layout, err := world.LoadLayout(cfg.World.Layout)
		if err != nil {
			return err
		}
		if err := layout.Apply(w, catalog); err != nil {
			return err
		}
		log.Printf("World layout loaded from %s (%d chunks)", cfg.World.Layout, w.ChunkCount())
	}

	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Println("Connected to Redis")
		closers = append(closers, func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("Redis close error: %v", err)
			}
		})
	}

	shopStore, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	closers = append(closers, closeStore)

	shops := shop.NewRegistry()
	shops.Load(ctx, shopStore)

	bank, err := openBank(cfg, redisClient)
	if err != nil {
		return err
	}

	perms, err := permission.FromConfig(cfg.Permissions)
	if err != nil {
		return err
	}
	shop.RegisterPermissions(perms)

	bus := journal.NewBus()
	publishers := journal.Multi{journal.NewLogPublisher(log.Default()), bus}
	if cfg.AMQP.URL != "" {
		conn, ch, err := journal.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, 5)
		if err != nil {
			return err
		}
		closers = append(closers, func() {
			ch.Close()
			conn.Close()
		})
		publishers = append(publishers, journal.NewAMQPPublisher(ch, cfg.AMQP.Exchange))
	}

	srv, err := server.New(cfg, server.Deps{
		World:      w,
		Shops:      shops,
		Perms:      perms,
		Bank:       bank,
		Catalog:    catalog,
		Translator: i18n.New(cfg.Language),
		Journal:    publishers,
		Bus:        bus,
		Redis:      redisClient,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server listening on %s", addr)
		return srv.Start(addr)
	})
	g.Go(func() error {
		return srv.Session().Run(gctx)
	})
	g.Go(func() error {
		return reloadOnHangup(gctx, srv, configPath)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down...")
		return srv.Shutdown()
	})

	err = g.Wait()

	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if saveErr := shops.Save(saveCtx, shopStore); saveErr != nil {
		log.Printf("Failed to save shops: %v", saveErr)
	} else {
		log.Printf("Saved %d shops", shops.Len())
	}
	return err
}

// reloadOnHangup re-reads the configuration on SIGHUP and hands the shop
// settings to the logic loop.
func reloadOnHangup(ctx context.Context, srv *server.Server, configPath string) error {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hup:
			next, err := config.Load(configPath)
			if err != nil {
				log.Printf("Reload failed, keeping current settings: %v", err)
				continue
			}
			if !srv.Reload(next) {
				log.Println("Reload dropped, logic loop queue full")
			}
		}
	}
}

func openStore(cfg *config.Config) (shop.Store, func(), error) {
	switch cfg.Shop.Store {
	case "mongo":
		m, closeFn, err := store.DialMongo(cfg.Mongo.URL, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Shops stored in MongoDB %s.%s", cfg.Mongo.Database, cfg.Mongo.Collection)
		return m, closeFn, nil
	case "file":
		log.Printf("Shops stored in %s", cfg.Shop.SaveFile)
		return store.NewFile(cfg.Shop.SaveFile), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown shop store %q", cfg.Shop.Store)
	}
}

func openBank(cfg *config.Config, redisClient *redis.Client) (economy.Bank, error) {
	currency := economy.Currency{Singular: cfg.Economy.CurrencySingular, Plural: cfg.Economy.CurrencyPlural}
	switch cfg.Economy.Backend {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("redis economy backend needs redis.address")
		}
		return economy.NewRedisBank(redisClient, cfg.Redis.WalletPrefix, currency, cfg.Economy.StartingBalance), nil
	case "memory":
		return economy.NewMemoryBank(currency, cfg.Economy.StartingBalance), nil
	default:
		return nil, fmt.Errorf("unknown economy backend %q", cfg.Economy.Backend)
	}
}
