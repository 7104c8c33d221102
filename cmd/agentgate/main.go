// Command agentgate runs the gateway daemon: a websocket fan-out hub and the
// recovery status endpoint, optionally publishing to Pulse streams when Redis
// is configured. The -demo flag drives a short scripted session through the
// dispatcher so connected observers see a realistic event flow.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/clue/log"

	"github.com/halcyonlabs/agentgate/broadcast"
	pulsebroadcast "github.com/halcyonlabs/agentgate/broadcast/pulse"
	"github.com/halcyonlabs/agentgate/broadcast/ws"
	"github.com/halcyonlabs/agentgate/config"
	"github.com/halcyonlabs/agentgate/dispatcher"
	"github.com/halcyonlabs/agentgate/gateway"
	"github.com/halcyonlabs/agentgate/status"
	"github.com/halcyonlabs/agentgate/tracker"
	"github.com/halcyonlabs/agentgate/tracker/inmem"
	"github.com/halcyonlabs/agentgate/tracker/redisdb"
)

func main() {
	var (
		configF = flag.String("config", "", "Path to YAML configuration file")
		httpF   = flag.String("http", "", "HTTP listen address (overrides config)")
		demoF   = flag.Bool("demo", false, "Run a scripted demo session on startup")
		dbgF    = flag.Bool("debug", false, "Enable debug logs")
	)
	flag.Parse()

	format := log.FormatJSON
	if log.IsTerminal() {
		format = log.FormatTerminal
	}
	ctx := log.Context(context.Background(), log.WithFormat(format))
	if *dbgF {
		ctx = log.Context(ctx, log.WithDebug())
		log.Debugf(ctx, "debug logs enabled")
	}

	cfg, err := config.Load(*configF)
	if err != nil {
		log.Fatal(ctx, err)
	}
	if *httpF != "" {
		cfg.HTTP.Addr = *httpF
	}

	hub := ws.NewHub(0)
	broadcasters := []gateway.Broadcaster{hub}
	var tr tracker.Tracker = inmem.New()

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal(ctx, err, log.KV{K: "msg", V: "redis unavailable"})
		}
		defer rdb.Close()

		client, err := pulsebroadcast.NewClient(pulsebroadcast.ClientOptions{
			Redis:            rdb,
			StreamMaxLen:     cfg.Stream.MaxLen,
			OperationTimeout: cfg.Stream.OperationTimeout.Std(),
		})
		if err != nil {
			log.Fatal(ctx, err)
		}
		pb, err := pulsebroadcast.New(pulsebroadcast.Options{Client: client})
		if err != nil {
			log.Fatal(ctx, err)
		}
		broadcasters = append(broadcasters, pb)

		rt, err := redisdb.New(redisdb.Options{Client: rdb, TTL: cfg.Stream.TrackerTTL.Std()})
		if err != nil {
			log.Fatal(ctx, err)
		}
		tr = rt
		log.Info(ctx, log.KV{K: "msg", V: "redis wired"}, log.KV{K: "addr", V: cfg.Redis.Addr})
	}

	disp, err := dispatcher.New(dispatcher.Options{
		Broadcaster: broadcast.NewMulti(broadcasters...),
		Tracker:     tr,
	})
	if err != nil {
		log.Fatal(ctx, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.Handle("/", status.Handler(ctx, tr))

	srv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	if *demoF {
		go runDemo(ctx, disp)
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(ctx, log.KV{K: "msg", V: "gateway listening"}, log.KV{K: "addr", V: cfg.HTTP.Addr})
		errc <- srv.ListenAndServe()
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(ctx, err)
		}
	case <-sigCtx.Done():
	}

	log.Info(ctx, log.KV{K: "msg", V: "shutting down"})
	shutdownCtx, cancelShutdown := context.WithTimeout(ctx, 10*time.Second)
	defer cancelShutdown()
	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, err, log.KV{K: "msg", V: "server shutdown"})
	}
}
