package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tamasbrandstadter/fio-api/cmd/api/fio"
	"github.com/tamasbrandstadter/fio-api/cmd/api/handler"
	"github.com/tamasbrandstadter/fio-api/cmd/api/poller"
	"github.com/tamasbrandstadter/fio-api/internal/cache"
	"github.com/tamasbrandstadter/fio-api/internal/db"
	"github.com/tamasbrandstadter/fio-api/internal/env"
	"github.com/tamasbrandstadter/fio-api/internal/mq"
)

func main() {
	log.SetFormatter(&log.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})

	envCfg, err := env.GetEnvCfg()
	if err != nil {
		log.Errorf("error parsing env vars: %v", err)
		return
	}

	level, err := log.ParseLevel(envCfg.LogLevel)
	if err != nil {
		log.Warnf("unknown log level %q, using info", envCfg.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbCfg := db.Config{
		User: envCfg.DBUser,
		Pass: envCfg.DBPass,
		Host: envCfg.DBHost,
		Name: envCfg.DBName,
		Port: envCfg.DBPort,
	}
	dbc, err := db.NewConnection(dbCfg)
	if err != nil {
		log.Errorf("error connecting to db: %v", err)
		return
	}

	defer func() {
		if err := dbc.Close(); err != nil {
			log.Errorf("error closing db: %v", err)
		}
	}()

	if err := db.Migrate(dbc); err != nil {
		log.Errorf("error migrating db: %v", err)
		return
	}

	redisCfg := cache.Config{
		Host: envCfg.RedisHost,
		Pass: envCfg.RedisPass,
		Port: envCfg.RedisPort,
	}
	rc, err := cache.NewConnection(redisCfg)
	if err != nil {
		log.Errorf("error connecting to redis: %v", err)
		return
	}

	defer func() {
		if err := rc.Close(); err != nil {
			log.Errorf("error closing redis: %v", err)
		}
	}()

	mqCfg := mq.Config{
		User:           envCfg.MQUser,
		Pass:           envCfg.MQPass,
		Host:           envCfg.MQHost,
		Port:           envCfg.MQPort,
		MaxReconnect:   envCfg.MQMaxReconnect,
		ReconnectDelay: envCfg.MQReconnectDelay,
	}
	ch, err := mq.NewChannel(mqCfg, mq.Dial)
	if err != nil {
		log.Errorf("error connecting to mq: %v", err)
		return
	}

	defer func() {
		if err := ch.Close(); err != nil {
			log.Errorf("error closing mq connection: %v", err)
		}
	}()

	if err := mq.DeclareExchange(ch); err != nil {
		log.Errorf("error declaring exchange: %v", err)
		return
	}

	go func() {
		if err := ch.Listen(ctx); err != nil {
			log.Errorf("mq connection lost: %v", err)
			stop()
		}
	}()

	client, err := fio.New(envCfg.FioToken, fio.Config{
		BaseURL:  envCfg.FioBaseURL,
		Decimal:  envCfg.FioDecimal,
		Attempts: envCfg.FioAttempts,
		Delay:    envCfg.FioRetryDelay,
		MaxDelay: envCfg.FioRetryMaxDelay,
		Timeout:  envCfg.FioTimeout,
	})
	if err != nil {
		log.Errorf("error creating fio client: %v", err)
		return
	}

	p := poller.Poller{
		Bank:      client,
		DB:        dbc,
		Publisher: ch,
		Key:       envCfg.CursorKey,
		Interval:  envCfg.PollInterval,
	}
	go p.Run(ctx)

	server := http.Server{
		Addr:           fmt.Sprintf(":%d", envCfg.Port),
		Handler:        handler.NewApplication(client, rc),
		ReadTimeout:    envCfg.ReadTimeout,
		WriteTimeout:   envCfg.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Infof("server started successfully, listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("server failed to start: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), envCfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warnf("shutdown: Graceful shutdown did not complete in %v : %v", envCfg.ShutdownTimeout, err)

		if err := server.Close(); err != nil {
			log.Warnf("shutdown: Error killing server : %v", err)
		}
	}
}
