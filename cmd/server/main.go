package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"futubridge/config"
	"futubridge/internal/gateway"
	"futubridge/internal/handler"
	"futubridge/internal/opend"
	"futubridge/internal/router"
	"futubridge/internal/source"
)

const dialTimeout = 5 * time.Second

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	connector := opend.NewConnector(dialTimeout)
	gw := gateway.NewClient(cfg, connector, log)
	defer gw.Close()

	selector := source.NewSelector(gw, gw, source.NewFixture())

	accountHandler := handler.NewAccountHandler(selector, gw)
	marketHandler := handler.NewMarketHandler(selector, log)
	tradeHandler := handler.NewTradeHandler(selector, gw)
	systemHandler := handler.NewSystemHandler(cfg.AppName, cfg.AppVersion, gw)

	engine := router.NewRouter(&router.Config{
		AccountHandler: accountHandler,
		MarketHandler:  marketHandler,
		TradeHandler:   tradeHandler,
		SystemHandler:  systemHandler,
		CORSOrigins:    cfg.CORSOrigins,
		Debug:          cfg.Debug,
		Log:            log,
	})

	// One connect attempt at startup. Failure is not fatal: the routes fall
	// back to fixture payloads and /api/account/status retries on demand.
	if !gw.Connect(context.Background()) {
		log.Warn("OpenD不可用，使用模拟数据运行")
	}

	addr := net.JoinHostPort(cfg.ServerHost, cfg.ServerPort)
	srv := &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	go func() {
		log.Infof("%s v%s 监听 %s", cfg.AppName, cfg.AppVersion, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP服务启动失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("收到退出信号，正在关闭")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("HTTP服务关闭失败")
	}
}
