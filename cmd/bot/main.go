package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/inhies/go-bytesize"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"imgfx/pkg/bot"
	"imgfx/pkg/codec"
	"imgfx/pkg/effect"
	"imgfx/pkg/remote"
	"imgfx/pkg/session"
)

var tgToken = flag.String("tg-token", "", "telegram bot token")
var remoteAddr = flag.String("remote", "", "apply effects on an imgfx server at this addr")
var maxSize = flag.String("max-size", "20MB", "reject uploads larger than this")
var maxPixels = flag.Int("max-pixels", codec.DefaultMaxPixels, "reject images declaring more pixels than this")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	logger, _ := zap.NewProduction()
	if *debug {
		logger, _ = zap.NewDevelopment()
	}

	if *tgToken == "" {
		log.Fatal("--tg-token is required")
	}

	limit, err := bytesize.Parse(*maxSize)
	if err != nil {
		log.Fatal(err)
	}

	var applier session.Applier = session.Local(effect.New())
	if *remoteAddr != "" {
		cli, err := remote.New(*remoteAddr)
		if err != nil {
			log.Fatal(err)
		}
		applier = cli
	}

	b, err := bot.New(*tgToken, applier, logger, limit, *maxPixels)
	if err != nil {
		log.Fatal(err)
	}
	b.Start()
	logger.Info("bot started")

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	<-signals
	logger.Info("shutting down")
	b.Stop()
	logger.Info("exited")
}
