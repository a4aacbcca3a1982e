package main

import (
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"imgfx/pkg/codec"
	"imgfx/pkg/effect"
	"imgfx/pkg/remote"
	"imgfx/pkg/session"
)

var listen = flag.String("listen", ":9123", "listen addr")
var blurRadius = flag.Int("blur-radius", effect.DefaultBlurRadius, "blur radius in pixels")
var blurIterations = flag.Int("blur-iterations", effect.DefaultBlurIterations, "blur passes")
var maxPixels = flag.Int("max-pixels", codec.DefaultMaxPixels, "reject images declaring more pixels than this")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() (*zap.Logger, error) {
				if *debug {
					return zap.NewDevelopment()
				}
				return zap.NewProduction()
			},
			func() remote.Limits {
				return remote.Limits{MaxPixels: *maxPixels}
			},
			func() (session.Applier, *http.Server) {
				return session.Local(effect.New(
						effect.WithBlurRadius(*blurRadius, *blurRadius),
						effect.WithBlurIterations(*blurIterations),
					)),
					&http.Server{Addr: *listen}
			},
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}
