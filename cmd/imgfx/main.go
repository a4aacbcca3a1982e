package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"imgfx/pkg/codec"
	"imgfx/pkg/effect"
	"imgfx/pkg/remote"
	"imgfx/pkg/session"
	"imgfx/pkg/store"
)

var effectName = flag.StringP("effect", "e", "", "effect to apply (required): "+strings.Join(effect.Names(), ", "))
var out = flag.StringP("out", "o", "", "output file, only with a single input")
var outDir = flag.String("out-dir", "", "output folder, defaults to the input folder")
var suffix = flag.String("suffix", "", "output name suffix, defaults to -<effect>")
var maxSize = flag.String("max-size", "64MB", "reject inputs larger than this")
var maxPixels = flag.Int("max-pixels", codec.DefaultMaxPixels, "reject inputs declaring more pixels than this")
var remoteAddr = flag.String("remote", "", "apply effects on an imgfx server at this addr")
var blurRadius = flag.Int("blur-radius", effect.DefaultBlurRadius, "blur radius in pixels, local only")
var blurIterations = flag.Int("blur-iterations", effect.DefaultBlurIterations, "blur passes, local only")
var list = flag.Bool("list", false, "list effects and exit")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <image|url>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *list {
		fmt.Println(strings.Join(effect.Names(), "\n"))
		return
	}

	logger, _ := lo.Ternary(*debug, zap.NewDevelopment, zap.NewProduction)()
	defer func() {
		_ = logger.Sync()
	}()

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}
	if *out != "" && len(inputs) > 1 {
		log.Fatal("--out needs exactly one input")
	}

	sel, err := parseEffect(*effectName)
	if err != nil {
		log.Fatal(err)
	}

	if err := checkRemoteFlags(flag.CommandLine, *remoteAddr); err != nil {
		log.Fatal(err)
	}

	limit, err := bytesize.Parse(*maxSize)
	if err != nil {
		log.Fatalf("invalid max size %q: %s", *maxSize, err)
	}

	var applier session.Applier
	if *remoteAddr != "" {
		cli, err := remote.New(*remoteAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			_ = cli.Close()
		}()
		names, err := cli.Effects()
		if err != nil {
			log.Fatal(err)
		}
		if !lo.Contains(names, sel.String()) {
			log.Fatalf("remote %s does not support %s", *remoteAddr, sel)
		}
		applier = cli
	} else {
		applier = session.Local(effect.New(
			effect.WithBlurRadius(*blurRadius, *blurRadius),
			effect.WithBlurIterations(*blurIterations),
		))
	}

	st, err := store.New("", logger, store.WithMaxSize(limit), store.WithMaxPixels(*maxPixels))
	if err != nil {
		log.Fatal(err)
	}
	dl := store.NewDownloader(logger, store.WithDownloadLimit(limit), store.WithDownloadPixels(*maxPixels))

	r := &runner{
		sess:   session.New(applier, logger),
		store:  st,
		dl:     dl,
		effect: sel,
		suffix: lo.Ternary(*suffix == "", "-"+strings.ToLower(sel.String()), *suffix),
		log:    logger,
	}

	var bar *progressbar.ProgressBar
	if len(inputs) > 1 {
		bar = progressbar.Default(int64(len(inputs)), "Processing")
	}

	var errCount int
	for _, in := range inputs {
		if err := r.run(in); err != nil {
			errCount++
			logger.With(zap.String("input", in), zap.Error(err)).Error("process failed")
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	logger.With(
		zap.Int("processed", len(inputs)-errCount),
		zap.Int("errors", errCount),
		zap.Int("total", len(inputs)),
	).Info("stats")

	if errCount > 0 {
		os.Exit(1)
	}
}

func parseEffect(name string) (effect.Selector, error) {
	if strings.TrimSpace(name) == "" {
		return effect.None, fmt.Errorf("--effect is required, want one of %s", strings.Join(effect.Names(), ", "))
	}
	sel, ok := effect.Parse(name)
	if !ok {
		return effect.None, fmt.Errorf("unknown effect %q, want one of %s", name, strings.Join(effect.Names(), ", "))
	}
	return sel, nil
}

// checkRemoteFlags rejects blur tuning together with --remote, since the
// server applies its own blur settings.
func checkRemoteFlags(fs *flag.FlagSet, remote string) error {
	if remote == "" {
		return nil
	}
	for _, name := range []string{"blur-radius", "blur-iterations"} {
		if fs.Changed(name) {
			return fmt.Errorf("--%s has no effect with --remote, set it on the server", name)
		}
	}
	return nil
}

type runner struct {
	sess   *session.Session
	store  *store.Store
	dl     *store.Downloader
	effect effect.Selector
	suffix string
	log    *zap.Logger
}

func (r *runner) run(in string) error {
	var src *store.Source
	var err error
	if store.IsURL(in) {
		src, err = r.dl.Fetch(in)
	} else {
		src, err = r.store.Load(in)
	}
	if err != nil {
		return err
	}

	if err := r.sess.Load(src); err != nil {
		return err
	}

	if _, err := r.sess.Apply(r.effect); err != nil {
		return err
	}

	dest := lo.Ternary(*out != "", *out, store.OutputName(in, *outDir, r.suffix))
	return r.sess.Save(r.store, dest)
}
