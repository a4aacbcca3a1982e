package remote

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/rpc"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"imgfx/pkg/codec"
	"imgfx/pkg/effect"
	"imgfx/pkg/session"
)

// Handler serves the Service over the HTTP CONNECT rpc protocol.
func Handler(applier session.Applier, limits Limits, logger *zap.Logger) (http.Handler, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("Service", &Service{applier: applier, limits: limits, log: logger}); err != nil {
		return nil, err
	}
	return srv, nil
}

func Proxy(applier session.Applier, limits Limits, srv *http.Server, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	h, err := Handler(applier, limits, logger)
	if err != nil {
		return err
	}
	srv.Handler = h

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.With(zap.String("addr", ln.Addr().String())).Info("listening")
			go func() {
				if err := srv.Serve(ln); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Fatal("serve failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}

type Service struct {
	applier session.Applier
	limits  Limits
	log     *zap.Logger
}

func (s *Service) Apply(req *ApplyRequest, resp *ApplyResponse) error {
	img, _, err := codec.Decode(bytes.NewReader(req.Image), codec.WithMaxPixels(s.limits.MaxPixels))
	if err != nil {
		return err
	}

	sel := effect.Selector(req.Effect)
	out, err := s.applier.Apply(img, sel)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, out); err != nil {
		return err
	}

	s.log.With(
		zap.Stringer("effect", sel),
		zap.Int("w", out.Rect.Dx()),
		zap.Int("h", out.Rect.Dy()),
	).Debug("applied")

	resp.Image = buf.Bytes()
	return nil
}

func (s *Service) Effects(_ int, resp *EffectsResponse) error {
	resp.Names = effect.Names()
	return nil
}
