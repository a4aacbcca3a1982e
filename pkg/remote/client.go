package remote

import (
	"bytes"
	"image"
	"net/rpc"

	"imgfx/pkg/codec"
	"imgfx/pkg/effect"
	"imgfx/pkg/session"
)

var _ session.Applier = (*Client)(nil)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

type Client struct {
	rpc *rpc.Client
}

func (c *Client) Apply(src *image.NRGBA, sel effect.Selector) (*image.NRGBA, error) {
	// png cannot carry an empty image
	if src.Rect.Empty() {
		return image.NewNRGBA(image.Rect(0, 0, src.Rect.Dx(), src.Rect.Dy())), nil
	}

	var buf bytes.Buffer
	if err := codec.Encode(&buf, src); err != nil {
		return nil, err
	}

	var resp ApplyResponse
	if err := c.rpc.Call("Service.Apply", &ApplyRequest{
		Effect: int(sel),
		Image:  buf.Bytes(),
	}, &resp); err != nil {
		return nil, err
	}

	img, _, err := codec.Decode(bytes.NewReader(resp.Image), codec.WithMaxPixels(src.Rect.Dx()*src.Rect.Dy()))
	return img, err
}

func (c *Client) Effects() ([]string, error) {
	var resp EffectsResponse
	if err := c.rpc.Call("Service.Effects", 0, &resp); err != nil {
		return nil, err
	}
	return resp.Names, nil
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
