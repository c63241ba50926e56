// Package bake evaluates a material graph into per-element byte buffers
// ready for upload as vertex-color or texture data.
//
// A bake names a set of output channels. Each channel traces one input
// socket in the graph (usually the material output node's "Input"), lowers
// it to an expression, and evaluates it over the element context. Channels
// are independent, so they evaluate concurrently; a failure in one channel
// does not stop the others, and all failures are reported together.
package bake

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/okani/shadebake/pkg/colorspace"
	"github.com/okani/shadebake/pkg/material"
	"github.com/okani/shadebake/pkg/reify"
	"github.com/okani/shadebake/pkg/shade"
)

// Channel names one output to bake and where in the graph it is fed from.
type Channel struct {
	Name   string          // result key, e.g. "color" or "sway"
	Node   material.NodeID // node whose input socket is traced
	Input  string          // input socket name on Node
	Scalar bool            // bake one float per element instead of three
	SRGB   bool            // apply the sRGB transfer curve before quantizing
}

// ColorChannel builds the common case: a color channel fed by a node's
// input socket, quantized through the sRGB curve.
func ColorChannel(name string, node *material.Node, input string) Channel {
	return Channel{Name: name, Node: node.ID, Input: input, SRGB: true}
}

// ScalarChannel builds a linear single-float channel, e.g. an alpha or
// sway mask.
func ScalarChannel(name string, node *material.Node, input string) Channel {
	return Channel{Name: name, Node: node.ID, Input: input, Scalar: true}
}

// ChannelData is one baked channel: the evaluated float arrays plus the
// quantized bytes. Color channels fill Color and three bytes per element;
// scalar channels fill Scalar and one byte per element.
type ChannelData struct {
	Color  []shade.Vec3
	Scalar []float32
	Bytes  []byte
}

// ChannelError wraps a failure in a single channel with its name.
type ChannelError struct {
	Channel string
	Err     error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %q: %v", e.Channel, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Bake lowers and evaluates every channel against ctx. Lowering happens
// up front on the calling goroutine; evaluation fans out per channel.
// On failure the returned map still holds every channel that succeeded,
// and the error combines one ChannelError per failed channel.
func Bake(g *material.Graph, ctx *shade.Context, channels []Channel) (map[string]ChannelData, error) {
	if len(channels) == 0 {
		return nil, errors.New("bake: no channels requested")
	}

	type lowered struct {
		ch   Channel
		expr shade.Expr
	}

	var work []lowered
	var errs []error
	for _, ch := range channels {
		expr, err := reify.Reify(g, ch.Node, ch.Input)
		if err != nil {
			errs = append(errs, &ChannelError{Channel: ch.Name, Err: err})
			continue
		}
		work = append(work, lowered{ch: ch, expr: expr})
	}

	results := make(map[string]ChannelData, len(work))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, w := range work {
		wg.Add(1)
		go func(w lowered) {
			defer wg.Done()
			data, err := evalChannel(w.ch, w.expr, ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, &ChannelError{Channel: w.ch.Name, Err: err})
				return
			}
			results[w.ch.Name] = data
		}(w)
	}
	wg.Wait()

	return results, multierr.Combine(errs...)
}

func evalChannel(ch Channel, expr shade.Expr, ctx *shade.Context) (ChannelData, error) {
	if ch.Scalar {
		vals, err := shade.EvalScalar(expr, ctx)
		if err != nil {
			return ChannelData{}, err
		}
		return ChannelData{Scalar: vals, Bytes: QuantizeScalar(vals, ch.SRGB)}, nil
	}
	vals, err := shade.EvalColor(expr, ctx)
	if err != nil {
		return ChannelData{}, err
	}
	return ChannelData{Color: vals, Bytes: QuantizeColor(vals, ch.SRGB)}, nil
}

// ---------------------------------------------------------------------------
// Quantization
// ---------------------------------------------------------------------------

// QuantizeColor packs colors into three bytes per element, optionally
// through the sRGB transfer curve. Values outside [0,1] clamp.
func QuantizeColor(vals []shade.Vec3, srgb bool) []byte {
	out := make([]byte, 0, len(vals)*3)
	for _, v := range vals {
		for _, c := range v {
			out = append(out, quantize(c, srgb))
		}
	}
	return out
}

// QuantizeScalar packs scalars into one byte per element.
func QuantizeScalar(vals []float32, srgb bool) []byte {
	out := make([]byte, 0, len(vals))
	for _, v := range vals {
		out = append(out, quantize(v, srgb))
	}
	return out
}

func quantize(v float32, srgb bool) byte {
	if srgb {
		v = colorspace.LinearToSRGB(v)
	}
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}
