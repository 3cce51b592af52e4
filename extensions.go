package scoredraft

import (
	"fmt"
	"math"

	"github.com/cbegin/scoredraft-go/internal/fx"
	"github.com/cbegin/scoredraft-go/internal/registry"
)

func (e *Engine) builtinExtensions() []registry.Extension {
	return []registry.Extension{
		{
			Name:        "TrackBufferApplyEffect",
			InputParams: "buf, spec",
			CallParams:  "buf, spec",
			Comment: "Applies an effect chain to a track buffer in place.\n" +
				"spec: stages separated by ';', e.g. \"reverb 0.5,0.7,0.25; delay 250,0.4,0.2,0.3\"",
			Call: e.applyEffect,
		},
		{
			Name:        "TrackBufferNormalize",
			InputParams: "buf, peak=1.0",
			CallParams:  "buf, peak",
			Comment:     "Scales a track buffer so its largest sample is peak.",
			Call:        e.normalizeBuffer,
		},
	}
}

func (e *Engine) applyEffect(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("want 2 arguments, got %d", len(args))
	}
	id, err := bufferArg(args[0])
	if err != nil {
		return nil, err
	}
	b, err := e.reg.Buffer(id)
	if err != nil {
		return nil, err
	}
	text, ok := args[1].(string)
	if !ok {
		return nil, fmt.Errorf("effect spec must be a string, got %T", args[1])
	}
	spec, err := fx.Parse(text)
	if err != nil {
		return nil, err
	}
	fx.Apply(b, spec)
	e.logger.Debug("scoredraft: effect applied", "buffer", id, "spec", spec.String())
	return nil, nil
}

func (e *Engine) normalizeBuffer(args []any) (any, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("want 1 or 2 arguments, got %d", len(args))
	}
	id, err := bufferArg(args[0])
	if err != nil {
		return nil, err
	}
	b, err := e.reg.Buffer(id)
	if err != nil {
		return nil, err
	}
	peak := 1.0
	if len(args) == 2 {
		if peak, err = floatArg(args[1]); err != nil {
			return nil, err
		}
	}
	if cur := b.Peak(); cur > 0 {
		b.Scale(float32(peak / float64(cur)))
	}
	return nil, nil
}

// bufferArg accepts a handle in any integer form, or a whole float as scripts
// tend to pass numbers.
func bufferArg(v any) (BufferID, error) {
	switch x := v.(type) {
	case BufferID:
		return x, nil
	case int:
		return BufferID(x), nil
	case int64:
		return BufferID(x), nil
	case float64:
		if x == math.Trunc(x) {
			return BufferID(x), nil
		}
	}
	return 0, fmt.Errorf("%w: buffer argument %v", registry.ErrInvalidHandle, v)
}

func floatArg(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("want a number, got %T", v)
}
