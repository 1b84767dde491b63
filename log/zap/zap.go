// Package zap adapts a zap logger to the cork Logger interface.
package zap

import (
	"go.uber.org/zap"

	cork "github.com/cameronfrazier/bottle-cork"
)

type Logger struct{ L *zap.Logger }

var _ cork.Logger = Logger{}

func (z Logger) Debug(msg string, f cork.Fields) { z.L.Debug(msg, zf(f)...) }
func (z Logger) Info(msg string, f cork.Fields)  { z.L.Info(msg, zf(f)...) }
func (z Logger) Warn(msg string, f cork.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z Logger) Error(msg string, f cork.Fields) { z.L.Error(msg, zf(f)...) }

func zf(f cork.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(f))
	for k, v := range f {
		out = append(out, zap.Any(k, v))
	}
	return out
}
