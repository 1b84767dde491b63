// Package logrus adapts a logrus entry to the cork Logger interface.
package logrus

import (
	"github.com/sirupsen/logrus"

	cork "github.com/cameronfrazier/bottle-cork"
)

type Logger struct{ E *logrus.Entry }

var _ cork.Logger = Logger{}

func (l Logger) Debug(msg string, f cork.Fields) { l.E.WithFields(logrus.Fields(f)).Debug(msg) }
func (l Logger) Info(msg string, f cork.Fields)  { l.E.WithFields(logrus.Fields(f)).Info(msg) }
func (l Logger) Warn(msg string, f cork.Fields)  { l.E.WithFields(logrus.Fields(f)).Warn(msg) }
func (l Logger) Error(msg string, f cork.Fields) { l.E.WithFields(logrus.Fields(f)).Error(msg) }
