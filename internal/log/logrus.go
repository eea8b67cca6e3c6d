// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger writes structured entries, used for --log-format json.
type LogrusLogger struct {
	Entry *logrus.Entry
}

func NewLogrusLogger(out io.Writer, json bool, fields logrus.Fields) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	l.SetLevel(logrus.InfoLevel)
	return &LogrusLogger{Entry: logrus.NewEntry(l).WithFields(fields)}
}

func (l *LogrusLogger) SetLogLevel(level LogLevel) {
	l.Entry.Logger.SetLevel(toLogrusLevel(level))
}

func (l *LogrusLogger) Trace(s string) {
	l.Entry.Trace(s)
}

func (l *LogrusLogger) Debug(s string) {
	l.Entry.Debug(s)
}

func (l *LogrusLogger) Info(s string) {
	l.Entry.Info(s)
}

func (l *LogrusLogger) Warn(s string) {
	l.Entry.Warn(s)
}

func (l *LogrusLogger) Error(e error) {
	l.Entry.WithError(e).Error(e.Error())
}

func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case Trace:
		return logrus.TraceLevel
	case Debug:
		return logrus.DebugLevel
	case Warn:
		return logrus.WarnLevel
	case Error:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
