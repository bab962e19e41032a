// Package state defines shared program state.
package state

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/encoding"

	"cssdecl/config"
	"cssdecl/css"
	"cssdecl/css/diag"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// used by format subcommand
	Overwrite bool
	CodePage  encoding.Encoding
	Diag      *diag.Collector

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Parser returns CSS parser set up according to configuration, problems
// it finds are collected in Diag.
func (e *LocalEnv) Parser() *css.Parser {
	if e.Diag == nil {
		e.Diag = diag.NewCollector(e.Log)
	}
	var lenient bool
	if e.Cfg != nil {
		lenient = e.Cfg.Parser.Lenient
	}
	return css.NewParser(e.Log, css.WithLenient(lenient), css.WithDiagnostics(e.Diag))
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
