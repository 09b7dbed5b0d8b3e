package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/samber/lo"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
	levelFatal
)

var levelNames = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
	levelFatal: "FATAL",
}

// RollbarLogger writes leveled lines to a standard logger and reports them to Rollbar.
// Args may be errors, map[string]interface{} extras or the user.User a message relates to.
type RollbarLogger struct {
	std       *log.Logger
	minLevel  level
	reporting *atomic.Bool
}

var _ core.Logger = (*RollbarLogger)(nil)

// NewRollbarLogger configures the Rollbar client from conf. Debug lines are dropped unless conf.Debug.
// Reporting stays off in test mode and when no token is configured.
func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)

	l := &RollbarLogger{std: std, minLevel: levelInfo, reporting: new(atomic.Bool)}
	if conf.Debug {
		l.minLevel = levelDebug
	}
	l.Enable(conf.RollbarToken != "" && !conf.TestMode)
	return l
}

// Enable switches Rollbar reporting. Local output is not affected.
func (l *RollbarLogger) Enable(enabled bool) {
	l.reporting.Store(enabled)
	rollbar.SetEnabled(enabled)
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(levelError, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}

// Close waits for the pending Rollbar reports to be sent.
func (l *RollbarLogger) Close() {
	rollbar.Wait()
}

func (l *RollbarLogger) log(lvl level, msg string, args []interface{}) {
	if lvl < l.minLevel {
		return
	}
	usr, extras := splitArgs(args)
	l.std.Print(formatLine(lvl, msg, usr, extras))
	if l.reporting.Load() {
		l.report(lvl, msg, usr, extras)
	}
}

func (l *RollbarLogger) report(lvl level, msg string, usr *user.User, extras []interface{}) {
	if usr != nil {
		rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
	} else {
		rollbar.ClearPerson()
	}

	payload := append([]interface{}{msg}, extras...)
	switch lvl {
	case levelDebug:
		rollbar.Debug(payload...)
	case levelInfo:
		rollbar.Info(payload...)
	case levelWarn:
		rollbar.Warning(payload...)
	case levelError:
		rollbar.Error(payload...)
	default:
		rollbar.Critical(payload...)
	}
}

// splitArgs pulls the first user.User out of args.
func splitArgs(args []interface{}) (*user.User, []interface{}) {
	var usr *user.User
	extras := lo.Filter(args, func(arg interface{}, _ int) bool {
		if u, ok := arg.(user.User); ok {
			if usr == nil {
				usr = &u
			}
			return false
		}
		return true
	})
	return usr, extras
}

// formatLine renders "LEVEL msg key=value ...": extras maps are flattened with sorted keys,
// errors are printed with their stack trace from the error level up.
func formatLine(lvl level, msg string, usr *user.User, extras []interface{}) string {
	var sb strings.Builder
	sb.WriteString(levelNames[lvl])
	sb.WriteByte(' ')
	sb.WriteString(msg)
	if usr != nil {
		fmt.Fprintf(&sb, " user=%s", usr.ID)
	}
	for _, extra := range extras {
		switch val := extra.(type) {
		case map[string]interface{}:
			keys := lo.Keys(val)
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(&sb, " %s=%v", key, val[key])
			}
		case error:
			if lvl >= levelError {
				fmt.Fprintf(&sb, "\n%+v", val)
			} else {
				fmt.Fprintf(&sb, " err=%q", val.Error())
			}
		default:
			fmt.Fprintf(&sb, " %v", val)
		}
	}
	return sb.String()
}
