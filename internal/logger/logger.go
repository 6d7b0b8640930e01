package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Log = logrus.New()

type Entry = logrus.Entry

type Fields = logrus.Fields

// Init configures the shared logger. Production gets JSON lines, anything else
// a human readable text format. DEBUG=true lowers the level to debug.
func Init(env string) {
	if env == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}

	Log.SetOutput(os.Stdout)

	if os.Getenv("DEBUG") == "true" {
		Log.SetLevel(logrus.DebugLevel)
	} else {
		Log.SetLevel(logrus.InfoLevel)
	}
}

// Silence discards all output. Used by tests.
func Silence() {
	Log.SetOutput(io.Discard)
}

// Leveled adapts an entry to the key/value logging interface expected by
// hashicorp/go-retryablehttp.
type Leveled struct {
	Entry *Entry
}

func (l Leveled) Error(msg string, kv ...interface{}) { l.with(kv).Error(msg) }
func (l Leveled) Warn(msg string, kv ...interface{})  { l.with(kv).Warn(msg) }
func (l Leveled) Info(msg string, kv ...interface{})  { l.with(kv).Debug(msg) }
func (l Leveled) Debug(msg string, kv ...interface{}) { l.with(kv).Debug(msg) }

func (l Leveled) with(kv []interface{}) *Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		// retryablehttp passes the full request URL under "url"; drop the query
		// string so credentials never reach the log.
		if key == "url" {
			fields[key] = stripQuery(fmt.Sprint(kv[i+1]))
			continue
		}
		fields[key] = kv[i+1]
	}
	return l.Entry.WithFields(fields)
}

func stripQuery(u string) string {
	base, _, _ := strings.Cut(u, "?")
	return base
}
