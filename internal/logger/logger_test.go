package logger

import (
	"bytes"
	"net/url"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLeveled_StripsQueryFromURL(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetLevel(logrus.DebugLevel)
	l.SetFormatter(&logrus.JSONFormatter{})

	u, err := url.Parse("https://newsapi.org/v2/top-headlines?apiKey=secret&country=us")
	require.NoError(t, err)

	Leveled{Entry: logrus.NewEntry(l)}.Debug("performing request", "method", "GET", "url", u)

	require.Contains(t, buf.String(), "https://newsapi.org/v2/top-headlines")
	require.NotContains(t, buf.String(), "secret")
	require.Contains(t, buf.String(), `"method":"GET"`)
}

func TestLeveled_IgnoresNonStringKeys(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	Leveled{Entry: logrus.NewEntry(l)}.Error("boom", 42, "x", "attempt", 1, "dangling")

	require.Contains(t, buf.String(), `"attempt":1`)
	require.NotContains(t, buf.String(), "dangling")
}
