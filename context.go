package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/maastricht-university/clip-sentiment/clients"
	"github.com/maastricht-university/clip-sentiment/config"
	"github.com/maastricht-university/clip-sentiment/logging"
	"github.com/maastricht-university/clip-sentiment/metrics"
)

// flagKeys maps persistent flags onto configuration keys.
var flagKeys = map[string]string{
	"backend":    "backend.base_url",
	"log-level":  "log.level",
	"log-format": "log.format",
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Root
	logger     *logrus.Logger
	stderr     io.Writer
	configErr  error
}

// lockedWriter serializes writes from the session goroutine's logger and the
// command's status lines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Root, error) {
	c.configOnce.Do(func() {
		v := config.New(strings.TrimSpace(c.flags.config))
		for name, key := range flagKeys {
			if f := cmd.Root().PersistentFlags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					c.configErr = fmt.Errorf("bind --%s: %w", name, err)
					return
				}
			}
		}
		cfg, err := config.Load(v)
		if err != nil {
			c.configErr = err
			return
		}
		stderr := &lockedWriter{w: cmd.ErrOrStderr()}
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, stderr)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
		c.stderr = stderr
	})
	return c.config, c.configErr
}

func (c *commandContext) client() *clients.HTTP {
	return clients.NewHTTP(c.config.Backend.BaseURL, c.config.Backend.Timeout)
}

// flushMetrics writes m to the configured textfile, if any. Failures are
// logged, never returned: the command's own result wins.
func (c *commandContext) flushMetrics(m *metrics.Metrics) {
	path := strings.TrimSpace(c.config.Metrics.Textfile)
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		logging.Component(c.logger, "cli").WithError(err).Warn("metrics textfile not written")
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
