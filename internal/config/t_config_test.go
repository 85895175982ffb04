package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_config01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("config01")

	for _, k := range []string{EnvStoreDir, EnvAddr, EnvLogLevel, EnvLogFormat, EnvRate, EnvBurst} {
		tst.Setenv(k, "")
	}
	env := filepath.Join(tst.TempDir(), "test.env")
	os.WriteFile(env, []byte("GOHYST_ADDR=:9999\nGOHYST_RATE=2.5\nGOHYST_BURST=oops\nGOHYST_LOG_FORMAT=JSON\n"), 0644)
	// godotenv never overrides variables that are already set, so clear them
	os.Unsetenv(EnvAddr)
	os.Unsetenv(EnvRate)
	os.Unsetenv(EnvBurst)
	os.Unsetenv(EnvLogFormat)
	tst.Setenv(EnvStoreDir, "/tmp/gohyst-db")

	c := Load(env)
	if c.Addr != ":9999" || c.StoreDir != "/tmp/gohyst-db" || c.LogFormat != "json" {
		tst.Errorf("wrong config: %+v\n", c)
	}
	chk.Float64(tst, "rate", 1e-17, c.Rate, 2.5)
	if c.Burst != Default().Burst {
		tst.Errorf("malformed burst should keep the default: %d\n", c.Burst)
	}
	for _, k := range []string{EnvAddr, EnvRate, EnvBurst, EnvLogFormat} {
		os.Unsetenv(k)
	}

	var buf bytes.Buffer
	log := c.NewLogger(&buf)
	log.Info("[TEST] hello", "k", 1)
	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"msg":"[TEST] hello"`) {
		tst.Errorf("expected a json record: %s\n", buf.String())
	}

	c.LogFormat, c.LogLevel = "text", "warn"
	log = c.NewLogger(&buf)
	if log.Enabled(context.Background(), slog.LevelInfo) {
		tst.Errorf("info should be disabled at warn level\n")
	}
}
