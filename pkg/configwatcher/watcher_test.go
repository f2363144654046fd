package configwatcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"exam_portal_backend/internal/config"
	"exam_portal_backend/pkg/logger"
)

func testConfigYAML(cacheMinutes int) []byte {
	return []byte(fmt.Sprintf(`server:
  port: "8080"
  mode: debug
database:
  host: localhost
  port: 3306
  user: root
  dbname: exam_portal
jwt:
  secret: watcher-test-secret
exam:
  question_cache_minutes: %d
`, cacheMinutes))
}

func TestWatchConfigReloadsAfterWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, testConfigYAML(5), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	logger.InitLogger(cfg)

	reloads := make(chan interface{}, 4)
	go WatchConfig(path, cfg, func(newCfg interface{}) {
		reloads <- newCfg
	})

	// give the watcher time to register before touching the file
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(path, testConfigYAML(7), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case got := <-reloads:
		if _, ok := got.(*config.Config); !ok {
			t.Fatalf("reloader received %T, want *config.Config", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config written but reloader was never invoked")
	}
}
