package driver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"optdrive/internal/config"
	"optdrive/internal/driver"
	"optdrive/internal/logging"
	"optdrive/internal/setting"
	"optdrive/internal/state"
	"optdrive/internal/testsupport"

	_ "optdrive/internal/encoding/jvm"
)

func webComponents() map[string]config.Component {
	return map[string]config.Component{
		"web": {Settings: map[string]config.SettingConfig{
			"replicas": {Min: setting.Number(1), Max: setting.Number(10), Step: setting.Number(1)},
			"java_opts": {Encoder: map[string]any{
				"name": "jvm",
				"settings": map[string]any{
					"MaxHeapSize": map[string]any{"min": 128, "max": 4096, "step": 128},
				},
			}},
		}},
	}
}

func adjustRequest(t *testing.T, body string) driver.Request {
	t.Helper()
	var req driver.Request
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("parse request: %v", err)
	}
	return req
}

func TestAdjustAppliesEncodedPayload(t *testing.T) {
	scriptDir := t.TempDir()
	captured := filepath.Join(scriptDir, "payload.json")
	markers := filepath.Join(scriptDir, "markers")

	cfg := testsupport.NewConfig(t,
		testsupport.WithComponents(webComponents()),
		testsupport.WithCommands(config.Commands{
			Pre:   testsupport.WriteScript(t, scriptDir, "pre.sh", "echo pre >> "+markers),
			Apply: testsupport.WriteScript(t, scriptDir, "apply.sh", "cat > "+captured),
			Post:  testsupport.WriteScript(t, scriptDir, "post.sh", "echo post >> "+markers),
		}),
	)

	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	d := driver.New(cfg, store, logging.NewNop(), "test")
	req := adjustRequest(t, `{
		"application": {"components": {"web": {"settings": {
			"replicas":    {"value": 4},
			"MaxHeapSize": {"value": 2048}
		}}}}
	}`)

	result, err := d.Adjust(context.Background(), "webapp", req)
	if err != nil {
		t.Fatalf("Adjust: %v", err)
	}
	if result.Status != "ok" || result.Reason != "success" {
		t.Fatalf("unexpected result %+v", result)
	}

	data, err := os.ReadFile(captured)
	if err != nil {
		t.Fatalf("apply command did not receive a payload: %v", err)
	}
	var payload struct {
		Application struct {
			Components map[string]map[string]any `json:"components"`
		} `json:"application"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("parse payload: %v", err)
	}
	web := payload.Application.Components["web"]
	if web["replicas"] != float64(4) {
		t.Fatalf("unexpected replicas value %v", web["replicas"])
	}
	if web["java_opts"] != "-Xmx2048m" {
		t.Fatalf("unexpected java_opts value %v", web["java_opts"])
	}

	order, err := os.ReadFile(markers)
	if err != nil {
		t.Fatalf("pre/post commands did not run: %v", err)
	}
	if strings.Join(strings.Fields(string(order)), " ") != "pre post" {
		t.Fatalf("unexpected command order %q", order)
	}

	history, err := store.History(context.Background(), "webapp", 0)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 || history[0].Status != "ok" {
		t.Fatalf("expected one recorded success, got %+v", history)
	}
	if _, ok, _ := store.LastApplied(context.Background(), "webapp"); !ok {
		t.Fatal("expected a last applied payload")
	}
}

func TestAdjustRejectsBadValueBeforeCommands(t *testing.T) {
	scriptDir := t.TempDir()
	applied := filepath.Join(scriptDir, "applied")

	cfg := testsupport.NewConfig(t,
		testsupport.WithComponents(webComponents()),
		testsupport.WithCommands(config.Commands{
			Apply: testsupport.WriteScript(t, scriptDir, "apply.sh", "touch "+applied),
		}),
	)

	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	d := driver.New(cfg, store, logging.NewNop(), "test")
	req := adjustRequest(t, `{
		"application": {"components": {"web": {"settings": {
			"replicas": {"value": 99}
		}}}}
	}`)

	_, err = d.Adjust(context.Background(), "webapp", req)
	if !errors.Is(err, setting.ErrValue) {
		t.Fatalf("expected value error, got %v", err)
	}
	if _, statErr := os.Stat(applied); statErr == nil {
		t.Fatal("apply command must not run when encoding fails")
	}

	history, histErr := store.History(context.Background(), "webapp", 0)
	if histErr != nil {
		t.Fatalf("history: %v", histErr)
	}
	if len(history) != 1 || history[0].Status != "failed" || history[0].Reason != "value" {
		t.Fatalf("expected one recorded value failure, got %+v", history)
	}
}

func TestAdjustFailedCommandIsRecorded(t *testing.T) {
	scriptDir := t.TempDir()
	cfg := testsupport.NewConfig(t,
		testsupport.WithComponents(webComponents()),
		testsupport.WithCommands(config.Commands{
			Apply: testsupport.WriteScript(t, scriptDir, "apply.sh", "echo broken pipe >&2; exit 3"),
		}),
	)

	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	d := driver.New(cfg, store, logging.NewNop(), "test")
	req := adjustRequest(t, `{
		"application": {"components": {"web": {"settings": {
			"replicas": {"value": 4}, "MaxHeapSize": {"value": 2048}
		}}}}
	}`)

	_, err = d.Adjust(context.Background(), "webapp", req)
	if err == nil {
		t.Fatal("expected apply failure")
	}
	if !strings.Contains(err.Error(), "broken pipe") {
		t.Fatalf("expected stderr detail in error, got %v", err)
	}

	history, histErr := store.History(context.Background(), "webapp", 0)
	if histErr != nil {
		t.Fatalf("history: %v", histErr)
	}
	if len(history) != 1 || history[0].Status != "failed" || history[0].Reason != "unknown" {
		t.Fatalf("expected one recorded failure, got %+v", history)
	}
	if _, ok, _ := store.LastApplied(context.Background(), "webapp"); ok {
		t.Fatal("failed operation must not record a last applied payload")
	}
}

func TestAdjustRequiresApplyCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithComponents(webComponents()))

	d := driver.New(cfg, nil, logging.NewNop(), "test")
	req := adjustRequest(t, `{
		"application": {"components": {"web": {"settings": {
			"replicas": {"value": 4}, "MaxHeapSize": {"value": 2048}
		}}}}
	}`)

	if _, err := d.Adjust(context.Background(), "webapp", req); !errors.Is(err, setting.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestQueryDescribesObservedValues(t *testing.T) {
	scriptDir := t.TempDir()
	observed := `{"web": {"replicas": 4, "java_opts": "-Xmx2048m -XX:+UseG1GC"}}`
	cfg := testsupport.NewConfig(t,
		testsupport.WithComponents(webComponents()),
		testsupport.WithCommands(config.Commands{
			Query: testsupport.WriteScript(t, scriptDir, "query.sh", "echo '"+observed+"'"),
		}),
	)

	d := driver.New(cfg, nil, logging.NewNop(), "test")
	result, err := d.Query(context.Background(), "webapp")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	web, ok := result.Application.Components["web"]
	if !ok {
		t.Fatalf("expected web component, got %+v", result.Application.Components)
	}
	if web.Settings["replicas"].Value != float64(4) {
		t.Fatalf("unexpected replicas descriptor %+v", web.Settings["replicas"])
	}
	// The encoder-backed setting is reported as its owned setting, decoded.
	heap, ok := web.Settings["MaxHeapSize"]
	if !ok {
		t.Fatalf("expected MaxHeapSize descriptor, got %+v", web.Settings)
	}
	if heap.Value != float64(2048) {
		t.Fatalf("unexpected MaxHeapSize value %v", heap.Value)
	}
	if _, exposed := web.Settings["java_opts"]; exposed {
		t.Fatal("encoder-backed setting must not leak its raw name")
	}
}

func TestQueryRequiresQueryCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithComponents(webComponents()))

	d := driver.New(cfg, nil, logging.NewNop(), "test")
	if _, err := d.Query(context.Background(), "webapp"); !errors.Is(err, setting.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestInfoUsesConfiguredVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := driver.New(cfg, nil, logging.NewNop(), "0.4.0")
	if info := d.Info(); info.Version != "0.4.0" || info.HasCancel {
		t.Fatalf("unexpected info %+v", info)
	}

	cfg.Driver.Version = "9.9.9"
	cfg.Driver.HasCancel = true
	d = driver.New(cfg, nil, logging.NewNop(), "0.4.0")
	if info := d.Info(); info.Version != "9.9.9" || !info.HasCancel {
		t.Fatalf("expected configured override, got %+v", info)
	}
}

func TestEmitterWritesJSONLines(t *testing.T) {
	var buf bytes.Buffer
	emitter := driver.NewEmitter(&buf)

	if err := emitter.Emit(driver.AdjustResult{Status: "ok", Reason: "success"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if err := emitter.Emit(driver.Progress{Progress: 50, Message: "halfway"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two lines, got %q", buf.String())
	}
	var result driver.AdjustResult
	if err := json.Unmarshal([]byte(lines[0]), &result); err != nil || result.Status != "ok" {
		t.Fatalf("unexpected first line %q (%v)", lines[0], err)
	}
}

func TestReporterEmitsHeartbeats(t *testing.T) {
	var buf bytes.Buffer
	emitter := driver.NewEmitter(&buf)
	reporter := driver.NewReporter(emitter, logging.NewNop(), 10*time.Millisecond)
	reporter.Set(25, "warming up")

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.Run(ctx, &wg)

	time.Sleep(60 * time.Millisecond)
	cancel()
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected heartbeat output, got %q", buf.String())
	}
	var beat driver.Progress
	if err := json.Unmarshal([]byte(lines[0]), &beat); err != nil {
		t.Fatalf("parse heartbeat: %v", err)
	}
	if beat.Progress != 25 || beat.Message != "warming up" {
		t.Fatalf("unexpected heartbeat %+v", beat)
	}
}

func TestReporterDisabledInterval(t *testing.T) {
	var buf bytes.Buffer
	reporter := driver.NewReporter(driver.NewEmitter(&buf), logging.NewNop(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go reporter.Run(ctx, &wg)
	wg.Wait()

	if buf.Len() != 0 {
		t.Fatalf("expected no output with a disabled interval, got %q", buf.String())
	}
}
