package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/apollosolutions/subgraph-mock/internal/federation"
	"github.com/apollosolutions/subgraph-mock/internal/latency"
	"github.com/apollosolutions/subgraph-mock/internal/state"
	"github.com/apollosolutions/subgraph-mock/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(logger.Config{Level: "error", Format: "console", OutputPath: "stdout"})
	if err != nil {
		t.Fatalf("logger.NewLogger: %v", err)
	}
	return log
}

const testSDL = `
type Query {
  user(id: ID!): User
}

type User {
  id: ID!
  name: String
  tags: [String!]!
}
`

func mustServer(t *testing.T, cfg *config.Config) (*fiber.App, *state.Config, *state.Schema) {
	t.Helper()
	bundle, err := federation.Load(testSDL, zap.NewNop())
	if err != nil {
		t.Fatalf("federation.Load: %v", err)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.LatencyGenerator = latency.Config{}
	cfgState := state.NewConfig(cfg)
	schemaState := state.NewSchema(bundle)
	app := NewServer(cfgState, schemaState, time.Now(), testLogger(t))
	return app, cfgState, schemaState
}

func post(t *testing.T, app *fiber.App, path, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 1000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func TestHandleReturnsShapedResponse(t *testing.T) {
	cfg := config.Default()
	cfg.ResponseGeneration.NullRatio = &config.Rational{Numerator: 0, Denominator: 1}
	app, _, _ := mustServer(t, cfg)

	resp, decoded := post(t, app, "/", `{"query":"query { user(id:\"1\") { id name } }"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, ok := decoded["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("data missing or wrong type: %v", decoded)
	}
	user, ok := data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("data.user missing or wrong type: %v", data)
	}
	if _, ok := user["id"].(string); !ok {
		t.Fatalf("user.id should be a string, got %v", user["id"])
	}
}

func TestHandleCachesByQueryText(t *testing.T) {
	cfg := config.Default()
	cfg.CacheResponses = true
	app, _, _ := mustServer(t, cfg)

	_, first := post(t, app, "/", `{"query":"query { user(id:\"1\") { id name } }"}`)
	_, second := post(t, app, "/", `{"query":"query { user(id:\"1\") { id name } }"}`)

	firstJSON, _ := json.Marshal(first)
	secondJSON, _ := json.Marshal(second)
	if string(firstJSON) != string(secondJSON) {
		t.Fatalf("cached responses should be byte-identical:\n%s\nvs\n%s", firstJSON, secondJSON)
	}
}

func TestHandleCachesInvalidQueryStatus(t *testing.T) {
	cfg := config.Default()
	cfg.CacheResponses = true
	app, _, _ := mustServer(t, cfg)

	first, _ := post(t, app, "/", `{"query":"query { nonexistentField }"}`)
	if first.StatusCode != http.StatusBadRequest {
		t.Fatalf("first status = %d, want 400", first.StatusCode)
	}
	second, _ := post(t, app, "/", `{"query":"query { nonexistentField }"}`)
	if second.StatusCode != http.StatusBadRequest {
		t.Fatalf("cached replay status = %d, want 400 (cache hit must not downgrade to 200)", second.StatusCode)
	}
}

func TestHandleCachesMutationNotImplementedStatus(t *testing.T) {
	bundle, err := federation.Load(`
type Query { user(id: ID!): String }
type Mutation { noop: Boolean }
`, zap.NewNop())
	if err != nil {
		t.Fatalf("federation.Load: %v", err)
	}
	cfg := config.Default()
	cfg.CacheResponses = true
	cfg.LatencyGenerator = latency.Config{}
	cfgState := state.NewConfig(cfg)
	schemaState := state.NewSchema(bundle)
	app := NewServer(cfgState, schemaState, time.Now(), testLogger(t))

	first, _ := post(t, app, "/", `{"query":"mutation { noop }"}`)
	if first.StatusCode != http.StatusInternalServerError {
		t.Fatalf("first status = %d, want 500", first.StatusCode)
	}
	second, _ := post(t, app, "/", `{"query":"mutation { noop }"}`)
	if second.StatusCode != http.StatusInternalServerError {
		t.Fatalf("cached replay status = %d, want 500 (cache hit must not downgrade to 200)", second.StatusCode)
	}
}

func TestHandleSubgraphOverrideArrayRange(t *testing.T) {
	cfg := config.Default()
	override := config.Default()
	override.ResponseGeneration.Array = config.ArrayRange{MinLength: 3, MaxLength: 3}
	override.ResponseGeneration.NullRatio = &config.Rational{Numerator: 0, Denominator: 1}
	cfg.SubgraphOverrides = map[string]*config.Config{"accounts": override}
	app, _, _ := mustServer(t, cfg)

	resp, decoded := post(t, app, "/accounts", `{"query":"query { user(id:\"1\") { id tags } }"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	data, _ := decoded["data"].(map[string]interface{})
	user, ok := data["user"].(map[string]interface{})
	if !ok {
		t.Fatalf("data.user missing or wrong type: %v", decoded)
	}
	if tags, ok := user["tags"].([]interface{}); !ok || len(tags) != 3 {
		t.Fatalf("tags = %v, want a list of length 3 from the override's array range", user["tags"])
	}
}

func TestHandleIgnoresExtraPathSegments(t *testing.T) {
	cfg := config.Default()
	override := config.Default()
	override.ResponseGeneration.Array = config.ArrayRange{MinLength: 3, MaxLength: 3}
	cfg.SubgraphOverrides = map[string]*config.Config{"accounts": override}
	app, _, _ := mustServer(t, cfg)

	resp, decoded := post(t, app, "/accounts/extra/segments", `{"query":"query { user(id:\"1\") { id } }"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200 (extra path segments must be ignored)", resp.StatusCode)
	}
	if _, ok := decoded["data"].(map[string]interface{}); !ok {
		t.Fatalf("expected a data object, got %v", decoded)
	}
}

func TestHandleUnknownOperationNameYieldsNullData(t *testing.T) {
	app, _, _ := mustServer(t, nil)
	resp, decoded := post(t, app, "/", `{"query":"query Real { user(id:\"1\") { id } }","operationName":"Missing"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if data, present := decoded["data"]; !present || data != nil {
		t.Fatalf("data should be explicitly null, got %v", decoded)
	}
}

func TestHandleRejectsInvalidJSON(t *testing.T) {
	app, _, _ := mustServer(t, nil)
	resp, _ := post(t, app, "/", `not json`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleRejectsInvalidQuery(t *testing.T) {
	app, _, _ := mustServer(t, nil)
	resp, decoded := post(t, app, "/", `{"query":"query { nonexistentField }"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if _, ok := decoded["errors"]; !ok {
		t.Fatalf("expected errors array in invalid-query response: %v", decoded)
	}
}

func TestHandleMutationNotImplemented(t *testing.T) {
	bundle, err := federation.Load(`
type Query { user(id: ID!): String }
type Mutation { noop: Boolean }
`, zap.NewNop())
	if err != nil {
		t.Fatalf("federation.Load: %v", err)
	}
	cfg := config.Default()
	cfg.LatencyGenerator = latency.Config{}
	cfgState := state.NewConfig(cfg)
	schemaState := state.NewSchema(bundle)
	app := NewServer(cfgState, schemaState, time.Now(), testLogger(t))

	resp, _ := post(t, app, "/", `{"query":"mutation { noop }"}`)
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestHandleAttachesConfiguredHeaders(t *testing.T) {
	cfg := config.Default()
	cfg.Headers = map[string]config.HeaderValues{
		"X-Mock-Backend": {"subgraph-mock"},
	}
	app, _, _ := mustServer(t, cfg)

	resp, _ := post(t, app, "/", `{"query":"query { user(id:\"1\") { id } }"}`)
	if got := resp.Header.Get("X-Mock-Backend"); got != "subgraph-mock" {
		t.Fatalf("X-Mock-Backend = %q, want subgraph-mock (no ratio configured means always include)", got)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("Content-Type = %q, want application/json", got)
	}
}

func TestNotFoundCatchAll(t *testing.T) {
	app, _, _ := mustServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req, 1000)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	raw, _ := io.ReadAll(resp.Body)
	if string(raw) != "Not found\n" {
		t.Fatalf("body = %q, want %q", raw, "Not found\n")
	}
}
