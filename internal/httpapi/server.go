// Package httpapi implements the request pipeline: the single POST surface
// that resolves a subgraph from the URL path, fabricates or replays a
// cached response, and attaches configured headers and latency.
package httpapi

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/gofiber/fiber/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/apollosolutions/subgraph-mock/internal/cache"
	"github.com/apollosolutions/subgraph-mock/internal/config"
	"github.com/apollosolutions/subgraph-mock/internal/federation"
	"github.com/apollosolutions/subgraph-mock/internal/fingerprint"
	"github.com/apollosolutions/subgraph-mock/internal/latency"
	"github.com/apollosolutions/subgraph-mock/internal/state"
	"github.com/apollosolutions/subgraph-mock/internal/synth"
	"github.com/apollosolutions/subgraph-mock/pkg/logger"
)

// Server holds the shared state every request reads: live config, live
// schema, the two non-evicting caches, and the process-lifetime latency
// start instant.
type Server struct {
	config    *state.Config
	schema    *state.Schema
	documents cache.Documents
	responses cache.Responses
	logger    *logger.Logger
	start     time.Time
}

// NewServer builds the Fiber app for the mock's entire HTTP surface. start
// is the process's latency reference instant, captured once at init.
func NewServer(cfg *state.Config, schema *state.Schema, start time.Time, log *logger.Logger) *fiber.App {
	s := &Server{config: cfg, schema: schema, logger: log, start: start}

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	setupMiddleware(app)

	app.Post("/", s.handle(""))
	app.Post("/:subgraph+", func(c *fiber.Ctx) error {
		// The subgraph name is the first path segment; anything after it
		// is ignored.
		name := c.Params("subgraph")
		if i := strings.IndexByte(name, '/'); i >= 0 {
			name = name[:i]
		}
		return s.handle(name)(c)
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).SendString("Not found\n")
	})

	return app
}

func (s *Server) handle(subgraph string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body graphql.RawParams
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		if body.Variables == nil {
			body.Variables = map[string]interface{}{}
		}

		cfg := s.config.Get()
		schemaBundle, schemaGeneration := s.schema.Get()

		gen, overridden := cfg.EffectiveResponseGeneration(subgraph)
		fingerprintSubgraph := ""
		if overridden {
			fingerprintSubgraph = subgraph
		}
		fp := fingerprint.Of(body.Query, gen, schemaGeneration, fingerprintSubgraph)

		// One task-local RNG serves the whole request: the http_error_ratio
		// trial, header_ratio trials, and response synthesis all draw from
		// it, rather than each minting its own source.
		rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), fp))

		log := s.logger.WithSubgraph(subgraph).WithFingerprint(fp).WithRequestID(requestIDFromContext(c))

		if gen.HTTPErrorRatio.Trial(rng) {
			status := 500 + rng.IntN(5)
			return c.Status(status).Send(nil)
		}

		cacheOn := cfg.EffectiveCacheResponses(subgraph)
		if cacheOn {
			if cached, ok := s.responses.Load(fp); ok {
				s.attachHeadersAndSend(c, cfg, subgraph, gen, rng, cached.Body, cached.Status)
				s.sleep(cfg, subgraph)
				return nil
			}
		}

		responseBody, status, err := s.synthesize(body, schemaBundle, gen, fp, rng)
		if err != nil {
			text := "unable to generate response"
			if _, ok := err.(serializeError); ok {
				text = "unable to serialize response"
			}
			log.Errorw("internal failure synthesizing response", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(text)
		}

		if cacheOn {
			cached := s.responses.Store(fp, cache.Response{Status: status, Body: responseBody})
			responseBody, status = cached.Body, cached.Status
		}

		s.attachHeadersAndSend(c, cfg, subgraph, gen, rng, responseBody, status)
		s.sleep(cfg, subgraph)
		return nil
	}
}

// requestIDFromContext reads back the id the requestid middleware attached
// to this request, falling back to empty if the middleware isn't mounted.
func requestIDFromContext(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// synthesize runs the validate/cache-parse/execute sub-pipeline. Its
// returned status is only ever 200, 400, or 500; http_error_ratio is
// handled earlier, by the caller.
func (s *Server) synthesize(body graphql.RawParams, schemaBundle *federation.Bundle, gen config.ResponseGeneration, fp uint64, rng *rand.Rand) ([]byte, int, error) {
	doc, err := s.documents.LoadOrStore(fp, func() (*ast.QueryDocument, error) {
		return parseAndValidate(schemaBundle.Schema, body.Query)
	})
	if err != nil {
		var diagnostics gqlerror.List
		switch e := err.(type) {
		case gqlerror.List:
			diagnostics = e
		case *gqlerror.Error:
			diagnostics = gqlerror.List{e}
		default:
			diagnostics = gqlerror.List{{Message: err.Error()}}
		}
		errResp := graphql.Response{Data: json.RawMessage("null"), Errors: diagnostics}
		errBody, marshalErr := json.Marshal(errResp)
		if marshalErr != nil {
			return nil, 0, serializeError{marshalErr}
		}
		return errBody, fiber.StatusBadRequest, nil
	}

	op := doc.Operations.ForName(body.OperationName)
	if op == nil {
		// An operationName that selects nothing (wrong name, or missing
		// with multiple operations) yields an empty success envelope
		// rather than an error.
		return []byte(`{"data":null}`), fiber.StatusOK, nil
	}
	if op.Operation != ast.Query {
		return []byte("not implemented"), fiber.StatusInternalServerError, nil
	}

	result, err := synth.Execute(synth.Request{
		Schema:     schemaBundle.Schema,
		Document:   doc,
		Operation:  op,
		Variables:  body.Variables,
		ServiceSDL: schemaBundle.Source,
		Gen:        gen,
		RNG:        rng,
	})
	if err != nil {
		return nil, 0, err
	}

	data, err := json.Marshal(result.Data)
	if err != nil {
		return nil, 0, serializeError{err}
	}
	resp := graphql.Response{
		Data:   json.RawMessage(data),
		Errors: result.Errors,
	}
	if result.Data == nil {
		resp.Data = json.RawMessage("null")
	}

	out, err := json.Marshal(resp)
	if err != nil {
		return nil, 0, serializeError{err}
	}
	return out, fiber.StatusOK, nil
}

// serializeError distinguishes a response-marshaling failure from a
// synthesis failure so the handler can report the two fixed-text
// messages the external interface requires.
type serializeError struct{ err error }

func (e serializeError) Error() string { return e.err.Error() }
func (e serializeError) Unwrap() error { return e.err }

// parseAndValidate runs the document through the parser then the
// validator, surfacing either failure as a single error value so both can
// feed the same {data:null, errors:[...]} body on the caller side.
func parseAndValidate(schema *ast.Schema, query string) (*ast.QueryDocument, error) {
	doc, parseErr := parser.ParseQuery(&ast.Source{Input: query, Name: "query.graphql"})
	if parseErr != nil {
		return nil, parseErr
	}
	if errs := validator.Validate(schema, doc); errs != nil {
		return nil, errs
	}
	return doc, nil
}

func (s *Server) attachHeadersAndSend(c *fiber.Ctx, cfg *config.Config, subgraph string, gen config.ResponseGeneration, rng *rand.Rand, body []byte, status int) {
	headers := cfg.EffectiveHeaders(subgraph)
	for name, values := range headers {
		// All values for a name share one inclusion trial.
		ratio := gen.HeaderRatio[name]
		if ratio != nil && !ratio.Trial(rng) {
			continue
		}
		for _, v := range values {
			c.Response().Header.Add(name, v)
		}
	}
	c.Set("Content-Type", "application/json")
	_ = c.Status(status).Send(body)
}

func (s *Server) sleep(cfg *config.Config, subgraph string) {
	latencyCfg := cfg.EffectiveLatencyGenerator(subgraph)
	gen := latency.New(s.start, latencyCfg)
	time.Sleep(gen.Generate(time.Now()))
}
