package server

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/oarkflow/log"
	"github.com/oarkflow/xid"

	"github.com/oarkflow/spp/interpreter"
	"github.com/oarkflow/spp/pkg/cache"
	"github.com/oarkflow/spp/pkg/history"
)

// DefaultExecTimeout bounds every evaluation when Config.Runtime sets no
// timeout.
const DefaultExecTimeout = 5 * time.Second

type Config struct {
	Version    string
	ImportRoot string
	Runtime    interpreter.RuntimeConfig
	Logger     *log.Logger
	// Cache is optional; without it every request parses its source.
	Cache *cache.ProgramCache
	// History is optional; when set, session evaluations are recorded.
	History *history.Recorder
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

type Server struct {
	app      *fiber.App
	config   Config
	logger   *log.Logger
	mu       sync.RWMutex
	sessions map[string]*session
}

// session is a persistent root scope. Requests against one session are
// serialized by its mutex.
type session struct {
	mu        sync.Mutex
	id        string
	in        *interpreter.Interpreter
	output    *bytes.Buffer
	createdAt time.Time
	lastUsed  time.Time
	evals     int
}

type SourceRequest struct {
	Source string   `json:"source"`
	Args   []string `json:"args,omitempty"`
}

type EvalResponse struct {
	Result   any     `json:"result"`
	Output   string  `json:"output"`
	Type     string  `json:"type"`
	Duration float64 `json:"duration"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
	Output string `json:"output,omitempty"`
}

type SessionInfo struct {
	ID        string    `json:"id"`
	Names     []string  `json:"names"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
	Evals     int       `json:"evals"`
}

func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = &log.DefaultLogger
	}
	if cfg.ImportRoot == "" {
		cfg.ImportRoot = "."
	}
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
		},
	})
	s := &Server{
		app:      app,
		config:   cfg,
		logger:   cfg.Logger,
		sessions: make(map[string]*session),
	}
	s.setupRoutes()
	return s
}

// App exposes the fiber application, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupRoutes() {
	s.app.Use(cors.New())
	if s.config.AccessLog {
		s.app.Use(logger.New())
	}

	s.app.Get("/health", s.healthHandler)

	s.app.Post("/api/parse", s.parseHandler)
	s.app.Post("/api/eval", s.evalHandler)

	s.app.Post("/api/sessions", s.createSessionHandler)
	s.app.Get("/api/sessions", s.listSessionsHandler)
	s.app.Get("/api/sessions/:id", s.getSessionHandler)
	s.app.Post("/api/sessions/:id/eval", s.sessionEvalHandler)
	s.app.Delete("/api/sessions/:id", s.deleteSessionHandler)
}

func (s *Server) healthHandler(c *fiber.Ctx) error {
	s.mu.RLock()
	sessions := len(s.sessions)
	s.mu.RUnlock()
	resp := fiber.Map{
		"status":    "healthy",
		"version":   s.config.Version,
		"sessions":  sessions,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if s.config.Cache != nil {
		resp["cache"] = s.config.Cache.Stats()
	}
	return c.JSON(resp)
}

func (s *Server) parseHandler(c *fiber.Ctx) error {
	req, err := bindSource(c)
	if err != nil {
		return err
	}
	program, err := s.parse(req.Source)
	if err != nil {
		return scriptErrorResponse(c, err, "")
	}
	return c.JSON(fiber.Map{"ast": interpreter.DumpAST(program)})
}

// evalHandler runs the source in a throwaway interpreter.
func (s *Server) evalHandler(c *fiber.Ctx) error {
	req, err := bindSource(c)
	if err != nil {
		return err
	}
	program, err := s.parse(req.Source)
	if err != nil {
		return scriptErrorResponse(c, err, "")
	}
	var out bytes.Buffer
	in := s.newInterpreter(&out, req.Args)

	start := time.Now()
	result, err := in.RunProgram(c.UserContext(), program)
	if err != nil {
		return scriptErrorResponse(c, err, out.String())
	}
	return c.JSON(evalResponse(result, out.String(), time.Since(start)))
}

func (s *Server) createSessionHandler(c *fiber.Ctx) error {
	var req SourceRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
		}
	}
	out := &bytes.Buffer{}
	now := time.Now()
	sess := &session{
		id:        xid.New().String(),
		in:        s.newInterpreter(out, req.Args),
		output:    out,
		createdAt: now,
		lastUsed:  now,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.logger.Info().Str("session", sess.id).Msg("session created")
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": sess.id})
}

func (s *Server) listSessionsHandler(c *fiber.Ctx) error {
	s.mu.RLock()
	sessions := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, sess.info())
	}
	return c.JSON(infos)
}

func (s *Server) getSessionHandler(c *fiber.Ctx) error {
	sess, ok := s.session(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	return c.JSON(sess.info())
}

func (s *Server) sessionEvalHandler(c *fiber.Ctx) error {
	sess, ok := s.session(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	req, err := bindSource(c)
	if err != nil {
		return err
	}
	program, err := s.parse(req.Source)
	if err != nil {
		s.record(req.Source, nil, err)
		return scriptErrorResponse(c, err, "")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.output.Reset()
	sess.lastUsed = time.Now()
	sess.evals++

	start := time.Now()
	result, err := sess.in.RunProgram(c.UserContext(), program)
	s.record(req.Source, result, err)
	if err != nil {
		return scriptErrorResponse(c, err, sess.output.String())
	}
	return c.JSON(evalResponse(result, sess.output.String(), time.Since(start)))
}

func (s *Server) deleteSessionHandler(c *fiber.Ctx) error {
	id := c.Params("id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "session not found")
	}
	s.logger.Info().Str("session", id).Msg("session deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (sess *session) info() SessionInfo {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return SessionInfo{
		ID:        sess.id,
		Names:     sess.in.Globals().Names(),
		CreatedAt: sess.createdAt,
		LastUsed:  sess.lastUsed,
		Evals:     sess.evals,
	}
}

func (s *Server) newInterpreter(out *bytes.Buffer, args []string) *interpreter.Interpreter {
	return interpreter.New(
		interpreter.WithStdout(out),
		interpreter.WithStdin(strings.NewReader("")),
		interpreter.WithImportRoot(s.config.ImportRoot),
		interpreter.WithArgs(args),
		interpreter.WithLogger(s.logger),
		interpreter.WithRuntimeConfig(s.runtimeConfig()),
	)
}

// runtimeConfig never returns an unlimited execution time: requests without
// a configured timeout get DefaultExecTimeout.
func (s *Server) runtimeConfig() interpreter.RuntimeConfig {
	cfg := s.config.Runtime
	if cfg == (interpreter.RuntimeConfig{}) {
		cfg = interpreter.GetRuntimeConfig()
	}
	if cfg.ExecTimeout <= 0 {
		cfg.ExecTimeout = DefaultExecTimeout
	}
	return cfg
}

func (s *Server) parse(source string) (*interpreter.Program, error) {
	if s.config.Cache != nil {
		return s.config.Cache.GetOrParse(source)
	}
	return interpreter.Parse(source)
}

func (s *Server) record(source string, result interpreter.Object, evalErr error) {
	if s.config.History == nil {
		return
	}
	if _, err := s.config.History.Record(source, result, evalErr); err != nil {
		s.logger.Error().Err(err).Msg("failed to record history")
	}
}

func bindSource(c *fiber.Ctx) (SourceRequest, error) {
	var req SourceRequest
	if err := c.BodyParser(&req); err != nil {
		return req, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	if strings.TrimSpace(req.Source) == "" {
		return req, c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Source cannot be empty"})
	}
	return req, nil
}

func evalResponse(result interpreter.Object, output string, elapsed time.Duration) EvalResponse {
	resp := EvalResponse{
		Result:   interpreter.ToNative(result),
		Output:   output,
		Type:     interpreter.NULL_OBJ.String(),
		Duration: elapsed.Seconds(),
	}
	if result != nil {
		resp.Type = result.Type().String()
	}
	return resp
}

func scriptErrorResponse(c *fiber.Ctx, err error, output string) error {
	resp := ErrorResponse{Error: err.Error(), Output: output}
	status := fiber.StatusInternalServerError
	var se *interpreter.ScriptError
	if errors.As(err, &se) {
		resp.Code = string(se.Code)
		resp.Line = se.Line
		resp.Column = se.Column
		switch se.Code {
		case interpreter.ErrCodeLex, interpreter.ErrCodeParse:
			status = fiber.StatusBadRequest
		case interpreter.ErrCodeRuntime, interpreter.ErrCodeImport:
			status = fiber.StatusUnprocessableEntity
		case interpreter.ErrCodeCanceled:
			status = fiber.StatusRequestTimeout
		}
	}
	return c.Status(status).JSON(resp)
}

func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.ShutdownWithContext(context.Background())
}

func (s *Server) ShutdownWithContext(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
