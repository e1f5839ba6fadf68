package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fiqdev/fiq/internal/index"
)

// protocolVersion is the MCP revision this server implements.
const protocolVersion = "2024-11-05"

// maxLineBytes bounds a single request line (16MB).
const maxLineBytes = 16 * 1024 * 1024

// Server answers newline-delimited JSON-RPC 2.0 requests one at a time.
// Tool calls share one index cache, so repeated searches over the same
// root hit its in-memory tier.
type Server struct {
	cache   *index.Cache
	workers int
	version string
}

// NewServer returns a server backed by cache. workers is passed through
// to every scan; version is reported by initialize.
func NewServer(cache *index.Cache, workers int, version string) *Server {
	return &Server{cache: cache, workers: workers, version: version}
}

// Run reads requests from in until EOF and writes responses to out.
// Blank lines are skipped, malformed JSON gets a -32700 with a null id,
// and notifications are never answered. out must carry nothing but
// JSON-RPC lines; all logging goes through the stderr logger.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		var req request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			s.write(out, respError(nil, codeParseError, fmt.Sprintf("Parse error: %v", err)))
			continue
		}
		if req.isNotification() {
			continue
		}
		s.write(out, s.handle(ctx, &req))
	}
	return sc.Err()
}

func (s *Server) write(out io.Writer, resp response) {
	b, err := json.Marshal(resp)
	if err != nil {
		log.Error().Err(err).Msg("marshal response")
		return
	}
	b = append(b, '\n')
	if _, err := out.Write(b); err != nil {
		log.Error().Err(err).Msg("write response")
	}
}

func (s *Server) handle(ctx context.Context, req *request) response {
	log.Debug().Str("method", req.Method).Msg("request")

	switch req.Method {
	case "initialize":
		return respSuccess(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities:    capabilities{Tools: toolsCapability{ListChanged: false}},
			ServerInfo:      serverInfo{Name: "fiq", Version: s.version},
		})
	case "ping":
		return respSuccess(req.ID, struct{}{})
	case "tools/list":
		return respSuccess(req.ID, toolDefinitions())
	case "tools/call":
		return s.handleToolCall(ctx, req)
	default:
		return respError(req.ID, codeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) handleToolCall(ctx context.Context, req *request) response {
	if len(req.Params) == 0 || string(req.Params) == "null" {
		return respError(req.ID, codeInvalidParams, "Missing params")
	}
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return respError(req.ID, codeInvalidParams, fmt.Sprintf("Invalid params: %v", err))
	}

	result, ok := s.callTool(ctx, params.Name, decodeArgs(params.Arguments))
	if !ok {
		return respError(req.ID, codeInvalidParams, "Unknown tool: "+params.Name)
	}
	return respSuccess(req.ID, result)
}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    capabilities `json:"capabilities"`
	ServerInfo      serverInfo   `json:"serverInfo"`
}

type capabilities struct {
	Tools toolsCapability `json:"tools"`
}

type toolsCapability struct {
	ListChanged bool `json:"listChanged"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}
