package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// OutcomesResponse wraps check outcomes for structured tool output.
type OutcomesResponse struct {
	Outcomes []domain.Outcome `json:"outcomes" jsonschema_description:"Lines unlocked by the check, SUCCESS or FAILURE"`
}

// ActorsResponse wraps the actor list.
type ActorsResponse struct {
	Actors []string `json:"actors" jsonschema_description:"Distinct speaker names, sorted"`
}

// SearchResponse wraps dialogue search results.
type SearchResponse struct {
	Matches []domain.DialogueMatch `json:"matches" jsonschema_description:"Lines containing the keyword"`
}

// OutcomesArgs selects the entry whose check is resolved.
type OutcomesArgs struct {
	ConversationID int `json:"conversation_id"`
	DialogueID     int `json:"dialogue_id"`
}

// SearchArgs filters dialogue lines.
type SearchArgs struct {
	Keyword string `json:"keyword"`
	Actor   string `json:"actor"`
}

// Server wraps the Arbor Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Explorer
	maxDepth  int
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger for transport events and failed tool calls.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Explorer, version string, maxDepth int, opts ...Option) *Server {
	if maxDepth <= 0 {
		maxDepth = domain.DefaultMaxDepth
	}
	s := &Server{
		engine:    engine,
		maxDepth:  maxDepth,
		logger:    slog.Default(),
		mcpServer: server.NewMCPServer("arbor-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	// TOOL: explore_tree
	s.mcpServer.AddTool(mcp.NewTool("explore_tree",
		mcp.WithDescription("Build the branching dialogue tree reachable from one line. Cycles are cut; connector lines (text \"0\") carry routing conditions."),
		mcp.WithNumber("conversation_id", mcp.Required(), mcp.Description("Conversation of the root line")),
		mcp.WithNumber("dialogue_id", mcp.Required(), mcp.Description("Dialogue ID of the root line")),
		mcp.WithNumber("max_depth", mcp.Description(fmt.Sprintf("Depth bound (default %d)", s.maxDepth))),
	), s.handleExploreTree)

	// TOOL: node_connections
	s.mcpServer.AddTool(mcp.NewTool("node_connections",
		mcp.WithDescription("Show one line with its outgoing links, skill check, alternate lines and check outcomes."),
		mcp.WithNumber("conversation_id", mcp.Required(), mcp.Description("Conversation of the line")),
		mcp.WithNumber("dialogue_id", mcp.Required(), mcp.Description("Dialogue ID of the line")),
	), s.handleConnections)

	// TOOL: check_outcomes
	s.mcpServer.AddTool(mcp.NewTool("check_outcomes",
		mcp.WithDescription("List the lines a skill check leads to, classified as SUCCESS or FAILURE."),
		mcp.WithNumber("conversation_id", mcp.Required(), mcp.Description("Conversation of the line holding the check")),
		mcp.WithNumber("dialogue_id", mcp.Required(), mcp.Description("Dialogue ID of the line holding the check")),
		mcp.WithOutputSchema[OutcomesResponse](),
	), mcp.NewStructuredToolHandler(s.handleOutcomes))

	// TOOL: list_actors
	s.mcpServer.AddTool(mcp.NewTool("list_actors",
		mcp.WithDescription("List every speaker in the dataset."),
		mcp.WithOutputSchema[ActorsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListActors))

	// TOOL: search_dialogues
	s.mcpServer.AddTool(mcp.NewTool("search_dialogues",
		mcp.WithDescription("Find lines containing a keyword (case-insensitive), optionally for one speaker."),
		mcp.WithString("keyword", mcp.Required(), mcp.Description("Text to look for")),
		mcp.WithString("actor", mcp.Description("Restrict to this speaker (optional)")),
		mcp.WithOutputSchema[SearchResponse](),
	), mcp.NewStructuredToolHandler(s.handleSearch))
}

func keyFrom(request mcp.CallToolRequest) (domain.NodeKey, error) {
	conv, err := request.RequireInt("conversation_id")
	if err != nil {
		return domain.NodeKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	dialogue, err := request.RequireInt("dialogue_id")
	if err != nil {
		return domain.NodeKey{}, fmt.Errorf("%w: %v", domain.ErrInvalidKey, err)
	}
	return domain.NodeKey{ConversationID: conv, DialogueID: dialogue}, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toolError turns caller mistakes into tool errors the agent can read;
// dataset failures are logged as well.
func (s *Server) toolError(op string, err error) *mcp.CallToolResult {
	if !errors.Is(err, domain.ErrInvalidKey) && !errors.Is(err, domain.ErrNodeNotFound) {
		s.logger.Error("MCP tool failed", "tool", op, "err", err)
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", op, err))
}

func (s *Server) handleExploreTree(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := keyFrom(request)
	if err != nil {
		return s.toolError("explore_tree", err), nil
	}
	depth := request.GetInt("max_depth", s.maxDepth)

	tree, err := s.engine.Explore(ctx, key, depth)
	if err != nil {
		return s.toolError("explore_tree", err), nil
	}
	return jsonResult(tree)
}

func (s *Server) handleConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := keyFrom(request)
	if err != nil {
		return s.toolError("node_connections", err), nil
	}
	view, err := s.engine.Connections(ctx, key)
	if err != nil {
		return s.toolError("node_connections", err), nil
	}
	return jsonResult(view)
}

func (s *Server) handleOutcomes(ctx context.Context, request mcp.CallToolRequest, args OutcomesArgs) (OutcomesResponse, error) {
	outcomes, err := s.engine.Outcomes(ctx, domain.NodeKey{ConversationID: args.ConversationID, DialogueID: args.DialogueID})
	if err != nil {
		return OutcomesResponse{}, fmt.Errorf("check_outcomes failed: %w", err)
	}
	return OutcomesResponse{Outcomes: outcomes}, nil
}

func (s *Server) handleListActors(ctx context.Context, request mcp.CallToolRequest, _ map[string]interface{}) (ActorsResponse, error) {
	actors, err := s.engine.ListActors(ctx)
	if err != nil {
		return ActorsResponse{}, fmt.Errorf("list_actors failed: %w", err)
	}
	return ActorsResponse{Actors: actors}, nil
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest, args SearchArgs) (SearchResponse, error) {
	if args.Keyword == "" {
		return SearchResponse{}, errors.New("search_dialogues failed: keyword is required")
	}
	matches, err := s.engine.SearchDialogues(ctx, args.Actor, args.Keyword)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search_dialogues failed: %w", err)
	}
	return SearchResponse{Matches: matches}, nil
}

func (s *Server) registerResources() {
	// EXPOSE: arbor://actors
	s.mcpServer.AddResource(mcp.NewResource("arbor://actors", "Dataset Speakers",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		actors, err := s.engine.ListActors(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list actors: %w", err)
		}
		data, _ := json.Marshal(actors)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "arbor://actors",
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
