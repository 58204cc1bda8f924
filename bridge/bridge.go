// Package bridge is a minimal websocket push server standing in for
// spec.md §1(b)'s out-of-scope "browser-binding layer": it wraps one
// already-indexed *vcdtrace.Parser, accepts a JSON query request per
// client message, and streams the three QueryResultBinary spans back as
// base64 JSON frames, without attempting to replicate a real WASM
// pointer-triple ABI.
//
// Grounded on the teacher's wsHub/WebServer pair (web_websocket_hub.go,
// web_server.go): one hub owns the client connection set and the
// upgrade/register/remove lifecycle, one Server owns the shared
// resource each client's requests are served against — here a single
// mutex-guarded Parser rather than a mutex-guarded latest-frame pointer,
// since the resource being shared is the core's query pipeline itself.
package bridge

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/readm/vcdtrace"
	"github.com/readm/vcdtrace/internal/logging"
	"github.com/readm/vcdtrace/resultbuf"
)

// QueryRequest is the JSON message a client sends to run one query
// against the server's already-indexed trace.
type QueryRequest struct {
	Begin         uint64  `json:"begin"`
	End           uint64  `json:"end"`
	Signals       []int   `json:"signals"`
	PixelTimeStep float64 `json:"pixel_time_step"`
}

// QueryResponse is the JSON frame streamed back for one QueryRequest. The
// three QueryResultBinary spans are base64-encoded rather than given a
// raw binary transport, since a websocket text frame is the simplest
// thing that can cross into a host scripting environment as JSON.
type QueryResponse struct {
	SessionID           string         `json:"session_id"`
	Error               string         `json:"error,omitempty"`
	Transitions1Bit     string         `json:"transitions_1bit"`
	TransitionsMultiBit string         `json:"transitions_multibit"`
	StringPool          string         `json:"string_pool"`
	Stats               vcdtrace.Stats `json:"stats"`
}

// Server wraps one Parser that has already completed indexing, and a
// source of query bytes (the caller supplies how to seek/read the
// underlying trace file between BeginQuery and PushChunkForQuery).
type Server struct {
	mu     sync.Mutex
	parser *vcdtrace.Parser
	reader ChunkReader

	hub *hub
}

// ChunkReader supplies the byte chunks a query replays, starting at
// fileOffset. The bridge never opens files itself, mirroring the core's
// own file-I/O-free contract (spec.md §6).
type ChunkReader interface {
	SeekAndChunks(fileOffset int64, chunkSize int, yield func(chunk []byte) (more bool, err error)) error
}

// New wraps an already-indexed Parser for live querying.
func New(p *vcdtrace.Parser, reader ChunkReader) *Server {
	return &Server{parser: p, reader: reader, hub: newHub()}
}

// Handler returns the net/http handler that upgrades clients and serves
// their query requests.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hub.serve(s, w, r)
	})
}

// runQuery executes one query end to end against the shared Parser,
// serialized by s.mu since the core forbids concurrent use of one
// instance (spec.md §5).
func (s *Server) runQuery(req QueryRequest) QueryResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessionID := uuid.NewString()
	log := logging.Default().WithFields("session", sessionID, "query", fmt.Sprintf("[%d,%d)", req.Begin, req.End))

	fileOffset, _, snapIdx, ok := s.parser.GetQueryPlan(req.Begin)
	if !ok {
		log.Warnf("no snapshot available for this query")
		return QueryResponse{SessionID: sessionID, Error: "no snapshot available for this query"}
	}
	if err := s.parser.BeginQuery(req.Begin, req.End, req.Signals, snapIdx, req.PixelTimeStep); err != nil {
		log.Warnf("begin query failed: %v", err)
		return QueryResponse{SessionID: sessionID, Error: err.Error()}
	}

	const chunkSize = 1 << 20
	err := s.reader.SeekAndChunks(fileOffset, chunkSize, func(chunk []byte) (bool, error) {
		return s.parser.PushChunkForQuery(chunk)
	})
	if err != nil {
		s.parser.CancelQuery()
		log.Errorf("query replay failed: %v", err)
		return QueryResponse{SessionID: sessionID, Error: err.Error()}
	}

	result, err := s.parser.FlushQueryBinary()
	if err != nil {
		log.Errorf("flush failed: %v", err)
		return QueryResponse{SessionID: sessionID, Error: err.Error()}
	}

	log.Infof("served %d 1-bit and %d multi-bit transitions", len(result.Transitions1Bit), len(result.TransitionsMultiBit))
	return QueryResponse{
		SessionID:           sessionID,
		Transitions1Bit:     encodeBit(result.Transitions1Bit),
		TransitionsMultiBit: encodeMultiBit(result.TransitionsMultiBit),
		StringPool:          base64.StdEncoding.EncodeToString(result.StringPool),
		Stats:               s.parser.Stats(),
	}
}

func encodeBit(ts []resultbuf.Transition1Bit) string {
	buf := make([]byte, 0, len(ts)*16)
	for _, t := range ts {
		buf = appendUint64LE(buf, t.Timestamp)
		buf = appendUint32LE(buf, t.SignalIndex)
		buf = append(buf, t.Value, 0, 0, 0)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func encodeMultiBit(ts []resultbuf.TransitionMultiBit) string {
	buf := make([]byte, 0, len(ts)*24)
	for _, t := range ts {
		buf = appendUint64LE(buf, t.Timestamp)
		buf = appendUint32LE(buf, t.SignalIndex)
		buf = appendUint32LE(buf, t.StringOffset)
		buf = appendUint32LE(buf, t.StringLength)
		buf = appendUint32LE(buf, 0)
	}
	return base64.StdEncoding.EncodeToString(buf)
}

func appendUint64LE(buf []byte, v uint64) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24), byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

func appendUint32LE(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}
