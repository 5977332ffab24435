// Package mockserver is a stand-in for the assistant backend. It serves the
// same four endpoints with scripted replies and records what it received.
package mockserver

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ReplyMode selects how /chat answers.
type ReplyMode int

const (
	// ReplyStream answers text/event-stream with raw text fragments.
	ReplyStream ReplyMode = iota
	// ReplyJSON answers {"response": "..."}.
	ReplyJSON
)

// silentWAV is a 44-byte header for an empty PCM wav file.
var silentWAV = []byte{
	'R', 'I', 'F', 'F', 36, 0, 0, 0, 'W', 'A', 'V', 'E',
	'f', 'm', 't', ' ', 16, 0, 0, 0, 1, 0, 1, 0,
	0x44, 0xac, 0, 0, 0x88, 0x58, 0x01, 0, 2, 0, 16, 0,
	'd', 'a', 't', 'a', 0, 0, 0, 0,
}

type Server struct {
	mu sync.Mutex

	mode          ReplyMode
	chunks        []string
	chunkDelay    time.Duration
	chatStatus    int
	newChatStatus int
	voiceStatus   int
	healthStatus  int
	audio         []byte

	chatRequests  []ChatRequest
	voiceRequests []VoiceRequest
	newChatCalls  int

	logger *zap.Logger
}

type ChatRequest struct {
	Message string `json:"message"`
	Mode    string `json:"mode"`
}

type VoiceRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		mode:   ReplyStream,
		audio:  silentWAV,
		logger: logger,
	}
}

// SetChunks scripts the next /chat replies. With no chunks the server echoes
// the user message word by word.
func (s *Server) SetChunks(mode ReplyMode, chunks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = mode
	s.chunks = chunks
}

func (s *Server) SetChunkDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunkDelay = d
}

// FailChat makes /chat answer with status until reset with 0.
func (s *Server) FailChat(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatStatus = status
}

func (s *Server) FailNewChat(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newChatStatus = status
}

func (s *Server) FailVoice(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceStatus = status
}

func (s *Server) FailHealth(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthStatus = status
}

func (s *Server) SetAudio(audio []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audio = audio
}

func (s *Server) ChatRequests() []ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRequest(nil), s.chatRequests...)
}

func (s *Server) VoiceRequests() []VoiceRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]VoiceRequest(nil), s.voiceRequests...)
}

func (s *Server) NewChatCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.newChatCalls
}

// Handler returns the gin engine serving /chat, /new_chat, /voice and /health.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/chat", s.handleChat)
	r.POST("/new_chat", s.handleNewChat)
	r.POST("/voice", s.handleVoice)
	r.GET("/health", s.handleHealth)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "JARVIS API (mock)",
			"endpoints": []string{"/chat", "/new_chat", "/voice", "/health"},
		})
	})

	return r
}

func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Message cannot be empty."})
		return
	}

	s.mu.Lock()
	s.chatRequests = append(s.chatRequests, req)
	status := s.chatStatus
	mode := s.mode
	chunks := append([]string(nil), s.chunks...)
	delay := s.chunkDelay
	s.mu.Unlock()

	s.logger.Debug("chat request", zap.String("mode", req.Mode), zap.Int("length", len(req.Message)))

	if status != 0 {
		c.JSON(status, gin.H{"detail": "Internal server error"})
		return
	}

	if len(chunks) == 0 {
		chunks = echoChunks(req.Message)
	}

	if mode == ReplyJSON {
		c.JSON(http.StatusOK, gin.H{
			"response":  strings.Join(chunks, ""),
			"sender":    "jarvis",
			"timestamp": time.Now().Format(time.RFC3339),
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	i := 0
	c.Stream(func(w io.Writer) bool {
		if i >= len(chunks) {
			return false
		}
		if delay > 0 && i > 0 {
			time.Sleep(delay)
		}
		_, _ = io.WriteString(w, chunks[i])
		i++
		return i < len(chunks)
	})
}

func (s *Server) handleNewChat(c *gin.Context) {
	s.mu.Lock()
	s.newChatCalls++
	status := s.newChatStatus
	s.mu.Unlock()

	if status != 0 {
		c.JSON(status, gin.H{"detail": "Failed to reset chat memory."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "New chat started.",
		"timestamp":      time.Now().Format(time.RFC3339),
		"memory_cleared": true,
	})
}

func (s *Server) handleVoice(c *gin.Context) {
	var req VoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No text provided."})
		return
	}

	s.mu.Lock()
	s.voiceRequests = append(s.voiceRequests, req)
	status := s.voiceStatus
	audio := s.audio
	s.mu.Unlock()

	if status != 0 {
		c.JSON(status, gin.H{"detail": "TTS error"})
		return
	}

	c.Data(http.StatusOK, "audio/wav", audio)
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	status := s.healthStatus
	s.mu.Unlock()

	if status != 0 {
		c.JSON(status, gin.H{"detail": "unhealthy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// echoChunks splits the echoed reply on word boundaries, keeping the spaces
// so the fragments concatenate back to the full text.
func echoChunks(message string) []string {
	words := strings.Fields(message)
	chunks := make([]string, 0, len(words)+1)
	chunks = append(chunks, "You said:")
	for _, w := range words {
		chunks = append(chunks, " "+w)
	}
	return chunks
}
