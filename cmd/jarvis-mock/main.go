// Command jarvis-mock serves a scripted stand-in for the assistant backend,
// so the client can be run and demoed without the real API.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"jarvis/mockserver"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: loading .env: %v", err)
	}

	defaultAddr := os.Getenv("JARVIS_MOCK_ADDR")
	if defaultAddr == "" {
		defaultAddr = ":8000"
	}
	addr := flag.String("addr", defaultAddr, "listen address")
	jsonReplies := flag.Bool("json", false, "answer /chat with a JSON body instead of a stream")
	delay := flag.Duration("delay", 80*time.Millisecond, "pause between streamed chunks")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	srv := mockserver.New(logger)
	srv.SetChunkDelay(*delay)
	if *jsonReplies {
		srv.SetChunks(mockserver.ReplyJSON)
	}

	server := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting mock backend", zap.String("addr", *addr))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
