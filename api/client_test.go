package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/mockserver"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL+"/", nil, nil)
	require.NoError(t, err)
	return client
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
		wantErr bool
	}{
		{name: "default", baseURL: "", want: "http://localhost:8000"},
		{name: "trailing slash", baseURL: "https://api.example.com/", want: "https://api.example.com"},
		{name: "bad scheme", baseURL: "ftp://example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.baseURL, nil, nil)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, client.BaseURL())
		})
	}
}

func TestSendChatStreamsChunksInOrder(t *testing.T) {
	server := mockserver.New(nil)
	server.SetChunks(mockserver.ReplyStream, "Hi", " there!")
	client := newTestClient(t, server.Handler())

	var chunks []string
	full, err := client.SendChat(context.Background(), ChatRequest{Message: "Hello", Mode: ModeText}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi there!", full)
	assert.Equal(t, "Hi there!", strings.Join(chunks, ""))

	reqs := server.ChatRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Hello", reqs[0].Message)
	assert.Equal(t, "text", reqs[0].Mode)
}

func TestSendChatKeepsSplitRuneWhole(t *testing.T) {
	// "héllo" with the two bytes of é flushed separately
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte{'h', 0xc3})
		flusher.Flush()
		_, _ = w.Write([]byte{0xa9, 'l', 'l', 'o'})
		flusher.Flush()
	})
	client := newTestClient(t, handler)

	var chunks []string
	full, err := client.SendChat(context.Background(), ChatRequest{Message: "x", Mode: ModeText}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)

	assert.Equal(t, "héllo", full)
	for _, c := range chunks {
		assert.NotContains(t, c, "�")
	}
	assert.Equal(t, "héllo", strings.Join(chunks, ""))
}

func TestSendChatJSONReply(t *testing.T) {
	server := mockserver.New(nil)
	server.SetChunks(mockserver.ReplyJSON, "Hello from JSON")
	client := newTestClient(t, server.Handler())

	called := false
	full, err := client.SendChat(context.Background(), ChatRequest{Message: "Hi", Mode: ModeVoice}, func(string) {
		called = true
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello from JSON", full)
	assert.False(t, called, "JSON replies are not streamed")
}

func TestSendChatFormatErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing field", body: `{"reply":"nope"}`},
		{name: "empty field", body: `{"response":""}`},
		{name: "wrong type", body: `{"response":42}`},
		{name: "not json", body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			})
			client := newTestClient(t, handler)

			_, err := client.SendChat(context.Background(), ChatRequest{Message: "Hi", Mode: ModeText}, nil)
			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, "/chat", formatErr.Endpoint)
		})
	}
}

func TestSendChatRequestError(t *testing.T) {
	server := mockserver.New(nil)
	server.FailChat(http.StatusInternalServerError)
	client := newTestClient(t, server.Handler())

	_, err := client.SendChat(context.Background(), ChatRequest{Message: "Hi", Mode: ModeText}, nil)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.StatusCode)
	assert.Equal(t, "Internal Server Error", reqErr.Status)
}

func TestSendChatCanceledContext(t *testing.T) {
	server := mockserver.New(nil)
	client := newTestClient(t, server.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.SendChat(ctx, ChatRequest{Message: "Hi", Mode: ModeText}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNewChat(t *testing.T) {
	server := mockserver.New(nil)
	client := newTestClient(t, server.Handler())

	resp, err := client.NewChat(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "New chat started.", resp.Message)
	assert.True(t, resp.MemoryCleared)
	assert.Equal(t, 1, server.NewChatCalls())

	server.FailNewChat(http.StatusBadGateway)
	_, err = client.NewChat(context.Background())
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadGateway, reqErr.StatusCode)
}

func TestSynthesizeVoice(t *testing.T) {
	server := mockserver.New(nil)
	server.SetAudio([]byte("RIFFdata"))
	client := newTestClient(t, server.Handler())

	audio, err := client.SynthesizeVoice(context.Background(), VoiceRequest{Text: "Hello", Voice: "JBFqnCBsd6RMkjVDRZzb"})
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFdata"), audio)

	reqs := server.VoiceRequests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "JBFqnCBsd6RMkjVDRZzb", reqs[0].Voice)

	server.FailVoice(http.StatusInternalServerError)
	_, err = client.SynthesizeVoice(context.Background(), VoiceRequest{Text: "Hello"})
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestCheckHealth(t *testing.T) {
	server := mockserver.New(nil)
	client := newTestClient(t, server.Handler())

	resp, err := client.CheckHealth(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
	require.NoError(t, client.Ping(context.Background()))

	server.FailHealth(http.StatusServiceUnavailable)
	require.Error(t, client.Ping(context.Background()))
}

func TestReadStreamPartialOnError(t *testing.T) {
	body := &failingReader{data: "partial", err: errors.New("connection reset")}

	full, err := readStream(body, nil)
	require.Error(t, err)
	assert.Equal(t, "partial", full)
	assert.Contains(t, err.Error(), "connection reset")
}

type failingReader struct {
	data string
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

func TestIsStreamingContentType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/event-stream", true},
		{"text/plain; charset=utf-8", true},
		{"Text/Plain", true},
		{"TEXT/EVENT-STREAM; charset=UTF-8", true},
		{"application/json", false},
		{"Application/JSON; charset=utf-8", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, isStreamingContentType(tt.contentType))
		})
	}
}

func TestSendChatStreamsMixedCaseContentType(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "Text/Plain")
		_, _ = w.Write([]byte("plain reply"))
	})
	client := newTestClient(t, handler)

	var chunks []string
	full, err := client.SendChat(context.Background(), ChatRequest{Message: "x", Mode: ModeText}, func(chunk string) {
		chunks = append(chunks, chunk)
	})
	require.NoError(t, err)

	assert.Equal(t, "plain reply", full)
	assert.Equal(t, "plain reply", strings.Join(chunks, ""))
}
