package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqClient(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

			var req groqRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, defaultGroqModel, req.Model)
			assert.Equal(t, "json_object", req.ResponseFormat["type"])
			require.Len(t, req.Messages, 1)
			assert.Equal(t, "plan please", req.Messages[0].Content)

			_, _ = w.Write([]byte(`{
				"choices": [{"message": {"role": "assistant", "content": "{\"recipes\":[]}"}}],
				"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
			}`))
		}))
		defer srv.Close()

		client := NewGroqClient("secret", "")
		client.endpoint = srv.URL

		resp, err := client.GenerateContent(context.Background(), "plan please")
		require.NoError(t, err)
		assert.Equal(t, `{"recipes":[]}`, resp.Content)
		assert.Equal(t, 12, resp.Usage.PromptTokens)
		assert.Equal(t, 5, resp.Usage.CompletionTokens)
		assert.Equal(t, 17, resp.Usage.TotalTokens)
		assert.Equal(t, defaultGroqModel, resp.Usage.Model)
	})

	t.Run("ErrorStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewGroqClient("secret", "")
		client.endpoint = srv.URL

		_, err := client.GenerateContent(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status=429")
	})

	t.Run("NoChoices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer srv.Close()

		client := NewGroqClient("secret", "")
		client.endpoint = srv.URL

		_, err := client.GenerateContent(context.Background(), "x")
		assert.Error(t, err)
	})
}
