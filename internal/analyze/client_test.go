package analyze

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResult = `{
	"modelId": "invoice-v3",
	"documents": [{
		"docType": "invoice",
		"confidence": 0.97,
		"fields": {
			"NumeroFacture": {"type": "string", "valueString": "INV-42", "confidence": 0.98},
			"MontantTotal": {"type": "string", "valueString": "1.500,00", "content": "1 500,00 €", "confidence": 0.91}
		}
	}]
}`

func TestClientAnalyze_SubmitPollDecode(t *testing.T) {
	var polls atomic.Int32
	var submitted struct {
		Base64Source []byte `json:"base64Source"`
	}

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /documentModels/invoice-v3:analyze", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Ocp-Apim-Subscription-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-1")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-1", func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) < 2 {
			_, _ = w.Write([]byte(`{"status":"running"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"succeeded","analyzeResult":` + sampleResult + `}`))
	})

	c := NewClient(ClientConfig{
		Endpoint:     srv.URL,
		APIKey:       "secret",
		ModelID:      "invoice-v3",
		PollInterval: 5 * time.Millisecond,
		Timeout:      5 * time.Second,
	}, nil)

	res, err := c.Analyze(context.Background(), []byte("%PDF-1.7"))
	require.NoError(t, err)

	// The document bytes travel base64-encoded in the request body.
	assert.Equal(t, []byte("%PDF-1.7"), submitted.Base64Source)
	assert.GreaterOrEqual(t, polls.Load(), int32(2), "client keeps polling while the operation runs")

	assert.Equal(t, "invoice-v3", res.ModelID)
	require.Len(t, res.Documents, 1)
	doc := res.Documents[0]
	assert.Equal(t, "INV-42", doc.Fields["NumeroFacture"].ValueString)
	assert.Equal(t, "1 500,00 €", doc.Fields["MontantTotal"].Content)
}

func TestClientAnalyze_OperationFailed(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("POST /documentModels/m:analyze", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Operation-Location", srv.URL+"/operations/op-2")
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /operations/op-2", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"failed","error":{"code":"InvalidContent","message":"unreadable document"}}`))
	})

	c := NewClient(ClientConfig{Endpoint: srv.URL, ModelID: "m", PollInterval: time.Millisecond}, nil)

	_, err := c.Analyze(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InvalidContent")
}

func TestClientAnalyze_MissingOperationLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{Endpoint: srv.URL, ModelID: "m", PollInterval: time.Millisecond}, nil)

	_, err := c.Analyze(context.Background(), []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation location")
}

func TestValidateResult(t *testing.T) {
	assert.NoError(t, ValidateResult([]byte(sampleResult)))
	assert.NoError(t, ValidateResult([]byte(`{"documents":[]}`)), "empty document list is well formed")

	err := ValidateResult([]byte(`{"documents":[{"confidence":1.5}]}`))
	assert.Error(t, err, "confidence above 1 violates the envelope")

	err = ValidateResult([]byte(`{"documents":"nope"}`))
	assert.Error(t, err)
}

func TestOperationStatusDecode(t *testing.T) {
	var st operationStatus
	require.NoError(t, json.Unmarshal([]byte(`{"status":"succeeded","analyzeResult":{"documents":[]}}`), &st))
	assert.Equal(t, "succeeded", st.Status)
	assert.JSONEq(t, `{"documents":[]}`, string(st.AnalyzeResult))
}

func TestBase64SourceEncoding(t *testing.T) {
	// json.Marshal encodes []byte as standard base64; the service expects
	// exactly that for base64Source.
	b, err := json.Marshal(map[string]any{"base64Source": []byte{0xDE, 0xAD}})
	require.NoError(t, err)
	var decoded struct {
		Base64Source string `json:"base64Source"`
	}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0xDE, 0xAD}), decoded.Base64Source)
}
