package server

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridlink/internal/anchor"
	"gridlink/internal/config"
	"gridlink/internal/constants"
	"gridlink/internal/export"
	"gridlink/internal/job"
	"gridlink/internal/security"
	"gridlink/internal/session"
	"gridlink/internal/source"
	"gridlink/internal/types"
)

type stubSource struct {
	rows []source.Row
	err  error
	gate chan struct{}
}

func (s *stubSource) Query(_ context.Context, _ source.QueryOptions) ([]source.Row, error) {
	if s.gate != nil {
		<-s.gate
	}
	return s.rows, s.err
}

func newTestServer(t *testing.T, src source.Source) *Server {
	t.Helper()

	store := session.NewMemoryStore()
	jobs := job.NewStore()

	s := &Server{
		Config: &config.Config{
			Port:           "0",
			LogLevel:       "info",
			AllowedOrigins: []string{"*"},
		},
		Sessions:  session.NewManager(store, "4242", 900*time.Second),
		Jobs:      jobs,
		Pipeline:  export.NewPipeline(jobs, src, 2),
		Source:    src,
		Anchorer:  anchor.StubAnchorer{},
		Protector: security.NewBruteForceProtector(constants.MaxAuthAttempts, constants.BlockDuration),
	}
	t.Cleanup(s.Cleanup)

	return s
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func openSession(t *testing.T, h http.Handler) string {
	t.Helper()

	rec := doJSON(t, h, http.MethodPost, "/session/open", "", types.OpenSessionRequest{Pin: "4242"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.OpenSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp types.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, constants.Version, resp.Version)
}

func TestSessionOpen(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	rec := doJSON(t, h, http.MethodPost, "/session/open", "", types.OpenSessionRequest{Pin: "4242"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.OpenSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Greater(t, resp.ExpiresAt, time.Now().UnixMilli())
}

func TestSessionOpenWrongPin(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	rec := doJSON(t, h, http.MethodPost, "/session/open", "", types.OpenSessionRequest{Pin: "0000"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionOpenPinTooShort(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	rec := doJSON(t, h, http.MethodPost, "/session/open", "", types.OpenSessionRequest{Pin: "42"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionOpenBruteForceBlocked(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	for range constants.MaxAuthAttempts {
		doJSON(t, h, http.MethodPost, "/session/open", "", types.OpenSessionRequest{Pin: "0000"})
	}

	rec := doJSON(t, h, http.MethodPost, "/session/open", "", types.OpenSessionRequest{Pin: "4242"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSessionRevoke(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/session/revoke", "", types.RevokeSessionRequest{Token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/bulk/jobs", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Revoking again is still a 204.
	rec = doJSON(t, h, http.MethodPost, "/session/revoke", "", types.RevokeSessionRequest{Token: token})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSessionRevokeRequiresToken(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	rec := doJSON(t, h, http.MethodPost, "/session/revoke", "", types.RevokeSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireBearer(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()

	rec := doJSON(t, h, http.MethodPost, "/bulk/export", "", types.ExportRequest{Start: "-1h", End: "now"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/bulk/export", "not-a-token", types.ExportRequest{Start: "-1h", End: "now"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func waitDone(t *testing.T, h http.Handler, token, jobID string) job.ExportJob {
	t.Helper()

	var snapshot job.ExportJob
	require.Eventually(t, func() bool {
		rec := doJSON(t, h, http.MethodGet, "/bulk/status/"+jobID, token, nil)
		if rec.Code != http.StatusOK {
			return false
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
		return snapshot.State.Terminal()
	}, 5*time.Second, 5*time.Millisecond)
	return snapshot
}

func TestExportEndToEnd(t *testing.T) {
	rows := []source.Row{{"a": 1}, {"a": 2}, {"a": 3}}
	h := newTestServer(t, &stubSource{rows: rows}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/bulk/export", token, types.ExportRequest{Start: "-1h", End: "now"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted types.ExportAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	snapshot := waitDone(t, h, token, accepted.JobID)
	assert.Equal(t, job.StateDone, snapshot.State)
	assert.Equal(t, 3, snapshot.RowCount)
	assert.Equal(t, 1.0, snapshot.Progress)

	rec = doJSON(t, h, http.MethodGet, "/bulk/download/"+accepted.JobID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/jsonl", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), accepted.JobID+".jsonl")

	body := rec.Body.Bytes()
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n{\"a\":3}\n", string(body))

	sum := sha256.Sum256(body)
	assert.Equal(t, "0x"+hex.EncodeToString(sum[:]), snapshot.SHA256)
	assert.Equal(t, snapshot.SHA256, rec.Header().Get("X-Content-Hash"))

	// Download is idempotent.
	rec = doJSON(t, h, http.MethodGet, "/bulk/download/"+accepted.JobID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExportInvalidPayload(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/bulk/export", token, types.ExportRequest{End: "now"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusUnknownJob(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodGet, "/bulk/status/no-such-job", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/bulk/download/no-such-job", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadBeforeDone(t *testing.T) {
	gate := make(chan struct{})
	h := newTestServer(t, &stubSource{rows: []source.Row{{"a": 1}}, gate: gate}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/bulk/export", token, types.ExportRequest{Start: "-1h", End: "now"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted types.ExportAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))

	rec = doJSON(t, h, http.MethodGet, "/bulk/download/"+accepted.JobID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(gate)
	waitDone(t, h, token, accepted.JobID)
}

func TestDownloadZeroRowExport(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/bulk/export", token, types.ExportRequest{Start: "-1h", End: "now"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted types.ExportAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))

	snapshot := waitDone(t, h, token, accepted.JobID)
	assert.Equal(t, job.StateDone, snapshot.State)
	assert.Equal(t, 0, snapshot.RowCount)

	rec = doJSON(t, h, http.MethodGet, "/bulk/download/"+accepted.JobID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, constants.MsgJobNoData, errResp.Error)
}

func TestExportFailureObservedViaStatus(t *testing.T) {
	h := newTestServer(t, &stubSource{err: context.DeadlineExceeded}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/bulk/export", token, types.ExportRequest{Start: "-1h", End: "now"})
	require.Equal(t, http.StatusAccepted, rec.Code, "source failure never surfaces on the submitting request")

	var accepted types.ExportAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))

	snapshot := waitDone(t, h, token, accepted.JobID)
	assert.Equal(t, job.StateError, snapshot.State)
	assert.NotEmpty(t, snapshot.Error)
}

func TestWatchStreamsUntilTerminal(t *testing.T) {
	rows := []source.Row{{"a": 1}}
	srv := newTestServer(t, &stubSource{rows: rows})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	token := openSession(t, srv.Handler())

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/bulk/export", token, types.ExportRequest{Start: "-1h", End: "now"})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var accepted types.ExportAcceptedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	waitDone(t, srv.Handler(), token, accepted.JobID)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/bulk/watch/" + accepted.JobID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + token}})
	require.NoError(t, err)
	defer conn.Close()

	var snapshot job.ExportJob
	require.NoError(t, conn.ReadJSON(&snapshot))
	assert.Equal(t, job.StateDone, snapshot.State)
}

func TestAnchorStub(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/anchor", token, types.AnchorRequest{
		FileSHA256:  "0xabc",
		DatasetName: "energy",
		TimeStart:   "-7d",
		TimeEnd:     "now",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var receipt anchor.Receipt
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &receipt))
	assert.Equal(t, "0x"+strings.Repeat("0", 64), receipt.TxHash)
	assert.Equal(t, "queued", receipt.Status)
}

func TestStorageUnconfigured(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodPost, "/storage/upload", token, types.UploadRequest{FileContent: "aGk=", FileName: "x.json"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/storage/download?s3Key=a/b.json", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestConfigView(t *testing.T) {
	h := newTestServer(t, &stubSource{}).Handler()
	token := openSession(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/config", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view types.ConfigView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 900, view.Connector.SessionTTLSeconds)
	assert.False(t, view.Blockchain.HasPrivateKey)
}
