package wxwork

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bft-labs/wxnotify/pkg/cache"
)

// fakePlatform is an in-process stand-in for the WeCom API.
type fakePlatform struct {
	t *testing.T

	mu sync.Mutex

	tokenCalls  int
	sendCalls   int
	uploadCalls int
	calls       []string

	// Responses; defaults are success bodies.
	token      string
	tokenBody  string
	sendBody   string
	uploadBody string

	lastCorpID     string
	lastSecret     string
	lastSendToken  string
	lastSend       map[string]interface{}
	lastUploadType string
	lastFilename   string
	lastUpload     []byte
	boundaries     []string
}

func newFakePlatform(t *testing.T) (*fakePlatform, *httptest.Server) {
	t.Helper()
	p := &fakePlatform{t: t, token: "ACCESS_TOKEN_1"}
	ts := httptest.NewServer(p)
	t.Cleanup(ts.Close)
	return p, ts
}

func (p *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, r.URL.Path)
	q := r.URL.Query()

	switch r.URL.Path {
	case "/cgi-bin/gettoken":
		p.tokenCalls++
		p.lastCorpID = q.Get("corpid")
		p.lastSecret = q.Get("corpsecret")
		if p.tokenBody != "" {
			io.WriteString(w, p.tokenBody)
			return
		}
		io.WriteString(w, `{"errcode":0,"errmsg":"ok","access_token":"`+p.token+`","expires_in":7200}`)

	case "/cgi-bin/message/send":
		p.sendCalls++
		p.lastSendToken = q.Get("access_token")
		body, _ := io.ReadAll(r.Body)
		p.lastSend = nil
		if err := json.Unmarshal(body, &p.lastSend); err != nil {
			p.t.Errorf("send body is not JSON: %v", err)
		}
		if p.sendBody != "" {
			io.WriteString(w, p.sendBody)
			return
		}
		io.WriteString(w, `{"errcode":0,"errmsg":"ok","invaliduser":"","msgid":"MSGID1"}`)

	case "/cgi-bin/media/upload":
		p.uploadCalls++
		p.lastUploadType = q.Get("type")
		ct := r.Header.Get("Content-Type")
		if i := strings.Index(ct, "boundary="); i >= 0 {
			p.boundaries = append(p.boundaries, strings.Trim(ct[i+len("boundary="):], `"`))
		}
		file, hdr, err := r.FormFile("media")
		if err != nil {
			p.t.Errorf("upload has no media part: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		p.lastFilename = hdr.Filename
		p.lastUpload, _ = io.ReadAll(file)
		if p.uploadBody != "" {
			io.WriteString(w, p.uploadBody)
			return
		}
		io.WriteString(w, `{"errcode":0,"errmsg":"ok","type":"file","media_id":"MEDIA_1","created_at":"1380000000"}`)

	default:
		http.NotFound(w, r)
	}
}

func (p *fakePlatform) counts() (token, send, upload int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokenCalls, p.sendCalls, p.uploadCalls
}

func (p *fakePlatform) setToken(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

func testAuth() Auth {
	return Auth{CorpID: "wwbefbb2e3cdd824b6", Secret: "app-secret", AgentID: 1000002}
}

func newTestClient(ts *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithBaseURL(ts.URL),
		WithHTTPClient(ts.Client()),
		WithCache(cache.New()),
	}
	return NewClient(append(base, opts...)...)
}

// inspect runs fn while holding the platform lock.
func (p *fakePlatform) inspect(fn func(p *fakePlatform)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p)
}
