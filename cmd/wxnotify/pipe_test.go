package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/wxnotify/pkg/wxwork"
)

func contents(sends []map[string]interface{}) []string {
	var out []string
	for _, s := range sends {
		text, _ := s["text"].(map[string]interface{})
		c, _ := text["content"].(string)
		out = append(out, c)
	}
	return out
}

func TestPipe_FlushesAtEOF(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("a\nb\nc\n", withCreds("pipe")...)
	require.NoError(t, err)

	tokens, sends := h.p.snapshot()
	assert.Equal(t, 1, tokens)
	assert.Equal(t, []string{"a\nb\nc"}, contents(sends))
}

func TestPipe_SplitsBySize(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("aa\nbb\ncc\n", withCreds("pipe", "--max-batch-bytes", "5")...)
	require.NoError(t, err)

	_, sends := h.p.snapshot()
	assert.Equal(t, []string{"aa\nbb", "cc"}, contents(sends))
}

func TestPipe_EmptyInputSendsNothing(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("", withCreds("pipe")...)
	require.NoError(t, err)

	tokens, sends := h.p.snapshot()
	assert.Zero(t, tokens)
	assert.Empty(t, sends)
}

func TestPipe_RefreshesRefusedToken(t *testing.T) {
	h := newHarness(t)
	h.p.sendBodies = []string{`{"errcode":42001,"errmsg":"access_token expired"}`}

	_, err := h.run("x\n", withCreds("pipe")...)
	require.NoError(t, err)

	tokens, sends := h.p.snapshot()
	assert.Equal(t, 2, tokens, "refused token is refetched")
	assert.Equal(t, []string{"x", "x"}, contents(sends))
}

func TestPipe_ReportsRejectedBatches(t *testing.T) {
	h := newHarness(t)
	h.p.sendBodies = []string{`{"errcode":40008,"errmsg":"invalid message type"}`}

	_, err := h.run("x\n", withCreds("pipe")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 batches not delivered")
}

func TestPiper_Reload(t *testing.T) {
	h := newHarness(t)
	h.writeConfig(`
corp_id = "ww1"
secret = "old-secret"
agent_id = 1000002
`)

	a, err := h.run("x\n", "pipe")
	require.NoError(t, err)

	p := newPiper(a)
	old := p.currentAuth()
	assert.Equal(t, "old-secret", old.Secret)
	assert.Equal(t, 1, a.cache.Len(), "token for the old secret is cached")

	h.writeConfig(`
corp_id = "ww1"
secret = "new-secret"
agent_id = 1000002
`)
	p.reload()

	assert.Equal(t, wxwork.Auth{CorpID: "ww1", Secret: "new-secret", AgentID: 1000002}, p.currentAuth())
	assert.Zero(t, a.cache.Len(), "old token is invalidated")

	// An invalid file keeps the current credentials.
	h.writeConfig(`secret = ""` + "\n" + `agent_id = "not a number"`)
	p.reload()
	assert.Equal(t, "new-secret", p.currentAuth().Secret)
}

func TestTick(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, tick(2*time.Second))
	assert.Equal(t, 10*time.Millisecond, tick(time.Millisecond))
}
