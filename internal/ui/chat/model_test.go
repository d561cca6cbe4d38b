// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/querychat/internal/backend"
	"github.com/jeranaias/querychat/internal/config"
	"github.com/jeranaias/querychat/internal/model"
)

const chartReply = `{
  "answer": "Sales by month",
  "sql": "SELECT month, total FROM sales",
  "columns": ["month", "total"],
  "rows": [{"month": "Jan", "total": 10}, {"month": "Feb", "total": 20}],
  "chart_data": {
    "type": "line",
    "labels": ["Jan", "Feb", "Mar", "Apr"],
    "datasets": [
      {"label": "Revenue", "data": [10, 20, 30, 40]},
      {"label": "Orders", "data": [1, 2, 3, 4]}
    ]
  }
}`

// =============================================================================
// HELPERS
// =============================================================================

func payload(t *testing.T, raw string) *model.Payload {
	t.Helper()
	p, err := model.ParsePayload([]byte(raw))
	if err != nil {
		t.Fatalf("ParsePayload failed: %v", err)
	}
	return p
}

// seeded returns a conversation with two answered questions: a plain
// answer, then one with SQL, a table and a chart.
func seeded(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation()
	conv.Append(model.NewUserTurn("hello", 1))
	conv.Append(model.NewBotTurn(1, payload(t, `{"answer": "hi"}`)))
	conv.Append(model.NewUserTurn("sales by month", 2))
	conv.Append(model.NewBotTurn(2, payload(t, chartReply)))
	return conv
}

func newTestModel(t *testing.T, url string, store *model.Conversation) Model {
	t.Helper()
	cfg := config.Default()
	cfg.Backend.URL = url
	cfg.Export.Dir = t.TempDir()
	return newTestModelWithConfig(t, cfg, store)
}

func newTestModelWithConfig(t *testing.T, cfg *config.Config, store *model.Conversation) Model {
	t.Helper()
	m := New(Options{Config: cfg, Store: store})
	return send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
}

func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

// collect runs cmd and any batched commands, returning the messages that
// arrive promptly. Timers such as notice expiry are abandoned.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

func find[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/chat":
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_BlankIsNoop(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)
	m.input.SetValue("   ")

	m, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	if cmd != nil {
		t.Error("blank submit should not start a request")
	}
	if m.Store().Len() != 0 {
		t.Errorf("expected no turns, got %d", m.Store().Len())
	}
}

func TestSubmit_RoundTrip(t *testing.T) {
	srv := chatServer(t, http.StatusOK, chartReply)
	m := newTestModel(t, srv.URL, nil)
	m.input.SetValue("  sales by month  ")

	m, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	if got := m.Store().Len(); got != 2 {
		t.Fatalf("expected user turn and placeholder, got %d turns", got)
	}
	if m.Store().PendingCount() != 1 {
		t.Fatal("expected one pending placeholder")
	}
	if m.input.Value() != "" {
		t.Error("input should be cleared after submit")
	}
	if !strings.Contains(m.View(), "Thinking...") {
		t.Error("placeholder should show the thinking spinner")
	}

	reply := find[ReplyMsg](t, collect(cmd))
	m = send(t, m, reply)

	turns := m.Store().Turns()
	if len(turns) != 2 {
		t.Fatalf("expected exactly 2 turns, got %d", len(turns))
	}
	if turns[0].Question != "sales by month" {
		t.Errorf("question = %q", turns[0].Question)
	}
	if turns[1].Pending || turns[1].Payload == nil || turns[1].Payload.Answer != "Sales by month" {
		t.Errorf("unexpected bot turn: %+v", turns[1])
	}
	if m.Chart(turns[1].ID) == nil {
		t.Error("chart should be built when the reply is mounted")
	}
	if m.thinking.IsActive() {
		t.Error("spinner should stop when nothing is pending")
	}
}

func TestSubmit_HTTPErrorBecomesErrorTurn(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, `{"detail": "boom"}`)
	m := newTestModel(t, srv.URL, nil)
	m.input.SetValue("q")

	m, cmd := sendCmd(t, m, keyMsg(tea.KeyEnter))
	m = send(t, m, find[ReplyMsg](t, collect(cmd)))

	turns := m.Store().Turns()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	bot := turns[1]
	if bot.Err == nil {
		t.Fatal("expected an error turn")
	}
	if !strings.Contains(bot.Err.Text, "500") {
		t.Errorf("error text %q should mention 500", bot.Err.Text)
	}
	if bot.Err.BackendURL != srv.URL {
		t.Errorf("backend URL = %q, want %q", bot.Err.BackendURL, srv.URL)
	}
	if m.Store().PendingCount() != 0 {
		t.Error("placeholder should be gone")
	}
}

func TestSubmit_BlockWhilePending(t *testing.T) {
	cfg := config.Default()
	cfg.UI.BlockWhilePending = true
	m := newTestModelWithConfig(t, cfg, nil)

	m.input.SetValue("first")
	m = send(t, m, keyMsg(tea.KeyEnter))
	m.input.SetValue("second")
	m = send(t, m, keyMsg(tea.KeyEnter))

	if got := m.Store().Len(); got != 2 {
		t.Errorf("second submit should be refused, got %d turns", got)
	}
	if !strings.Contains(m.Notice(), "Waiting") {
		t.Errorf("notice = %q", m.Notice())
	}
	if m.input.Value() != "second" {
		t.Error("refused input should be kept")
	}
}

// =============================================================================
// FOCUS AND ANSWER ACTIONS
// =============================================================================

func TestFocus_Cycles(t *testing.T) {
	conv := seeded(t)
	turns := conv.Turns()
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	steps := []struct {
		key  tea.KeyType
		want string
	}{
		{tea.KeyTab, turns[1].ID},
		{tea.KeyTab, turns[3].ID},
		{tea.KeyTab, ""},
		{tea.KeyShiftTab, turns[3].ID},
		{tea.KeyShiftTab, turns[1].ID},
	}
	for i, step := range steps {
		m = send(t, m, keyMsg(step.key))
		if m.FocusedID() != step.want {
			t.Fatalf("step %d: focus = %q, want %q", i, m.FocusedID(), step.want)
		}
	}
	if m.input.Focused() {
		t.Error("input should be blurred while an answer is focused")
	}

	m = send(t, m, keyMsg(tea.KeyEsc))
	if m.FocusedID() != "" || !m.input.Focused() {
		t.Error("esc should return focus to the input")
	}
}

func TestToggleSQL_TargetsNewestAnswer(t *testing.T) {
	conv := seeded(t)
	id := conv.Turns()[3].ID
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	if m.SQLExpanded(id) {
		t.Fatal("SQL should start collapsed")
	}
	m = send(t, m, keyMsg(tea.KeyCtrlO))
	if !m.SQLExpanded(id) {
		t.Error("ctrl+o should expand the newest SQL panel")
	}
	m = send(t, m, keyMsg(tea.KeyCtrlO))
	if m.SQLExpanded(id) {
		t.Error("second ctrl+o should collapse it again")
	}
}

func TestToggleSQL_NothingToShow(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewBotTurn(1, payload(t, `{"answer": "plain"}`)))
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	m = send(t, m, keyMsg(tea.KeyCtrlO))
	if m.Notice() != "No SQL to show" {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestCopySQL(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { clipboardWrite = orig })

	m := newTestModel(t, "http://127.0.0.1:1", seeded(t))
	m, cmd := sendCmd(t, m, keyMsg(tea.KeyCtrlY))
	msg := find[CopiedMsg](t, collect(cmd))
	if copied != "SELECT month, total FROM sales" {
		t.Errorf("copied %q", copied)
	}

	m = send(t, m, msg)
	if !strings.Contains(m.Notice(), "Copied 30 characters") {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestLegendKeys_ToggleFocusedChart(t *testing.T) {
	conv := seeded(t)
	id := conv.Turns()[3].ID
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	// Digits go to the input while it has focus.
	m = send(t, m, runes("1"))
	if m.input.Value() != "1" || !m.Chart(id).Visible(0) {
		t.Fatal("digit should be typed while the input has focus")
	}
	m.input.Reset()

	m = send(t, m, keyMsg(tea.KeyShiftTab))
	m = send(t, m, runes("2"))
	c := m.Chart(id)
	if !c.Visible(0) || c.Visible(1) {
		t.Errorf("expected only dataset 2 hidden, got %v %v", c.Visible(0), c.Visible(1))
	}
	m = send(t, m, runes("9"))
	m = send(t, m, runes("2"))
	if !c.Visible(1) {
		t.Error("toggling again should show dataset 2")
	}
}

// =============================================================================
// CHART MODE
// =============================================================================

func TestChartMode_ZoomPanReset(t *testing.T) {
	conv := seeded(t)
	id := conv.Turns()[3].ID
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	m = send(t, m, keyMsg(tea.KeyCtrlG))
	if !m.ChartMode() || m.FocusedID() != id {
		t.Fatal("ctrl+g should enter chart mode on the newest chart")
	}
	c := m.Chart(id)

	m = send(t, m, runes("+"))
	lo, hi := c.Window()
	if lo == 0 && hi == 3 {
		t.Fatal("+ should zoom into the label window")
	}

	m = send(t, m, keyMsg(tea.KeyRight))
	lo2, _ := c.Window()
	if lo2 < lo {
		t.Errorf("right arrow should not pan left: %d -> %d", lo, lo2)
	}

	m = send(t, m, runes("0"))
	if lo, hi := c.Window(); lo != 0 || hi != 3 {
		t.Errorf("0 should reset the view, got %d..%d", lo, hi)
	}

	m = send(t, m, keyMsg(tea.KeyEsc))
	if m.ChartMode() {
		t.Error("esc should leave chart mode")
	}
	if m.FocusedID() != id {
		t.Error("leaving chart mode keeps the answer focused")
	}
}

func TestChartMode_MouseWheelZooms(t *testing.T) {
	conv := seeded(t)
	id := conv.Turns()[3].ID
	m := newTestModel(t, "http://127.0.0.1:1", conv)
	m = send(t, m, keyMsg(tea.KeyCtrlG))

	m = send(t, m, tea.MouseMsg{X: 40, Y: 10, Type: tea.MouseWheelUp})
	if !m.Chart(id).Zoomed() {
		t.Error("wheel up should zoom the chart in chart mode")
	}
	m = send(t, m, tea.MouseMsg{X: 40, Y: 10, Type: tea.MouseMotion})
	if m.Chart(id).Cursor() < 0 {
		t.Error("hovering should place the tooltip cursor")
	}
}

func TestChartMode_NoChart(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewBotTurn(1, payload(t, `{"answer": "plain"}`)))
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	m = send(t, m, keyMsg(tea.KeyCtrlG))
	if m.ChartMode() {
		t.Error("chart mode needs a chart")
	}
	if m.Notice() != "No chart to explore" {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestSaveChart(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", seeded(t))

	_, cmd := sendCmd(t, m, keyMsg(tea.KeyCtrlS))
	saved := find[ChartSavedMsg](t, collect(cmd))
	if saved.Err != nil {
		t.Fatalf("save failed: %v", saved.Err)
	}
	if filepath.Base(saved.Path) != "chart.png" {
		t.Errorf("saved as %s", saved.Path)
	}
	if _, err := os.Stat(saved.Path); err != nil {
		t.Errorf("chart file missing: %v", err)
	}
}

// =============================================================================
// EXPORT, HELP, QUIT
// =============================================================================

func TestExport_WritesHTML(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", seeded(t))

	m, cmd := sendCmd(t, m, keyMsg(tea.KeyCtrlE))
	done := find[ExportDoneMsg](t, collect(cmd))
	if done.Err != nil {
		t.Fatalf("export failed: %v", done.Err)
	}
	if !strings.HasSuffix(done.Path, ".html") {
		t.Errorf("export path %s", done.Path)
	}
	data, err := os.ReadFile(done.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "<summary>View SQL</summary>") {
		t.Error("export missing SQL panel")
	}

	m = send(t, m, done)
	if !strings.HasPrefix(m.Notice(), "[OK] Exported to") {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestExport_EmptyConversation(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)
	m = send(t, m, keyMsg(tea.KeyCtrlE))
	if m.Notice() != "Nothing to export yet" {
		t.Errorf("notice = %q", m.Notice())
	}
}

func TestHelp_Toggle(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)

	m = send(t, m, runes("?"))
	if !m.ShowingHelp() {
		t.Fatal("? should open help on an empty input")
	}
	if !strings.Contains(m.View(), "ctrl+o") {
		t.Error("help view should list keys")
	}
	m = send(t, m, runes("?"))
	if m.ShowingHelp() {
		t.Error("? should close help")
	}

	m.input.SetValue("why")
	m = send(t, m, runes("?"))
	if m.ShowingHelp() || m.input.Value() != "why?" {
		t.Error("? should be typed when the input has text")
	}
}

func TestQuitKeys(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)

	for _, k := range []tea.KeyType{tea.KeyCtrlC, tea.KeyEsc} {
		_, cmd := sendCmd(t, m, keyMsg(k))
		if cmd == nil {
			t.Fatalf("%v: expected quit command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%v: expected tea.QuitMsg", k)
		}
	}
}

// =============================================================================
// HEALTH AND CONFIG RELOAD
// =============================================================================

func TestHealthMsg(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)

	m = send(t, m, HealthMsg{Result: backend.ProbeResult{State: backend.HealthDown, URL: "http://elsewhere"}})
	if m.Health() != backend.HealthUnknown {
		t.Error("a probe of another URL should be ignored")
	}
	m = send(t, m, HealthMsg{Result: backend.ProbeResult{State: backend.HealthOK, URL: "http://127.0.0.1:1"}})
	if m.Health() != backend.HealthOK {
		t.Errorf("health = %v", m.Health())
	}
	if !strings.Contains(m.View(), "online") {
		t.Error("status bar should show online")
	}
}

func TestConfigReload_SwapsBackend(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"answer": "ok"}`)
	m := newTestModel(t, "http://127.0.0.1:1", nil)
	m = send(t, m, HealthMsg{Result: backend.ProbeResult{State: backend.HealthDown, URL: "http://127.0.0.1:1"}})

	cfg := config.Default()
	cfg.Backend.URL = srv.URL
	m, cmd := sendCmd(t, m, ConfigReloadedMsg{Config: cfg})

	if m.Controller().BackendURL() != srv.URL || m.client.BaseURL() != srv.URL {
		t.Fatalf("backend not swapped: %s", m.Controller().BackendURL())
	}
	if m.Health() != backend.HealthUnknown {
		t.Error("health should reset until the new probe answers")
	}

	probe := find[HealthMsg](t, collect(cmd))
	m = send(t, m, probe)
	if m.Health() != backend.HealthOK {
		t.Errorf("health after re-probe = %v", m.Health())
	}
}

func TestConfigReload_AppliesBackendSettings(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)

	cfg := config.Default()
	cfg.Backend.URL = "http://127.0.0.1:1"
	cfg.Backend.TimeoutSecs = 30
	cfg.Backend.HealthTimeoutSecs = 9
	cfg.Backend.MaxResponseMB = 2
	cfg.Backend.RatePerSec = 4
	m, cmd := sendCmd(t, m, ConfigReloadedMsg{Config: cfg})

	got := m.client.Settings()
	if got.Timeout != 30*time.Second || got.HealthTimeout != 9*time.Second {
		t.Errorf("timeouts not applied: %+v", got)
	}
	if got.MaxResponseSize != 2<<20 || got.RatePerSec != 4 {
		t.Errorf("limits not applied: %+v", got)
	}
	for _, msg := range collect(cmd) {
		if _, ok := msg.(HealthMsg); ok {
			t.Error("unchanged URL should not re-probe")
		}
	}
}

func TestBackendConfig_DefaultWaitsForever(t *testing.T) {
	bc := BackendConfig(config.Default())
	if bc.Timeout != 0 {
		t.Errorf("default /chat timeout = %v, want none", bc.Timeout)
	}
	if got := backend.New(bc).Settings().Timeout; got != 0 {
		t.Errorf("client timeout = %v, want none", got)
	}
}

func TestConfigReload_ErrorKeepsSettings(t *testing.T) {
	m := newTestModel(t, "http://127.0.0.1:1", nil)
	m = send(t, m, ConfigReloadedMsg{Err: os.ErrInvalid})
	if m.Controller().BackendURL() != "http://127.0.0.1:1" {
		t.Error("failed reload must not change the backend")
	}
	if !strings.Contains(m.Notice(), "Config reload failed") {
		t.Errorf("notice = %q", m.Notice())
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func TestView_WelcomeWhenEmpty(t *testing.T) {
	m := New(Options{})
	if m.View() != "Loading..." {
		t.Error("view before the first resize should be a placeholder")
	}
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	view := m.View()
	if !strings.Contains(view, "Hello!") {
		t.Error("empty conversation should show the greeting")
	}
	if !strings.Contains(view, "Sales Data Chatbot") {
		t.Error("header missing")
	}
}

func TestMount_ReusedUntilInputsChange(t *testing.T) {
	conv := seeded(t)
	turn := conv.Turns()[0]
	m := newTestModel(t, "http://127.0.0.1:1", conv)

	cached := m.mounts[turn.ID]
	cached.out = "CACHED"
	m.mounts[turn.ID] = cached
	if got := m.mountTurn(turn); got != "CACHED" {
		t.Error("unchanged turn should reuse its mount")
	}

	m = send(t, m, tea.WindowSizeMsg{Width: 90, Height: 40})
	if got := m.mountTurn(turn); got == "CACHED" {
		t.Error("width change should re-mount")
	}
}

func TestLegendIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1", 0, true},
		{"9", 8, true},
		{"0", 0, false},
		{"a", 0, false},
		{"12", 0, false},
	}
	for _, tt := range tests {
		got, ok := legendIndex(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("legendIndex(%q) = %d, %v", tt.in, got, ok)
		}
	}
}
