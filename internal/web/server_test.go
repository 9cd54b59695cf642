package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"partners-cli/internal/console"
	"partners-cli/internal/form"
	"partners-cli/internal/logging"
	"partners-cli/internal/model"
	"partners-cli/internal/notify"
	"partners-cli/internal/recordstore"
	"partners-cli/internal/recordstore/recordstoretest"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEnv struct {
	store  *recordstoretest.Server
	hub    *notify.Hub
	ts     *httptest.Server
	client *http.Client
}

var seedUsers = []model.Record{
	{ID: "1", UserName: "Ana", UserCode: "ES", Countries: []string{"Spain"}},
	{ID: "2", UserName: "Bo", Countries: []string{"Argentina", "Belgium", "Denmark", "Egypt", "Finland", "Germany", "Italy"}},
	{ID: "3", UserName: "Chen", UserCode: "AS", Countries: []string{"Japan", "India"}},
}

func newTestEnv(t *testing.T, seed ...model.Record) *testEnv {
	t.Helper()
	store := recordstoretest.NewServer(seed...)
	t.Cleanup(store.Close)
	hub := notify.New(notify.Options{})
	t.Cleanup(hub.Close)

	srv, err := NewServer(ServerConfig{
		Addr:     "127.0.0.1:0",
		Console:  console.New(store.Client(), hub, logging.Nop()),
		Hub:      hub,
		Endpoint: store.URL,
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c := *ts.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &testEnv{store: store, hub: hub, ts: ts, client: &c}
}

func (e *testEnv) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := e.client.Get(e.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(b)
}

func (e *testEnv) post(t *testing.T, path string, vals url.Values) *http.Response {
	t.Helper()
	resp, err := e.client.PostForm(e.ts.URL+path, vals)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func mustContain(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(body, w) {
			t.Fatalf("expected %q in body:\n%s", w, body)
		}
	}
}

func TestNewServer_Validates(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatalf("expected error for empty addr")
	}
	if _, err := NewServer(ServerConfig{Addr: ":0"}); err == nil {
		t.Fatalf("expected error for missing console")
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	code, body := e.get(t, "/health")
	if code != http.StatusOK || strings.TrimSpace(body) != "ok" {
		t.Fatalf("unexpected health response %d %q", code, body)
	}
}

func TestHome_ListsRows(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	code, body := e.get(t, "/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	mustContain(t, body, "Users &amp; Partners", "Ana", "Chen", `<span class="tag">Spain</span>`, "+2 More", `href="/users/2/edit"`)
	if strings.Contains(body, ">Germany<") {
		t.Fatalf("sixth country should be folded into +N More")
	}
	if e.store.Count(recordstore.OpList) != 1 {
		t.Fatalf("expected one fetch per list visit, got %d", e.store.Count(recordstore.OpList))
	}
}

func TestHome_EmptyState(t *testing.T) {
	e := newTestEnv(t)
	_, body := e.get(t, "/")
	mustContain(t, body, console.EmptyTitle, console.EmptyBody)
}

func TestHome_RefreshFailureIsStaleNotToast(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	e.get(t, "/")
	e.store.Fail(recordstore.OpList, -1)

	code, body := e.get(t, "/")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	mustContain(t, body, `class="stale"`, "Ana")
	if len(e.hub.Recent()) != 0 {
		t.Fatalf("refresh failures must not notify, got %#v", e.hub.Recent())
	}
}

func TestNewUserPage(t *testing.T) {
	e := newTestEnv(t)
	code, body := e.get(t, "/users/new")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	mustContain(t, body, "New User", `action="/users"`, `name="countries" value="Argentina"`)
}

func TestCreate_InvalidRerendersWithErrors(t *testing.T) {
	e := newTestEnv(t)
	resp := e.post(t, "/users", url.Values{"userName": {"  "}, "userCode": {"X"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	mustContain(t, body, model.MsgUserNameRequired, model.MsgCountriesRequired, `value="X"`)
	if e.store.Count(recordstore.OpCreate) != 0 {
		t.Fatalf("invalid submissions must not reach the store")
	}
}

func TestCreate_RedirectsWithToast(t *testing.T) {
	e := newTestEnv(t)
	resp := e.post(t, "/users", url.Values{
		"userName":  {" Dana "},
		"userCode":  {"NO"},
		"countries": {"Japan", "India"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	loc := resp.Header.Get("Location")
	if !strings.HasPrefix(loc, "/?since=") {
		t.Fatalf("unexpected redirect %q", loc)
	}

	recs := e.store.Records()
	if len(recs) != 1 {
		t.Fatalf("expected 1 record, got %d", len(recs))
	}
	want := model.Record{ID: recs[0].ID, UserName: "Dana", UserCode: "NO", Countries: []string{"Japan", "India"}}
	if diff := cmp.Diff(want, recs[0]); diff != "" {
		t.Fatalf("created record (-want +got):\n%s", diff)
	}

	_, body := e.get(t, loc)
	mustContain(t, body, console.MsgCreated, "toast-success", "Dana")
}

func TestView_RendersDetailsAnd404(t *testing.T) {
	e := newTestEnv(t, seedUsers...)

	code, body := e.get(t, "/users/3")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	mustContain(t, body, "View Details", "<td>Chen</td>", "<li>Japan</li>", `href="/users/3/edit"`, "Add New User")
	if strings.Contains(body, `name="userName"`) {
		t.Fatalf("view mode must not render inputs")
	}

	code, _ = e.get(t, "/users/404")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	code, _ = e.get(t, "/users/404/edit")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for edit, got %d", code)
	}
}

func TestEditPage_Prefills(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	code, body := e.get(t, "/users/1/edit")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	mustContain(t, body, "Edit User", `action="/users/1"`, `value="Ana"`, `value="Spain" checked`)
}

func TestUpdate_KeepsExistingOrderAndAppends(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	resp := e.post(t, "/users/3", url.Values{
		"userName":  {"Chen"},
		"userCode":  {""},
		"countries": {"India", "Spain"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", resp.StatusCode, readBody(t, resp))
	}
	var got model.Record
	for _, r := range e.store.Records() {
		if r.ID == "3" {
			got = r
		}
	}
	want := model.Record{ID: "3", UserName: "Chen", UserCode: "", Countries: []string{"India", "Spain"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("updated record (-want +got):\n%s", diff)
	}
	if e.store.Count(recordstore.OpCreate) != 0 {
		t.Fatalf("update must never create")
	}
}

func TestUpdate_MissingIs404(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	resp := e.post(t, "/users/404", url.Values{"userName": {"X"}, "countries": {"Spain"}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if e.store.Count(recordstore.OpUpdate) != 0 {
		t.Fatalf("missing record must not be written")
	}
}

func TestSaveFailure_ShowsErrorToast(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	e.store.Fail(recordstore.OpCreate, 1)
	resp := e.post(t, "/users", url.Values{"userName": {"Eve"}, "countries": {"Spain"}})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	_, body := e.get(t, resp.Header.Get("Location"))
	mustContain(t, body, "toast-error", "Error Saving/Updating user, Please try again later.")
}

func TestDelete(t *testing.T) {
	e := newTestEnv(t, seedUsers...)
	resp := e.post(t, "/users/2/delete", nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	if len(e.store.Records()) != 2 {
		t.Fatalf("expected 2 records, got %d", len(e.store.Records()))
	}
	_, body := e.get(t, resp.Header.Get("Location"))
	mustContain(t, body, console.MsgDeleted)
	if strings.Contains(body, `data-id="2"`) {
		t.Fatalf("deleted row still listed")
	}

	e.store.Fail(recordstore.OpDelete, 1)
	resp = e.post(t, "/users/1/delete", nil)
	_, body = e.get(t, resp.Header.Get("Location"))
	mustContain(t, body, console.MsgDeleteFailed)
}

func TestUnknownPathIs404(t *testing.T) {
	e := newTestEnv(t)
	code, _ := e.get(t, "/nope")
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestWS_StreamsNotifications(t *testing.T) {
	e := newTestEnv(t)
	e.hub.Success("before")
	mark := e.hub.LastSeq()
	e.hub.Error("missed while loading")

	wsURL := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws?since=" + strconv.FormatUint(mark, 10)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	read := func() notify.Notification {
		t.Helper()
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		var n notify.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			t.Fatalf("decode %s: %v", data, err)
		}
		return n
	}

	if n := read(); n.Message != "missed while loading" || n.Severity != notify.SeverityError {
		t.Fatalf("unexpected replay %#v", n)
	}

	// The subscription is registered before the replay is written, so a publish
	// now is delivered live.
	e.hub.Success(console.MsgUpdated)
	if n := read(); n.Message != console.MsgUpdated {
		t.Fatalf("unexpected live notification %#v", n)
	}
}

func TestWS_RejectsCrossOrigin(t *testing.T) {
	e := newTestEnv(t)
	wsURL := "ws" + strings.TrimPrefix(e.ts.URL, "http") + "/ws"
	h := http.Header{}
	h.Set("Origin", "http://evil.example")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, h)
	if err == nil {
		conn.Close()
		t.Fatalf("expected cross-origin dial to fail")
	}
	if resp != nil {
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", resp.StatusCode)
		}
	}
}

func TestApplyFields(t *testing.T) {
	var f form.Form
	rec := model.Record{ID: "9", UserName: "Old", Countries: []string{"Japan", "India", "Spain"}}
	if err := f.Open(form.ModeEdit, &rec); err != nil {
		t.Fatalf("open: %v", err)
	}
	vals := url.Values{
		"userName":  {"New"},
		"userCode":  {"C"},
		"countries": {"Spain", "Egypt", "Japan", "Egypt", " "},
	}
	if err := applyFields(&f, vals); err != nil {
		t.Fatalf("applyFields: %v", err)
	}
	if diff := cmp.Diff([]string{"Japan", "Spain", "Egypt"}, f.Countries()); diff != "" {
		t.Fatalf("countries (-want +got):\n%s", diff)
	}
	if f.Name() != "New" || f.Code() != "C" {
		t.Fatalf("unexpected fields %q %q", f.Name(), f.Code())
	}

	var view form.Form
	_ = view.Open(form.ModeView, &rec)
	if err := applyFields(&view, vals); err == nil {
		t.Fatalf("expected read-only error in view mode")
	}
}