// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bvk/hashes/algorithm"
	"github.com/bvk/hashes/app"
	"github.com/bvk/hashes/datastore"
	"github.com/bvk/hashes/hashes"
	"github.com/bvk/hashes/price"
	"github.com/bvk/hashes/shell"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/gorilla/websocket"
)

const testJobs = `{"success":true,"list":[
{"id":1,"createdAt":"2024-01-19 01:22:58","lastUpdate":"2024-01-20 01:00:00","algorithmId":0,"algorithmName":"MD5",
 "totalHashes":20,"foundHashes":0,"leftHashes":20,"maxCracksNeeded":10,"currency":"BTC",
 "pricePerHash":"0.001","pricePerHashUsd":"0.1","leftList":"/unfound/1.txt","hints":"starts with a"},
{"id":2,"createdAt":"2024-01-18 01:22:58","lastUpdate":"2024-01-20 01:00:00","algorithmId":1000,"algorithmName":"NTLM",
 "totalHashes":5,"foundHashes":1,"leftHashes":4,"maxCracksNeeded":5,"currency":"XMR",
 "pricePerHash":"0.5","pricePerHashUsd":"50","leftList":"/unfound/2.txt","hints":""}
]}`

const testNewJobs = `{"success":true,"new":[
{"id":9,"createdAt":"2024-01-21 01:00:00","lastUpdate":"2024-01-21 01:00:00","algorithmId":0,"algorithmName":"MD5",
 "totalHashes":3,"foundHashes":0,"leftHashes":3,"maxCracksNeeded":3,"currency":"LTC",
 "pricePerHash":"0.1","pricePerHashUsd":"0.1","leftList":"/unfound/9.txt","hints":"try rockyou"}]}`

type fakeSite struct {
	mu     sync.Mutex
	counts map[string]int

	t *testing.T
}

func (v *fakeSite) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		v.t.Errorf("could not upgrade: %v", err)
		return
	}
	defer conn.Close()

	conn.WriteMessage(websocket.TextMessage, []byte(`{"success":false,"message":"Too many connections"}`))
	conn.WriteMessage(websocket.TextMessage, []byte(testNewJobs))

	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(time.Second))
	// Wait for the close reply from the client.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	conn.ReadMessage()
}

func (v *fakeSite) count(p string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.counts[p]
}

func (v *fakeSite) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.mu.Lock()
	v.counts[r.URL.Path]++
	v.mu.Unlock()

	switch r.URL.Path {
	case "/en/api/jobs":
		fmt.Fprint(w, testJobs)
	case "/unfound/1.txt":
		fmt.Fprint(w, "aaaa\nabcd\n")
	case "/en/api/balance":
		fmt.Fprint(w, `{"success":true,"BTC":"0.5","XMR":"0","LTC":"0","credits":"10"}`)
	case "/en/api/uploads":
		fmt.Fprint(w, `{"success":true,"list":[
{"id":7,"date":"2024-01-01 00:00:00","algorithm":"MD5","status":"Verified","totalHashes":"10","validHashes":"8","btc":"0.002","xmr":"0","ltc":"0"},
{"id":8,"date":"2024-01-02 00:00:00","algorithm":"NTLM","status":"Pending","totalHashes":"3","validHashes":"3","btc":"0.01","xmr":"0","ltc":"0"}]}`)
	case "/en/api/withdrawals":
		fmt.Fprint(w, `{"success":true,"list":[{"id":3,"date":"2024-01-03 00:00:00","status":"Paid","currency":"BTC","amount":"0.1","afterFee":"0.09","destination":"bc1xyz","transaction":"tx1"}]}`)
	case "/en/api/identifier":
		fmt.Fprint(w, `{"success":true,"algorithms":["MD5","MD4"]}`)
	case "/en/api/search":
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n := len(r.PostForm["hashes[]"])
		fmt.Fprintf(w, `{"success":true,"cost":2,"count":%d,"founds":[{"hash":"abc","salt":"","plaintext":"plain","algorithm":"MD5"}]}`, n)
	case "/en/api/founds":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if r.FormValue("key") != "key" || r.FormValue("algo") != "0" {
			fmt.Fprint(w, `{"success":false,"message":"Invalid upload"}`)
			return
		}
		fmt.Fprint(w, `{"success":true}`)
	case "/en/api/jobs_wss/", "/en/api/jobs_wss":
		v.serveWebsocket(w, r)
	case "/ticker":
		fmt.Fprint(w, `{"error":[],"result":{"XXBTZUSD":{"a":["100.0","1","1.000"]},"XXMRZUSD":{"a":["10.0","1","1.000"]},"XLTCZUSD":{"a":["1.0","1","1.000"]}}}`)
	default:
		http.NotFound(w, r)
	}
}

type testEnv struct {
	site  *fakeSite
	app   *app.App
	shell *shell.Shell
	out   *bytes.Buffer
	dir   string
}

func newTestEnv(t *testing.T, apiKey, input string) *testEnv {
	t.Helper()
	site := &fakeSite{counts: make(map[string]int), t: t}
	srv := httptest.NewServer(site)
	t.Cleanup(srv.Close)

	siteURL, err := url.Parse(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	restURL := siteURL.JoinPath("/en/api")
	tickerURL := siteURL.JoinPath("/ticker")
	wsURL := siteURL.JoinPath("/en/api/jobs_wss/")
	wsURL.Scheme = "ws"

	dir := t.TempDir()
	cfg := &app.Config{DataDir: dir, APIKey: apiKey, DownloadDelaySecs: 1, WatchIntervalSecs: 1}
	out := new(bytes.Buffer)
	opts := &app.Options{
		ClientOptions: &hashes.Options{SiteURL: siteURL, RestURL: restURL, WebsocketURL: wsURL},
		OracleOptions: &price.Options{TickerURL: tickerURL},
		In:            strings.NewReader(input),
		Out:           out,
		Err:           new(bytes.Buffer),
	}
	a, err := app.New(context.Background(), cfg, datastore.New(kvmemdb.New()), opts)
	if err != nil {
		t.Fatal(err)
	}
	return &testEnv{
		site:  site,
		app:   a,
		shell: shell.New(Commands(a), &shell.Options{Out: out}),
		out:   out,
		dir:   dir,
	}
}

func (v *testEnv) exec(t *testing.T, line string) string {
	t.Helper()
	v.out.Reset()
	if err := v.shell.Exec(context.Background(), line); err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	return v.out.String()
}

func checkContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("output doesn't contain %q:\n%s", want, out)
		}
	}
}

func TestGetJobs(t *testing.T) {
	env := newTestEnv(t, "key", "")

	out := env.exec(t, "get jobs -currency xmr")
	checkContains(t, out, "NTLM", "No hints available")
	if strings.Contains(out, "MD5") {
		t.Fatalf("currency filter is not applied:\n%s", out)
	}

	out = env.exec(t, "get jobs -sortby created -r")
	if strings.Index(out, "NTLM") > strings.Index(out, "MD5") {
		t.Fatalf("want oldest job first with -r:\n%s", out)
	}

	out = env.exec(t, "get jobs -jobid 1,77")
	checkContains(t, out, "No valid jobs for ids: 77")

	before := env.site.count("/en/api/jobs")
	err := env.shell.Exec(context.Background(), "get jobs -algid 0,9999")
	if !errors.Is(err, algorithm.ErrUnknown) || !strings.Contains(err.Error(), "9999") {
		t.Fatalf("want unknown algorithm error naming the id, got %v", err)
	}
	if env.site.count("/en/api/jobs") != before {
		t.Fatalf("jobs must not be fetched for unknown algorithm ids")
	}

	if err := env.shell.Exec(context.Background(), "get jobs -self"); !errors.Is(err, hashes.ErrNoSession) {
		t.Fatalf("want no session error, got %v", err)
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t, "key", "")
	fpath := filepath.Join(env.dir, "left.txt")

	out := env.exec(t, fmt.Sprintf("download -jobid 1,55 -f %s", fpath))
	checkContains(t, out, "55 not valid jobs", "Wrote 1 left lists to: "+fpath)
	data, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "aaaa\nabcd\n" {
		t.Fatalf("unexpected left list contents %q", data)
	}

	if err := env.shell.Exec(context.Background(), "download -jobid 1"); err == nil {
		t.Fatalf("want error without -f or -p")
	}
	if env.site.count("/unfound/2.txt") != 0 {
		t.Fatalf("unrequested left list was downloaded")
	}
}

func TestStats(t *testing.T) {
	env := newTestEnv(t, "key", "")
	out := env.exec(t, "stats")
	checkContains(t, out,
		"Total hashes left: 24",
		"Total hashes found: 1",
		"Total BTC value: 0.01 / $1.000",
		"Total XMR value: 2 / $20.000",
		"Total LTC value: 0 / $0.00")
}

func TestBalance(t *testing.T) {
	env := newTestEnv(t, "key", "")
	out := env.exec(t, "balance")
	checkContains(t, out, "0.5000000", "$50.000", "$0.00", "N/A")

	out = env.exec(t, "withdrawals")
	checkContains(t, out, "bc1xyz", "$9.000")

	none := newTestEnv(t, "", "")
	if err := none.shell.Exec(context.Background(), "balance"); !errors.Is(err, errNoAPIKey) {
		t.Fatalf("want api key error, got %v", err)
	}
}

func TestHistory(t *testing.T) {
	env := newTestEnv(t, "key", "")
	out := env.exec(t, "history -r -limit 1")
	checkContains(t, out, "Pending")
	if strings.Contains(out, "Verified") {
		t.Fatalf("limit is not applied after reverse:\n%s", out)
	}

	out = env.exec(t, "history -stats")
	checkContains(t, out, "Total hashes submitted: 13", "Total valid hashes submitted: 11", "Total BTC value: 0.012 / $1.200")
	if strings.Index(out, "NTLM") > strings.Index(out, "MD5") {
		t.Fatalf("want algorithms ordered by btc earnings:\n%s", out)
	}
}

func TestLookup(t *testing.T) {
	env := newTestEnv(t, "key", "y\nn\n")
	out := env.exec(t, "lookup -single abc -p -verbose")
	checkContains(t, out, "potential cost of 2 credits", "There were 1/1 hashes found.", "abc:plain:MD5")

	out = env.exec(t, "lookup -single abc -p")
	checkContains(t, out, "Lookup transaction canceled.")
	if n := env.site.count("/en/api/search"); n != 1 {
		t.Fatalf("want one search request, got %d", n)
	}

	infile := filepath.Join(env.dir, "hashes.txt")
	var sb strings.Builder
	for i := 0; i < 251; i++ {
		fmt.Fprintf(&sb, "%032d\n", i)
	}
	if err := os.WriteFile(infile, []byte(sb.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := env.shell.Exec(context.Background(), "lookup -p -infile "+infile); err == nil {
		t.Fatalf("want error for too many hashes")
	}
}

func TestHintsAndID(t *testing.T) {
	env := newTestEnv(t, "key", "")
	checkContains(t, env.exec(t, "hints -jobid 1"), "Hints for job id 1:", "starts with a")
	checkContains(t, env.exec(t, "hints -jobid 2"), "No available hints for job id 2.")
	checkContains(t, env.exec(t, "hints -jobid 3"), "3 is an invalid job id.")
	checkContains(t, env.exec(t, "id -hash 900150983cd24fb0d6963f7d28e17f72"), "MD5\nMD4\n")
}

func TestAlgsAndLogout(t *testing.T) {
	env := newTestEnv(t, "key", "")
	checkContains(t, env.exec(t, "algs -algid 0,999999"), "MD5", "999999 not currently supported.")
	checkContains(t, env.exec(t, "algs -search zzzzzz"), "No results found for 'zzzzzz'")
	checkContains(t, env.exec(t, "logout"), "You are not logged in.")
	if err := env.shell.Exec(context.Background(), "login -history"); !errors.Is(err, hashes.ErrNoSession) {
		t.Fatalf("want no session error, got %v", err)
	}
}

func TestWatchHistory(t *testing.T) {
	env := newTestEnv(t, "key", "")
	out := env.exec(t, "watch -history 5")
	checkContains(t, out, "Started", "Reason")
	if err := env.shell.Exec(context.Background(), "watch"); err == nil {
		t.Fatalf("want error without -jobid")
	}
}

func TestDownloadFileAndPrint(t *testing.T) {
	env := newTestEnv(t, "key", "")
	fpath := filepath.Join(env.dir, "both.txt")

	out := env.exec(t, fmt.Sprintf("download -jobid 1 -p -f %s", fpath))
	checkContains(t, out, "aaaa\nabcd\n", "Wrote 1 left lists to: "+fpath)
	data, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "aaaa\nabcd\n" {
		t.Fatalf("unexpected left list contents %q", data)
	}
}

func TestEmptyAlgorithmFilter(t *testing.T) {
	env := newTestEnv(t, "key", "")
	for _, line := range []string{"get jobs -algid ,", "stats -algid ' , '"} {
		if err := env.shell.Exec(context.Background(), line); !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("%s: want os.ErrInvalid, got %v", line, err)
		}
	}
	if n := env.site.count("/en/api/jobs"); n != 0 {
		t.Fatalf("jobs must not be fetched without algorithm ids, got %d requests", n)
	}
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t, "key", "n\n")
	fpath := filepath.Join(env.dir, "founds.txt")
	if err := os.WriteFile(fpath, []byte("8743b52063cd84097a65d1633f5c74f5:hashcat\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := env.exec(t, "upload -algid 0 -file "+fpath)
	checkContains(t, out, "Upload canceled.")
	if n := env.site.count("/en/api/founds"); n != 0 {
		t.Fatalf("declined upload must not be sent, got %d requests", n)
	}

	out = env.exec(t, "upload -algid 0 -y -file "+fpath)
	checkContains(t, out, "File successfully uploaded.")
	if n := env.site.count("/en/api/founds"); n != 1 {
		t.Fatalf("want one upload request, got %d", n)
	}

	csv := filepath.Join(env.dir, "founds.csv")
	if err := os.WriteFile(csv, []byte("x:y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := env.shell.Exec(context.Background(), "upload -algid 0 -y -file "+csv); err == nil {
		t.Fatalf("want error for a non .txt file")
	}
	if err := env.shell.Exec(context.Background(), "upload -algid 999999 -y -file "+fpath); err == nil {
		t.Fatalf("want error for an unknown algorithm")
	}
	if n := env.site.count("/en/api/founds"); n != 1 {
		t.Fatalf("invalid uploads must not be sent, got %d requests", n)
	}

	none := newTestEnv(t, "", "")
	if err := none.shell.Exec(context.Background(), "upload -algid 0 -y -file "+fpath); !errors.Is(err, errNoAPIKey) {
		t.Fatalf("want api key error, got %v", err)
	}
}

func TestWebsocket(t *testing.T) {
	env := newTestEnv(t, "key", "")

	err := env.shell.Exec(context.Background(), "websocket -handler nosuch")
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("want os.ErrNotExist for unknown handler, got %v", err)
	}
	if !strings.Contains(err.Error(), "print") || !strings.Contains(err.Error(), "download") {
		t.Fatalf("error must list the available handlers: %v", err)
	}
	if n := env.site.count("/en/api/jobs_wss/"); n != 0 {
		t.Fatalf("websocket must not be opened for an unknown handler")
	}

	out := env.exec(t, "websocket")
	checkContains(t, out,
		"Connected to hashes.com websocket API",
		"Too many connections",
		"Hint for job id 9:",
		"try rockyou",
		"Connection closed by the server.")

	none := newTestEnv(t, "", "")
	if err := none.shell.Exec(context.Background(), "websocket"); !errors.Is(err, errNoAPIKey) {
		t.Fatalf("want api key error, got %v", err)
	}
}

func TestWatchCompleted(t *testing.T) {
	env := newTestEnv(t, "key", "")
	env.app.Config.StopWatchWhenEmpty = true

	out := env.exec(t, "watch -jobid 77 -length 1")
	checkContains(t, out, "Watching job IDs: 77", "Job IDs 77 are no longer valid.", "Watch completed on job IDs: 77")

	records, err := env.app.Store.Watches(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("want one saved watch record, got %d", len(records))
	}
	if r := records[0]; r.Reason != "empty" || len(r.Watched) != 0 || len(r.Dropped) != 1 || r.Dropped[0] != 77 {
		t.Fatalf("unexpected watch record %+v", r)
	}
	checkContains(t, env.exec(t, "watch -history 1"), "77", "empty")
}

func TestWatchInterrupted(t *testing.T) {
	env := newTestEnv(t, "key", "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(300*time.Millisecond, cancel)

	env.out.Reset()
	if err := env.shell.Exec(ctx, "watch -jobid 1 -length 1"); err != nil {
		t.Fatal(err)
	}
	out := env.out.String()
	checkContains(t, out, "Watching job IDs: 1", "Hashes Cracked")
	if strings.Contains(out, "Watch completed") {
		t.Fatalf("interrupted watch must not report completion:\n%s", out)
	}

	records, err := env.app.Store.Watches(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Reason != "interrupted" || len(records[0].Watched) != 1 {
		t.Fatalf("unexpected watch records %+v", records)
	}
}
