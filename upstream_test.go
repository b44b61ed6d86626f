package megasena

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// fakeUpstream imitates the public lottery API for tests: GET / serves
// the latest draw summary, GET /{n} a single draw detail.
type fakeUpstream struct {
	mu        sync.Mutex
	latest    int
	draws     map[int]map[string]any
	failAll   bool
	failDraws bool
	requests  map[string]int
}

func newFakeUpstream(latest int) *fakeUpstream {
	return &fakeUpstream{
		latest:   latest,
		draws:    make(map[int]map[string]any),
		requests: make(map[string]int),
	}
}

func (f *fakeUpstream) addDraw(number int, date string, dezenas ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	list := make([]any, len(dezenas))
	for i, d := range dezenas {
		list[i] = d
	}
	f.draws[number] = map[string]any{
		"numero":       number,
		"dataApuracao": date,
		"dezenas":      list,
	}
}

// addRecentDraws registers count consecutive draws ending at the
// latest number, all dated daysAgo days back.
func (f *fakeUpstream) addRecentDraws(count, daysAgo int, dezenas ...string) {
	date := time.Now().AddDate(0, 0, -daysAgo).Format(DateFormatBR)
	for n := f.latest - count + 1; n <= f.latest; n++ {
		f.addDraw(n, date, dezenas...)
	}
}

func (f *fakeUpstream) requestCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeUpstream) totalRequests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.requests {
		total += n
	}
	return total
}

func (f *fakeUpstream) setFailAll(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = fail
}

func (f *fakeUpstream) setFailDraws(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failDraws = fail
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests[r.URL.Path]++
	failAll, failDraws := f.failAll, f.failDraws
	latest := f.latest
	f.mu.Unlock()

	if failAll {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}

	if r.URL.Path == "/" || r.URL.Path == "" {
		_ = json.NewEncoder(w).Encode(map[string]any{"numero": latest})
		return
	}

	if failDraws {
		http.Error(w, "upstream down", http.StatusInternalServerError)
		return
	}

	number, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	f.mu.Lock()
	draw, ok := f.draws[number]
	f.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(draw)
}

func (f *fakeUpstream) start() *httptest.Server {
	return httptest.NewServer(f)
}
