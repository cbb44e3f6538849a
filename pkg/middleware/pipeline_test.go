package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// tag records its name in the X-Order response header.
func tag(name string) Entry {
	return Entry{
		Name: name,
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Order", name)
				next.ServeHTTP(w, r)
			})
		},
	}
}

func okTerminal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func order(rec *httptest.ResponseRecorder) string {
	return strings.Join(rec.Header().Values("X-Order"), ",")
}

func TestPipeline_InsertionOrder(t *testing.T) {
	p := NewPipeline(okTerminal())
	if err := p.Install(tag("A"), tag("B"), tag("C")); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	before := httptest.NewRecorder()
	p.ServeHTTP(before, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := order(before); got != "A,B,C" {
		t.Errorf("order before append = %q, want A,B,C", got)
	}

	if err := p.Append(tag("D")); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	after := httptest.NewRecorder()
	p.ServeHTTP(after, httptest.NewRequest(http.MethodGet, "/", nil))
	if got := order(after); got != "A,B,C,D" {
		t.Errorf("order after append = %q, want A,B,C,D", got)
	}

	if got := strings.Join(p.Names(), ","); got != "A,B,C,D" {
		t.Errorf("Names() = %q", got)
	}
	if p.Len() != 4 {
		t.Errorf("Len() = %d, want 4", p.Len())
	}
}

func TestPipeline_InFlightRequestKeepsSnapshot(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	blocking := Entry{
		Name: "A",
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add("X-Order", "A")
				close(entered)
				<-release
				next.ServeHTTP(w, r)
			})
		},
	}

	p := NewPipeline(okTerminal())
	if err := p.Install(blocking, tag("B"), tag("C")); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}()

	<-entered
	if err := p.Append(tag("D")); err != nil {
		t.Fatal(err)
	}
	close(release)
	wg.Wait()

	if got := order(rec); got != "A,B,C" {
		t.Errorf("in-flight request order = %q, want A,B,C", got)
	}
}

func TestPipeline_InstallOnce(t *testing.T) {
	p := NewPipeline(okTerminal())
	if p.Installed() {
		t.Fatal("new pipeline reports installed")
	}
	if err := p.Install(tag("A")); err != nil {
		t.Fatal(err)
	}
	if err := p.Install(tag("B")); !errors.Is(err, ErrAlreadyInstalled) {
		t.Errorf("second Install() error = %v, want ErrAlreadyInstalled", err)
	}
	if p.Len() != 1 {
		t.Errorf("failed Install changed the pipeline: %v", p.Names())
	}
}

func TestPipeline_RejectsInvalidEntries(t *testing.T) {
	p := NewPipeline(okTerminal())

	if err := p.Append(Entry{Name: "nil"}); !errors.Is(err, ErrNilMiddleware) {
		t.Errorf("Append(nil middleware) error = %v", err)
	}
	if err := p.Append(Entry{Name: "bad", Prefix: "api", Middleware: tag("x").Middleware}); err == nil {
		t.Error("expected error for relative prefix")
	}
	if p.Len() != 0 {
		t.Errorf("rejected entries were added: %v", p.Names())
	}
}

func TestPipeline_SizeObserver(t *testing.T) {
	var sizes []int
	p := NewPipeline(okTerminal(), WithSizeObserver(func(n int) { sizes = append(sizes, n) }))

	_ = p.Install(tag("A"), tag("B"))
	_ = p.Append(tag("C"))

	if len(sizes) != 2 || sizes[0] != 2 || sizes[1] != 3 {
		t.Errorf("observed sizes = %v, want [2 3]", sizes)
	}
}

func TestPipeline_Snapshot(t *testing.T) {
	p := NewPipeline(okTerminal())
	_ = p.Install(tag("A"))

	snap := p.Snapshot()
	_ = p.Append(tag("B"))

	if len(snap.Entries()) != 1 {
		t.Errorf("old snapshot changed after append: %d entries", len(snap.Entries()))
	}
	if len(p.Snapshot().Entries()) != 2 {
		t.Errorf("new snapshot has %d entries, want 2", len(p.Snapshot().Entries()))
	}
}

func TestPipeline_PrefixMount(t *testing.T) {
	var seenInside, seenAfter string

	mounted := Entry{
		Name:   "mounted",
		Prefix: "/content/img/",
		Middleware: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seenInside = r.URL.Path
				next.ServeHTTP(w, r)
			})
		},
	}
	terminal := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAfter = r.URL.Path
	})

	p := NewPipeline(terminal)
	if err := p.Install(mounted); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path       string
		wantInside string
	}{
		{"/content/img/logo.png", "/logo.png"},
		{"/content/img", "/"},
		{"/content/images/logo.png", ""},
		{"/other", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			seenInside, seenAfter = "", ""
			p.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if seenInside != tt.wantInside {
				t.Errorf("mounted middleware saw %q, want %q", seenInside, tt.wantInside)
			}
			if seenAfter != tt.path {
				t.Errorf("downstream saw %q, want original %q", seenAfter, tt.path)
			}
		})
	}
}
