package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Makepad-fr/cafe/internal/ui"
)

type cafeServer struct {
	mu        sync.Mutex
	csrf      bool
	loggedOut bool
	posts     []url.Values
}

func (c *cafeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.URL.Path == "/accounts/login/" {
		fmt.Fprint(w, `<form method="post"><input name="username"><input type="password" name="password"></form>`)
		return
	}
	if c.loggedOut {
		http.Redirect(w, r, "/accounts/login/?next="+r.URL.Path, http.StatusFound)
		return
	}
	switch r.URL.Path {
	case "/":
		fmt.Fprint(w, `<span data-stat="active_orders_count">1</span><span data-stat="tables_count">2</span>`)
		return
	case "/orders/":
		fmt.Fprint(w, `<div data-order-link="42" data-table-number="7" data-completed="False"><a href="/orders/42/">#42</a></div>
<div data-order-link="40" data-table-number="2" data-completed="True"><a href="/orders/40/">#40</a></div>`)
		return
	case "/tables/":
		fmt.Fprint(w, `<div data-table-id="1" data-table-number="7" data-seats="4" data-occupied="True"></div>
<div data-table-id="2" data-table-number="2" data-seats="2" data-occupied="False"></div>`)
		return
	case "/menu/":
		fmt.Fprint(w, `<li data-menu-dish-id="5"><span class="dish-name">Борщ</span><span class="dish-price">350</span></li>
<li data-menu-dish-id="9"><span class="dish-name">Pelmeni</span><span class="dish-price">410</span></li>`)
		return
	}
	if r.Method == http.MethodPost {
		r.ParseForm()
		c.posts = append(c.posts, r.PostForm)
		http.Redirect(w, r, r.URL.Path, http.StatusFound)
		return
	}
	if c.csrf {
		fmt.Fprint(w, `<input type="hidden" name="csrfmiddlewaretoken" value="tok">`)
	}
	fmt.Fprint(w, `<div data-order-id="42" data-table-number="7">
<div data-order-item-id="901" data-dish-id="5"><b class="dish-name">Борщ</b><i class="dish-price">350</i><span class="quantity">1</span></div>
</div>
<li data-menu-dish-id="5"><span class="dish-name">Борщ</span><span class="dish-price">350</span></li>
<li data-menu-dish-id="9"><span class="dish-name">Pelmeni</span><span class="dish-price">410</span></li>`)
}

func setupCLI(t *testing.T, csrf bool) (*cafeServer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cafe := &cafeServer{csrf: csrf}
	srv := httptest.NewServer(cafe)
	t.Cleanup(srv.Close)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CAFE_CONFIG", "")
	t.Setenv("CAFE_URL", srv.URL)
	t.Setenv("CAFE_SESSION", "sess")
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	var out, errb bytes.Buffer
	origOut, origErr := ui.Stdout, ui.Stderr
	ui.Stdout, ui.Stderr = &out, &errb
	t.Cleanup(func() { ui.Stdout, ui.Stderr = origOut, origErr })
	return cafe, &out, &errb
}

func TestRunUsage(t *testing.T) {
	setupCLI(t, true)
	tests := [][]string{
		nil,
		{"bogus"},
		{"qty", "42", "901"},
		{"qty", "42", "901", "one"},
		{"rm", "42"},
		{"menu"},
		{"auth"},
		{"orders", "closed"},
		{"open", "42", "43"},
		{"tables", "7"},
		{"config"},
		{"config", "show"},
	}
	for _, args := range tests {
		if code := Run(context.Background(), args, Options{}); code != 2 {
			t.Errorf("Run(%v) = %d, want 2", args, code)
		}
	}
}

func TestRunQuantity(t *testing.T) {
	cafe, _, _ := setupCLI(t, true)
	ctx := context.Background()

	// 1 - 1 would drop below the floor: nothing is sent
	if code := Run(ctx, []string{"qty", "42", "901", "-1"}, Options{}); code != 0 {
		t.Fatalf("qty -1 = %d", code)
	}
	if len(cafe.posts) != 0 {
		t.Fatalf("posts = %v", cafe.posts)
	}

	if code := Run(ctx, []string{"qty", "42", "901", "+2"}, Options{}); code != 0 {
		t.Fatalf("qty +2 = %d", code)
	}
	if len(cafe.posts) != 1 || cafe.posts[0].Get("quantity") != "3" || cafe.posts[0].Get("action") != "update_quantity" {
		t.Errorf("posts = %v", cafe.posts)
	}
}

func TestRunRemoveAsksFirst(t *testing.T) {
	cafe, out, _ := setupCLI(t, true)
	ctx := context.Background()

	code := Run(ctx, []string{"rm", "42", "901"}, Options{Stdin: strings.NewReader("n\n")})
	if code != 0 || len(cafe.posts) != 0 {
		t.Fatalf("declined rm: code=%d posts=%v", code, cafe.posts)
	}
	if !strings.Contains(out.String(), "Удалить это блюдо из заказа?") {
		t.Errorf("prompt missing: %q", out.String())
	}

	code = Run(ctx, []string{"rm", "42", "901"}, Options{Stdin: strings.NewReader("да\n")})
	if code != 0 || len(cafe.posts) != 1 || cafe.posts[0].Get("action") != "remove_item" {
		t.Fatalf("accepted rm: code=%d posts=%v", code, cafe.posts)
	}
}

func TestRunMissingCSRF(t *testing.T) {
	cafe, _, errb := setupCLI(t, false)
	for _, args := range [][]string{{"add", "42", "5"}, {"complete", "42"}, {"qty", "42", "901", "1"}} {
		if code := Run(context.Background(), args, Options{Yes: true}); code != 1 {
			t.Errorf("Run(%v) = %d, want 1", args, code)
		}
	}
	if len(cafe.posts) != 0 {
		t.Errorf("posts = %v", cafe.posts)
	}
	if !strings.Contains(errb.String(), "no csrf token") {
		t.Errorf("stderr = %q", errb.String())
	}
}

func TestRunMissingLine(t *testing.T) {
	cafe, _, errb := setupCLI(t, true)
	if code := Run(context.Background(), []string{"rm", "42", "777"}, Options{Yes: true}); code != 1 {
		t.Fatalf("code = %d", code)
	}
	if len(cafe.posts) != 0 || !strings.Contains(errb.String(), "777") {
		t.Errorf("posts=%v stderr=%q", cafe.posts, errb.String())
	}
}

func TestRunMenuFilter(t *testing.T) {
	_, out, _ := setupCLI(t, true)
	if code := Run(context.Background(), []string{"menu", "42", "PEL"}, Options{}); code != 0 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out.String(), "Pelmeni") || strings.Contains(out.String(), "Борщ") {
		t.Errorf("menu output = %q", out.String())
	}
}

func TestRunShowWritesLog(t *testing.T) {
	_, out, _ := setupCLI(t, true)
	if code := Run(context.Background(), []string{"show", "42"}, Options{}); code != 0 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(out.String(), "Table 7") || !strings.Contains(out.String(), "[901]") {
		t.Errorf("show output = %q", out.String())
	}
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(home, ".cafe", "cafe.log")); err != nil {
		t.Errorf("log file: %v", err)
	}
}

func TestRunLists(t *testing.T) {
	_, out, _ := setupCLI(t, true)
	ctx := context.Background()
	tests := []struct {
		args    []string
		want    []string
		notWant string
	}{
		{[]string{"orders"}, []string{"Open orders", "[42]", "Table 7"}, "[40]"},
		{[]string{"orders", "all"}, []string{"All orders", "[42]", "[40]", "completed"}, ""},
		{[]string{"tables"}, []string{"Table 7", "occupied", "Table 2", "free"}, ""},
		{[]string{"dishes", "борщ"}, []string{"Menu", "Борщ", "350.00"}, "Pelmeni"},
		{[]string{"stats"}, []string{"Open orders", "Tables"}, ""},
	}
	for _, tt := range tests {
		out.Reset()
		if code := Run(ctx, tt.args, Options{}); code != 0 {
			t.Errorf("Run(%v) = %d", tt.args, code)
			continue
		}
		for _, w := range tt.want {
			if !strings.Contains(out.String(), w) {
				t.Errorf("Run(%v) output lacks %q:\n%s", tt.args, w, out.String())
			}
		}
		if tt.notWant != "" && strings.Contains(out.String(), tt.notWant) {
			t.Errorf("Run(%v) output has %q:\n%s", tt.args, tt.notWant, out.String())
		}
	}
}

func TestRunLoggedOutHintsLogin(t *testing.T) {
	cafe, _, errb := setupCLI(t, true)
	cafe.loggedOut = true
	for _, args := range [][]string{{"show", "42"}, {"add", "42", "5"}, {"orders"}} {
		errb.Reset()
		if code := Run(context.Background(), args, Options{Yes: true}); code != 1 {
			t.Errorf("Run(%v) = %d, want 1", args, code)
		}
		if !strings.Contains(errb.String(), "cafe auth login") || strings.Contains(errb.String(), "cafe show") {
			t.Errorf("Run(%v) stderr = %q", args, errb.String())
		}
	}
	if len(cafe.posts) != 0 {
		t.Errorf("posts = %v", cafe.posts)
	}
}

func TestRunConfigInit(t *testing.T) {
	setupCLI(t, true)
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(home, ".cafe", "config.yaml")

	if code := Run(context.Background(), []string{"config", "init"}, Options{}); code != 0 {
		t.Fatalf("config init = %d", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "orders_path: /orders/") || !strings.Contains(string(data), os.Getenv("CAFE_URL")) {
		t.Errorf("config file:\n%s", data)
	}

	if code := Run(context.Background(), []string{"config", "init"}, Options{}); code != 1 {
		t.Errorf("second config init = %d, want 1", code)
	}

	explicit := filepath.Join(t.TempDir(), "cafe.yaml")
	if code := Run(context.Background(), []string{"config", "init"}, Options{ConfigPath: explicit}); code != 0 {
		t.Fatalf("config init --config = %d", code)
	}
	if _, err := os.Stat(explicit); err != nil {
		t.Error(err)
	}
}
