package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Makepad-fr/cafe/internal/auth"
	"github.com/Makepad-fr/cafe/internal/ui"
)

func runAuth(a []string) int {
	if len(a) != 1 {
		ui.Fail("usage: cafe auth <login|logout|status>")
		return 2
	}
	switch a[0] {
	case "login":
		return doAuthLogin()
	case "logout":
		return doAuthLogout()
	case "status":
		return doAuthStatus()
	}
	ui.Fail("usage: cafe auth <login|logout|status>")
	return 2
}

func doAuthLogin() int {
	fmt.Fprint(ui.Stdout, "Paste the session cookie from your browser: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && strings.TrimSpace(line) == "" {
		ui.Fail("read session: " + err.Error())
		return 1
	}
	if err := auth.Set(line); err != nil {
		ui.Fail("save session: " + err.Error())
		return 1
	}
	ui.OK("logged in")
	return 0
}

func doAuthLogout() int {
	s, _ := auth.Get()
	if s != nil && s.Source == "env" {
		ui.OK("session is provided by " + auth.EnvSession + " (nothing to delete)")
		return 0
	}
	if err := auth.Delete(); err != nil {
		ui.Fail("logout: " + err.Error())
		return 1
	}
	ui.OK("logged out")
	return 0
}

func doAuthStatus() int {
	s, err := auth.Get()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if s == nil {
		fmt.Fprintln(ui.Stdout, ui.Current().Muted.Render("not logged in"))
		fmt.Fprintln(ui.Stdout, "Run: cafe auth login")
		return 0
	}
	fmt.Fprintf(ui.Stdout, "source: %s\n", s.Source)
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(ui.Stdout, "saved: %s\n", s.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(ui.Stdout, "env override: "+auth.EnvSession)
	return 0
}
