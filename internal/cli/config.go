package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Makepad-fr/cafe/internal/config"
	"github.com/Makepad-fr/cafe/internal/ui"
)

func runConfig(a []string, opt Options) int {
	if len(a) != 1 || a[0] != "init" {
		ui.Fail("usage: cafe config init")
		return 2
	}
	return doConfigInit(opt.ConfigPath)
}

// doConfigInit writes the defaults to path (~/.cafe/config.yaml when empty)
// and never overwrites an existing file.
func doConfigInit(path string) int {
	if path == "" {
		path = filepath.Join(config.Dir(), "config.yaml")
	}
	if _, err := os.Stat(path); err == nil {
		ui.Fail(path + " already exists")
		return 1
	} else if !errors.Is(err, fs.ErrNotExist) {
		ui.Fail("config: " + err.Error())
		return 1
	}

	cfg := config.Default()
	if env := strings.TrimSpace(os.Getenv("CAFE_URL")); env != "" {
		cfg.Server.BaseURL = env
	}
	if err := cfg.Save(path); err != nil {
		ui.Fail("config: " + err.Error())
		return 1
	}
	ui.OK("wrote " + path)
	return 0
}
