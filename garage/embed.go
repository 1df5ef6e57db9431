package garage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/plus3/acsim/arena"
)

//go:embed default.yaml
var defaultGarage []byte

//go:embed formulas/*.tengo
var FormulasFS embed.FS

// Default returns the embedded two-pilot garage document.
func Default() []byte {
	return defaultGarage
}

// LoadFormula returns the combat formula named by path. An empty path is the
// built-in arena.DefaultFormula. A path that does not exist on disk is looked up
// among the embedded formulas, so "glass_cannon" and "formulas/glass_cannon.tengo"
// both resolve.
func LoadFormula(path string) (arena.Formula, error) {
	if path == "" {
		return arena.DefaultFormula{}, nil
	}

	src, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		src, err = FormulasFS.ReadFile(cleanFormulaPath(path))
	}
	if err != nil {
		return nil, fmt.Errorf("garage: load formula %s: %w", path, err)
	}

	formula, err := arena.NewScriptFormula(src)
	if err != nil {
		return nil, fmt.Errorf("garage: %s: %w", path, err)
	}
	return formula, nil
}

func cleanFormulaPath(path string) string {
	s := filepath.ToSlash(path)
	if after, ok := strings.CutPrefix(s, "garage/"); ok {
		s = after
	}
	if after, ok := strings.CutPrefix(s, "formulas/"); ok {
		s = after
	}
	if !strings.HasSuffix(s, ".tengo") {
		s += ".tengo"
	}
	return "formulas/" + s
}
