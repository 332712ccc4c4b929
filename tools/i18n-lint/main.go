// Copyright (c) 2026 Tortoise Team
// Tortoise - Eclair node monitor
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-lint checks that every translation key used in the Go sources exists
// in the primary locale and that the other locales translate every primary
// key. Keys present in a locale but never referenced are reported as
// orphans without failing the run.
package main

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type keySet map[string]struct{}

func (k keySet) sorted() []string {
	out := make([]string, 0, len(k))
	for key := range k {
		out = append(out, key)
	}
	slices.Sort(out)
	return out
}

// report is the outcome of one lint run.
type report struct {
	Undefined map[string][]string // locale file -> keys used in code but absent
	Missing   map[string][]string // locale file -> primary keys not translated
	Orphaned  []string
}

func (r report) failed() bool {
	return len(r.Undefined) > 0 || len(r.Missing) > 0
}

func main() {
	root := pflag.String("root", ".", "module root to scan")
	locales := pflag.String("locales", "internal/i18n/locales", "locale directory, relative to root")
	primary := pflag.String("primary", "en.yaml", "locale file that defines the key set")
	pflag.Parse()

	r, err := lint(*root, filepath.Join(*root, *locales), *primary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-lint: %v\n", err)
		os.Exit(2)
	}
	writeReport(os.Stdout, r)
	if r.failed() {
		os.Exit(1)
	}
}

func lint(root, localeDir, primary string) (report, error) {
	r := report{Undefined: map[string][]string{}, Missing: map[string][]string{}}

	primaryKeys, err := loadKeys(filepath.Join(localeDir, primary))
	if err != nil {
		return r, fmt.Errorf("primary locale: %w", err)
	}
	called, literals, err := scanSources(root)
	if err != nil {
		return r, err
	}

	for key := range called {
		if _, ok := primaryKeys[key]; !ok {
			r.Undefined[primary] = append(r.Undefined[primary], key)
		}
	}
	for key := range primaryKeys {
		_, c := called[key]
		_, l := literals[key]
		if !c && !l {
			r.Orphaned = append(r.Orphaned, key)
		}
	}
	slices.Sort(r.Undefined[primary])
	if len(r.Undefined[primary]) == 0 {
		delete(r.Undefined, primary)
	}
	slices.Sort(r.Orphaned)

	files, err := filepath.Glob(filepath.Join(localeDir, "*.yaml"))
	if err != nil {
		return r, err
	}
	for _, f := range files {
		name := filepath.Base(f)
		if name == primary {
			continue
		}
		keys, err := loadKeys(f)
		if err != nil {
			return r, fmt.Errorf("%s: %w", name, err)
		}
		for _, key := range primaryKeys.sorted() {
			if _, ok := keys[key]; !ok {
				r.Missing[name] = append(r.Missing[name], key)
			}
		}
	}
	return r, nil
}

// scanSources returns the literal keys passed to i18n.T and every other
// string literal found in non-test sources. Keys that reach i18n.T through
// a variable are only seen as literals.
func scanSources(root string) (called, literals keySet, err error) {
	called, literals = keySet{}, keySet{}
	fset := token.NewFileSet()
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		file, err := parser.ParseFile(fset, path, nil, parser.SkipObjectResolution)
		if err != nil {
			return err
		}
		ast.Inspect(file, func(n ast.Node) bool {
			switch n := n.(type) {
			case *ast.CallExpr:
				if key, ok := translationKey(n); ok {
					called[key] = struct{}{}
				}
			case *ast.BasicLit:
				if n.Kind == token.STRING {
					if s, err := strconv.Unquote(n.Value); err == nil {
						literals[s] = struct{}{}
					}
				}
			}
			return true
		})
		return nil
	})
	return called, literals, err
}

func translationKey(call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "T" || len(call.Args) == 0 {
		return "", false
	}
	if pkg, ok := sel.X.(*ast.Ident); !ok || pkg.Name != "i18n" {
		return "", false
	}
	lit, ok := call.Args[0].(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", false
	}
	key, err := strconv.Unquote(lit.Value)
	return key, err == nil
}

// loadKeys reads a locale file and flattens its nesting into dotted keys.
func loadKeys(path string) (keySet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]any
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := keySet{}
	flatten("", data, keys)
	return keys, nil
}

func flatten(prefix string, node any, keys keySet) {
	m, ok := node.(map[string]any)
	if !ok {
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
		return
	}
	for k, v := range m {
		if prefix != "" {
			k = prefix + "." + k
		}
		flatten(k, v, keys)
	}
}

func writeReport(w io.Writer, r report) {
	section := func(title string, byFile map[string][]string) {
		fmt.Fprintf(w, "--- %s ---\n", title)
		if len(byFile) == 0 {
			fmt.Fprintln(w, "  none")
			return
		}
		files := make([]string, 0, len(byFile))
		for f := range byFile {
			files = append(files, f)
		}
		slices.Sort(files)
		for _, f := range files {
			for _, key := range byFile[f] {
				fmt.Fprintf(w, "  %s: %s\n", f, key)
			}
		}
	}
	section("used in code, not defined", r.Undefined)
	section("not translated", r.Missing)
	fmt.Fprintln(w, "--- orphaned ---")
	if len(r.Orphaned) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, key := range r.Orphaned {
		fmt.Fprintf(w, "  %s\n", key)
	}
}
