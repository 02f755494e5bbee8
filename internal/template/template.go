// Package template scaffolds source files from embedded or on-disk
// templates with {{Key}} placeholders.
package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/devflow/internal/errors"
)

//go:embed builtin/*
var builtinFS embed.FS

var extensions = []string{".tsx", ".ts"}

// Config points at a directory whose templates override the built-in ones
type Config struct {
	Dir string
}

// Generator renders templates to files
type Generator struct {
	sources []fs.FS
}

// New creates a Generator. Templates in cfg.Dir take precedence; a missing
// directory is ignored.
func New(cfg Config) *Generator {
	builtin, _ := fs.Sub(builtinFS, "builtin")

	g := &Generator{}
	if cfg.Dir != "" {
		if info, err := os.Stat(cfg.Dir); err == nil && info.IsDir() {
			g.sources = append(g.sources, os.DirFS(cfg.Dir))
		}
	}
	g.sources = append(g.sources, builtin)
	return g
}

// Load returns the raw content of the named template
func (g *Generator) Load(name string) (string, error) {
	for _, src := range g.sources {
		for _, ext := range extensions {
			data, err := fs.ReadFile(src, name+ext)
			if err == nil {
				return string(data), nil
			}
		}
	}
	return "", errors.NewTemplateNotFoundError(name)
}

// Render substitutes every {{Key}} in content. Unknown placeholders are
// left as is.
func Render(content string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{{"+k+"}}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(content)
}

// GenerateFile renders the named template into out, creating parent
// directories.
func (g *Generator) GenerateFile(name, out string, vars map[string]string) error {
	content, err := g.Load(name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeTemplateWrite, fmt.Sprintf("failed to create directory for %s", out), err)
	}
	if err := os.WriteFile(out, []byte(Render(content, vars)), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeTemplateWrite, fmt.Sprintf("failed to write %s", out), err)
	}
	return nil
}

// GenerateComponent renders the component template
func (g *Generator) GenerateComponent(name, out string) error {
	return g.GenerateFile("component", out, map[string]string{"ComponentName": name})
}

// GeneratePage renders the page template. Title defaults to the name and
// description to "<name> page".
func (g *Generator) GeneratePage(name, out, title, description string) error {
	if title == "" {
		title = name
	}
	if description == "" {
		description = name + " page"
	}
	return g.GenerateFile("page", out, map[string]string{
		"PageName":        name,
		"PageTitle":       title,
		"PageDescription": description,
	})
}

// GenerateAPIRoute renders the api-route template
func (g *Generator) GenerateAPIRoute(name, out string) error {
	return g.GenerateFile("api-route", out, map[string]string{"RouteName": name})
}

// List returns the sorted template names without extensions
func (g *Generator) List() ([]string, error) {
	seen := map[string]bool{}
	for _, src := range g.sources {
		entries, err := fs.ReadDir(src, ".")
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			ext := path.Ext(e.Name())
			for _, known := range extensions {
				if ext == known {
					seen[strings.TrimSuffix(e.Name(), ext)] = true
				}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}
