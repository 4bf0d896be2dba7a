package makefile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/tlsa/sgdk-helper/internal"
	"github.com/tlsa/sgdk-helper/internal/paths"
)

// FileName of the generated wrapper.
const FileName = "Makefile"

// Release location the wrapper downloads the helper binary from.
const helperURL = "https://github.com/tlsa/sgdk-helper/releases/latest/download/sgdk-helper"

// The wrapper keeps a project buildable with nothing but make and curl
// installed. Each target refreshes the pinned helper binary first; the
// time-conditional download only transfers when the release is newer
// than the local copy.
var wrapper = template.Must(template.New(FileName).Parse(`# Generated by {{.Name}}. Edit freely; regenerate with "{{.Name}} makefile --force".

HELPER := ./{{.Name}}

.PHONY: all debug clean run helper

all debug clean run: helper
	$(HELPER) build $@

helper:
	@curl --fail --silent --location --output $(HELPER) \
		--time-cond $(HELPER) {{.URL}}
	@chmod +x $(HELPER)
`))

// Renders the wrapper Makefile.
func Render() ([]byte, error) {
	data := struct {
		Name string
		URL  string
	}{
		Name: internal.Name,
		URL:  helperURL,
	}

	var buf bytes.Buffer
	if err := wrapper.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Writes the wrapper Makefile into dir.
//
// An existing file is never overwritten unless force is set; a project
// may have long since replaced the generated file with its own.
func Write(dir string, force bool) error {
	path := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrExists, path)
		}
	}

	content, err := Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, content, paths.DefaultFileMode)
}
