// Package probe answers "is this tool available in the target project?"
// using read-only filesystem inspection. Absence of a tool is a normal,
// expected outcome, so nothing here returns an error: the owning task
// reports a skip instead of a failure.
package probe

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// packageJSON mirrors the subset of package.json the probe cares about.
type packageJSON struct {
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Probe inspects a single project root. All methods are side-effect free.
type Probe struct {
	root string
	pkg  *packageJSON
}

// New creates a probe for the given project root. The package manifest is
// read once up front; a missing or unparsable manifest simply means no
// declared dependencies or scripts.
func New(root string) *Probe {
	p := &Probe{root: root}
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return p
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return p
	}
	p.pkg = &pkg
	return p
}

// Root returns the project root the probe inspects.
func (p *Probe) Root() string {
	return p.root
}

// HasDependency reports whether the project declares the named package in
// dependencies or devDependencies.
func (p *Probe) HasDependency(name string) bool {
	if p.pkg == nil {
		return false
	}
	if _, ok := p.pkg.Dependencies[name]; ok {
		return true
	}
	_, ok := p.pkg.DevDependencies[name]
	return ok
}

// HasScript reports whether package.json declares the named script.
func (p *Probe) HasScript(name string) bool {
	if p.pkg == nil {
		return false
	}
	_, ok := p.pkg.Scripts[name]
	return ok
}

// Script returns the command string for a declared script, or "".
func (p *Probe) Script(name string) string {
	if p.pkg == nil {
		return ""
	}
	return p.pkg.Scripts[name]
}

// HasFile reports whether any of the named files exists at the project root.
func (p *Probe) HasFile(names ...string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(p.root, name)); err == nil {
			return true
		}
	}
	return false
}

// eslintConfigs covers both the legacy and the flat config formats.
var eslintConfigs = []string{
	".eslintrc", ".eslintrc.js", ".eslintrc.cjs", ".eslintrc.json",
	".eslintrc.yml", ".eslintrc.yaml",
	"eslint.config.js", "eslint.config.mjs", "eslint.config.cjs",
	"eslint.config.ts",
}

// HasLinter reports whether ESLint is configured for the project.
func (p *Probe) HasLinter() bool {
	return p.HasDependency("eslint") || p.HasFile(eslintConfigs...)
}

// HasTypeChecker reports whether the TypeScript compiler is configured.
func (p *Probe) HasTypeChecker() bool {
	return p.HasDependency("typescript") || p.HasFile("tsconfig.json")
}

// HasBuild reports whether the project declares a build script.
func (p *Probe) HasBuild() bool {
	return p.HasScript("build")
}

// HasTests reports whether the project declares a test script.
func (p *Probe) HasTests() bool {
	return p.HasScript("test")
}

// browserCandidates are the well-known Chrome/Chromium binary names per
// platform, checked against PATH.
func browserCandidates() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"chromium", "google-chrome",
		}
	case "windows":
		return []string{"chrome.exe", "chrome"}
	default:
		return []string{
			"google-chrome", "google-chrome-stable", "chromium",
			"chromium-browser", "chrome",
		}
	}
}

// BrowserBinary returns the path of an installed Chrome/Chromium binary,
// or "" when none is found.
func (p *Probe) BrowserBinary() string {
	for _, candidate := range browserCandidates() {
		if filepath.IsAbs(candidate) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}
	return ""
}

// StartCommand returns the project's dev-server start command, preferring
// the "dev" script over "start". Used by the website check to discover an
// explicit port.
func (p *Probe) StartCommand() string {
	if cmd := p.Script("dev"); cmd != "" {
		return cmd
	}
	return p.Script("start")
}
