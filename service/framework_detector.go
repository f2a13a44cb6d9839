package service

import (
	"context"
	"encoding/json"
	"slices"
	"strings"

	"github.com/codestats/codestats-api/model"
	"github.com/codestats/codestats-api/tracker"
	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
	"golang.org/x/mod/modfile"
	"gopkg.in/yaml.v3"
)

// ContentFetcher reads repository files, implemented by GithubService
type ContentFetcher interface {
	GetFileContent(ctx context.Context, owner string, repo string, path string) (string, error)
	ListDirectory(ctx context.Context, owner string, repo string, path string) ([]string, error)
}

type FrameworkDetector interface {
	Detect(ctx context.Context, owner string, repo string, primaryLanguage string) model.FrameworkSet
}

var _ tracker.FrameworkDetector = frameworkDetector{}

type frameworkDetector struct {
	fetcher ContentFetcher
}

func NewFrameworkDetector(fetcher ContentFetcher) FrameworkDetector {
	return frameworkDetector{fetcher: fetcher}
}

// manifestParser extracts the frameworks referenced by a manifest content
type manifestParser func(content string, signatures map[string]string) []string

type manifestCheck struct {
	path       string
	parse      manifestParser
	signatures map[string]string
}

// Detect reads root files then the manifests relevant to the primary language.
// Every failure is logged and skipped, the detected set may be partial.
func (d frameworkDetector) Detect(ctx context.Context, owner string, repo string, primaryLanguage string) model.FrameworkSet {
	frameworks := model.FrameworkSet{}

	logger := log.WithFields(log.Fields{
		"owner":      owner,
		"repository": repo,
	})

	rootFiles, err := d.fetcher.ListDirectory(ctx, owner, repo, "")
	if err != nil {
		logger.WithError(err).Debug("unable to list root files")
	}

	for _, name := range rootFiles {
		for _, marker := range rootFileMarkers {
			if marker.matches(name) {
				frameworks.Add(marker.framework)
			}
		}
	}

	if slices.Contains(rootFiles, ".github") {
		workflows, err := d.fetcher.ListDirectory(ctx, owner, repo, ".github")
		if err != nil {
			logger.WithError(err).Debug("unable to list .github directory")
		}

		if slices.Contains(workflows, "workflows") {
			frameworks.Add("GitHub Actions")
		}
	}

	for _, check := range manifestChecks(primaryLanguage) {
		if ctx.Err() != nil {
			break
		}

		content, err := d.fetcher.GetFileContent(ctx, owner, repo, check.path)
		if err != nil {
			logger.WithError(err).WithField("path", check.path).Debug("unable to fetch manifest")
			continue
		}

		if content == "" {
			continue
		}

		for _, name := range check.parse(content, check.signatures) {
			frameworks.Add(name)
		}
	}

	return frameworks
}

// manifestChecks returns the manifests worth reading for a primary language
// an unknown language checks every manifest
func manifestChecks(primaryLanguage string) []manifestCheck {
	language := strings.ToLower(primaryLanguage)
	checks := make([]manifestCheck, 0)

	matches := func(languages ...string) bool {
		return language == "" || slices.Contains(languages, language)
	}

	if matches("javascript", "typescript", "vue", "svelte", "html", "css") {
		checks = append(checks, manifestCheck{"package.json", parsePackageJSON, packageJSONSignatures})
	}

	if matches("python", "jupyter notebook") {
		checks = append(checks,
			manifestCheck{"requirements.txt", parseText, pythonSignatures},
			manifestCheck{"pyproject.toml", parsePyproject, pythonSignatures},
		)
	}

	if matches("php") {
		checks = append(checks, manifestCheck{"composer.json", parseComposerJSON, composerSignatures})
	}

	if matches("go") {
		checks = append(checks, manifestCheck{"go.mod", parseGoMod, goModSignatures})
	}

	if matches("java", "kotlin") {
		checks = append(checks,
			manifestCheck{"build.gradle", parseText, jvmBuildSignatures},
			manifestCheck{"build.gradle.kts", parseText, jvmBuildSignatures},
			manifestCheck{"pom.xml", parseText, jvmBuildSignatures},
		)
	}

	if matches("dart") {
		checks = append(checks, manifestCheck{"pubspec.yaml", parsePubspec, pubspecSignatures})
	}

	if matches("ruby") {
		checks = append(checks, manifestCheck{"Gemfile", parseText, gemfileSignatures})
	}

	if matches("rust") {
		checks = append(checks, manifestCheck{"Cargo.toml", parseCargo, cargoSignatures})
	}

	if len(checks) == 0 {
		checks = append(checks, manifestCheck{"package.json", parsePackageJSON, packageJSONSignatures})
	}

	return checks
}

// parseText matches signatures anywhere in the lowercased content
func parseText(content string, signatures map[string]string) []string {
	lower := strings.ToLower(content)
	found := make([]string, 0)

	for key, name := range signatures {
		if strings.Contains(lower, key) {
			found = append(found, name)
		}
	}

	return found
}

func parsePackageJSON(content string, signatures map[string]string) []string {
	var pkg struct {
		Dependencies    map[string]any `json:"dependencies"`
		DevDependencies map[string]any `json:"devDependencies"`
	}

	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil
	}

	return matchDependencies(signatures, pkg.Dependencies, pkg.DevDependencies)
}

func parseComposerJSON(content string, signatures map[string]string) []string {
	var pkg struct {
		Require    map[string]any `json:"require"`
		RequireDev map[string]any `json:"require-dev"`
	}

	if err := json.Unmarshal([]byte(content), &pkg); err != nil {
		return nil
	}

	return matchDependencies(signatures, pkg.Require, pkg.RequireDev)
}

// parseGoMod matches required module paths by prefix, falling back to text matching
// when the file can not be parsed
func parseGoMod(content string, signatures map[string]string) []string {
	file, err := modfile.ParseLax("go.mod", []byte(content), nil)
	if err != nil {
		return parseText(content, signatures)
	}

	found := make([]string, 0)
	for _, req := range file.Require {
		for prefix, name := range signatures {
			if req.Mod.Path == prefix || strings.HasPrefix(req.Mod.Path, prefix+"/") {
				found = append(found, name)
			}
		}
	}

	return found
}

func parsePubspec(content string, signatures map[string]string) []string {
	var pubspec struct {
		Dependencies    map[string]any `yaml:"dependencies"`
		DevDependencies map[string]any `yaml:"dev_dependencies"`
	}

	if err := yaml.Unmarshal([]byte(content), &pubspec); err != nil {
		return nil
	}

	return matchDependencies(signatures, pubspec.Dependencies, pubspec.DevDependencies)
}

// parsePyproject reads PEP 621 and poetry dependencies
func parsePyproject(content string, signatures map[string]string) []string {
	var pyproject struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}

	if err := toml.Unmarshal([]byte(content), &pyproject); err != nil {
		return nil
	}

	requirements := make(map[string]any, len(pyproject.Project.Dependencies))
	for _, requirement := range pyproject.Project.Dependencies {
		requirements[requirementName(requirement)] = nil
	}

	return matchDependencies(signatures, requirements, pyproject.Tool.Poetry.Dependencies)
}

func parseCargo(content string, signatures map[string]string) []string {
	var cargo struct {
		Dependencies    map[string]any `toml:"dependencies"`
		DevDependencies map[string]any `toml:"dev-dependencies"`
	}

	if err := toml.Unmarshal([]byte(content), &cargo); err != nil {
		return nil
	}

	return matchDependencies(signatures, cargo.Dependencies, cargo.DevDependencies)
}

// requirementName strips version specifiers and extras: "Django[bcrypt]>=4.2" gives "django"
func requirementName(requirement string) string {
	end := strings.IndexAny(requirement, "<>=!~[;( ")
	if end >= 0 {
		requirement = requirement[:end]
	}

	return strings.ToLower(strings.TrimSpace(requirement))
}

func matchDependencies(signatures map[string]string, dependencies ...map[string]any) []string {
	found := make([]string, 0)

	for _, deps := range dependencies {
		for dep := range deps {
			if name, ok := signatures[strings.ToLower(dep)]; ok {
				found = append(found, name)
			}
		}
	}

	return found
}

func oneOf(names ...string) func(string) bool {
	return func(name string) bool {
		return slices.Contains(names, name)
	}
}

func hasSuffix(suffixes ...string) func(string) bool {
	return func(name string) bool {
		for _, suffix := range suffixes {
			if strings.HasSuffix(name, suffix) {
				return true
			}
		}

		return false
	}
}
