package events

import (
	"path"
	"strings"

	"githubPushRelay/internal/model"

	"github.com/go-playground/webhooks/v6/github"
)

const DefaultExtension = ".md"

// Extensions is the set of tracked file suffixes, lowercased with a leading dot.
type Extensions map[string]struct{}

func NewExtensions(exts ...string) Extensions {
	set := make(Extensions, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	if len(set) == 0 {
		set[DefaultExtension] = struct{}{}
	}
	return set
}

// ParseExtensions reads a comma separated list such as "md, .markdown".
func ParseExtensions(raw string) Extensions {
	return NewExtensions(strings.Split(raw, ",")...)
}

func (e Extensions) Match(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return false
	}
	_, ok := e[ext]
	return ok
}

func (e Extensions) List() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	return out
}

// Classify maps a raw payload and its X-GitHub-Event header onto a
// NormalizedEvent. It never fails: absent fields become zero values.
func Classify(raw *model.RawEvent, eventType string, tracked Extensions) model.NormalizedEvent {
	if raw == nil {
		raw = &model.RawEvent{}
	}
	if tracked == nil {
		tracked = NewExtensions()
	}

	ev := model.NormalizedEvent{
		Type:           ParseType(eventType),
		RepositoryName: repositoryName(raw),
		InstallationID: raw.Installation.ID,
		Action:         raw.Action,
	}

	if ev.Type == model.EventPush {
		for _, p := range ChangedPaths(raw.Commits) {
			if tracked.Match(p) {
				ev.ChangedFiles = append(ev.ChangedFiles, p)
			}
		}
		ev.HasMarkdownChanges = len(ev.ChangedFiles) > 0
	}
	return ev
}

// ParseType maps the X-GitHub-Event header onto a relay tag. The legacy
// integration_installation names are not folded in: GitHub sends them next to
// the current names, so accepting both would notify twice.
func ParseType(header string) model.EventType {
	switch github.Event(strings.TrimSpace(header)) {
	case github.PushEvent:
		return model.EventPush
	case github.InstallationEvent:
		return model.EventInstallation
	case github.InstallationRepositoriesEvent:
		return model.EventInstallationRepositories
	default:
		return model.EventUnrecognized
	}
}

// IsPing reports whether the header names GitHub's hook-creation ping.
func IsPing(header string) bool {
	return github.Event(strings.TrimSpace(header)) == github.PingEvent
}

// ChangedPaths unions added, modified and removed paths commit by commit.
// Order is preserved and a path touched by several commits repeats.
func ChangedPaths(commits []model.Commit) []string {
	var out []string
	for _, c := range commits {
		out = append(out, c.Added...)
		out = append(out, c.Modified...)
		out = append(out, c.Removed...)
	}
	return out
}

func repositoryName(raw *model.RawEvent) string {
	if raw.Repository.Name != "" {
		return raw.Repository.Name
	}
	for _, list := range [][]model.RepositoryRef{raw.RepositoriesAdded, raw.RepositoriesRemoved, raw.Repositories} {
		for _, r := range list {
			if r.Name != "" {
				return r.Name
			}
		}
	}
	return ""
}
