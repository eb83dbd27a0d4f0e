package push

import (
	"fmt"

	"githubPushRelay/internal/model"
)

const (
	DefaultSound = "default"
	BadgeBump    = 1
)

// Message is the provider-neutral notification. Data is the structured block
// the mobile client parses; Title and Body are display text only.
type Message struct {
	Title string
	Body  string
	Badge int
	Sound string
	Data  map[string]any
}

// ShouldNotify gates dispatch: administrative events always notify, pushes
// only when tracked files changed, anything else never.
func ShouldNotify(ev model.NormalizedEvent) bool {
	switch ev.Type {
	case model.EventPush:
		return ev.HasMarkdownChanges
	case model.EventInstallation, model.EventInstallationRepositories:
		return true
	default:
		return false
	}
}

func BuildMessage(ev model.NormalizedEvent) Message {
	title, body := alertText(ev)
	data := map[string]any{
		"event_type":           string(ev.Type),
		"repository_name":      ev.RepositoryName,
		"installation_id":      ev.InstallationID,
		"action":               ev.Action,
		"has_markdown_changes": ev.HasMarkdownChanges,
	}
	if len(ev.ChangedFiles) > 0 {
		files := make([]string, len(ev.ChangedFiles))
		copy(files, ev.ChangedFiles)
		data["changed_files"] = files
	}
	return Message{
		Title: title,
		Body:  body,
		Badge: BadgeBump,
		Sound: DefaultSound,
		Data:  data,
	}
}

func alertText(ev model.NormalizedEvent) (string, string) {
	repo := ev.RepositoryName
	if repo == "" {
		repo = "your repository"
	}

	switch ev.Type {
	case model.EventPush:
		n := len(ev.ChangedFiles)
		noun := "files"
		if n == 1 {
			noun = "file"
		}
		return "Markdown updated", fmt.Sprintf("%d markdown %s changed in %s", n, noun, repo)

	case model.EventInstallation:
		switch ev.Action {
		case "created":
			return "App installed", fmt.Sprintf("Now watching %s", repo)
		case "deleted":
			return "App uninstalled", "Repository notifications stopped"
		}
		return "Installation updated", fmt.Sprintf("Installation %s", actionOr(ev.Action))

	case model.EventInstallationRepositories:
		switch ev.Action {
		case "added":
			return "Repository added", fmt.Sprintf("Now watching %s", repo)
		case "removed":
			return "Repository removed", fmt.Sprintf("Stopped watching %s", repo)
		}
		return "Repositories updated", fmt.Sprintf("Repository access %s", actionOr(ev.Action))
	}
	return "GitHub update", repo
}

func actionOr(action string) string {
	if action == "" {
		return "changed"
	}
	return action
}
