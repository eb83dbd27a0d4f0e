package model

import "github.com/go-playground/webhooks/v6/github"

type EventType string

const (
	EventPush                     EventType = EventType(github.PushEvent)
	EventInstallation             EventType = EventType(github.InstallationEvent)
	EventInstallationRepositories EventType = EventType(github.InstallationRepositoriesEvent)
	EventUnrecognized             EventType = "unrecognized"
)

// SupportedEvents lists the event tags the relay acts on, in the order they
// are reported by the status endpoint.
var SupportedEvents = []EventType{EventPush, EventInstallation, EventInstallationRepositories}

// RawEvent is the subset of a GitHub webhook payload the relay reads. Every
// field is optional; missing values decode to their zero value.
type RawEvent struct {
	Action string `json:"action"`
	Ref    string `json:"ref"`

	Repository   Repository `json:"repository"`
	Installation struct {
		ID      int64 `json:"id"`
		Account struct {
			ID    int64  `json:"id"`
			Login string `json:"login"`
			Type  string `json:"type"`
		} `json:"account"`
	} `json:"installation"`

	Pusher *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"pusher,omitempty"`
	Sender *struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
	} `json:"sender,omitempty"`

	Commits []Commit `json:"commits"`

	// installation and installation_repositories events
	Repositories        []RepositoryRef `json:"repositories"`
	RepositoriesAdded   []RepositoryRef `json:"repositories_added"`
	RepositoriesRemoved []RepositoryRef `json:"repositories_removed"`
}

type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"html_url"`
	URL      string `json:"url"`
	CloneURL string `json:"clone_url"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

type RepositoryRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

type Commit struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Author    struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"author"`
	Added    []string `json:"added"`
	Modified []string `json:"modified"`
	Removed  []string `json:"removed"`
}

// NormalizedEvent is what the dispatcher decides on. It is built once per
// request and never mutated.
type NormalizedEvent struct {
	Type               EventType `json:"event_type"`
	RepositoryName     string    `json:"repository_name"`
	InstallationID     int64     `json:"installation_id"`
	Action             string    `json:"action"`
	HasMarkdownChanges bool      `json:"has_markdown_changes"`
	ChangedFiles       []string  `json:"changed_files,omitempty"`
}
