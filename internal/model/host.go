package model

import (
	"fmt"
	"strings"
)

// Kind identifies a git hosting service type.
type Kind string

const (
	KindGitHub      Kind = "github"
	KindGitLab      Kind = "gitlab"
	KindGitea       Kind = "gitea"
	KindBitbucket   Kind = "bitbucket"
	KindAzureDevOps Kind = "azure_devops"
)

// ParseKind parses a host kind name, case-insensitively. Hyphenated and
// collapsed spellings of azure_devops are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "github":
		return KindGitHub, nil
	case "gitlab":
		return KindGitLab, nil
	case "gitea":
		return KindGitea, nil
	case "bitbucket":
		return KindBitbucket, nil
	case "azure_devops", "azure-devops", "azuredevops":
		return KindAzureDevOps, nil
	default:
		return "", fmt.Errorf("unknown host kind: %s", s)
	}
}

// DefaultAPIURL returns the public API endpoint for the host kind.
func (k Kind) DefaultAPIURL() string {
	switch k {
	case KindGitHub:
		return "https://api.github.com"
	case KindGitLab:
		return "https://gitlab.com/api/v4"
	case KindGitea:
		return "https://gitea.com/api/v1"
	case KindBitbucket:
		return "https://api.bitbucket.org/2.0"
	case KindAzureDevOps:
		return "https://dev.azure.com"
	default:
		return ""
	}
}

// Host is a registered git hosting service account.
type Host struct {
	ID       HostID `json:"id"`
	Label    string `json:"label"`
	Kind     Kind   `json:"kind"`
	APIURL   string `json:"api_url"`
	Username string `json:"username"`
	// CredentialKey is the key under which the API token lives in the
	// OS keychain.
	CredentialKey string `json:"credential_key"`
}

// NewHost registers a host under label, using the kind's default API URL.
func NewHost(label string, kind Kind, username string) *Host {
	return &Host{
		ID:            NewHostID(),
		Label:         label,
		Kind:          kind,
		APIURL:        kind.DefaultAPIURL(),
		Username:      username,
		CredentialKey: "forkmate:" + label,
	}
}
