package report

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/IshaanBansal2006/p5-sub000/internal/types"
)

// remoteURLPattern matches both SSH and HTTPS GitHub-style remotes:
//
//	git@github.com:owner/repo.git
//	https://github.com/owner/repo.git
var remoteURLPattern = regexp.MustCompile(`[:/]([^/:]+)/([^/]+?)(?:\.git)?$`)

// ParseRemoteURL extracts owner and repo from a version-control remote URL.
func ParseRemoteURL(remote string) (owner, repo string, ok bool) {
	m := remoteURLPattern.FindStringSubmatch(strings.TrimSpace(remote))
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// RepoIdentity resolves the repository identity from local git metadata.
// Each lookup is bounded; anything that fails leaves its field empty, and a
// project without a usable remote gets the "local" owner so submissions
// still land in a ledger.
func RepoIdentity(ctx context.Context, root string) types.RepoIdentity {
	identity := types.RepoIdentity{Owner: "local", Repo: "project"}

	if remote := gitOutput(ctx, root, "remote", "get-url", "origin"); remote != "" {
		if owner, repo, ok := ParseRemoteURL(remote); ok {
			identity.Owner = owner
			identity.Repo = repo
		}
	}
	identity.Branch = gitOutput(ctx, root, "rev-parse", "--abbrev-ref", "HEAD")
	identity.Commit = gitOutput(ctx, root, "rev-parse", "--short", "HEAD")
	return identity
}

func gitOutput(ctx context.Context, root string, args ...string) string {
	cmdCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "git", args...)
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
