package types

// Version is the application version, overwritten at build time via ldflags
var Version = "dev"

// UserAgent is sent on every request to the GitHub API
var UserAgent = "gh-release-notes/" + Version
