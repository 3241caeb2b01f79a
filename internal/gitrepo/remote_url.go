package gitrepo

import (
	"fmt"
	"strings"
)

const (
	httpsProtocolPrefixConstant         = "https://"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	defaultHostConstant                 = "github.com"
	installationTokenUserConstant       = "x-access-token"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	hostFieldNameConstant               = "host"
	ownerFieldNameConstant              = "owner"
	repositoryFieldNameConstant         = "repository"
	tokenFieldNameConstant              = "token"
)

// RemoteURL represents an HTTPS git remote.
type RemoteURL struct {
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError indicates a remote string could not be parsed or formatted.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// NewRemoteURL builds a remote on the default host.
func NewRemoteURL(owner string, repository string) RemoteURL {
	return RemoteURL{Host: defaultHostConstant, Owner: owner, Repository: repository}
}

// FormatRemoteURL creates the public HTTPS remote URL.
func FormatRemoteURL(remote RemoteURL) (string, error) {
	if validationError := remote.validate(); validationError != nil {
		return "", validationError
	}
	return fmt.Sprintf("%s%s%s%s%s%s%s", httpsProtocolPrefixConstant, remote.Host, pathSeparatorConstant, remote.Owner, pathSeparatorConstant, remote.Repository, gitSuffixConstant), nil
}

// FormatAuthenticatedCloneURL embeds an installation token into the HTTPS remote URL.
// The result contains the token verbatim and must only reach subprocess arguments that are redacted before logging.
func FormatAuthenticatedCloneURL(remote RemoteURL, token string) (string, error) {
	if validationError := remote.validate(); validationError != nil {
		return "", validationError
	}
	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) == 0 {
		return "", RemoteURLParseError{Input: tokenFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return fmt.Sprintf("%s%s:%s@%s%s%s%s%s%s", httpsProtocolPrefixConstant, installationTokenUserConstant, trimmedToken, remote.Host, pathSeparatorConstant, remote.Owner, pathSeparatorConstant, remote.Repository, gitSuffixConstant), nil
}

func (remote RemoteURL) validate() error {
	if len(strings.TrimSpace(remote.Host)) == 0 {
		return RemoteURLParseError{Input: hostFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Owner)) == 0 {
		return RemoteURLParseError{Input: ownerFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(remote.Repository)) == 0 {
		return RemoteURLParseError{Input: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	return nil
}
