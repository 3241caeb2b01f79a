package githubauth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// Environment variables consulted, in order, when no token source is configured.
const (
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIToken = "GITHUB_API_TOKEN"
)

const (
	sourceTypeSeparatorConstant       = ":"
	blankSourceMessageConstant        = "token source is blank"
	missingReferenceTemplateConstant  = "token source %q names no %s"
	unknownSourceTypeTemplateConstant = "unsupported token source type %q"
	unsetVariableTemplateConstant     = "token variable %s is unset or blank"
	unreadableFileTemplateConstant    = "token file %s could not be read: %w"
	blankFileTemplateConstant         = "token file %s is blank"
	referenceNameVariableConstant     = "variable"
	referenceNamePathConstant         = "path"
	tokenNotFoundMessageConstant      = "GitHub token not found: set GH_TOKEN, GITHUB_TOKEN, or GITHUB_API_TOKEN, or configure review.token_source"
)

// TokenSourceType names where a token is read from.
type TokenSourceType string

// Token source types.
const (
	TokenSourceTypeEnvironment TokenSourceType = "env"
	TokenSourceTypeFile        TokenSourceType = "file"
)

// ErrTokenNotFound reports that none of the default variables holds a token.
var ErrTokenNotFound = errors.New(tokenNotFoundMessageConstant)

// TokenSourceConfiguration is a parsed token source declaration.
type TokenSourceConfiguration struct {
	Type      TokenSourceType
	Reference string
}

// EnvironmentLookup reads an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// TokenResolver reads tokens from environment variables or files.
type TokenResolver struct {
	environmentLookup EnvironmentLookup
	fileSystem        afero.Fs
}

// NewTokenResolver creates a resolver. Nil arguments select the process environment and the OS filesystem.
func NewTokenResolver(environmentLookup EnvironmentLookup, fileSystem afero.Fs) *TokenResolver {
	resolver := &TokenResolver{environmentLookup: environmentLookup, fileSystem: fileSystem}
	if resolver.environmentLookup == nil {
		resolver.environmentLookup = os.LookupEnv
	}
	if resolver.fileSystem == nil {
		resolver.fileSystem = afero.NewOsFs()
	}
	return resolver
}

// ParseTokenSource parses "env:NAME", "file:PATH", or a bare variable name. Type prefixes are case-insensitive.
func ParseTokenSource(sourceValue string) (TokenSourceConfiguration, error) {
	declaration := strings.TrimSpace(sourceValue)
	if len(declaration) == 0 {
		return TokenSourceConfiguration{}, errors.New(blankSourceMessageConstant)
	}

	prefix, reference, hasPrefix := strings.Cut(declaration, sourceTypeSeparatorConstant)
	if !hasPrefix {
		return TokenSourceConfiguration{Type: TokenSourceTypeEnvironment, Reference: declaration}, nil
	}

	source := TokenSourceConfiguration{
		Type:      TokenSourceType(strings.ToLower(strings.TrimSpace(prefix))),
		Reference: strings.TrimSpace(reference),
	}
	referenceName := referenceNameVariableConstant
	switch source.Type {
	case TokenSourceTypeEnvironment:
	case TokenSourceTypeFile:
		referenceName = referenceNamePathConstant
	default:
		return TokenSourceConfiguration{}, fmt.Errorf(unknownSourceTypeTemplateConstant, source.Type)
	}
	if len(source.Reference) == 0 {
		return TokenSourceConfiguration{}, fmt.Errorf(missingReferenceTemplateConstant, declaration, referenceName)
	}
	return source, nil
}

// Resolve reads the token declared by sourceValue. A blank declaration falls back to the first non-blank
// value among GH_TOKEN, GITHUB_TOKEN, and GITHUB_API_TOKEN.
func (resolver *TokenResolver) Resolve(resolutionContext context.Context, sourceValue string) (string, error) {
	if len(strings.TrimSpace(sourceValue)) == 0 {
		for _, variableName := range []string{EnvGitHubCLIToken, EnvGitHubToken, EnvGitHubAPIToken} {
			if token, found := resolver.lookupVariable(variableName); found {
				return token, nil
			}
		}
		return "", ErrTokenNotFound
	}

	source, parseError := ParseTokenSource(sourceValue)
	if parseError != nil {
		return "", parseError
	}
	return resolver.ResolveToken(resolutionContext, source)
}

// ResolveToken reads the token from source. Surrounding whitespace, including a trailing newline in token
// files, is removed; a blank result is an error.
func (resolver *TokenResolver) ResolveToken(resolutionContext context.Context, source TokenSourceConfiguration) (string, error) {
	if contextError := resolutionContext.Err(); contextError != nil {
		return "", contextError
	}

	switch source.Type {
	case TokenSourceTypeEnvironment:
		token, found := resolver.lookupVariable(source.Reference)
		if !found {
			return "", fmt.Errorf(unsetVariableTemplateConstant, source.Reference)
		}
		return token, nil
	case TokenSourceTypeFile:
		contents, readError := afero.ReadFile(resolver.fileSystem, source.Reference)
		if readError != nil {
			return "", fmt.Errorf(unreadableFileTemplateConstant, source.Reference, readError)
		}
		token := strings.TrimSpace(string(contents))
		if len(token) == 0 {
			return "", fmt.Errorf(blankFileTemplateConstant, source.Reference)
		}
		return token, nil
	default:
		return "", fmt.Errorf(unknownSourceTypeTemplateConstant, source.Type)
	}
}

func (resolver *TokenResolver) lookupVariable(variableName string) (string, bool) {
	value, _ := resolver.environmentLookup(variableName)
	token := strings.TrimSpace(value)
	return token, len(token) > 0
}
