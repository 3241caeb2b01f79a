// Package flags provides the toggle, choice, and repository flags shared by the revreq commands.
package flags

import "github.com/spf13/cobra"

const (
	// DryRunFlagName names the shared dry-run toggle.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the dry-run toggle.
	DryRunFlagUsage = "Run local checks and print the pull request without pushing or calling mutating endpoints"
	// OwnerFlagName names the repository owner override.
	OwnerFlagName = "owner"
	// RepositoryFlagName names the main repository override.
	RepositoryFlagName = "repository"
	// TestRepositoryFlagName names the test repository override.
	TestRepositoryFlagName = "test-repository"

	ownerFlagUsageConstant          = "Repository owner (defaults to configuration, then GITHUB_REPOSITORY)"
	repositoryFlagUsageConstant     = "Main repository name (defaults to configuration, then GITHUB_REPOSITORY)"
	testRepositoryFlagUsageConstant = "Test repository name recorded in the review state"
)

// RepositoryFlags collects the repository overrides registered on a command.
type RepositoryFlags struct {
	command        *cobra.Command
	owner          string
	repository     string
	testRepository string
}

// BindRepositoryFlags registers --owner, --repository, and --test-repository on command.
func BindRepositoryFlags(command *cobra.Command) *RepositoryFlags {
	repositoryFlags := &RepositoryFlags{command: command}
	flagSet := command.Flags()
	flagSet.StringVar(&repositoryFlags.owner, OwnerFlagName, "", ownerFlagUsageConstant)
	flagSet.StringVar(&repositoryFlags.repository, RepositoryFlagName, "", repositoryFlagUsageConstant)
	flagSet.StringVar(&repositoryFlags.testRepository, TestRepositoryFlagName, "", testRepositoryFlagUsageConstant)
	return repositoryFlags
}

// Apply overwrites each target whose flag was given on the command line, leaving the others untouched.
func (repositoryFlags *RepositoryFlags) Apply(owner *string, repository *string, testRepository *string) {
	if repositoryFlags == nil {
		return
	}
	overrides := []struct {
		name   string
		value  string
		target *string
	}{
		{name: OwnerFlagName, value: repositoryFlags.owner, target: owner},
		{name: RepositoryFlagName, value: repositoryFlags.repository, target: repository},
		{name: TestRepositoryFlagName, value: repositoryFlags.testRepository, target: testRepository},
	}
	for _, override := range overrides {
		if override.target != nil && repositoryFlags.command.Flags().Changed(override.name) {
			*override.target = override.value
		}
	}
}
