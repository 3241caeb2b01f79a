package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestRepositoryFlagsApplyOnlyGivenFlags(testInstance *testing.T) {
	command := &cobra.Command{}
	repositoryFlags := BindRepositoryFlags(command)

	require.NoError(testInstance, command.ParseFlags([]string{"--owner", "classroom", "--test-repository", "project-tests"}))

	owner, repository, testRepository := "configured-owner", "configured-repository", ""
	repositoryFlags.Apply(&owner, &repository, &testRepository)

	require.Equal(testInstance, "classroom", owner)
	require.Equal(testInstance, "configured-repository", repository)
	require.Equal(testInstance, "project-tests", testRepository)
}

func TestRepositoryFlagsApplyAllowsClearing(testInstance *testing.T) {
	command := &cobra.Command{}
	repositoryFlags := BindRepositoryFlags(command)

	require.NoError(testInstance, command.ParseFlags([]string{"--repository="}))

	repository := "configured-repository"
	repositoryFlags.Apply(nil, &repository, nil)
	require.Empty(testInstance, repository)

	var unbound *RepositoryFlags
	require.NotPanics(testInstance, func() { unbound.Apply(&repository, nil, nil) })
}
