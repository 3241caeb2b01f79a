package pathutils

import (
	"os"
	"path/filepath"
	"strings"
)

const homeShortcutConstant = "~"

// HomeExpander replaces a leading "~" path element with the current user's home directory.
type HomeExpander struct {
	lookupHome func() (string, error)
}

// NewHomeExpander resolves home through os.UserHomeDir.
func NewHomeExpander() HomeExpander {
	return HomeExpander{lookupHome: os.UserHomeDir}
}

// NewHomeExpanderWithLookup resolves home through lookupHome.
func NewHomeExpanderWithLookup(lookupHome func() (string, error)) HomeExpander {
	return HomeExpander{lookupHome: lookupHome}
}

// Expand returns candidatePath with its home shortcut resolved. Paths naming another user ("~other/x"),
// paths without a shortcut, and paths whose home cannot be resolved are returned unchanged.
func (expander HomeExpander) Expand(candidatePath string) string {
	if !hasHomeShortcut(candidatePath) {
		return candidatePath
	}

	lookupHome := expander.lookupHome
	if lookupHome == nil {
		lookupHome = os.UserHomeDir
	}
	homeDirectory, lookupError := lookupHome()
	if lookupError != nil || len(homeDirectory) == 0 {
		return candidatePath
	}
	return filepath.Join(homeDirectory, strings.TrimPrefix(candidatePath, homeShortcutConstant))
}

func hasHomeShortcut(candidatePath string) bool {
	if candidatePath == homeShortcutConstant {
		return true
	}
	return strings.HasPrefix(candidatePath, homeShortcutConstant+"/") ||
		strings.HasPrefix(candidatePath, homeShortcutConstant+string(filepath.Separator))
}
