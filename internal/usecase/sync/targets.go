package sync

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"qualisync/internal/errs"
)

// SourceTarget names one workspace to ingest. An empty Repositories list
// means every repository in the workspace.
type SourceTarget struct {
	Workspace    string   `toml:"workspace"`
	Repositories []string `toml:"repositories"`
}

// QualityTarget names one organization to ingest. An empty Projects list
// means every analysis project in the organization.
type QualityTarget struct {
	Organization string   `toml:"organization"`
	Projects     []string `toml:"projects"`
}

// TargetList is the parsed targets file.
type TargetList struct {
	Source  []SourceTarget  `toml:"source"`
	Quality []QualityTarget `toml:"quality"`
}

func (t TargetList) Empty() bool {
	return len(t.Source) == 0 && len(t.Quality) == 0
}

// LoadTargets reads and validates the TOML targets file.
func LoadTargets(path string) (TargetList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TargetList{}, errs.Wrapf(err, "read targets file %s", path)
	}

	var list TargetList
	if err := toml.Unmarshal(raw, &list); err != nil {
		return TargetList{}, errs.Wrapf(err, "parse targets file %s", path)
	}

	for i, t := range list.Source {
		if t.Workspace == "" {
			return TargetList{}, fmt.Errorf("targets file %s: source target %d has no workspace", path, i+1)
		}
	}
	for i, t := range list.Quality {
		if t.Organization == "" {
			return TargetList{}, fmt.Errorf("targets file %s: quality target %d has no organization", path, i+1)
		}
	}
	if list.Empty() {
		return TargetList{}, errors.New("targets file " + path + " names no targets")
	}
	return list, nil
}
