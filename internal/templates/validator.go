package templates

import (
	"errors"

	"github.com/pyskel/cli/internal/config"
)

// DefaultOrg is used for repository links when no organization is given.
const DefaultOrg = "my-org"

// WithDefaults fills every unset answer derivable from the others.
func (d TemplateData) WithDefaults() TemplateData {
	if d.Slug == "" {
		d.Slug = config.Slugify(d.ProjectName)
	}
	if d.Version == "" {
		d.Version = config.DefaultVersion
	}
	if d.CLI == "" {
		d.CLI = DefaultVariant
	}
	if d.PythonVersion == "" {
		d.PythonVersion = config.DefaultPythonVersion
	}
	if d.Description == "" {
		d.Description = "A short description of " + d.ProjectName + "."
	}
	if d.Org == "" {
		d.Org = DefaultOrg
	}
	if d.RepoName == "" {
		d.RepoName = d.ProjectName
	}
	if d.RepoURL == "" {
		d.RepoURL = "https://github.com/" + d.Org + "/" + d.RepoName
	}
	return d
}

// Validate checks every answer, reporting all problems at once.
func (d TemplateData) Validate() error {
	var errs config.ValidationErrors
	for _, check := range []struct {
		value string
		fn    func(string) error
	}{
		{d.ProjectName, config.ValidateProjectName},
		{d.Slug, config.ValidateSlug},
		{d.Version, config.ValidateVersion},
		{d.CLI, config.ValidateCLI},
		{d.PythonVersion, config.ValidatePythonVersion},
	} {
		if err := check.fn(check.value); err != nil {
			var ve *config.ValidationError
			if errors.As(err, &ve) {
				errs = append(errs, *ve)
				continue
			}
			return err
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DataFromConfig rebuilds the answers a project was generated with.
func DataFromConfig(cfg *config.Config) TemplateData {
	p := cfg.Project
	return TemplateData{
		ProjectName:   p.Name,
		Slug:          p.Slug,
		Version:       p.Version,
		Description:   p.Description,
		Author:        p.Author,
		Email:         p.Email,
		Org:           p.Org,
		CLI:           p.CLI,
		PythonVersion: p.PythonVersion,
	}.WithDefaults()
}
