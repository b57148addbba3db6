package adapter

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Load reads custom profiles from a YAML file and prepends them to the
// built-in set, so user profiles win during selection while the permissive
// fallback stays last. Every profile is validated before use.
func Load(path string) ([]Profile, error) {
	profiles := Builtin()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "adapter: read profiles file %s", path)
		}
		var custom []Profile
		if err := yaml.Unmarshal(data, &custom); err != nil {
			return nil, eris.Wrapf(err, "adapter: parse profiles file %s", path)
		}
		profiles = append(custom, profiles...)
	}

	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}
